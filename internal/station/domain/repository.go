package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	InsertStation(ctx context.Context, db *gorm.DB, station *Station) error
	UpdateStation(ctx context.Context, db *gorm.DB, station *Station) error
	FindStationByID(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID) (*Station, error)
	ListStations(ctx context.Context, db *gorm.DB, tenantID snowflake.ID) ([]Station, error)

	InsertPump(ctx context.Context, db *gorm.DB, pump *Pump) error
	UpdatePump(ctx context.Context, db *gorm.DB, pump *Pump) error
	FindPumpByID(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID) (*Pump, error)
	ListPumps(ctx context.Context, db *gorm.DB, tenantID, stationID snowflake.ID) ([]Pump, error)

	InsertNozzle(ctx context.Context, db *gorm.DB, nozzle *Nozzle) error
	UpdateNozzle(ctx context.Context, db *gorm.DB, nozzle *Nozzle) error
	FindNozzleByID(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID) (*Nozzle, error)
	ListNozzles(ctx context.Context, db *gorm.DB, tenantID, pumpID snowflake.ID) ([]Nozzle, error)

	// ResolveNozzle joins nozzle -> pump to find the owning station and fuel type.
	ResolveNozzle(ctx context.Context, db *gorm.DB, tenantID, nozzleID snowflake.ID) (*ResolvedNozzle, error)

	// FindNozzleForFuel picks any active nozzle dispensing the fuel type
	// at the station.
	FindNozzleForFuel(ctx context.Context, db *gorm.DB, tenantID, stationID snowflake.ID, fuelType FuelType) (*ResolvedNozzle, error)
}
