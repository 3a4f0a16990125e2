package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	stationdomain "github.com/fuelsync/fuelsync/internal/station/domain"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, price *FuelPrice) error
	Delete(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID) error
	FindByID(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID) (*FuelPrice, error)
	List(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, filter ListFilter) ([]FuelPrice, error)

	// FindAt returns the interval effective at the given instant, picking
	// the greatest valid_from when more than one qualifies.
	FindAt(ctx context.Context, db *gorm.DB, tenantID, stationID snowflake.ID, fuelType stationdomain.FuelType, at time.Time) (*FuelPrice, error)

	// CloseOpenInterval sets valid_to on the currently open interval for
	// (station, fuelType), so a new interval can start at that instant.
	CloseOpenInterval(ctx context.Context, db *gorm.DB, tenantID, stationID snowflake.ID, fuelType stationdomain.FuelType, at time.Time) error
	// FindLatest returns the interval with the greatest valid_from for
	// (station, fuelType), or nil when none exists.
	FindLatest(ctx context.Context, db *gorm.DB, tenantID, stationID snowflake.ID, fuelType stationdomain.FuelType) (*FuelPrice, error)
}

type ListFilter struct {
	StationID snowflake.ID
	FuelType  stationdomain.FuelType
}
