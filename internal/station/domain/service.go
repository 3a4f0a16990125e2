package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	CreateStation(ctx context.Context, req CreateStationRequest) (*Station, error)
	ListStations(ctx context.Context) ([]Station, error)
	GetStation(ctx context.Context, id string) (*Station, error)
	UpdateStation(ctx context.Context, req UpdateStationRequest) (*Station, error)

	CreatePump(ctx context.Context, req CreatePumpRequest) (*Pump, error)
	ListPumps(ctx context.Context, stationID string) ([]Pump, error)
	UpdatePumpStatus(ctx context.Context, id string, status PumpStatus) (*Pump, error)

	CreateNozzle(ctx context.Context, req CreateNozzleRequest) (*Nozzle, error)
	ListNozzles(ctx context.Context, pumpID string) ([]Nozzle, error)
	UpdateNozzleStatus(ctx context.Context, id string, status NozzleStatus) (*Nozzle, error)

	// Resolve returns the hierarchy view used by reading ingest and the
	// alert evaluator. A nil result means the nozzle does not exist for
	// the tenant.
	Resolve(ctx context.Context, tenantID, nozzleID snowflake.ID) (*ResolvedNozzle, error)
}

type CreateStationRequest struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

type UpdateStationRequest struct {
	ID      string         `json:"id"`
	Name    *string        `json:"name,omitempty"`
	Address *string        `json:"address,omitempty"`
	Status  *StationStatus `json:"status,omitempty"`
}

type CreatePumpRequest struct {
	StationID string `json:"station_id"`
	Name      string `json:"name"`
}

type CreateNozzleRequest struct {
	PumpID       string   `json:"pump_id"`
	NozzleNumber int      `json:"nozzle_number"`
	FuelType     FuelType `json:"fuel_type"`
}

var (
	ErrInvalidTenant   = errors.New("invalid_tenant")
	ErrInvalidName     = errors.New("invalid_name")
	ErrInvalidStation  = errors.New("invalid_station")
	ErrInvalidPump     = errors.New("invalid_pump")
	ErrInvalidNozzle   = errors.New("invalid_nozzle")
	ErrInvalidFuelType = errors.New("invalid_fuel_type")
	ErrInvalidStatus   = errors.New("invalid_status")
	ErrNotFound        = errors.New("not_found")
	ErrInvalidID       = errors.New("invalid_id")
)

func ParseID(value string) (snowflake.ID, error) {
	return snowflake.ParseString(value)
}
