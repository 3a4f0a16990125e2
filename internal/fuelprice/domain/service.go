package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	stationdomain "github.com/fuelsync/fuelsync/internal/station/domain"
	"github.com/shopspring/decimal"
)

// StalePriceWindow is how old an effective price may be before sale
// derivation refuses to trust it.
const StalePriceWindow = 7 * 24 * time.Hour

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*FuelPrice, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, req ListRequest) ([]FuelPrice, error)

	// GetPriceAt answers "which price was effective at this instant".
	// Returns ErrPriceMissing when no interval covers it.
	GetPriceAt(ctx context.Context, tenantID, stationID snowflake.ID, fuelType stationdomain.FuelType, at time.Time) (*FuelPrice, error)

	// HasCurrentPrice reports whether a price is effective right now.
	HasCurrentPrice(ctx context.Context, tenantID, stationID snowflake.ID, fuelType stationdomain.FuelType) (bool, error)
}

type CreateRequest struct {
	StationID string                 `json:"station_id"`
	FuelType  stationdomain.FuelType `json:"fuel_type"`
	Price     decimal.Decimal        `json:"price"`
	CostPrice *decimal.Decimal       `json:"cost_price,omitempty"`
	ValidFrom *time.Time             `json:"valid_from,omitempty"`
}

type ListRequest struct {
	StationID string                 `json:"station_id"`
	FuelType  stationdomain.FuelType `json:"fuel_type"`
}

var (
	ErrInvalidTenant   = errors.New("invalid_tenant")
	ErrInvalidStation  = errors.New("invalid_station")
	ErrInvalidFuelType = errors.New("invalid_fuel_type")
	ErrInvalidPrice    = errors.New("invalid_price")
	ErrPriceBackdated  = errors.New("price_backdated")
	ErrInvalidID       = errors.New("invalid_id")
	ErrNotFound        = errors.New("not_found")
	ErrPriceMissing    = errors.New("price_missing")
	ErrPriceOutdated   = errors.New("price_outdated")
)
