package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	stationdomain "github.com/fuelsync/fuelsync/internal/station/domain"
	"github.com/shopspring/decimal"
)

// FuelPrice is one effective-interval record of the versioned price table.
// Rows are never mutated in place: a new price closes the previous open
// interval and starts its own.
type FuelPrice struct {
	ID        snowflake.ID           `json:"id" gorm:"primaryKey"`
	TenantID  snowflake.ID           `json:"tenant_id" gorm:"column:tenant_id;not null;index:ix_fuel_prices_lookup,priority:1"`
	StationID snowflake.ID           `json:"station_id" gorm:"not null;index:ix_fuel_prices_lookup,priority:2"`
	FuelType  stationdomain.FuelType `json:"fuel_type" gorm:"type:text;not null;index:ix_fuel_prices_lookup,priority:3"`
	Price     decimal.Decimal        `json:"price" gorm:"type:numeric(12,2);not null"`
	CostPrice *decimal.Decimal       `json:"cost_price,omitempty" gorm:"type:numeric(12,2)"`
	ValidFrom time.Time              `json:"valid_from" gorm:"not null;index:ix_fuel_prices_lookup,priority:4"`
	ValidTo   *time.Time             `json:"valid_to,omitempty"`
	CreatedAt time.Time              `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time              `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (FuelPrice) TableName() string { return "fuel_prices" }

// CurrentAt reports whether the interval covers the given instant.
func (p FuelPrice) CurrentAt(at time.Time) bool {
	if p.ValidFrom.After(at) {
		return false
	}
	return p.ValidTo == nil || p.ValidTo.After(at)
}
