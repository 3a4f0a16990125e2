package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type StationStatus string

const (
	StationActive   StationStatus = "active"
	StationInactive StationStatus = "inactive"
)

type PumpStatus string

const (
	PumpActive      PumpStatus = "active"
	PumpInactive    PumpStatus = "inactive"
	PumpMaintenance PumpStatus = "maintenance"
)

type NozzleStatus string

const (
	NozzleActive   NozzleStatus = "active"
	NozzleInactive NozzleStatus = "inactive"
)

type FuelType string

const (
	FuelPetrol  FuelType = "petrol"
	FuelDiesel  FuelType = "diesel"
	FuelPremium FuelType = "premium"
)

// ValidFuelType reports whether value is a known fuel type.
func ValidFuelType(value FuelType) bool {
	switch value {
	case FuelPetrol, FuelDiesel, FuelPremium:
		return true
	default:
		return false
	}
}

type Station struct {
	ID        snowflake.ID  `json:"id" gorm:"primaryKey"`
	TenantID  snowflake.ID  `json:"tenant_id" gorm:"column:tenant_id;not null;index"`
	Name      string        `json:"name" gorm:"type:text;not null"`
	Address   string        `json:"address,omitempty" gorm:"type:text"`
	Status    StationStatus `json:"status" gorm:"type:text;not null;default:active"`
	CreatedAt time.Time     `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time     `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Station) TableName() string { return "stations" }

type Pump struct {
	ID        snowflake.ID `json:"id" gorm:"primaryKey"`
	TenantID  snowflake.ID `json:"tenant_id" gorm:"column:tenant_id;not null;index"`
	StationID snowflake.ID `json:"station_id" gorm:"not null;index"`
	Name      string       `json:"name" gorm:"type:text;not null"`
	Status    PumpStatus   `json:"status" gorm:"type:text;not null;default:active"`
	CreatedAt time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time    `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Pump) TableName() string { return "pumps" }

type Nozzle struct {
	ID           snowflake.ID `json:"id" gorm:"primaryKey"`
	TenantID     snowflake.ID `json:"tenant_id" gorm:"column:tenant_id;not null;index"`
	PumpID       snowflake.ID `json:"pump_id" gorm:"not null;index"`
	NozzleNumber int          `json:"nozzle_number" gorm:"not null"`
	FuelType     FuelType     `json:"fuel_type" gorm:"type:text;not null"`
	Status       NozzleStatus `json:"status" gorm:"type:text;not null;default:active"`
	CreatedAt    time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt    time.Time    `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Nozzle) TableName() string { return "nozzles" }

// ResolvedNozzle carries the hierarchy fields reading ingest needs: the
// nozzle's fuel type and the station it ultimately belongs to.
type ResolvedNozzle struct {
	NozzleID  snowflake.ID
	StationID snowflake.ID
	FuelType  FuelType
	Status    NozzleStatus
}
