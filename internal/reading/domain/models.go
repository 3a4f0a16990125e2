package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// NozzleReading is one cumulative meter observation. The dispensed
// volume of a reading is the delta against the previous reading of the
// same nozzle, never stored on the reading itself.
type NozzleReading struct {
	ID            snowflake.ID    `json:"id" gorm:"primaryKey"`
	TenantID      snowflake.ID    `json:"tenant_id" gorm:"column:tenant_id;not null;index"`
	StationID     snowflake.ID    `json:"station_id" gorm:"not null;index:ix_nozzle_readings_station_time,priority:1"`
	NozzleID      snowflake.ID    `json:"nozzle_id" gorm:"not null;index:ix_nozzle_readings_nozzle_time,priority:1"`
	Reading       decimal.Decimal `json:"reading" gorm:"type:numeric(14,3);not null"`
	RecordedAt    time.Time       `json:"recorded_at" gorm:"not null;index:ix_nozzle_readings_station_time,priority:2;index:ix_nozzle_readings_nozzle_time,priority:2"`
	PaymentMethod string          `json:"payment_method" gorm:"type:varchar(16);not null"`
	CreditorID    *snowflake.ID   `json:"creditor_id,omitempty" gorm:"index"`
	CreatedAt     time.Time       `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt     time.Time       `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (NozzleReading) TableName() string { return "nozzle_readings" }

// ReadingWithVolume is a listing row: the reading plus the previous
// reading value and the derived volume.
type ReadingWithVolume struct {
	NozzleReading
	PreviousReading *decimal.Decimal `json:"previous_reading,omitempty"`
	Volume          decimal.Decimal  `json:"volume"`
}
