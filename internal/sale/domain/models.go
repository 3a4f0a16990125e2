package domain

import (
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	stationdomain "github.com/fuelsync/fuelsync/internal/station/domain"
	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	PaymentCash   PaymentMethod = "cash"
	PaymentCard   PaymentMethod = "card"
	PaymentUPI    PaymentMethod = "upi"
	PaymentCredit PaymentMethod = "credit"
)

// ValidPaymentMethod reports whether value is a known payment method.
func ValidPaymentMethod(value PaymentMethod) bool {
	switch value {
	case PaymentCash, PaymentCard, PaymentUPI, PaymentCredit:
		return true
	default:
		return false
	}
}

// Sale is derived from two successive meter readings, never user-created.
// volume = reading - previous reading (3 dp), amount = volume * price (2 dp).
type Sale struct {
	ID            snowflake.ID           `json:"id" gorm:"primaryKey"`
	TenantID      snowflake.ID           `json:"tenant_id" gorm:"column:tenant_id;not null;index"`
	NozzleID      snowflake.ID           `json:"nozzle_id" gorm:"not null;index"`
	ReadingID     *snowflake.ID          `json:"reading_id,omitempty" gorm:"index:ux_sales_reading,unique"`
	StationID     snowflake.ID           `json:"station_id" gorm:"not null;index:ix_sales_station_date,priority:1"`
	FuelType      stationdomain.FuelType `json:"fuel_type" gorm:"type:text;not null"`
	Volume        decimal.Decimal        `json:"volume" gorm:"type:numeric(14,3);not null"`
	FuelPrice     decimal.Decimal        `json:"fuel_price" gorm:"type:numeric(12,2);not null"`
	Amount        decimal.Decimal        `json:"amount" gorm:"type:numeric(14,2);not null"`
	PaymentMethod PaymentMethod          `json:"payment_method" gorm:"type:text;not null"`
	CreditorID    *snowflake.ID          `json:"creditor_id,omitempty" gorm:"index"`
	CreatedBy     snowflake.ID           `json:"created_by"`
	RecordedAt    time.Time              `json:"recorded_at" gorm:"not null;index:ix_sales_station_date,priority:2"`
	CreatedAt     time.Time              `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Sale) TableName() string { return "sales" }

// DayTotals is the per-payment-method aggregate for one station and date.
type DayTotals struct {
	TotalSales  decimal.Decimal `json:"total_sales"`
	CashTotal   decimal.Decimal `json:"cash_total"`
	CardTotal   decimal.Decimal `json:"card_total"`
	UPITotal    decimal.Decimal `json:"upi_total"`
	CreditTotal decimal.Decimal `json:"credit_total"`
}

var (
	ErrInvalidTenant  = errors.New("invalid_tenant")
	ErrInvalidStation = errors.New("invalid_station")
	ErrInvalidRange   = errors.New("invalid_range")
)
