package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// CashReport is an attendant's end-of-day declaration of collected
// tender for one station and date. Credit entries submitted with the
// report become credit sales, so the report itself stores only the
// aggregated amounts.
type CashReport struct {
	ID           snowflake.ID    `json:"id" gorm:"primaryKey"`
	TenantID     snowflake.ID    `json:"tenant_id" gorm:"column:tenant_id;not null;uniqueIndex:ux_cash_reports_station_date,priority:1"`
	StationID    snowflake.ID    `json:"station_id" gorm:"not null;uniqueIndex:ux_cash_reports_station_date,priority:2"`
	Date         time.Time       `json:"date" gorm:"type:date;not null;uniqueIndex:ux_cash_reports_station_date,priority:3"`
	CashAmount   decimal.Decimal `json:"cash_amount" gorm:"type:numeric(14,2);not null;default:0"`
	CardAmount   decimal.Decimal `json:"card_amount" gorm:"type:numeric(14,2);not null;default:0"`
	UPIAmount    decimal.Decimal `json:"upi_amount" gorm:"column:upi_amount;type:numeric(14,2);not null;default:0"`
	CreditAmount decimal.Decimal `json:"credit_amount" gorm:"type:numeric(14,2);not null;default:0"`
	Notes        string          `json:"notes,omitempty" gorm:"type:text"`
	CreatedBy    snowflake.ID    `json:"created_by"`
	CreatedAt    time.Time       `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt    time.Time       `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (CashReport) TableName() string { return "cash_reports" }
