package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// DayReconciliation is the finalized daily summary for one station. One
// row per (tenant, station, date); finalized is terminal.
type DayReconciliation struct {
	ID          snowflake.ID    `json:"id" gorm:"primaryKey"`
	TenantID    snowflake.ID    `json:"tenant_id" gorm:"column:tenant_id;not null;uniqueIndex:ux_day_recon_station_date,priority:1"`
	StationID   snowflake.ID    `json:"station_id" gorm:"not null;uniqueIndex:ux_day_recon_station_date,priority:2"`
	Date        time.Time       `json:"date" gorm:"type:date;not null;uniqueIndex:ux_day_recon_station_date,priority:3"`
	TotalSales  decimal.Decimal `json:"total_sales" gorm:"type:numeric(14,2);not null;default:0"`
	CashTotal   decimal.Decimal `json:"cash_total" gorm:"type:numeric(14,2);not null;default:0"`
	CardTotal   decimal.Decimal `json:"card_total" gorm:"type:numeric(14,2);not null;default:0"`
	UPITotal    decimal.Decimal `json:"upi_total" gorm:"column:upi_total;type:numeric(14,2);not null;default:0"`
	CreditTotal decimal.Decimal `json:"credit_total" gorm:"type:numeric(14,2);not null;default:0"`
	Finalized   bool            `json:"finalized" gorm:"not null;default:false"`
	CreatedAt   time.Time       `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt   time.Time       `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (DayReconciliation) TableName() string { return "day_reconciliations" }

// DateOnly truncates t to its UTC calendar date.
func DateOnly(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
