package domain

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidTenant   = errors.New("invalid_tenant")
	ErrInvalidStation  = errors.New("invalid_station")
	ErrInvalidDate     = errors.New("invalid_date")
	ErrInvalidAmount   = errors.New("invalid_amount")
	ErrInvalidCreditor = errors.New("invalid_creditor")
	ErrInvalidFuelType = errors.New("invalid_fuel_type")
	ErrNoNozzle        = errors.New("no_nozzle_for_fuel_type")
	ErrDuplicateReport = errors.New("cash_report_exists")
	ErrDayFinalized    = errors.New("day_finalized")
)

// CreditEntry is an on-account amount declared with the report. It
// becomes a credit sale against the named creditor.
type CreditEntry struct {
	CreditorID string          `json:"creditor_id" binding:"required"`
	FuelType   string          `json:"fuel_type" binding:"required"`
	Amount     decimal.Decimal `json:"amount" binding:"required"`
}

type CreateRequest struct {
	StationID     string          `json:"station_id" binding:"required"`
	Date          string          `json:"date" binding:"required"` // YYYY-MM-DD
	CashAmount    decimal.Decimal `json:"cash_amount"`
	CardAmount    decimal.Decimal `json:"card_amount"`
	UPIAmount     decimal.Decimal `json:"upi_amount"`
	Notes         string          `json:"notes"`
	CreditEntries []CreditEntry   `json:"credit_entries"`
}

type ListRequest struct {
	StationID string `form:"station_id"`
	Limit     int    `form:"limit"`
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*CashReport, error)
	List(ctx context.Context, req ListRequest) ([]CashReport, error)
}
