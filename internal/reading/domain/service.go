package domain

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidTenant     = errors.New("invalid_tenant")
	ErrInvalidNozzle     = errors.New("invalid_nozzle")
	ErrInvalidReading    = errors.New("invalid_reading")
	ErrInvalidPayment    = errors.New("invalid_payment_method")
	ErrInvalidCreditor   = errors.New("invalid_creditor")
	ErrCreditorRequired  = errors.New("creditor_required")
	ErrInvalidReference  = errors.New("invalid_reference")
	ErrNonMonotonic      = errors.New("non_monotonic_reading")
	ErrDayFinalized      = errors.New("day_finalized")
	ErrNotFound          = errors.New("reading_not_found")
	ErrReadingHasSale    = errors.New("reading_has_sale")
	ErrInvalidRecordedAt = errors.New("invalid_recorded_at")
)

type SubmitRequest struct {
	NozzleID      string          `json:"nozzle_id" binding:"required"`
	Reading       decimal.Decimal `json:"reading" binding:"required"`
	RecordedAt    string          `json:"recorded_at"` // RFC 3339; defaults to now
	PaymentMethod string          `json:"payment_method" binding:"required"`
	CreditorID    string          `json:"creditor_id"`
}

type SubmitResult struct {
	ReadingID  string          `json:"reading_id"`
	SaleID     string          `json:"sale_id"`
	Volume     decimal.Decimal `json:"volume"`
	Amount     decimal.Decimal `json:"amount"`
	FuelPrice  decimal.Decimal `json:"fuel_price"`
	NearLimit  bool            `json:"near_limit,omitempty"`
}

type UpdateRequest struct {
	Reading       *decimal.Decimal `json:"reading"`
	RecordedAt    *string          `json:"recorded_at"`
	PaymentMethod *string          `json:"payment_method"`
}

type ListRequest struct {
	StationID string `form:"station_id"`
	NozzleID  string `form:"nozzle_id"`
	From      string `form:"from"`
	To        string `form:"to"`
	Limit     int    `form:"limit"`
}

type CanSubmitResult struct {
	Allowed         bool             `json:"allowed"`
	Reason          string           `json:"reason,omitempty"`
	PreviousReading *decimal.Decimal `json:"previous_reading,omitempty"`
}

// Service ingests meter readings and derives their sales. Submit is the
// write path: one transaction covering the reading row, the derived
// sale, and any creditor balance update.
type Service interface {
	Submit(ctx context.Context, req SubmitRequest) (*SubmitResult, error)
	CanSubmit(ctx context.Context, nozzleID string) (*CanSubmitResult, error)
	List(ctx context.Context, req ListRequest) ([]ReadingWithVolume, error)
	Get(ctx context.Context, id string) (*ReadingWithVolume, error)
	// Update corrects a reading that has not yet produced a sale.
	Update(ctx context.Context, id string, req UpdateRequest) (*NozzleReading, error)
}
