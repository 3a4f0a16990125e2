package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

var (
	ErrInvalidTenant    = errors.New("invalid_tenant")
	ErrInvalidStation   = errors.New("invalid_station")
	ErrInvalidDate      = errors.New("invalid_date")
	ErrNotFound         = errors.New("reconciliation_not_found")
	ErrAlreadyFinalized = errors.New("day_already_finalized")
)

type RunRequest struct {
	StationID string `json:"station_id" binding:"required"`
	Date      string `json:"date" binding:"required"` // YYYY-MM-DD
}

type ListRequest struct {
	StationID string `form:"station_id"`
	From      string `form:"from"`
	To        string `form:"to"`
}

// Service computes and finalizes daily reconciliations. Run is a single
// atomic operation: totals are aggregated and the row is written
// finalized in one transaction, so a day is never observable half-done.
type Service interface {
	Run(ctx context.Context, req RunRequest) (*DayReconciliation, error)
	Get(ctx context.Context, stationID string, date string) (*DayReconciliation, error)
	List(ctx context.Context, req ListRequest) ([]DayReconciliation, error)
	// IsDayFinalized reports whether the station's business day holding
	// at is finalized.
	IsDayFinalized(ctx context.Context, tenantID, stationID snowflake.ID, at time.Time) (bool, error)
}

// ParseDate parses a YYYY-MM-DD business date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t.UTC(), nil
}
