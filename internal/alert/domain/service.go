package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

var (
	ErrInvalidTenant  = errors.New("invalid_tenant")
	ErrInvalidID      = errors.New("invalid_alert_id")
	ErrInvalidStation = errors.New("invalid_station")
	ErrNotFound       = errors.New("alert_not_found")
)

type ListRequest struct {
	StationID      string `form:"station_id"`
	Type           string `form:"type"`
	Unacknowledged bool   `form:"unacknowledged"`
	Limit          int    `form:"limit"`
}

type RaiseRequest struct {
	TenantID  snowflake.ID
	StationID *snowflake.ID
	Type      AlertType
	Severity  Severity
	Message   string
	Metadata  map[string]interface{}
}

type SweepSummary struct {
	Raised     int            `json:"raised"`
	Suppressed int            `json:"suppressed"`
	ByType     map[string]int `json:"by_type"`
}

// Service records and lists alerts. Raise dedupes by (tenant, station,
// type, calendar day) so repeated sweeps stay quiet once a condition has
// been reported.
type Service interface {
	// Raise runs against the supplied handle so ingest paths can record
	// alerts inside their own transaction. Returns the alert, or nil
	// when suppressed as a same-day duplicate.
	Raise(ctx context.Context, db *gorm.DB, req RaiseRequest) (*Alert, error)
	List(ctx context.Context, req ListRequest) ([]Alert, error)
	Acknowledge(ctx context.Context, id string) error
	// RunSweeps evaluates every alert rule for the tenant.
	RunSweeps(ctx context.Context) (*SweepSummary, error)
}
