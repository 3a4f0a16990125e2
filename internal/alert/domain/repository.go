package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type ListFilter struct {
	StationID      *snowflake.ID
	Type           *AlertType
	Unacknowledged bool
	Limit          int
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, alert *Alert) error
	FindByID(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID) (*Alert, error)
	List(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, filter ListFilter) ([]Alert, error)
	Acknowledge(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID, at time.Time) (int64, error)
	// ExistsOnDay reports whether an alert of the same type already
	// exists for the station on the calendar day holding at.
	ExistsOnDay(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, stationID *snowflake.ID, alertType AlertType, at time.Time) (bool, error)
}
