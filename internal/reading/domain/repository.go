package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type ListFilter struct {
	StationID *snowflake.ID
	NozzleID  *snowflake.ID
	From      *time.Time
	To        *time.Time
	Limit     int
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, reading *NozzleReading) error
	Update(ctx context.Context, db *gorm.DB, reading *NozzleReading) error
	FindByID(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID) (*NozzleReading, error)
	List(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, filter ListFilter) ([]NozzleReading, error)
	// FindLastBefore returns the latest reading of the nozzle recorded
	// strictly before at, locking the row when the dialect supports it.
	FindLastBefore(ctx context.Context, db *gorm.DB, tenantID, nozzleID snowflake.ID, at time.Time, lock bool) (*NozzleReading, error)
	// HasOnOrAfter reports whether any reading of the nozzle is recorded
	// at or after the given instant.
	HasOnOrAfter(ctx context.Context, db *gorm.DB, tenantID, nozzleID snowflake.ID, at time.Time) (bool, error)
	// FindPrevious is FindLastBefore without any locking, for listings.
	FindPrevious(ctx context.Context, db *gorm.DB, tenantID, nozzleID snowflake.ID, at time.Time) (*NozzleReading, error)
}
