package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, recon *DayReconciliation) error
	FindByStationDate(ctx context.Context, db *gorm.DB, tenantID, stationID snowflake.ID, date time.Time) (*DayReconciliation, error)
	List(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, stationID *snowflake.ID, from, to *time.Time) ([]DayReconciliation, error)
	// AnyFinalizedOnDate reports whether any station of the tenant has a
	// finalized reconciliation for the given date.
	AnyFinalizedOnDate(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, date time.Time) (bool, error)
	// FinalizedOnDate reports whether the station has a finalized
	// reconciliation for the given date.
	FinalizedOnDate(ctx context.Context, db *gorm.DB, tenantID, stationID snowflake.ID, date time.Time) (bool, error)
}
