package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, sale *Sale) error
	List(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, filter ListFilter) ([]Sale, error)
	CountByReading(ctx context.Context, db *gorm.DB, tenantID, readingID snowflake.ID) (int64, error)

	// TotalsForStationDate aggregates sale amounts by payment method for
	// one station and calendar date, joining through nozzle -> pump so
	// cash-report credit sales without a station row mismatch are still
	// attributed consistently.
	TotalsForStationDate(ctx context.Context, db *gorm.DB, tenantID, stationID snowflake.ID, date time.Time) (DayTotals, error)
}

type ListFilter struct {
	StationID     snowflake.ID
	NozzleID      snowflake.ID
	CreditorID    snowflake.ID
	PaymentMethod PaymentMethod
	From          time.Time
	To            time.Time
	Limit         int
}
