package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, report *CashReport) error
	FindByStationDate(ctx context.Context, db *gorm.DB, tenantID, stationID snowflake.ID, date time.Time) (*CashReport, error)
	List(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, stationID *snowflake.ID, limit int) ([]CashReport, error)
}
