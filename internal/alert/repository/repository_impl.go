package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/fuelsync/fuelsync/internal/alert/domain"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, alert *domain.Alert) error {
	return db.WithContext(ctx).Create(alert).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID) (*domain.Alert, error) {
	var alert domain.Alert
	err := db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		First(&alert).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &alert, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, filter domain.ListFilter) ([]domain.Alert, error) {
	stmt := db.WithContext(ctx).Where("tenant_id = ?", tenantID)
	if filter.StationID != nil {
		stmt = stmt.Where("station_id = ?", *filter.StationID)
	}
	if filter.Type != nil {
		stmt = stmt.Where("type = ?", *filter.Type)
	}
	if filter.Unacknowledged {
		stmt = stmt.Where("acknowledged = ?", false)
	}
	if filter.Limit > 0 {
		stmt = stmt.Limit(filter.Limit)
	}

	var alerts []domain.Alert
	if err := stmt.Order("created_at DESC").Find(&alerts).Error; err != nil {
		return nil, err
	}
	return alerts, nil
}

func (r *repo) Acknowledge(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID, at time.Time) (int64, error) {
	res := db.WithContext(ctx).Model(&domain.Alert{}).
		Where("id = ? AND tenant_id = ? AND acknowledged = ?", id, tenantID, false).
		Updates(map[string]interface{}{
			"acknowledged":    true,
			"acknowledged_at": at,
		})
	return res.RowsAffected, res.Error
}

func (r *repo) ExistsOnDay(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, stationID *snowflake.ID, alertType domain.AlertType, at time.Time) (bool, error) {
	day := at.UTC().Truncate(24 * time.Hour)
	stmt := db.WithContext(ctx).Model(&domain.Alert{}).
		Where("tenant_id = ? AND type = ? AND created_at >= ? AND created_at < ?",
			tenantID, alertType, day, day.Add(24*time.Hour))
	if stationID != nil {
		stmt = stmt.Where("station_id = ?", *stationID)
	} else {
		stmt = stmt.Where("station_id IS NULL")
	}

	var count int64
	if err := stmt.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
