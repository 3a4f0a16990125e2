package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/fuelsync/fuelsync/internal/cashreport/domain"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, report *domain.CashReport) error {
	return db.WithContext(ctx).Create(report).Error
}

func (r *repo) FindByStationDate(ctx context.Context, db *gorm.DB, tenantID, stationID snowflake.ID, date time.Time) (*domain.CashReport, error) {
	var report domain.CashReport
	err := db.WithContext(ctx).
		Where("tenant_id = ? AND station_id = ? AND date = ?", tenantID, stationID, date).
		First(&report).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &report, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, stationID *snowflake.ID, limit int) ([]domain.CashReport, error) {
	stmt := db.WithContext(ctx).Where("tenant_id = ?", tenantID)
	if stationID != nil {
		stmt = stmt.Where("station_id = ?", *stationID)
	}
	if limit > 0 {
		stmt = stmt.Limit(limit)
	}

	var reports []domain.CashReport
	if err := stmt.Order("date DESC").Find(&reports).Error; err != nil {
		return nil, err
	}
	return reports, nil
}
