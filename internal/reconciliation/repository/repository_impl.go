package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/fuelsync/fuelsync/internal/reconciliation/domain"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, recon *domain.DayReconciliation) error {
	return db.WithContext(ctx).Create(recon).Error
}

func (r *repo) FindByStationDate(ctx context.Context, db *gorm.DB, tenantID, stationID snowflake.ID, date time.Time) (*domain.DayReconciliation, error) {
	var recon domain.DayReconciliation
	err := db.WithContext(ctx).
		Where("tenant_id = ? AND station_id = ? AND date = ?", tenantID, stationID, domain.DateOnly(date)).
		First(&recon).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &recon, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, stationID *snowflake.ID, from, to *time.Time) ([]domain.DayReconciliation, error) {
	stmt := db.WithContext(ctx).Where("tenant_id = ?", tenantID)
	if stationID != nil {
		stmt = stmt.Where("station_id = ?", *stationID)
	}
	if from != nil {
		stmt = stmt.Where("date >= ?", domain.DateOnly(*from))
	}
	if to != nil {
		stmt = stmt.Where("date <= ?", domain.DateOnly(*to))
	}

	var recons []domain.DayReconciliation
	if err := stmt.Order("date DESC").Find(&recons).Error; err != nil {
		return nil, err
	}
	return recons, nil
}

func (r *repo) AnyFinalizedOnDate(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, date time.Time) (bool, error) {
	var count int64
	err := db.WithContext(ctx).Model(&domain.DayReconciliation{}).
		Where("tenant_id = ? AND date = ? AND finalized = ?", tenantID, domain.DateOnly(date), true).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repo) FinalizedOnDate(ctx context.Context, db *gorm.DB, tenantID, stationID snowflake.ID, date time.Time) (bool, error) {
	var count int64
	err := db.WithContext(ctx).Model(&domain.DayReconciliation{}).
		Where("tenant_id = ? AND station_id = ? AND date = ? AND finalized = ?", tenantID, stationID, domain.DateOnly(date), true).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
