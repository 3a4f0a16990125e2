package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/fuelsync/fuelsync/internal/reading/domain"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, reading *domain.NozzleReading) error {
	return db.WithContext(ctx).Create(reading).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, reading *domain.NozzleReading) error {
	return db.WithContext(ctx).Save(reading).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID) (*domain.NozzleReading, error) {
	var reading domain.NozzleReading
	err := db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		First(&reading).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &reading, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, filter domain.ListFilter) ([]domain.NozzleReading, error) {
	stmt := db.WithContext(ctx).Where("tenant_id = ?", tenantID)
	if filter.StationID != nil {
		stmt = stmt.Where("station_id = ?", *filter.StationID)
	}
	if filter.NozzleID != nil {
		stmt = stmt.Where("nozzle_id = ?", *filter.NozzleID)
	}
	if filter.From != nil {
		stmt = stmt.Where("recorded_at >= ?", *filter.From)
	}
	if filter.To != nil {
		stmt = stmt.Where("recorded_at < ?", *filter.To)
	}
	if filter.Limit > 0 {
		stmt = stmt.Limit(filter.Limit)
	}

	var readings []domain.NozzleReading
	if err := stmt.Order("recorded_at DESC").Find(&readings).Error; err != nil {
		return nil, err
	}
	return readings, nil
}

func (r *repo) FindLastBefore(ctx context.Context, db *gorm.DB, tenantID, nozzleID snowflake.ID, at time.Time, lock bool) (*domain.NozzleReading, error) {
	stmt := db.WithContext(ctx).
		Where("tenant_id = ? AND nozzle_id = ? AND recorded_at < ?", tenantID, nozzleID, at)
	// sqlite has no row locks; serialization falls back to its single
	// writer there.
	if lock && db.Dialector.Name() != "sqlite" {
		stmt = stmt.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var reading domain.NozzleReading
	err := stmt.Order("recorded_at DESC").First(&reading).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &reading, nil
}

func (r *repo) FindPrevious(ctx context.Context, db *gorm.DB, tenantID, nozzleID snowflake.ID, at time.Time) (*domain.NozzleReading, error) {
	return r.FindLastBefore(ctx, db, tenantID, nozzleID, at, false)
}

func (r *repo) HasOnOrAfter(ctx context.Context, db *gorm.DB, tenantID, nozzleID snowflake.ID, at time.Time) (bool, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&domain.NozzleReading{}).
		Where("tenant_id = ? AND nozzle_id = ? AND recorded_at >= ?", tenantID, nozzleID, at).
		Count(&count).Error
	return count > 0, err
}
