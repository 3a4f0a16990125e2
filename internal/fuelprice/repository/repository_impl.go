package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	fuelpricedomain "github.com/fuelsync/fuelsync/internal/fuelprice/domain"
	stationdomain "github.com/fuelsync/fuelsync/internal/station/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() fuelpricedomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, price *fuelpricedomain.FuelPrice) error {
	return db.WithContext(ctx).Create(price).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID) error {
	return db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Delete(&fuelpricedomain.FuelPrice{}).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID) (*fuelpricedomain.FuelPrice, error) {
	var price fuelpricedomain.FuelPrice
	err := db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&price).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &price, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, filter fuelpricedomain.ListFilter) ([]fuelpricedomain.FuelPrice, error) {
	var prices []fuelpricedomain.FuelPrice
	stmt := db.WithContext(ctx).Where("tenant_id = ?", tenantID)
	if filter.StationID != 0 {
		stmt = stmt.Where("station_id = ?", filter.StationID)
	}
	if filter.FuelType != "" {
		stmt = stmt.Where("fuel_type = ?", filter.FuelType)
	}
	err := stmt.Order("valid_from DESC").Find(&prices).Error
	return prices, err
}

func (r *repo) FindAt(ctx context.Context, db *gorm.DB, tenantID, stationID snowflake.ID, fuelType stationdomain.FuelType, at time.Time) (*fuelpricedomain.FuelPrice, error) {
	var price fuelpricedomain.FuelPrice
	err := db.WithContext(ctx).
		Where("tenant_id = ? AND station_id = ? AND fuel_type = ?", tenantID, stationID, fuelType).
		Where("valid_from <= ?", at).
		Where("valid_to IS NULL OR valid_to > ?", at).
		Order("valid_from DESC").
		First(&price).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &price, nil
}

func (r *repo) FindLatest(ctx context.Context, db *gorm.DB, tenantID, stationID snowflake.ID, fuelType stationdomain.FuelType) (*fuelpricedomain.FuelPrice, error) {
	var price fuelpricedomain.FuelPrice
	err := db.WithContext(ctx).
		Where("tenant_id = ? AND station_id = ? AND fuel_type = ?", tenantID, stationID, fuelType).
		Order("valid_from DESC").
		First(&price).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &price, nil
}

func (r *repo) CloseOpenInterval(ctx context.Context, db *gorm.DB, tenantID, stationID snowflake.ID, fuelType stationdomain.FuelType, at time.Time) error {
	return db.WithContext(ctx).
		Model(&fuelpricedomain.FuelPrice{}).
		Where("tenant_id = ? AND station_id = ? AND fuel_type = ?", tenantID, stationID, fuelType).
		Where("valid_to IS NULL AND valid_from < ?", at).
		Updates(map[string]any{
			"valid_to":   at,
			"updated_at": time.Now().UTC(),
		}).Error
}
