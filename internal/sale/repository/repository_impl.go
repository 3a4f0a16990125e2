package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	saledomain "github.com/fuelsync/fuelsync/internal/sale/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() saledomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, sale *saledomain.Sale) error {
	return db.WithContext(ctx).Create(sale).Error
}

func (r *repo) List(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, filter saledomain.ListFilter) ([]saledomain.Sale, error) {
	stmt := db.WithContext(ctx).Where("tenant_id = ?", tenantID)
	if filter.StationID != 0 {
		stmt = stmt.Where("station_id = ?", filter.StationID)
	}
	if filter.NozzleID != 0 {
		stmt = stmt.Where("nozzle_id = ?", filter.NozzleID)
	}
	if filter.CreditorID != 0 {
		stmt = stmt.Where("creditor_id = ?", filter.CreditorID)
	}
	if filter.PaymentMethod != "" {
		stmt = stmt.Where("payment_method = ?", filter.PaymentMethod)
	}
	if !filter.From.IsZero() {
		stmt = stmt.Where("recorded_at >= ?", filter.From)
	}
	if !filter.To.IsZero() {
		stmt = stmt.Where("recorded_at <= ?", filter.To)
	}
	if filter.Limit > 0 {
		stmt = stmt.Limit(filter.Limit)
	}

	var sales []saledomain.Sale
	err := stmt.Order("recorded_at DESC").Find(&sales).Error
	return sales, err
}

func (r *repo) CountByReading(ctx context.Context, db *gorm.DB, tenantID, readingID snowflake.ID) (int64, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&saledomain.Sale{}).
		Where("tenant_id = ? AND reading_id = ?", tenantID, readingID).
		Count(&count).Error
	return count, err
}

func (r *repo) TotalsForStationDate(ctx context.Context, db *gorm.DB, tenantID, stationID snowflake.ID, date time.Time) (saledomain.DayTotals, error) {
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.Add(24 * time.Hour)

	var totals saledomain.DayTotals
	err := db.WithContext(ctx).Raw(
		`SELECT
			COALESCE(SUM(s.amount), 0) AS total_sales,
			COALESCE(SUM(CASE WHEN s.payment_method = 'cash' THEN s.amount ELSE 0 END), 0) AS cash_total,
			COALESCE(SUM(CASE WHEN s.payment_method = 'card' THEN s.amount ELSE 0 END), 0) AS card_total,
			COALESCE(SUM(CASE WHEN s.payment_method = 'upi' THEN s.amount ELSE 0 END), 0) AS upi_total,
			COALESCE(SUM(CASE WHEN s.payment_method = 'credit' THEN s.amount ELSE 0 END), 0) AS credit_total
		 FROM sales s
		 WHERE s.tenant_id = ? AND s.station_id = ?
		   AND s.recorded_at >= ? AND s.recorded_at < ?`,
		tenantID,
		stationID,
		dayStart,
		dayEnd,
	).Scan(&totals).Error
	return totals, err
}
