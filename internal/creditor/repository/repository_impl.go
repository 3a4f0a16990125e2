package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	creditordomain "github.com/fuelsync/fuelsync/internal/creditor/domain"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() creditordomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, creditor *creditordomain.Creditor) error {
	return db.WithContext(ctx).Create(creditor).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, creditor *creditordomain.Creditor) error {
	return db.WithContext(ctx).
		Model(&creditordomain.Creditor{}).
		Where("tenant_id = ? AND id = ?", creditor.TenantID, creditor.ID).
		Updates(map[string]any{
			"party_name":     creditor.PartyName,
			"contact_number": creditor.ContactNumber,
			"address":        creditor.Address,
			"credit_limit":   creditor.CreditLimit,
			"status":         creditor.Status,
			"updated_at":     creditor.UpdatedAt,
		}).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID) (*creditordomain.Creditor, error) {
	return r.findByID(ctx, db, tenantID, id, false)
}

func (r *repo) FindByIDForUpdate(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID) (*creditordomain.Creditor, error) {
	return r.findByID(ctx, db, tenantID, id, true)
}

func (r *repo) findByID(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID, lock bool) (*creditordomain.Creditor, error) {
	stmt := db.WithContext(ctx).Where("tenant_id = ? AND id = ?", tenantID, id)
	// sqlite has no row locks; its writes serialize anyway.
	if lock && db.Dialector.Name() != "sqlite" {
		stmt = stmt.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var creditor creditordomain.Creditor
	err := stmt.First(&creditor).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &creditor, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, tenantID snowflake.ID) ([]creditordomain.Creditor, error) {
	var creditors []creditordomain.Creditor
	err := db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("party_name ASC").
		Find(&creditors).Error
	return creditors, err
}

func (r *repo) IncrementBalance(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID, amount decimal.Decimal) error {
	return db.WithContext(ctx).Exec(
		`UPDATE creditors SET balance = balance + ?, updated_at = ? WHERE tenant_id = ? AND id = ?`,
		amount,
		time.Now().UTC(),
		tenantID,
		id,
	).Error
}

func (r *repo) DecrementBalance(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID, amount decimal.Decimal) error {
	return db.WithContext(ctx).Exec(
		`UPDATE creditors SET balance = balance - ?, updated_at = ? WHERE tenant_id = ? AND id = ?`,
		amount,
		time.Now().UTC(),
		tenantID,
		id,
	).Error
}

func (r *repo) InsertPayment(ctx context.Context, db *gorm.DB, payment *creditordomain.CreditPayment) error {
	return db.WithContext(ctx).Create(payment).Error
}

func (r *repo) ListPayments(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, creditorID snowflake.ID) ([]creditordomain.CreditPayment, error) {
	var payments []creditordomain.CreditPayment
	stmt := db.WithContext(ctx).Where("tenant_id = ?", tenantID)
	if creditorID != 0 {
		stmt = stmt.Where("creditor_id = ?", creditorID)
	}
	err := stmt.Order("received_at DESC").Find(&payments).Error
	return payments, err
}
