package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, creditor *Creditor) error
	Update(ctx context.Context, db *gorm.DB, creditor *Creditor) error
	FindByID(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID) (*Creditor, error)
	List(ctx context.Context, db *gorm.DB, tenantID snowflake.ID) ([]Creditor, error)

	// FindByIDForUpdate locks the creditor row for the duration of the
	// surrounding transaction so concurrent limit checks serialize.
	FindByIDForUpdate(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID) (*Creditor, error)

	// IncrementBalance and DecrementBalance are single-statement atomic
	// arithmetic updates; they must run inside the transaction of the
	// sale or payment they support.
	IncrementBalance(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID, amount decimal.Decimal) error
	DecrementBalance(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID, amount decimal.Decimal) error

	InsertPayment(ctx context.Context, db *gorm.DB, payment *CreditPayment) error
	ListPayments(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, creditorID snowflake.ID) ([]CreditPayment, error)
}
