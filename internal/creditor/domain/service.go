package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Creditor, error)
	List(ctx context.Context) ([]Creditor, error)
	GetByID(ctx context.Context, id string) (*Creditor, error)
	Update(ctx context.Context, req UpdateRequest) (*Creditor, error)
	Deactivate(ctx context.Context, id string) error

	// ApplyCreditSale runs inside the caller's transaction: it locks the
	// creditor, enforces the credit limit and increments the balance.
	// Returns the limit-check outcome so the caller can raise a
	// near-limit alert in the same transaction.
	ApplyCreditSale(ctx context.Context, tx *gorm.DB, tenantID, creditorID snowflake.ID, amount decimal.Decimal) (LimitCheck, error)

	// RecordPayment decrements the balance and stores the payment row in
	// one transaction. Rejected when the payment's own date is already
	// finalized.
	RecordPayment(ctx context.Context, req RecordPaymentRequest) (*CreditPayment, error)
	ListPayments(ctx context.Context, creditorID string) ([]CreditPayment, error)
}

// DayLockChecker is the reconciliation-side dependency: is a date locked
// for the tenant.
type DayLockChecker interface {
	IsDateFinalized(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, date time.Time) (bool, error)
}

type CreateRequest struct {
	PartyName     string          `json:"party_name"`
	ContactNumber string          `json:"contact_number"`
	Address       string          `json:"address"`
	CreditLimit   decimal.Decimal `json:"credit_limit"`
}

type UpdateRequest struct {
	ID            string           `json:"id"`
	PartyName     *string          `json:"party_name,omitempty"`
	ContactNumber *string          `json:"contact_number,omitempty"`
	Address       *string          `json:"address,omitempty"`
	CreditLimit   *decimal.Decimal `json:"credit_limit,omitempty"`
}

type RecordPaymentRequest struct {
	CreditorID      string          `json:"creditor_id"`
	Amount          decimal.Decimal `json:"amount"`
	PaymentMethod   string          `json:"payment_method"`
	ReferenceNumber string          `json:"reference_number"`
	ReceivedBy      string          `json:"received_by"`
	ReceivedAt      *time.Time      `json:"received_at,omitempty"`
}

var (
	ErrInvalidTenant       = errors.New("invalid_tenant")
	ErrInvalidPartyName    = errors.New("invalid_party_name")
	ErrInvalidCreditLimit  = errors.New("invalid_credit_limit")
	ErrInvalidAmount       = errors.New("invalid_amount")
	ErrInvalidPayment      = errors.New("invalid_payment_method")
	ErrInvalidCreditor     = errors.New("invalid_creditor")
	ErrInvalidID           = errors.New("invalid_id")
	ErrNotFound            = errors.New("not_found")
	ErrCreditLimitExceeded = errors.New("credit_limit_exceeded")
	ErrDayFinalized        = errors.New("day_finalized")
)
