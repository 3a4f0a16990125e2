package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type CreditorStatus string

const (
	CreditorActive   CreditorStatus = "active"
	CreditorInactive CreditorStatus = "inactive"
)

// NearLimitRatio is the fraction of the credit limit at which a warning
// alert is raised while the sale is still allowed.
var NearLimitRatio = decimal.NewFromFloat(0.9)

// Creditor is a customer buying fuel on credit against a tracked balance.
// Invariant: balance never exceeds credit_limit after a successful write.
type Creditor struct {
	ID            snowflake.ID    `json:"id" gorm:"primaryKey"`
	TenantID      snowflake.ID    `json:"tenant_id" gorm:"column:tenant_id;not null;index"`
	PartyName     string          `json:"party_name" gorm:"type:text;not null"`
	ContactNumber string          `json:"contact_number,omitempty" gorm:"type:text"`
	Address       string          `json:"address,omitempty" gorm:"type:text"`
	CreditLimit   decimal.Decimal `json:"credit_limit" gorm:"type:numeric(14,2);not null;default:0"`
	Balance       decimal.Decimal `json:"balance" gorm:"type:numeric(14,2);not null;default:0"`
	Status        CreditorStatus  `json:"status" gorm:"type:text;not null;default:active"`
	CreatedAt     time.Time       `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt     time.Time       `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Creditor) TableName() string { return "creditors" }

type CreditPayment struct {
	ID              snowflake.ID    `json:"id" gorm:"primaryKey"`
	TenantID        snowflake.ID    `json:"tenant_id" gorm:"column:tenant_id;not null;index"`
	CreditorID      snowflake.ID    `json:"creditor_id" gorm:"not null;index"`
	Amount          decimal.Decimal `json:"amount" gorm:"type:numeric(14,2);not null"`
	PaymentMethod   string          `json:"payment_method" gorm:"type:text;not null"`
	ReferenceNumber string          `json:"reference_number,omitempty" gorm:"type:text"`
	ReceivedBy      snowflake.ID    `json:"received_by" gorm:"not null"`
	ReceivedAt      time.Time       `json:"received_at" gorm:"not null"`
	CreatedAt       time.Time       `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (CreditPayment) TableName() string { return "credit_payments" }

// LimitCheck is the outcome of proposing an additional credit amount.
type LimitCheck struct {
	Exceeded  bool
	NearLimit bool
}

// CheckLimit evaluates balance + proposed against the creditor's limit.
func (c Creditor) CheckLimit(proposed decimal.Decimal) LimitCheck {
	next := c.Balance.Add(proposed)
	if next.GreaterThan(c.CreditLimit) {
		return LimitCheck{Exceeded: true}
	}
	if c.CreditLimit.IsPositive() && next.GreaterThanOrEqual(c.CreditLimit.Mul(NearLimitRatio)) {
		return LimitCheck{NearLimit: true}
	}
	return LimitCheck{}
}
