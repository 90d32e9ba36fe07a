package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/checkout-api/internal/domain/enum"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CreditAccount holds a customer's outstanding balance and limit.
// A limit of zero means credit is disabled, not unlimited.
type CreditAccount struct {
	CustomerID  uuid.UUID       `gorm:"type:uuid;primary_key" json:"customer_id"`
	Balance     decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0;check:balance >= 0" json:"balance"`
	CreditLimit decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"credit_limit"`
	Enabled     bool            `gorm:"not null;default:false" json:"enabled"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// TableName returns the table name for the CreditAccount model
func (CreditAccount) TableName() string {
	return "credit_accounts"
}

// AllowsCredit reports whether any credit sale can be considered at all.
func (a *CreditAccount) AllowsCredit() bool {
	return a.Enabled && a.CreditLimit.IsPositive()
}

// Headroom is the amount that can still be sold on credit.
func (a *CreditAccount) Headroom() decimal.Decimal {
	h := a.CreditLimit.Sub(a.Balance)
	if h.IsNegative() {
		return decimal.Zero
	}
	return h
}

// CreditEntry is one movement on a credit account.
type CreditEntry struct {
	ID           uuid.UUID            `gorm:"type:uuid;primary_key" json:"id"`
	CustomerID   uuid.UUID            `gorm:"type:uuid;not null;index" json:"customer_id"`
	Kind         enum.CreditEntryKind `gorm:"not null" json:"kind"`
	Amount       decimal.Decimal      `gorm:"type:decimal(14,2);not null" json:"amount"`
	BalanceAfter decimal.Decimal      `gorm:"type:decimal(14,2);not null" json:"balance_after"`
	SaleID       *uuid.UUID           `gorm:"type:uuid;index" json:"sale_id,omitempty"`
	Reference    string               `gorm:"size:100" json:"reference,omitempty"`
	CreatedAt    time.Time            `gorm:"index" json:"created_at"`
}

// BeforeCreate generates a UUID before creating a new credit entry
func (e *CreditEntry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the CreditEntry model
func (CreditEntry) TableName() string {
	return "credit_entries"
}
