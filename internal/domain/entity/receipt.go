package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReceiptCopy is the audit copy of a rendered receipt. Only the text and the
// source sale id are kept; the structured receipt is always re-derived from the Sale.
type ReceiptCopy struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	SaleID    uuid.UUID `gorm:"type:uuid;not null;index" json:"sale_id"`
	Width     int       `gorm:"not null" json:"width"`
	Body      string    `gorm:"type:text;not null" json:"body"`
	Printed   bool      `gorm:"not null;default:false" json:"printed"`
	CreatedAt time.Time `json:"created_at"`
}

// BeforeCreate generates a UUID before creating a new receipt copy
func (r *ReceiptCopy) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the ReceiptCopy model
func (ReceiptCopy) TableName() string {
	return "receipt_copies"
}
