package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/checkout-api/internal/domain/enum"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// StockMovement records every change to a batch's quantity-on-hand.
type StockMovement struct {
	ID            uuid.UUID           `gorm:"type:uuid;primary_key" json:"id"`
	BatchID       uuid.UUID           `gorm:"type:uuid;not null;index" json:"batch_id"`
	ProductID     uuid.UUID           `gorm:"type:uuid;not null;index" json:"product_id"`
	Reason        enum.MovementReason `gorm:"not null" json:"reason"`
	Delta         decimal.Decimal     `gorm:"type:decimal(14,3);not null" json:"delta"`
	QuantityAfter decimal.Decimal     `gorm:"type:decimal(14,3);not null" json:"quantity_after"`
	SaleID        *uuid.UUID          `gorm:"type:uuid;index" json:"sale_id,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
}

// BeforeCreate generates a UUID before creating a new movement
func (m *StockMovement) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the StockMovement model
func (StockMovement) TableName() string {
	return "stock_movements"
}
