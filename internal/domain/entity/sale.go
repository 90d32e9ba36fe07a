package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/checkout-api/internal/domain/enum"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Sale is the durable result of a committed checkout. It is never mutated after creation.
type Sale struct {
	ID             uuid.UUID        `gorm:"type:uuid;primary_key" json:"id"`
	InvoiceNo      string           `gorm:"size:50;uniqueIndex;not null" json:"invoice_no"`
	CustomerID     uuid.UUID        `gorm:"type:uuid;not null;index" json:"customer_id"`
	PaymentKind    enum.PaymentKind `gorm:"not null;default:0;index" json:"payment_kind"`
	GrossAmount    decimal.Decimal  `gorm:"type:decimal(14,2);not null" json:"gross_amount"`
	DiscountAmount decimal.Decimal  `gorm:"type:decimal(14,2);not null;default:0" json:"discount_amount"`
	NetAmount      decimal.Decimal  `gorm:"type:decimal(14,2);not null" json:"net_amount"`
	OperatorID     *uuid.UUID       `gorm:"type:uuid;index" json:"operator_id,omitempty"`
	OperatorName   string           `gorm:"size:100" json:"operator_name,omitempty"`
	CreatedAt      time.Time        `gorm:"index" json:"created_at"`

	// Relationships
	Lines    []SaleLine `gorm:"foreignKey:SaleID" json:"lines"`
	Customer *Customer  `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
}

// BeforeCreate generates a UUID before creating a new sale
func (s *Sale) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Sale model
func (Sale) TableName() string {
	return "sales"
}

// SaleLine is one product/batch pair sold in a Sale.
type SaleLine struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	SaleID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"sale_id"`
	Sequence    int             `gorm:"not null" json:"sequence"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"product_id"`
	ProductName string          `gorm:"size:255;not null" json:"product_name"`
	BatchID     uuid.UUID       `gorm:"type:uuid;not null;index" json:"batch_id"`
	BatchLabel  string          `gorm:"size:100" json:"batch_label"`
	Quantity    decimal.Decimal `gorm:"type:decimal(14,3);not null" json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"unit_price"`
	LineTotal   decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"line_total"`
}

// BeforeCreate generates a UUID before creating a new sale line
func (l *SaleLine) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the SaleLine model
func (SaleLine) TableName() string {
	return "sale_lines"
}
