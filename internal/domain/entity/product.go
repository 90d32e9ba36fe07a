package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product is a catalog item. The catalog collaborator owns it; this service only reads it.
type Product struct {
	ID               uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	Barcode          string          `gorm:"size:100;uniqueIndex;not null" json:"barcode"`
	Name             string          `gorm:"size:255;not null;index" json:"name"`
	SalePrice        decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"sale_price"`
	CostPrice        decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"cost_price"`
	ReorderThreshold decimal.Decimal `gorm:"type:decimal(14,3);not null;default:0" json:"reorder_threshold"`
	Active           bool            `gorm:"not null;default:true" json:"active"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
	DeletedAt        gorm.DeletedAt  `gorm:"index" json:"-"`

	// Relationships
	Batches []Batch `gorm:"foreignKey:ProductID" json:"batches,omitempty"`
}

// BeforeCreate generates a UUID before creating a new product
func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Product model
func (Product) TableName() string {
	return "products"
}

// Batch is a dated lot of one product. Quantity never drops below zero and
// depleted batches are kept for the decrement trail.
type Batch struct {
	ID        uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null;index" json:"product_id"`
	Label     string          `gorm:"size:100;not null" json:"label"`
	ExpiresOn *time.Time      `gorm:"type:date;index" json:"expires_on,omitempty"`
	Quantity  decimal.Decimal `gorm:"type:decimal(14,3);not null;default:0;check:quantity >= 0" json:"quantity"`
	Sequence  int64           `gorm:"not null;default:nextval('batch_sequence_seq');index" json:"sequence"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// BeforeCreate generates a UUID before creating a new batch
func (b *Batch) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Batch model
func (Batch) TableName() string {
	return "batches"
}

// ExpiredOn reports whether the batch is past its expiry on the given day.
// Comparison is by calendar date in today's location, so a batch expiring
// today is still sellable. Batches without an expiry never expire.
func (b *Batch) ExpiredOn(today time.Time) bool {
	if b.ExpiresOn == nil {
		return false
	}
	y, m, d := b.ExpiresOn.Date()
	expiry := time.Date(y, m, d, 0, 0, 0, 0, today.Location())
	ty, tm, td := today.Date()
	return expiry.Before(time.Date(ty, tm, td, 0, 0, 0, 0, today.Location()))
}

// ExpiryLabel formats the expiry date, or "none".
func (b *Batch) ExpiryLabel() string {
	if b.ExpiresOn == nil {
		return "none"
	}
	return b.ExpiresOn.Format("2006-01-02")
}
