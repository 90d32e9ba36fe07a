package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartLine is an ephemeral line of an in-progress checkout. It is never persisted.
type CartLine struct {
	ID                uuid.UUID       `json:"id"`
	ProductID         uuid.UUID       `json:"product_id"`
	ProductName       string          `json:"product_name"`
	BatchID           uuid.UUID       `json:"batch_id"`
	BatchLabel        string          `json:"batch_label"`
	BatchExpiresOn    *time.Time      `json:"batch_expires_on,omitempty"`
	Quantity          decimal.Decimal `json:"quantity"`
	UnitPrice         decimal.Decimal `json:"unit_price"`
	AvailableSnapshot decimal.Decimal `json:"available_snapshot"`
}

// LineTotal is quantity times the snapshotted unit price, rounded to cents.
func (l *CartLine) LineTotal() decimal.Decimal {
	return l.Quantity.Mul(l.UnitPrice).Round(2)
}
