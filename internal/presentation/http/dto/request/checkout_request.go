package request

import "github.com/shopspring/decimal"

// AddLineRequest adds a product to an open checkout
type AddLineRequest struct {
	ProductID string           `json:"product_id" binding:"omitempty,uuid"`
	Barcode   string           `json:"barcode" binding:"omitempty,max=100"`
	Quantity  *decimal.Decimal `json:"quantity"` // one unit when omitted
}

// SetLineQuantityRequest changes the quantity of a cart line
type SetLineQuantityRequest struct {
	Quantity decimal.Decimal `json:"quantity"`
}

// CommitRequest finalizes a checkout
type CommitRequest struct {
	PaymentKind string          `json:"payment_kind" binding:"required,oneof=cash credit CASH CREDIT"`
	CustomerID  string          `json:"customer_id" binding:"omitempty,uuid"`
	Discount    decimal.Decimal `json:"discount"`
	Print       *bool           `json:"print"`
}
