package request

import "github.com/shopspring/decimal"

// CreateProductRequest registers a product
type CreateProductRequest struct {
	Barcode          string          `json:"barcode" binding:"omitempty,max=100"`
	Name             string          `json:"name" binding:"required,min=2,max=255"`
	SalePrice        decimal.Decimal `json:"sale_price"`
	CostPrice        decimal.Decimal `json:"cost_price"`
	ReorderThreshold decimal.Decimal `json:"reorder_threshold"`
}

// ReceiveBatchRequest records a new lot
type ReceiveBatchRequest struct {
	ProductID string          `json:"product_id" binding:"required,uuid"`
	Label     string          `json:"label" binding:"required,max=100"`
	ExpiresOn string          `json:"expires_on" binding:"omitempty,datetime=2006-01-02"`
	Quantity  decimal.Decimal `json:"quantity"`
}
