package request

import "github.com/shopspring/decimal"

// ConfigureCreditRequest sets a customer's credit terms
type ConfigureCreditRequest struct {
	CreditLimit decimal.Decimal `json:"credit_limit"`
	Enabled     bool            `json:"enabled"`
}

// CreditPaymentRequest records money received against a balance
type CreditPaymentRequest struct {
	Amount    decimal.Decimal `json:"amount"`
	Reference string          `json:"reference" binding:"omitempty,max=255"`
}
