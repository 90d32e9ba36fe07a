package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/checkout-api/internal/application/service"
	"github.com/sangkips/checkout-api/internal/presentation/http/dto/request"
	"github.com/sangkips/checkout-api/internal/presentation/http/dto/response"
)

// CreditHandler handles customer credit HTTP requests
type CreditHandler struct {
	credit *service.CreditLedger
}

// NewCreditHandler creates a new credit handler
func NewCreditHandler(credit *service.CreditLedger) *CreditHandler {
	return &CreditHandler{credit: credit}
}

// GetAccount returns a customer's credit account
func (h *CreditHandler) GetAccount(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	account, err := h.credit.GetAccount(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Credit account retrieved", account)
}

// Configure sets the credit limit and enabled flag
func (h *CreditHandler) Configure(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req request.ConfigureCreditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	account, err := h.credit.ConfigureAccount(c.Request.Context(), &service.ConfigureAccountInput{
		CustomerID:  id,
		CreditLimit: req.CreditLimit,
		Enabled:     req.Enabled,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Credit account updated", account)
}

// RecordPayment applies a payment against the outstanding balance
func (h *CreditHandler) RecordPayment(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req request.CreditPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	result, err := h.credit.ApplyPayment(c.Request.Context(), id, req.Amount, req.Reference)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Payment recorded", result)
}

// ListEntries returns the credit history of a customer, newest first
func (h *CreditHandler) ListEntries(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	result, err := h.credit.ListEntries(c.Request.Context(), id, pageParams(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithPagination(c, 200, "Credit entries retrieved", result)
}
