package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/checkout-api/internal/application/service"
	"github.com/sangkips/checkout-api/internal/presentation/http/dto/request"
	"github.com/sangkips/checkout-api/internal/presentation/http/dto/response"
	"github.com/shopspring/decimal"
)

// InventoryHandler handles stock intake and stock reports
type InventoryHandler struct {
	inventory *service.InventoryLedger
}

// NewInventoryHandler creates a new inventory handler
func NewInventoryHandler(inventory *service.InventoryLedger) *InventoryHandler {
	return &InventoryHandler{inventory: inventory}
}

// ReceiveBatch records a delivered lot
func (h *InventoryHandler) ReceiveBatch(c *gin.Context) {
	var req request.ReceiveBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	input := &service.ReceiveBatchInput{
		ProductID: uuid.MustParse(req.ProductID),
		Label:     req.Label,
		Quantity:  req.Quantity,
	}
	if req.ExpiresOn != "" {
		expires, err := time.Parse("2006-01-02", req.ExpiresOn)
		if err != nil {
			response.BadRequest(c, "expires_on must be YYYY-MM-DD")
			return
		}
		input.ExpiresOn = &expires
	}

	batch, err := h.inventory.ReceiveBatch(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Batch received", batch)
}

// SelectBatch returns the FEFO pick for a product
func (h *InventoryHandler) SelectBatch(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	sel, err := h.inventory.SelectBatch(c.Request.Context(), id, decimalOne)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Batch selected", sel)
}

// LowStock lists products at or below their reorder threshold
func (h *InventoryHandler) LowStock(c *gin.Context) {
	items, err := h.inventory.LowStock(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Low stock products retrieved", items)
}

// Movements lists the stock trail of a batch
func (h *InventoryHandler) Movements(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	movements, err := h.inventory.Movements(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Stock movements retrieved", movements)
}

var decimalOne = decimal.NewFromInt(1)
