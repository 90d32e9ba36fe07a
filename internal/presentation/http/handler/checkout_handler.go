package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/checkout-api/internal/application/service"
	"github.com/sangkips/checkout-api/internal/domain/enum"
	"github.com/sangkips/checkout-api/internal/presentation/http/dto/request"
	"github.com/sangkips/checkout-api/internal/presentation/http/dto/response"
	"github.com/sangkips/checkout-api/pkg/utils"
)

// CheckoutHandler handles checkout session HTTP requests
type CheckoutHandler struct {
	checkoutService *service.CheckoutService
	catalogService  *service.CatalogService
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(checkoutService *service.CheckoutService, catalogService *service.CatalogService) *CheckoutHandler {
	return &CheckoutHandler{
		checkoutService: checkoutService,
		catalogService:  catalogService,
	}
}

// Open starts a new checkout for the authenticated operator
func (h *CheckoutHandler) Open(c *gin.Context) {
	view := h.checkoutService.Open(GetOperatorID(c), GetOperatorName(c))
	response.Created(c, "Checkout opened", view)
}

// Get returns the current state of a checkout
func (h *CheckoutHandler) Get(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	view, err := h.checkoutService.Get(id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Checkout retrieved", view)
}

// AddLine adds a product by ID or scanned barcode
func (h *CheckoutHandler) AddLine(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req request.AddLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	var productID uuid.UUID
	switch {
	case req.ProductID != "":
		productID = uuid.MustParse(req.ProductID)
	case req.Barcode != "":
		product, err := h.catalogService.ResolveBarcode(c.Request.Context(), req.Barcode)
		if err != nil {
			response.Error(c, err)
			return
		}
		productID = product.ID
	default:
		response.BadRequest(c, "product_id or barcode is required")
		return
	}

	qty := decimalOne
	if req.Quantity != nil {
		qty = *req.Quantity
	}

	view, err := h.checkoutService.AddLine(c.Request.Context(), id, productID, qty)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Line added", view)
}

// SetLineQuantity changes the quantity of a line
func (h *CheckoutHandler) SetLineQuantity(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	lineID, ok := pathUUID(c, "lineId")
	if !ok {
		return
	}

	var req request.SetLineQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	view, err := h.checkoutService.SetLineQuantity(c.Request.Context(), id, lineID, req.Quantity)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Line updated", view)
}

// RemoveLine drops a line from the cart
func (h *CheckoutHandler) RemoveLine(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	lineID, ok := pathUUID(c, "lineId")
	if !ok {
		return
	}

	view, err := h.checkoutService.RemoveLine(id, lineID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Line removed", view)
}

// Abort cancels an open checkout
func (h *CheckoutHandler) Abort(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	view, err := h.checkoutService.Abort(id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Checkout aborted", view)
}

// Commit validates and persists the sale, then delivers the receipt
func (h *CheckoutHandler) Commit(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req request.CommitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	kind, err := enum.ParsePaymentKind(req.PaymentKind)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	customerID, err := utils.ParseOptionalUUID(req.CustomerID)
	if err != nil {
		response.BadRequest(c, "Invalid customer_id")
		return
	}

	input := &service.CommitInput{
		PaymentKind: kind,
		Discount:    req.Discount,
		Print:       req.Print == nil || *req.Print,
	}
	if customerID != nil {
		input.CustomerID = *customerID
	}

	result, err := h.checkoutService.Commit(c.Request.Context(), id, input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Sale committed", result)
}
