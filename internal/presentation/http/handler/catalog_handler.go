package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/checkout-api/internal/application/service"
	"github.com/sangkips/checkout-api/internal/presentation/http/dto/request"
	"github.com/sangkips/checkout-api/internal/presentation/http/dto/response"
)

// CatalogHandler handles product lookup HTTP requests
type CatalogHandler struct {
	catalogService *service.CatalogService
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(catalogService *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

// Lookup resolves ?q= as a barcode, then as a name fragment
func (h *CatalogHandler) Lookup(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	items, err := h.catalogService.Lookup(c.Request.Context(), c.Query("q"), limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Products retrieved", items)
}

// Get returns a product with its batches
func (h *CatalogHandler) Get(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	item, err := h.catalogService.GetProduct(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Product retrieved", item)
}

// Create registers a product
func (h *CatalogHandler) Create(c *gin.Context) {
	var req request.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	product, err := h.catalogService.CreateProduct(c.Request.Context(), &service.CreateProductInput{
		Barcode:          req.Barcode,
		Name:             req.Name,
		SalePrice:        req.SalePrice,
		CostPrice:        req.CostPrice,
		ReorderThreshold: req.ReorderThreshold,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Product created", product)
}
