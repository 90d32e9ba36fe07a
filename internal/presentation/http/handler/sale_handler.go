package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/checkout-api/internal/application/service"
	"github.com/sangkips/checkout-api/internal/domain/enum"
	"github.com/sangkips/checkout-api/internal/domain/repository"
	"github.com/sangkips/checkout-api/internal/presentation/http/dto/response"
	"github.com/sangkips/checkout-api/pkg/utils"
)

// SaleHandler handles committed sale HTTP requests
type SaleHandler struct {
	saleService *service.SaleService
}

// NewSaleHandler creates a new sale handler
func NewSaleHandler(saleService *service.SaleService) *SaleHandler {
	return &SaleHandler{saleService: saleService}
}

// List handles listing sales, newest first
func (h *SaleHandler) List(c *gin.Context) {
	params := &repository.SaleFilterParams{Pagination: pageParams(c)}

	if kindStr := c.Query("payment_kind"); kindStr != "" {
		if kind, err := enum.ParsePaymentKind(kindStr); err == nil {
			params.PaymentKind = &kind
		}
	}

	if customerID, err := utils.ParseOptionalUUID(c.Query("customer_id")); err == nil {
		params.CustomerID = customerID
	}

	if startDateStr := c.Query("start_date"); startDateStr != "" {
		if startDate, err := time.Parse("2006-01-02", startDateStr); err == nil {
			params.StartDate = &startDate
		}
	}

	if endDateStr := c.Query("end_date"); endDateStr != "" {
		if endDate, err := time.Parse("2006-01-02", endDateStr); err == nil {
			end := endDate.AddDate(0, 0, 1)
			params.EndDate = &end
		}
	}

	result, err := h.saleService.ListSales(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithPagination(c, 200, "Sales retrieved successfully", result)
}

// Get returns a sale by ID or invoice number
func (h *SaleHandler) Get(c *gin.Context) {
	sale, err := h.saleService.GetSale(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Sale retrieved successfully", sale)
}
