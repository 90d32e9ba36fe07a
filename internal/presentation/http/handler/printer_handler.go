package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/checkout-api/internal/application/service"
	"github.com/sangkips/checkout-api/internal/presentation/http/dto/response"
)

// PrinterHandler handles printer-related HTTP requests.
type PrinterHandler struct {
	printerService *service.PrinterService
}

// NewPrinterHandler creates a new printer handler.
func NewPrinterHandler(printerService *service.PrinterService) *PrinterHandler {
	return &PrinterHandler{printerService: printerService}
}

// GetStatus returns the current printer connection status.
func (h *PrinterHandler) GetStatus(c *gin.Context) {
	response.OK(c, "Printer status retrieved", h.printerService.GetStatus())
}

// TestPrint sends a test page to the printer.
func (h *PrinterHandler) TestPrint(c *gin.Context) {
	text, err := h.printerService.TestPrint(c.Request.Context())
	if err != nil {
		// Return the receipt anyway (useful when printer type is "none")
		response.OK(c, "Test print completed (printer may be disabled)", gin.H{
			"receipt": text,
			"warning": err.Error(),
		})
		return
	}

	response.OK(c, "Test page sent to printer", gin.H{"receipt": text})
}

// ReceiptText renders the receipt of a sale as plain text.
func (h *PrinterHandler) ReceiptText(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	_, text, err := h.printerService.Render(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.String(http.StatusOK, text)
}

// PrintReceipt reprints the receipt of a sale. A device failure is reported
// as a warning next to the rendered text.
func (h *PrinterHandler) PrintReceipt(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	delivery, err := h.printerService.Print(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	if len(delivery.Warnings) > 0 {
		response.OK(c, "Receipt generated but printing failed", delivery)
		return
	}
	response.OK(c, "Receipt printed successfully", delivery)
}
