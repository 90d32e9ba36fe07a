package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/sangkips/checkout-api/internal/domain/entity"
	"github.com/sangkips/checkout-api/internal/domain/enum"
	"github.com/sangkips/checkout-api/internal/domain/repository"
	"github.com/sangkips/checkout-api/pkg/apperror"
	"github.com/sangkips/checkout-api/pkg/printer"
	"github.com/sangkips/checkout-api/pkg/receipt"
	"github.com/shopspring/decimal"
)

// PrinterConfig describes the receipt device and layout.
type PrinterConfig struct {
	Type     string
	Codepage string
	Width    int
	Location *time.Location
	Timeout  time.Duration
	// WalkInID is printed as "Walk-in" instead of the customer name.
	WalkInID uuid.UUID
	// FullCut cuts the paper through; the default leaves a hinge.
	FullCut bool
}

// PrinterService renders sale receipts, keeps audit copies and sends them to the printer.
type PrinterService struct {
	printer  printer.Printer
	sales    repository.SaleRepository
	receipts repository.ReceiptRepository
	store    receipt.StoreInfo
	cfg      PrinterConfig
}

// NewPrinterService creates a new printer service.
func NewPrinterService(
	p printer.Printer,
	sales repository.SaleRepository,
	receipts repository.ReceiptRepository,
	store receipt.StoreInfo,
	cfg PrinterConfig,
) *PrinterService {
	if cfg.Width == 0 {
		cfg.Width = receipt.DefaultWidth
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.WalkInID == uuid.Nil {
		cfg.WalkInID = entity.WalkInCustomerID
	}
	return &PrinterService{
		printer:  p,
		sales:    sales,
		receipts: receipts,
		store:    store,
		cfg:      cfg,
	}
}

// ReceiptDelivery reports what happened to a receipt after rendering.
// Warnings carry storage and printer problems; they never undo the sale.
type ReceiptDelivery struct {
	ReceiptID *uuid.UUID `json:"receipt_id,omitempty"`
	SaleID    uuid.UUID  `json:"sale_id"`
	InvoiceNo string     `json:"invoice_no"`
	Text      string     `json:"text"`
	Printed   bool       `json:"printed"`
	Warnings  []string   `json:"warnings,omitempty"`
}

// PrinterStatus returns the current printer status information.
type PrinterStatus struct {
	Configured bool   `json:"configured"`
	Connected  bool   `json:"connected"`
	Type       string `json:"type"`
	Codepage   string `json:"codepage"`
	Width      int    `json:"width"`
}

// GetStatus returns printer connection status.
func (s *PrinterService) GetStatus() *PrinterStatus {
	return &PrinterStatus{
		Configured: s.cfg.Type != "none" && s.cfg.Type != "",
		Connected:  s.printer.IsConnected(),
		Type:       s.cfg.Type,
		Codepage:   s.cfg.Codepage,
		Width:      s.cfg.Width,
	}
}

// ToReceipt maps a committed sale onto the printable receipt.
func ToReceipt(sale *entity.Sale, walkInID uuid.UUID) *receipt.Receipt {
	r := &receipt.Receipt{
		InvoiceNo: sale.InvoiceNo,
		Date:      sale.CreatedAt,
		Customer:  "Walk-in",
		Operator:  sale.OperatorName,
		Payment:   sale.PaymentKind.String(),
		Credit:    sale.PaymentKind == enum.PaymentKindCredit,
		Gross:     sale.GrossAmount,
		Discount:  sale.DiscountAmount,
		Net:       sale.NetAmount,
	}
	if sale.Customer != nil && sale.CustomerID != walkInID {
		r.Customer = sale.Customer.Name
	}
	for _, l := range sale.Lines {
		name := l.ProductName
		if l.BatchLabel != "" {
			name = fmt.Sprintf("%s [%s]", name, l.BatchLabel)
		}
		r.Lines = append(r.Lines, receipt.Line{
			Name:      name,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			Total:     l.LineTotal,
		})
	}
	return r
}

func (s *PrinterService) render(r *receipt.Receipt) (string, error) {
	text, err := receipt.Render(r, s.store, receipt.Options{Width: s.cfg.Width, Location: s.cfg.Location})
	if err != nil {
		return "", apperror.NewRenderError(err)
	}
	return text, nil
}

// Render returns the receipt text of a sale without storing or printing it.
func (s *PrinterService) Render(ctx context.Context, saleID uuid.UUID) (*entity.Sale, string, error) {
	sale, err := s.sales.GetByID(ctx, saleID)
	if err != nil {
		return nil, "", err
	}
	if sale == nil {
		return nil, "", apperror.NewNotFoundError("Sale")
	}
	text, err := s.render(ToReceipt(sale, s.cfg.WalkInID))
	if err != nil {
		return nil, "", err
	}
	return sale, text, nil
}

// Deliver renders the receipt, stores an audit copy and, when asked, prints it.
// Only a missing sale or a render failure is returned as an error.
func (s *PrinterService) Deliver(ctx context.Context, saleID uuid.UUID, print bool) (*ReceiptDelivery, error) {
	sale, text, err := s.Render(ctx, saleID)
	if err != nil {
		return nil, err
	}

	d := &ReceiptDelivery{SaleID: sale.ID, InvoiceNo: sale.InvoiceNo, Text: text}

	cp := &entity.ReceiptCopy{SaleID: sale.ID, Width: s.cfg.Width, Body: text}
	if err := s.receipts.Create(ctx, cp); err != nil {
		log.Warn().Err(err).Str("invoice_no", sale.InvoiceNo).Msg("receipt copy not stored")
		d.Warnings = append(d.Warnings, "receipt copy not stored: "+err.Error())
	} else {
		id := cp.ID
		d.ReceiptID = &id
	}

	if !print {
		return d, nil
	}
	if err := s.send(ctx, text); err != nil {
		log.Warn().Err(err).Str("invoice_no", sale.InvoiceNo).Msg("receipt not printed")
		d.Warnings = append(d.Warnings, "receipt not printed: "+err.Error())
		return d, nil
	}
	d.Printed = true

	if d.ReceiptID != nil {
		if err := s.receipts.MarkPrinted(ctx, *d.ReceiptID); err != nil {
			log.Warn().Err(err).Str("invoice_no", sale.InvoiceNo).Msg("receipt print flag not stored")
		}
	}
	return d, nil
}

// Print reprints the receipt of an existing sale.
func (s *PrinterService) Print(ctx context.Context, saleID uuid.UUID) (*ReceiptDelivery, error) {
	return s.Deliver(ctx, saleID, true)
}

// send frames the text as ESC/POS and writes it to the device.
func (s *PrinterService) send(ctx context.Context, text string) error {
	doc, err := printer.NewDocument(s.cfg.Codepage)
	if err != nil {
		return err
	}
	header, body := splitHeader(text, receipt.Rule('=', s.cfg.Width))
	if header != "" {
		doc.SetBold(true).Block(header).SetBold(false)
	}
	doc.Block(body).FeedLines(3)
	if s.cfg.FullCut {
		doc.Cut()
	} else {
		doc.PartialCut()
	}
	data, err := doc.Bytes()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()
	return s.printer.Print(ctx, data)
}

// splitHeader cuts the receipt before its first rule line. Text without
// the rule comes back whole as body.
func splitHeader(text, rule string) (header, body string) {
	i := strings.Index(text, rule+"\n")
	if i <= 0 {
		return "", text
	}
	return text[:i], text[i:]
}

// TestPrint sends a sample receipt to the printer.
// Returns the rendered text so the handler can show it when the printer is disabled.
func (s *PrinterService) TestPrint(ctx context.Context) (string, error) {
	r := &receipt.Receipt{
		InvoiceNo: "TEST-001",
		Date:      time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC),
		Operator:  "System",
		Customer:  "Walk-in",
		Payment:   enum.PaymentKindCash.String(),
		Lines: []receipt.Line{
			{Name: "Test Item 1", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(10), Total: decimal.NewFromInt(10)},
			{Name: "Test Item 2", Quantity: decimal.NewFromInt(2), UnitPrice: decimal.NewFromInt(5), Total: decimal.NewFromInt(10)},
		},
		Gross: decimal.NewFromInt(20),
		Net:   decimal.NewFromInt(20),
	}

	text, err := s.render(r)
	if err != nil {
		return "", err
	}
	if err := s.send(ctx, text); err != nil {
		return text, fmt.Errorf("test print failed: %w", err)
	}
	return text, nil
}
