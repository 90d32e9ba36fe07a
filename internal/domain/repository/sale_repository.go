package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/checkout-api/internal/domain/entity"
	"github.com/sangkips/checkout-api/internal/domain/enum"
	"github.com/sangkips/checkout-api/pkg/pagination"
)

// SaleRepository persists committed sales.
type SaleRepository interface {
	// NextInvoiceNo returns a new, strictly increasing invoice number.
	NextInvoiceNo(ctx context.Context) (string, error)
	// Create stores the sale together with its lines.
	Create(ctx context.Context, sale *entity.Sale) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Sale, error)
	GetByInvoiceNo(ctx context.Context, invoiceNo string) (*entity.Sale, error)
	List(ctx context.Context, params *SaleFilterParams) ([]entity.Sale, int64, error)
}

// SaleFilterParams contains filtering parameters for sale queries
type SaleFilterParams struct {
	Pagination  *pagination.PaginationParams
	CustomerID  *uuid.UUID
	PaymentKind *enum.PaymentKind
	StartDate   *time.Time
	EndDate     *time.Time
}

// ReceiptRepository stores audit copies of rendered receipts.
type ReceiptRepository interface {
	Create(ctx context.Context, receipt *entity.ReceiptCopy) error
	MarkPrinted(ctx context.Context, id uuid.UUID) error
	LatestBySale(ctx context.Context, saleID uuid.UUID) (*entity.ReceiptCopy, error)
}
