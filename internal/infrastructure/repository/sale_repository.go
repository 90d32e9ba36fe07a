package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sangkips/checkout-api/internal/domain/entity"
	domainRepo "github.com/sangkips/checkout-api/internal/domain/repository"
	"github.com/sangkips/checkout-api/pkg/pagination"
	"gorm.io/gorm"
)

// InvoiceSequence is the postgres sequence backing invoice numbers
const InvoiceSequence = "sales_invoice_seq"

type saleRepository struct {
	db *gorm.DB
}

// NewSaleRepository creates a new sale repository
func NewSaleRepository(db *gorm.DB) domainRepo.SaleRepository {
	return &saleRepository{db: db}
}

func (r *saleRepository) NextInvoiceNo(ctx context.Context) (string, error) {
	var n int64
	if err := conn(ctx, r.db).Raw("SELECT nextval('" + InvoiceSequence + "')").Scan(&n).Error; err != nil {
		return "", err
	}
	return fmt.Sprintf("INV-%08d", n), nil
}

// Create inserts the sale; gorm inserts its Lines in the same statement batch.
func (r *saleRepository) Create(ctx context.Context, sale *entity.Sale) error {
	return conn(ctx, r.db).Omit("Customer").Create(sale).Error
}

func (r *saleRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Sale, error) {
	var sale entity.Sale
	err := r.withDetails(ctx).First(&sale, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &sale, err
}

func (r *saleRepository) GetByInvoiceNo(ctx context.Context, invoiceNo string) (*entity.Sale, error) {
	var sale entity.Sale
	err := r.withDetails(ctx).First(&sale, "invoice_no = ?", invoiceNo).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &sale, err
}

func (r *saleRepository) List(ctx context.Context, params *domainRepo.SaleFilterParams) ([]entity.Sale, int64, error) {
	var sales []entity.Sale
	var total int64

	if params.Pagination == nil {
		params.Pagination = pagination.DefaultPagination()
	}

	query := conn(ctx, r.db).Model(&entity.Sale{}).
		Scopes(CreatedBetween(params.StartDate, params.EndDate))
	if params.CustomerID != nil {
		query = query.Where("customer_id = ?", *params.CustomerID)
	}
	if params.PaymentKind != nil {
		query = query.Where("payment_kind = ?", *params.PaymentKind)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("sequence ASC") }).
		Preload("Customer").
		Order("created_at DESC, invoice_no DESC").
		Scopes(Paginate(params.Pagination)).
		Find(&sales).Error

	return sales, total, err
}

func (r *saleRepository) withDetails(ctx context.Context) *gorm.DB {
	return conn(ctx, r.db).
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("sequence ASC") }).
		Preload("Customer")
}

type receiptRepository struct {
	db *gorm.DB
}

// NewReceiptRepository creates a new receipt copy repository
func NewReceiptRepository(db *gorm.DB) domainRepo.ReceiptRepository {
	return &receiptRepository{db: db}
}

func (r *receiptRepository) Create(ctx context.Context, receipt *entity.ReceiptCopy) error {
	return conn(ctx, r.db).Create(receipt).Error
}

func (r *receiptRepository) MarkPrinted(ctx context.Context, id uuid.UUID) error {
	return conn(ctx, r.db).Model(&entity.ReceiptCopy{}).
		Where("id = ?", id).
		Update("printed", true).Error
}

func (r *receiptRepository) LatestBySale(ctx context.Context, saleID uuid.UUID) (*entity.ReceiptCopy, error) {
	var receipt entity.ReceiptCopy
	err := conn(ctx, r.db).
		Where("sale_id = ?", saleID).
		Order("created_at DESC").
		First(&receipt).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &receipt, err
}
