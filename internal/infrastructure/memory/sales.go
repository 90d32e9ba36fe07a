package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/sangkips/checkout-api/internal/domain/entity"
	"github.com/sangkips/checkout-api/internal/domain/repository"
	"github.com/sangkips/checkout-api/pkg/pagination"
)

type saleRepository struct{ s *Store }

// Sales returns the sale repository backed by this store.
func (s *Store) Sales() repository.SaleRepository { return &saleRepository{s: s} }

func (r *saleRepository) NextInvoiceNo(ctx context.Context) (string, error) {
	var n int64
	err := r.s.write(ctx, "Sales.NextInvoiceNo", func() error {
		r.s.invoiceSeq++
		n = r.s.invoiceSeq
		return nil
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("INV-%08d", n), nil
}

func (r *saleRepository) Create(ctx context.Context, sale *entity.Sale) error {
	return r.s.write(ctx, "Sales.Create", func() error {
		for _, existing := range r.s.sales {
			if existing.InvoiceNo == sale.InvoiceNo {
				return fmt.Errorf("duplicate invoice number %s", sale.InvoiceNo)
			}
		}
		if sale.ID == uuid.Nil {
			sale.ID = uuid.New()
		}
		if sale.CreatedAt.IsZero() {
			sale.CreatedAt = r.s.now()
		}
		for i := range sale.Lines {
			if sale.Lines[i].ID == uuid.Nil {
				sale.Lines[i].ID = uuid.New()
			}
			sale.Lines[i].SaleID = sale.ID
		}
		stored := *sale
		stored.Lines = append([]entity.SaleLine(nil), sale.Lines...)
		stored.Customer = nil
		r.s.sales[sale.ID] = stored
		r.s.saleOrder = append(r.s.saleOrder, sale.ID)
		return nil
	})
}

func (r *saleRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Sale, error) {
	var out *entity.Sale
	r.s.read(func() {
		if sale, ok := r.s.sales[id]; ok {
			out = r.hydrate(sale)
		}
	})
	return out, nil
}

func (r *saleRepository) GetByInvoiceNo(ctx context.Context, invoiceNo string) (*entity.Sale, error) {
	var out *entity.Sale
	r.s.read(func() {
		for _, sale := range r.s.sales {
			if sale.InvoiceNo == invoiceNo {
				out = r.hydrate(sale)
				return
			}
		}
	})
	return out, nil
}

func (r *saleRepository) List(ctx context.Context, params *repository.SaleFilterParams) ([]entity.Sale, int64, error) {
	if params.Pagination == nil {
		params.Pagination = pagination.DefaultPagination()
	}
	params.Pagination.Validate()
	var matched []entity.Sale
	r.s.read(func() {
		for i := len(r.s.saleOrder) - 1; i >= 0; i-- {
			sale := r.s.sales[r.s.saleOrder[i]]
			if params.CustomerID != nil && sale.CustomerID != *params.CustomerID {
				continue
			}
			if params.PaymentKind != nil && sale.PaymentKind != *params.PaymentKind {
				continue
			}
			if params.StartDate != nil && sale.CreatedAt.Before(*params.StartDate) {
				continue
			}
			if params.EndDate != nil && !sale.CreatedAt.Before(*params.EndDate) {
				continue
			}
			matched = append(matched, *r.hydrate(sale))
		}
	})
	sort.SliceStable(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })
	start, end := params.Pagination.Window(len(matched))
	return matched[start:end], int64(len(matched)), nil
}

// hydrate copies the sale and attaches its customer. Caller holds the read lock.
func (r *saleRepository) hydrate(sale entity.Sale) *entity.Sale {
	sale.Lines = append([]entity.SaleLine(nil), sale.Lines...)
	if c, ok := r.s.customers[sale.CustomerID]; ok {
		sale.Customer = &c
	}
	return &sale
}

type receiptRepository struct{ s *Store }

// Receipts returns the receipt copy repository backed by this store.
func (s *Store) Receipts() repository.ReceiptRepository { return &receiptRepository{s: s} }

func (r *receiptRepository) Create(ctx context.Context, receipt *entity.ReceiptCopy) error {
	return r.s.write(ctx, "Receipts.Create", func() error {
		if receipt.ID == uuid.Nil {
			receipt.ID = uuid.New()
		}
		receipt.CreatedAt = r.s.now()
		r.s.receipts = append(r.s.receipts, *receipt)
		return nil
	})
}

func (r *receiptRepository) MarkPrinted(ctx context.Context, id uuid.UUID) error {
	return r.s.write(ctx, "Receipts.MarkPrinted", func() error {
		// copy on write so a snapshot taken earlier keeps the old flag
		receipts := append([]entity.ReceiptCopy(nil), r.s.receipts...)
		for i := range receipts {
			if receipts[i].ID == id {
				receipts[i].Printed = true
			}
		}
		r.s.receipts = receipts
		return nil
	})
}

func (r *receiptRepository) LatestBySale(ctx context.Context, saleID uuid.UUID) (*entity.ReceiptCopy, error) {
	var out *entity.ReceiptCopy
	r.s.read(func() {
		for i := len(r.s.receipts) - 1; i >= 0; i-- {
			if r.s.receipts[i].SaleID == saleID {
				rc := r.s.receipts[i]
				out = &rc
				return
			}
		}
	})
	return out, nil
}
