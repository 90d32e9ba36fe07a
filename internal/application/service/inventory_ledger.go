package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/sangkips/checkout-api/internal/domain/entity"
	"github.com/sangkips/checkout-api/internal/domain/enum"
	"github.com/sangkips/checkout-api/internal/domain/repository"
	"github.com/sangkips/checkout-api/pkg/apperror"
	"github.com/shopspring/decimal"
)

// InventoryLedger owns per-batch quantities and expiry and hands out stock in FEFO order.
type InventoryLedger struct {
	catalog   repository.CatalogRepository
	batches   repository.BatchRepository
	movements repository.StockMovementRepository
	uow       repository.UnitOfWork
	now       func() time.Time
}

// NewInventoryLedger creates a new inventory ledger.
// now supplies "today" for expiry checks and should already be in the store's location.
func NewInventoryLedger(
	catalog repository.CatalogRepository,
	batches repository.BatchRepository,
	movements repository.StockMovementRepository,
	uow repository.UnitOfWork,
	now func() time.Time,
) *InventoryLedger {
	if now == nil {
		now = time.Now
	}
	return &InventoryLedger{
		catalog:   catalog,
		batches:   batches,
		movements: movements,
		uow:       uow,
		now:       now,
	}
}

// BatchSelection is the FEFO pick for a product.
type BatchSelection struct {
	BatchID          uuid.UUID       `json:"batch_id"`
	Label            string          `json:"label"`
	ExpiresOn        *time.Time      `json:"expires_on,omitempty"`
	AvailableInBatch decimal.Decimal `json:"available_in_batch"`
}

// ProductStock splits a product's batches with stock into sellable (FEFO order) and expired.
type ProductStock struct {
	Sellable []entity.Batch
	Expired  []entity.Batch
}

// Available sums the sellable batches.
func (s *ProductStock) Available() decimal.Decimal {
	total := decimal.Zero
	for _, b := range s.Sellable {
		total = total.Add(b.Quantity)
	}
	return total
}

// sortFEFO orders batches earliest expiry first, undated stock last,
// ties by creation sequence then id.
func sortFEFO(batches []entity.Batch) {
	sort.SliceStable(batches, func(i, j int) bool {
		a, b := batches[i], batches[j]
		switch {
		case a.ExpiresOn != nil && b.ExpiresOn == nil:
			return true
		case a.ExpiresOn == nil && b.ExpiresOn != nil:
			return false
		case a.ExpiresOn != nil && b.ExpiresOn != nil && !a.ExpiresOn.Equal(*b.ExpiresOn):
			return a.ExpiresOn.Before(*b.ExpiresOn)
		}
		if a.Sequence != b.Sequence {
			return a.Sequence < b.Sequence
		}
		return a.ID.String() < b.ID.String()
	})
}

func (l *InventoryLedger) classify(batches []entity.Batch) *ProductStock {
	today := l.now()
	stock := &ProductStock{}
	for _, b := range batches {
		if !b.Quantity.IsPositive() {
			continue
		}
		if b.ExpiredOn(today) {
			stock.Expired = append(stock.Expired, b)
			continue
		}
		stock.Sellable = append(stock.Sellable, b)
	}
	sortFEFO(stock.Sellable)
	sortFEFO(stock.Expired)
	return stock
}

// Stock returns the product's batches split into sellable and expired.
func (l *InventoryLedger) Stock(ctx context.Context, productID uuid.UUID) (*ProductStock, error) {
	batches, err := l.batches.ListByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	return l.classify(batches), nil
}

// StockFor is Stock for several products in one repository call.
func (l *InventoryLedger) StockFor(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID]*ProductStock, error) {
	batches, err := l.batches.ListByProducts(ctx, productIDs)
	if err != nil {
		return nil, err
	}
	grouped := make(map[uuid.UUID][]entity.Batch, len(productIDs))
	for _, b := range batches {
		grouped[b.ProductID] = append(grouped[b.ProductID], b)
	}
	out := make(map[uuid.UUID]*ProductStock, len(productIDs))
	for _, id := range productIDs {
		out[id] = l.classify(grouped[id])
	}
	return out, nil
}

// Available is the quantity-on-hand across all non-expired batches of the product.
func (l *InventoryLedger) Available(ctx context.Context, productID uuid.UUID) (decimal.Decimal, error) {
	stock, err := l.Stock(ctx, productID)
	if err != nil {
		return decimal.Zero, err
	}
	return stock.Available(), nil
}

// SelectBatch returns the FEFO batch for the product. requestedQty does not
// change the pick; callers split larger quantities across batches themselves.
func (l *InventoryLedger) SelectBatch(ctx context.Context, productID uuid.UUID, requestedQty decimal.Decimal) (*BatchSelection, error) {
	stock, err := l.Stock(ctx, productID)
	if err != nil {
		return nil, err
	}
	if len(stock.Sellable) == 0 {
		return nil, apperror.NewNotFoundError("Sellable batch")
	}
	b := stock.Sellable[0]
	return &BatchSelection{
		BatchID:          b.ID,
		Label:            b.Label,
		ExpiresOn:        b.ExpiresOn,
		AvailableInBatch: b.Quantity,
	}, nil
}

// GetBatch returns a batch or a not-found error.
func (l *InventoryLedger) GetBatch(ctx context.Context, batchID uuid.UUID) (*entity.Batch, error) {
	batch, err := l.batches.GetByID(ctx, batchID)
	if err != nil {
		return nil, err
	}
	if batch == nil {
		return nil, apperror.NewNotFoundError("Batch")
	}
	return batch, nil
}

// IsExpired reports whether the batch is past its expiry today.
func (l *InventoryLedger) IsExpired(b *entity.Batch) bool {
	return b.ExpiredOn(l.now())
}

// ReserveAndDecrement re-checks the batch and subtracts qty, returning the new quantity-on-hand.
// It joins the caller's unit of work; saleID is recorded on the stock movement.
func (l *InventoryLedger) ReserveAndDecrement(ctx context.Context, batchID uuid.UUID, qty decimal.Decimal, saleID *uuid.UUID) (decimal.Decimal, error) {
	if !qty.IsPositive() {
		return decimal.Zero, apperror.NewInvalidQuantityError("quantity", qty.String())
	}

	var remaining decimal.Decimal
	err := l.uow.Do(ctx, func(ctx context.Context) error {
		batch, err := l.GetBatch(ctx, batchID)
		if err != nil {
			return err
		}
		if l.IsExpired(batch) {
			return apperror.NewExpiredBatchError(batch.Label, batch.ExpiryLabel())
		}

		ok, err := l.batches.DecrementIfAvailable(ctx, batchID, qty)
		if err != nil {
			return err
		}
		if !ok {
			current, err := l.GetBatch(ctx, batchID)
			if err != nil {
				return err
			}
			return apperror.NewOutOfStockError("batch "+current.Label, qty, current.Quantity)
		}

		after, err := l.GetBatch(ctx, batchID)
		if err != nil {
			return err
		}
		remaining = after.Quantity

		return l.movements.Create(ctx, &entity.StockMovement{
			BatchID:       batchID,
			ProductID:     after.ProductID,
			Reason:        enum.MovementReasonSale,
			Delta:         qty.Neg(),
			QuantityAfter: remaining,
			SaleID:        saleID,
		})
	})
	if err != nil {
		return decimal.Zero, err
	}
	return remaining, nil
}

// ReceiveBatchInput describes a stock intake.
type ReceiveBatchInput struct {
	ProductID uuid.UUID
	Label     string
	ExpiresOn *time.Time
	Quantity  decimal.Decimal
}

// ReceiveBatch records a new lot for a product.
func (l *InventoryLedger) ReceiveBatch(ctx context.Context, input *ReceiveBatchInput) (*entity.Batch, error) {
	if !input.Quantity.IsPositive() {
		return nil, apperror.NewInvalidQuantityError("quantity", input.Quantity.String())
	}
	label := strings.TrimSpace(input.Label)
	if label == "" {
		return nil, apperror.NewValidationError([]apperror.FieldError{{Field: "label", Message: "is required"}})
	}

	product, err := l.catalog.GetByID(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, apperror.NewNotFoundError("Product")
	}

	batch := &entity.Batch{
		ProductID: input.ProductID,
		Label:     label,
		ExpiresOn: input.ExpiresOn,
		Quantity:  input.Quantity,
	}
	err = l.uow.Do(ctx, func(ctx context.Context) error {
		if err := l.batches.Create(ctx, batch); err != nil {
			return err
		}
		return l.movements.Create(ctx, &entity.StockMovement{
			BatchID:       batch.ID,
			ProductID:     batch.ProductID,
			Reason:        enum.MovementReasonReceipt,
			Delta:         batch.Quantity,
			QuantityAfter: batch.Quantity,
		})
	})
	if err != nil {
		return nil, apperror.NewPersistenceError(err)
	}

	log.Info().
		Str("product_id", product.ID.String()).
		Str("batch", batch.Label).
		Str("quantity", batch.Quantity.String()).
		Msg("batch received")
	return batch, nil
}

// LowStockItem is a product at or below its reorder threshold.
type LowStockItem struct {
	Product   entity.Product  `json:"product"`
	Available decimal.Decimal `json:"available"`
	Threshold decimal.Decimal `json:"threshold"`
}

// LowStock lists active products whose sellable quantity is at or below the reorder threshold.
func (l *InventoryLedger) LowStock(ctx context.Context) ([]LowStockItem, error) {
	products, err := l.catalog.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, len(products))
	for i := range products {
		ids[i] = products[i].ID
	}
	stock, err := l.StockFor(ctx, ids)
	if err != nil {
		return nil, err
	}

	items := make([]LowStockItem, 0)
	for _, p := range products {
		available := stock[p.ID].Available()
		if available.LessThanOrEqual(p.ReorderThreshold) {
			items = append(items, LowStockItem{Product: p, Available: available, Threshold: p.ReorderThreshold})
		}
	}
	return items, nil
}

// Movements returns the quantity trail of a batch.
func (l *InventoryLedger) Movements(ctx context.Context, batchID uuid.UUID) ([]entity.StockMovement, error) {
	if _, err := l.GetBatch(ctx, batchID); err != nil {
		return nil, err
	}
	return l.movements.ListByBatch(ctx, batchID)
}
