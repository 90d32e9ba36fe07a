package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/checkout-api/internal/domain/entity"
	"github.com/sangkips/checkout-api/internal/infrastructure/lock"
	"github.com/sangkips/checkout-api/internal/infrastructure/memory"
	"github.com/sangkips/checkout-api/pkg/printer"
	"github.com/sangkips/checkout-api/pkg/receipt"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// today is fixed so expiry checks do not depend on the wall clock.
var today = time.Date(2024, 12, 15, 10, 0, 0, 0, time.UTC)

func clock() time.Time { return today }

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// failingPrinter simulates an unreachable device.
type failingPrinter struct{}

func (failingPrinter) Print(context.Context, []byte) error { return assertErr("printer offline") }
func (failingPrinter) Close() error                        { return nil }
func (failingPrinter) IsConnected() bool                   { return false }

type assertErr string

func (e assertErr) Error() string { return string(e) }

type env struct {
	store     *memory.Store
	inventory *InventoryLedger
	credit    *CreditLedger
	catalog   *CatalogService
	printer   *PrinterService
	checkout  *CheckoutService
}

func newEnv(t *testing.T, p printer.Printer) *env {
	t.Helper()
	return newEnvAt(t, p, clock)
}

// newEnvAt builds the environment on a caller-controlled clock.
func newEnvAt(t *testing.T, p printer.Printer, clock func() time.Time) *env {
	t.Helper()
	store := memory.NewStore(memory.WithClock(clock))
	uow := store.UnitOfWork()

	if p == nil {
		p = printer.NewNullPrinter()
	}

	inventory := NewInventoryLedger(store.Catalog(), store.Batches(), store.Movements(), uow, clock)
	credit := NewCreditLedger(store.Credit(), store.Customers(), uow, entity.WalkInCustomerID)
	printerSvc := NewPrinterService(p, store.Sales(), store.Receipts(), receipt.StoreInfo{
		Name:       "Test Store",
		CashNote:   "Cash note",
		CreditNote: "Credit note",
		Currency:   "Afghanis",
	}, PrinterConfig{Type: "none", Codepage: printer.CodepageCP437})
	checkout := NewCheckoutService(inventory, credit, store.Catalog(), store.Customers(), store.Sales(),
		uow, lock.NewLocalLocker(), printerSvc, CheckoutConfig{SessionTTL: time.Hour})

	require.NoError(t, store.Customers().Ensure(context.Background(), &entity.Customer{ID: entity.WalkInCustomerID, Name: "Walk-in"}))

	return &env{
		store:     store,
		inventory: inventory,
		credit:    credit,
		catalog:   NewCatalogService(store.Catalog(), inventory),
		printer:   printerSvc,
		checkout:  checkout,
	}
}

func (e *env) product(t *testing.T, name string, price string) *entity.Product {
	t.Helper()
	p := &entity.Product{Barcode: "BC-" + name, Name: name, SalePrice: dec(price), Active: true}
	require.NoError(t, e.store.Catalog().Save(context.Background(), p))
	return p
}

func (e *env) batch(t *testing.T, productID uuid.UUID, label string, qty string, expires *time.Time) *entity.Batch {
	t.Helper()
	b, err := e.inventory.ReceiveBatch(context.Background(), &ReceiveBatchInput{
		ProductID: productID,
		Label:     label,
		ExpiresOn: expires,
		Quantity:  dec(qty),
	})
	require.NoError(t, err)
	return b
}

func (e *env) customer(t *testing.T, name string, limit, balance string, enabled bool) uuid.UUID {
	t.Helper()
	ctx := context.Background()
	c := &entity.Customer{Name: name}
	require.NoError(t, e.store.Customers().Ensure(ctx, c))
	require.NoError(t, e.store.Credit().Save(ctx, &entity.CreditAccount{
		CustomerID:  c.ID,
		CreditLimit: dec(limit),
		Balance:     dec(balance),
		Enabled:     enabled,
	}))
	return c.ID
}

func (e *env) quantity(t *testing.T, batchID uuid.UUID) decimal.Decimal {
	t.Helper()
	b, err := e.inventory.GetBatch(context.Background(), batchID)
	require.NoError(t, err)
	return b.Quantity
}
