package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/sangkips/checkout-api/internal/domain/entity"
	"github.com/sangkips/checkout-api/internal/domain/enum"
	"github.com/sangkips/checkout-api/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInventory_AvailableExcludesExpired(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()

	p := e.product(t, "Vitamin C", "90")
	e.batch(t, p.ID, "old", "7", date(2024, 11, 30))
	e.batch(t, p.ID, "new", "4", date(2025, 3, 1))
	e.batch(t, p.ID, "undated", "2", nil)

	available, err := e.inventory.Available(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, available.Equal(dec("6")))
}

func TestInventory_SelectBatchFEFO(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()

	p := e.product(t, "Aspirin", "10")
	e.batch(t, p.ID, "undated", "5", nil)
	later := e.batch(t, p.ID, "later", "5", date(2025, 8, 1))
	first := e.batch(t, p.ID, "first", "5", date(2025, 2, 1))
	e.batch(t, p.ID, "same-day", "5", date(2025, 2, 1))

	sel, err := e.inventory.SelectBatch(ctx, p.ID, dec("1"))
	require.NoError(t, err)
	assert.Equal(t, first.ID, sel.BatchID)
	assert.True(t, sel.AvailableInBatch.Equal(dec("5")))

	stock, err := e.inventory.Stock(ctx, p.ID)
	require.NoError(t, err)
	labels := make([]string, len(stock.Sellable))
	for i, b := range stock.Sellable {
		labels[i] = b.Label
	}
	assert.Equal(t, []string{"first", "same-day", "later", "undated"}, labels)

	_, err = e.inventory.ReserveAndDecrement(ctx, first.ID, dec("5"), nil)
	require.NoError(t, err)
	_, err = e.inventory.ReserveAndDecrement(ctx, stock.Sellable[1].ID, dec("5"), nil)
	require.NoError(t, err)

	sel, err = e.inventory.SelectBatch(ctx, p.ID, dec("1"))
	require.NoError(t, err)
	assert.Equal(t, later.ID, sel.BatchID)
}

func TestInventory_SelectBatchWithoutStock(t *testing.T) {
	e := newEnv(t, nil)
	p := e.product(t, "Nothing", "1")

	_, err := e.inventory.SelectBatch(context.Background(), p.ID, dec("1"))
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestInventory_SelectBatchSkipsExpiredOnlyStock(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()

	p := e.product(t, "Eye Drops", "120")
	expired := e.batch(t, p.ID, "ED-1", "8", date(2024, 12, 1))

	_, err := e.inventory.SelectBatch(ctx, p.ID, dec("1"))
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	available, err := e.inventory.Available(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, available.IsZero())

	_, err = e.inventory.ReserveAndDecrement(ctx, expired.ID, dec("1"), nil)
	assert.ErrorIs(t, err, apperror.ErrExpiredBatch)
	assert.True(t, e.quantity(t, expired.ID).Equal(dec("8")))
}

func TestInventory_ReserveAndDecrement(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()

	p := e.product(t, "Bandage", "15")
	b := e.batch(t, p.ID, "BD", "3", nil)
	expired := e.batch(t, p.ID, "EX", "3", date(2024, 1, 1))

	_, err := e.inventory.ReserveAndDecrement(ctx, b.ID, dec("4"), nil)
	assert.ErrorIs(t, err, apperror.ErrOutOfStock)
	assert.True(t, e.quantity(t, b.ID).Equal(dec("3")))

	_, err = e.inventory.ReserveAndDecrement(ctx, b.ID, dec("0"), nil)
	assert.ErrorIs(t, err, apperror.ErrInvalidQuantity)

	_, err = e.inventory.ReserveAndDecrement(ctx, expired.ID, dec("1"), nil)
	assert.ErrorIs(t, err, apperror.ErrExpiredBatch)

	_, err = e.inventory.ReserveAndDecrement(ctx, uuid.New(), dec("1"), nil)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	left, err := e.inventory.ReserveAndDecrement(ctx, b.ID, dec("3"), nil)
	require.NoError(t, err)
	assert.True(t, left.IsZero())
}

func TestInventory_ReceiveBatchValidation(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()
	p := e.product(t, "Gauze", "5")

	_, err := e.inventory.ReceiveBatch(ctx, &ReceiveBatchInput{ProductID: p.ID, Label: "G1", Quantity: dec("-2")})
	assert.ErrorIs(t, err, apperror.ErrInvalidQuantity)

	_, err = e.inventory.ReceiveBatch(ctx, &ReceiveBatchInput{ProductID: p.ID, Label: " ", Quantity: dec("2")})
	require.Error(t, err)
	assert.Equal(t, apperror.KindValidation, apperror.GetAppError(err).Kind)

	_, err = e.inventory.ReceiveBatch(ctx, &ReceiveBatchInput{ProductID: uuid.New(), Label: "G1", Quantity: dec("2")})
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestInventory_LowStock(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()

	low := &entity.Product{Barcode: "L", Name: "Low", SalePrice: dec("1"), ReorderThreshold: dec("5"), Active: true}
	ok := &entity.Product{Barcode: "O", Name: "Okay", SalePrice: dec("1"), ReorderThreshold: dec("5"), Active: true}
	require.NoError(t, e.store.Catalog().Save(ctx, low))
	require.NoError(t, e.store.Catalog().Save(ctx, ok))
	e.batch(t, low.ID, "L1", "3", nil)
	e.batch(t, low.ID, "L2", "10", date(2024, 1, 1))
	e.batch(t, ok.ID, "O1", "6", nil)

	items, err := e.inventory.LowStock(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, low.ID, items[0].Product.ID)
	assert.True(t, items[0].Available.Equal(dec("3")))
}

func TestCredit_CheckLimitBoundaries(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()
	c := e.customer(t, "Boundary", "500", "400", true)

	assert.NoError(t, e.credit.CheckLimit(ctx, c, dec("100")))
	assert.ErrorIs(t, e.credit.CheckLimit(ctx, c, dec("100.01")), apperror.ErrLimitExceeded)
	assert.ErrorIs(t, e.credit.CheckLimit(ctx, entity.WalkInCustomerID, dec("1")), apperror.ErrCreditDisabled)
	assert.ErrorIs(t, e.credit.CheckLimit(ctx, uuid.New(), dec("1")), apperror.ErrCreditDisabled)

	err := e.credit.CheckLimit(ctx, c, dec("150"))
	appErr := apperror.GetAppError(err)
	assert.Equal(t, "400.00", appErr.Details["current_balance"])
	assert.Equal(t, "500.00", appErr.Details["credit_limit"])
	assert.Equal(t, "100.00", appErr.Details["available"])

	zero := e.customer(t, "Zero limit", "0", "0", true)
	assert.ErrorIs(t, e.credit.CheckLimit(ctx, zero, dec("1")), apperror.ErrCreditDisabled)
	disabled := e.customer(t, "Disabled", "500", "0", false)
	assert.ErrorIs(t, e.credit.CheckLimit(ctx, disabled, dec("1")), apperror.ErrCreditDisabled)
}

func TestCredit_ApplyPayment(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()
	c := e.customer(t, "Payer", "500", "120", true)

	res, err := e.credit.ApplyPayment(ctx, c, dec("100"), "cash drawer")
	require.NoError(t, err)
	assert.True(t, res.Applied.Equal(dec("100")))
	assert.True(t, res.Balance.Equal(dec("20")))
	assert.True(t, res.Unapplied.IsZero())

	res, err = e.credit.ApplyPayment(ctx, c, dec("50"), "")
	require.NoError(t, err)
	assert.True(t, res.Applied.Equal(dec("20")))
	assert.True(t, res.Balance.IsZero())
	assert.True(t, res.Unapplied.Equal(dec("30")))

	_, err = e.credit.ApplyPayment(ctx, c, dec("0"), "")
	assert.ErrorIs(t, err, apperror.ErrInvalidQuantity)
	_, err = e.credit.ApplyPayment(ctx, uuid.New(), dec("1"), "")
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	entries, err := e.credit.ListEntries(ctx, c, nil)
	require.NoError(t, err)
	require.Len(t, entries.Items, 2)
	assert.Equal(t, enum.CreditEntryPayment, entries.Items[0].Kind)
	assert.True(t, entries.Items[0].BalanceAfter.IsZero())
	assert.Equal(t, "cash drawer", entries.Items[1].Reference)
}

func TestCredit_ConfigureAccount(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()
	c := e.customer(t, "Configured", "100", "80", true)

	account, err := e.credit.ConfigureAccount(ctx, &ConfigureAccountInput{CustomerID: c, CreditLimit: dec("300"), Enabled: true})
	require.NoError(t, err)
	assert.True(t, account.Balance.Equal(dec("80")))
	assert.True(t, account.CreditLimit.Equal(dec("300")))

	_, err = e.credit.ConfigureAccount(ctx, &ConfigureAccountInput{CustomerID: entity.WalkInCustomerID, CreditLimit: dec("100"), Enabled: true})
	assert.ErrorIs(t, err, apperror.ErrCreditDisabled)

	_, err = e.credit.ConfigureAccount(ctx, &ConfigureAccountInput{CustomerID: uuid.New(), CreditLimit: dec("100"), Enabled: true})
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	_, err = e.credit.ConfigureAccount(ctx, &ConfigureAccountInput{CustomerID: c, CreditLimit: dec("-1")})
	assert.ErrorIs(t, err, apperror.ErrInvalidQuantity)
}

func TestCatalog_LookupBarcodeThenName(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()

	p := e.product(t, "Ginger Tea", "55")
	e.product(t, "Green Tea", "45")
	e.batch(t, p.ID, "G1", "4", nil)
	e.batch(t, p.ID, "G0", "9", date(2024, 1, 1))

	items, err := e.catalog.Lookup(ctx, "BC-Ginger Tea", 0)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, p.ID, items[0].Product.ID)
	assert.True(t, items[0].Available.Equal(dec("4")))
	require.Len(t, items[0].Batches, 2)
	assert.False(t, items[0].Batches[0].Expired)
	assert.True(t, items[0].Batches[1].Expired)

	items, err = e.catalog.Lookup(ctx, "tea", 0)
	require.NoError(t, err)
	assert.Len(t, items, 2)

	_, err = e.catalog.Lookup(ctx, "  ", 0)
	assert.Error(t, err)
}

func TestCatalog_CreateProduct(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()

	p, err := e.catalog.CreateProduct(ctx, &CreateProductInput{Name: "Dates 1kg", SalePrice: dec("300")})
	require.NoError(t, err)
	assert.NotEmpty(t, p.Barcode)
	assert.True(t, p.Active)

	_, err = e.catalog.CreateProduct(ctx, &CreateProductInput{Name: "Copy", Barcode: p.Barcode, SalePrice: dec("1")})
	require.Error(t, err)
	assert.Equal(t, apperror.KindConflict, apperror.GetAppError(err).Kind)
}
