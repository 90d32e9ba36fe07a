package service

import (
	"bytes"
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/sangkips/checkout-api/internal/domain/entity"
	"github.com/sangkips/checkout-api/internal/domain/enum"
	"github.com/sangkips/checkout-api/pkg/apperror"
	"github.com/sangkips/checkout-api/pkg/printer"
	"github.com/sangkips/checkout-api/pkg/receipt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingPrinter keeps every job it is sent.
type recordingPrinter struct {
	jobs [][]byte
}

func (p *recordingPrinter) Print(_ context.Context, data []byte) error {
	p.jobs = append(p.jobs, append([]byte(nil), data...))
	return nil
}
func (p *recordingPrinter) Close() error      { return nil }
func (p *recordingPrinter) IsConnected() bool { return true }

func TestPrinterService_DeliverAndReprint(t *testing.T) {
	rec := &recordingPrinter{}
	e := newEnv(t, rec)
	ctx := context.Background()

	p := e.product(t, "Chickpeas", "70")
	e.batch(t, p.ID, "CP", "5", nil)
	co := e.checkout.Open(nil, "Nadia")
	_, err := e.checkout.AddLine(ctx, co.ID, p.ID, dec("2"))
	require.NoError(t, err)
	res, err := e.checkout.Commit(ctx, co.ID, &CommitInput{PaymentKind: enum.PaymentKindCash, Print: true})
	require.NoError(t, err)

	assert.True(t, res.Receipt.Printed)
	assert.Empty(t, res.Receipt.Warnings)
	require.Len(t, rec.jobs, 1)
	// QR rows are transcoded to CP437 full blocks
	assert.True(t, bytes.Contains(rec.jobs[0], []byte{0xDB}))
	assert.Contains(t, res.Receipt.Text, "Cashier:")
	assert.Contains(t, res.Receipt.Text, "Nadia")

	stored, err := e.store.Receipts().LatestBySale(ctx, res.Sale.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.True(t, stored.Printed)
	assert.Equal(t, res.Receipt.Text, stored.Body)

	again, err := e.printer.Print(ctx, res.Sale.ID)
	require.NoError(t, err)
	assert.Equal(t, res.Receipt.Text, again.Text)
	assert.Len(t, rec.jobs, 2)
}

func TestPrinterService_UnknownSale(t *testing.T) {
	e := newEnv(t, nil)
	_, _, err := e.printer.Render(context.Background(), uuid.New())
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestPrinterService_TestPrint(t *testing.T) {
	e := newEnv(t, failingPrinter{})
	text, err := e.printer.TestPrint(context.Background())
	assert.Error(t, err)
	assert.Contains(t, text, "TEST-001")

	status := e.printer.GetStatus()
	assert.False(t, status.Connected)
	assert.Equal(t, 42, status.Width)
}

func TestToReceipt_UsesConfiguredWalkIn(t *testing.T) {
	walkIn := uuid.New()
	sale := &entity.Sale{
		InvoiceNo:   "INV-00000009",
		CustomerID:  walkIn,
		Customer:    &entity.Customer{ID: walkIn, Name: "Counter Customer"},
		PaymentKind: enum.PaymentKindCash,
	}
	assert.Equal(t, "Walk-in", ToReceipt(sale, walkIn).Customer)

	// the built-in id is an ordinary customer once another walk-in is configured
	sale.CustomerID = entity.WalkInCustomerID
	sale.Customer.ID = entity.WalkInCustomerID
	assert.Equal(t, "Counter Customer", ToReceipt(sale, walkIn).Customer)
}

func TestPrinterService_BoldHeaderAndCut(t *testing.T) {
	rec := &recordingPrinter{}
	e := newEnv(t, rec)
	ctx := context.Background()

	_, err := e.printer.TestPrint(ctx)
	require.NoError(t, err)
	require.Len(t, rec.jobs, 1)
	job := rec.jobs[0]

	boldOn := bytes.Index(job, []byte{0x1B, 'E', 1})
	name := bytes.Index(job, []byte("Test Store"))
	boldOff := bytes.Index(job, []byte{0x1B, 'E', 0})
	rule := bytes.Index(job, bytes.Repeat([]byte("="), 42))
	require.True(t, boldOn >= 0 && name >= 0 && boldOff >= 0 && rule >= 0)
	assert.Less(t, boldOn, name)
	assert.Less(t, name, boldOff)
	assert.Less(t, boldOff, rule)
	assert.True(t, bytes.HasSuffix(job, []byte{0x1D, 'V', 0x01}))

	full := NewPrinterService(rec, e.store.Sales(), e.store.Receipts(), receipt.StoreInfo{Name: "Test Store"},
		PrinterConfig{Type: "none", Codepage: printer.CodepageCP437, FullCut: true})
	_, err = full.TestPrint(ctx)
	require.NoError(t, err)
	require.Len(t, rec.jobs, 2)
	assert.True(t, bytes.HasSuffix(rec.jobs[1], []byte{0x1D, 'V', 0x00}))
}

func TestSplitHeader(t *testing.T) {
	header, body := splitHeader("Shop\n====\nline\n", "====")
	assert.Equal(t, "Shop\n", header)
	assert.Equal(t, "====\nline\n", body)

	header, body = splitHeader("no rule here\n", "====")
	assert.Empty(t, header)
	assert.Equal(t, "no rule here\n", body)
}
