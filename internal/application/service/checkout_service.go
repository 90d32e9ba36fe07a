package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/sangkips/checkout-api/internal/domain/entity"
	"github.com/sangkips/checkout-api/internal/domain/enum"
	"github.com/sangkips/checkout-api/internal/domain/repository"
	"github.com/sangkips/checkout-api/internal/infrastructure/lock"
	"github.com/sangkips/checkout-api/pkg/apperror"
	"github.com/shopspring/decimal"
)

// ReceiptDeliverer renders and optionally prints the receipt of a committed sale.
type ReceiptDeliverer interface {
	Deliver(ctx context.Context, saleID uuid.UUID, print bool) (*ReceiptDelivery, error)
}

// CheckoutConfig tunes session handling.
type CheckoutConfig struct {
	// SessionTTL is how long an idle, uncommitted checkout survives.
	SessionTTL time.Duration
}

// CheckoutService runs checkout sessions: an in-memory cart that is
// validated and committed to the ledgers as one unit of work.
type CheckoutService struct {
	inventory *InventoryLedger
	credit    *CreditLedger
	catalog   repository.CatalogRepository
	customers repository.CustomerRepository
	sales     repository.SaleRepository
	uow       repository.UnitOfWork
	locker    lock.Locker
	receipts  ReceiptDeliverer
	cfg       CheckoutConfig
	now       func() time.Time

	mu       sync.Mutex
	sessions map[uuid.UUID]*Checkout
}

// NewCheckoutService creates a new checkout service. locker and receipts may be nil.
func NewCheckoutService(
	inventory *InventoryLedger,
	credit *CreditLedger,
	catalog repository.CatalogRepository,
	customers repository.CustomerRepository,
	sales repository.SaleRepository,
	uow repository.UnitOfWork,
	locker lock.Locker,
	receipts ReceiptDeliverer,
	cfg CheckoutConfig,
) *CheckoutService {
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 2 * time.Hour
	}
	return &CheckoutService{
		inventory: inventory,
		credit:    credit,
		catalog:   catalog,
		customers: customers,
		sales:     sales,
		uow:       uow,
		locker:    locker,
		receipts:  receipts,
		cfg:       cfg,
		now:       inventory.now,
		sessions:  make(map[uuid.UUID]*Checkout),
	}
}

// Checkout is one cart. All fields are guarded by mu.
type Checkout struct {
	mu           sync.Mutex
	id           uuid.UUID
	operatorID   *uuid.UUID
	operatorName string
	state        enum.CheckoutState
	lines        []entity.CartLine
	sale         *entity.Sale
	createdAt    time.Time
	touchedAt    time.Time
}

// CartLineView is a cart line with its computed total.
type CartLineView struct {
	entity.CartLine
	LineTotal decimal.Decimal `json:"line_total"`
}

// CheckoutView is a consistent snapshot of a checkout.
type CheckoutView struct {
	ID          uuid.UUID          `json:"id"`
	State       enum.CheckoutState `json:"state"`
	Lines       []CartLineView     `json:"lines"`
	GrossAmount decimal.Decimal    `json:"gross_amount"`
	SaleID      *uuid.UUID         `json:"sale_id,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
}

func (c *Checkout) gross() decimal.Decimal {
	total := decimal.Zero
	for i := range c.lines {
		total = total.Add(c.lines[i].LineTotal())
	}
	return total
}

func (c *Checkout) view() *CheckoutView {
	lines := make([]CartLineView, len(c.lines))
	for i, l := range c.lines {
		lines[i] = CartLineView{CartLine: l, LineTotal: l.LineTotal()}
	}
	v := &CheckoutView{
		ID:          c.id,
		State:       c.state,
		Lines:       lines,
		GrossAmount: c.gross(),
		CreatedAt:   c.createdAt,
	}
	if c.sale != nil {
		id := c.sale.ID
		v.SaleID = &id
	}
	return v
}

func (c *Checkout) lineIndex(lineID uuid.UUID) int {
	for i := range c.lines {
		if c.lines[i].ID == lineID {
			return i
		}
	}
	return -1
}

func (c *Checkout) requireOpen(op string) error {
	if c.state != enum.CheckoutStateOpen {
		return apperror.NewInvalidStateError(c.state.String(), op)
	}
	return nil
}

// Open starts a new empty checkout for the operator.
func (s *CheckoutService) Open(operatorID *uuid.UUID, operatorName string) *CheckoutView {
	now := s.now()
	c := &Checkout{
		id:           uuid.New(),
		operatorID:   operatorID,
		operatorName: operatorName,
		state:        enum.CheckoutStateOpen,
		createdAt:    now,
		touchedAt:    now,
	}

	s.mu.Lock()
	s.sessions[c.id] = c
	s.mu.Unlock()

	return c.view()
}

func (s *CheckoutService) session(id uuid.UUID) (*Checkout, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.sessions[id]
	if !ok {
		return nil, apperror.NewNotFoundError("Checkout")
	}
	return c, nil
}

// withSession locks the checkout for the duration of fn and marks it as used.
func (s *CheckoutService) withSession(id uuid.UUID, fn func(c *Checkout) error) (*CheckoutView, error) {
	c, err := s.session(id)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.touchedAt = s.now()
	if err := fn(c); err != nil {
		return nil, err
	}
	return c.view(), nil
}

// Get returns a snapshot of the checkout.
func (s *CheckoutService) Get(id uuid.UUID) (*CheckoutView, error) {
	return s.withSession(id, func(c *Checkout) error { return nil })
}

type allocation struct {
	batch entity.Batch
	qty   decimal.Decimal
}

// AddLine adds qty of a product, splitting it across batches in FEFO order.
// Quantities already in the cart are reserved against their batches first.
// On failure the cart is unchanged.
func (s *CheckoutService) AddLine(ctx context.Context, id uuid.UUID, productID uuid.UUID, qty decimal.Decimal) (*CheckoutView, error) {
	if !qty.IsPositive() {
		return nil, apperror.NewInvalidQuantityError("quantity", qty.String())
	}

	return s.withSession(id, func(c *Checkout) error {
		if err := c.requireOpen("add a line to"); err != nil {
			return err
		}

		product, err := s.catalog.GetByID(ctx, productID)
		if err != nil {
			return apperror.NewPersistenceError(err)
		}
		if product == nil || !product.Active {
			return apperror.NewNotFoundError("Product")
		}

		stock, err := s.inventory.Stock(ctx, productID)
		if err != nil {
			return apperror.NewPersistenceError(err)
		}
		if len(stock.Sellable) == 0 && len(stock.Expired) > 0 {
			b := stock.Expired[0]
			return apperror.NewExpiredBatchError(b.Label, b.ExpiryLabel())
		}

		held := make(map[uuid.UUID]decimal.Decimal)
		for _, l := range c.lines {
			held[l.BatchID] = held[l.BatchID].Add(l.Quantity)
		}

		remaining := qty
		free := decimal.Zero
		var plan []allocation
		for _, b := range stock.Sellable {
			avail := b.Quantity.Sub(held[b.ID])
			if !avail.IsPositive() {
				continue
			}
			free = free.Add(avail)
			if !remaining.IsPositive() {
				continue
			}
			take := decimal.Min(avail, remaining)
			plan = append(plan, allocation{batch: b, qty: take})
			remaining = remaining.Sub(take)
		}
		if remaining.IsPositive() {
			return apperror.NewOutOfStockError(product.Name, qty, free)
		}

		for _, a := range plan {
			merged := false
			for i := range c.lines {
				if c.lines[i].ProductID == productID && c.lines[i].BatchID == a.batch.ID {
					c.lines[i].Quantity = c.lines[i].Quantity.Add(a.qty)
					c.lines[i].AvailableSnapshot = a.batch.Quantity
					merged = true
					break
				}
			}
			if merged {
				continue
			}
			c.lines = append(c.lines, entity.CartLine{
				ID:                uuid.New(),
				ProductID:         productID,
				ProductName:       product.Name,
				BatchID:           a.batch.ID,
				BatchLabel:        a.batch.Label,
				BatchExpiresOn:    a.batch.ExpiresOn,
				Quantity:          a.qty,
				UnitPrice:         product.SalePrice,
				AvailableSnapshot: a.batch.Quantity,
			})
		}
		return nil
	})
}

// SetLineQuantity replaces a line's quantity. Zero removes the line.
func (s *CheckoutService) SetLineQuantity(ctx context.Context, id, lineID uuid.UUID, qty decimal.Decimal) (*CheckoutView, error) {
	if qty.IsNegative() {
		return nil, apperror.NewInvalidQuantityError("quantity", qty.String())
	}

	return s.withSession(id, func(c *Checkout) error {
		if err := c.requireOpen("update a line of"); err != nil {
			return err
		}
		idx := c.lineIndex(lineID)
		if idx < 0 {
			return apperror.NewNotFoundError("Cart line")
		}
		if qty.IsZero() {
			c.lines = append(c.lines[:idx], c.lines[idx+1:]...)
			return nil
		}

		line := c.lines[idx]
		batch, err := s.inventory.GetBatch(ctx, line.BatchID)
		if err != nil {
			return err
		}
		if s.inventory.IsExpired(batch) {
			return apperror.NewExpiredBatchError(batch.Label, batch.ExpiryLabel())
		}
		if qty.GreaterThan(batch.Quantity) {
			return apperror.NewOutOfStockError(line.ProductName, qty, batch.Quantity)
		}

		c.lines[idx].Quantity = qty
		c.lines[idx].AvailableSnapshot = batch.Quantity
		return nil
	})
}

// RemoveLine drops a line from the cart. Inventory is not touched.
func (s *CheckoutService) RemoveLine(id, lineID uuid.UUID) (*CheckoutView, error) {
	return s.withSession(id, func(c *Checkout) error {
		if err := c.requireOpen("remove a line from"); err != nil {
			return err
		}
		idx := c.lineIndex(lineID)
		if idx < 0 {
			return apperror.NewNotFoundError("Cart line")
		}
		c.lines = append(c.lines[:idx], c.lines[idx+1:]...)
		return nil
	})
}

// Abort ends an open checkout without side effects.
func (s *CheckoutService) Abort(id uuid.UUID) (*CheckoutView, error) {
	return s.withSession(id, func(c *Checkout) error {
		if err := c.requireOpen("abort"); err != nil {
			return err
		}
		c.state = enum.CheckoutStateAborted
		c.lines = nil
		return nil
	})
}

// CommitInput holds the payment details of a checkout.
type CommitInput struct {
	PaymentKind enum.PaymentKind
	CustomerID  uuid.UUID
	Discount    decimal.Decimal
	Print       bool
}

// CommitResult is the committed sale plus the outcome of receipt delivery.
type CommitResult struct {
	Sale    *entity.Sale     `json:"sale"`
	Receipt *ReceiptDelivery `json:"receipt,omitempty"`
}

// Commit validates the cart and persists the sale. Preconditions are checked
// in order and the first failure returns the checkout to OPEN with nothing written.
// Stock is re-validated line by line inside one unit of work; any failure rolls back
// every decrement of this attempt.
func (s *CheckoutService) Commit(ctx context.Context, id uuid.UUID, input *CommitInput) (*CommitResult, error) {
	c, err := s.session(id)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.touchedAt = s.now()

	if err := c.requireOpen("commit"); err != nil {
		return nil, err
	}
	c.state = enum.CheckoutStateValidating

	sale, err := s.commit(ctx, c, input)
	if err != nil {
		c.state = enum.CheckoutStateOpen
		if !apperror.IsAppError(err) {
			err = apperror.NewPersistenceError(err)
		}
		log.Warn().
			Err(err).
			Str("checkout_id", c.id.String()).
			Str("payment_kind", input.PaymentKind.String()).
			Msg("checkout rejected")
		return nil, err
	}

	c.state = enum.CheckoutStateCommitted
	c.sale = sale

	log.Info().
		Str("checkout_id", c.id.String()).
		Str("invoice_no", sale.InvoiceNo).
		Str("payment_kind", sale.PaymentKind.String()).
		Str("net_amount", sale.NetAmount.StringFixed(2)).
		Int("lines", len(sale.Lines)).
		Msg("checkout committed")

	result := &CommitResult{Sale: sale}
	if s.receipts != nil {
		delivery, err := s.receipts.Deliver(ctx, sale.ID, input.Print)
		if err != nil {
			log.Error().Err(err).Str("invoice_no", sale.InvoiceNo).Msg("receipt delivery failed")
			delivery = &ReceiptDelivery{Warnings: []string{err.Error()}}
		}
		result.Receipt = delivery
	}
	return result, nil
}

func (s *CheckoutService) commit(ctx context.Context, c *Checkout, input *CommitInput) (*entity.Sale, error) {
	// (a) non-empty cart
	if len(c.lines) == 0 {
		return nil, apperror.ErrEmptyCart
	}
	if input.Discount.IsNegative() {
		return nil, apperror.NewInvalidQuantityError("discount", input.Discount.String())
	}

	customerID := input.CustomerID
	if customerID == uuid.Nil {
		customerID = s.credit.WalkInID()
	}

	gross := c.gross()
	discount := decimal.Min(input.Discount, gross)
	net := gross.Sub(discount)

	// (b) walk-in customers never buy on credit, (c) limit check
	if input.PaymentKind == enum.PaymentKindCredit {
		if s.credit.IsWalkIn(customerID) {
			return nil, apperror.NewCreditDisabledError("walk-in customer")
		}
		if err := s.credit.CheckLimit(ctx, customerID, net); err != nil {
			return nil, err
		}
	}

	customer, err := s.customers.GetByID(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, apperror.NewNotFoundError("Customer")
	}

	release, err := s.acquire(ctx, c.lines, customerID, input.PaymentKind)
	if err != nil {
		return nil, err
	}
	defer release()

	saleID := uuid.New()
	sale := &entity.Sale{
		ID:             saleID,
		CustomerID:     customerID,
		PaymentKind:    input.PaymentKind,
		GrossAmount:    gross,
		DiscountAmount: discount,
		NetAmount:      net,
		OperatorID:     c.operatorID,
		OperatorName:   c.operatorName,
		CreatedAt:      s.now(),
	}

	err = s.uow.Do(ctx, func(ctx context.Context) error {
		invoiceNo, err := s.sales.NextInvoiceNo(ctx)
		if err != nil {
			return err
		}
		sale.InvoiceNo = invoiceNo

		lines := make([]entity.SaleLine, 0, len(c.lines))
		for i, l := range c.lines {
			if _, err := s.inventory.ReserveAndDecrement(ctx, l.BatchID, l.Quantity, &saleID); err != nil {
				if errors.Is(err, apperror.ErrOutOfStock) {
					return apperror.NewOutOfStockError(l.ProductName+" ("+l.BatchLabel+")", l.Quantity, s.batchQuantity(ctx, l.BatchID))
				}
				return err
			}
			lines = append(lines, entity.SaleLine{
				SaleID:      saleID,
				Sequence:    i + 1,
				ProductID:   l.ProductID,
				ProductName: l.ProductName,
				BatchID:     l.BatchID,
				BatchLabel:  l.BatchLabel,
				Quantity:    l.Quantity,
				UnitPrice:   l.UnitPrice,
				LineTotal:   l.LineTotal(),
			})
		}
		sale.Lines = lines

		if err := s.sales.Create(ctx, sale); err != nil {
			return err
		}

		if input.PaymentKind == enum.PaymentKindCredit {
			if _, err := s.credit.ApplyCreditSale(ctx, customerID, net, &saleID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sale.Customer = customer
	return sale, nil
}

// batchQuantity is a best-effort read used only for error details.
func (s *CheckoutService) batchQuantity(ctx context.Context, batchID uuid.UUID) decimal.Decimal {
	b, err := s.inventory.GetBatch(ctx, batchID)
	if err != nil {
		return decimal.Zero
	}
	return b.Quantity
}

func (s *CheckoutService) acquire(ctx context.Context, lines []entity.CartLine, customerID uuid.UUID, kind enum.PaymentKind) (lock.Release, error) {
	if s.locker == nil {
		return func() {}, nil
	}
	keys := make([]string, 0, len(lines)+1)
	for _, l := range lines {
		keys = append(keys, "batch:"+l.BatchID.String())
	}
	if kind == enum.PaymentKindCredit {
		keys = append(keys, "credit:"+customerID.String())
	}
	release, err := s.locker.Acquire(ctx, keys...)
	if err != nil {
		return nil, apperror.NewPersistenceError(err)
	}
	return release, nil
}

// Sweep drops checkouts idle longer than the session TTL, and all terminal ones.
func (s *CheckoutService) Sweep() int {
	cutoff := s.now().Add(-s.cfg.SessionTTL)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, c := range s.sessions {
		if !c.mu.TryLock() {
			continue
		}
		if c.touchedAt.Before(cutoff) || (c.state.Terminal() && c.touchedAt.Before(s.now().Add(-time.Minute))) {
			delete(s.sessions, id)
			removed++
		}
		c.mu.Unlock()
	}
	return removed
}

// StartJanitor sweeps idle checkouts every interval until ctx is done.
func (s *CheckoutService) StartJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := s.Sweep(); n > 0 {
					log.Debug().Int("removed", n).Msg("expired checkouts swept")
				}
			}
		}
	}()
}
