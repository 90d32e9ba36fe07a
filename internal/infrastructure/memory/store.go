// Package memory is an in-process storage driver implementing the domain
// repositories. Units of work are serialized and rolled back by restoring a
// snapshot, which makes it suitable for single-terminal deployments and tests.
package memory

import (
	"context"
	"maps"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/checkout-api/internal/domain/entity"
	"github.com/sangkips/checkout-api/internal/domain/repository"
)

type txKey struct{}

// Store holds all state for the memory driver.
type Store struct {
	txMu sync.Mutex   // serializes units of work and standalone writes
	mu   sync.RWMutex // guards everything below
	now  func() time.Time

	products   map[uuid.UUID]entity.Product
	batches    map[uuid.UUID]entity.Batch
	batchSeq   int64
	movements  []entity.StockMovement
	sales      map[uuid.UUID]entity.Sale
	saleOrder  []uuid.UUID
	invoiceSeq int64
	customers  map[uuid.UUID]entity.Customer
	accounts   map[uuid.UUID]entity.CreditAccount
	entries    []entity.CreditEntry
	receipts   []entity.ReceiptCopy
	idem       map[string]entity.IdempotencyKey

	faults map[string]error
}

// snapshot captures the state a failed unit of work is rolled back to.
type snapshot struct {
	products   map[uuid.UUID]entity.Product
	batches    map[uuid.UUID]entity.Batch
	batchSeq   int64
	movements  []entity.StockMovement
	sales      map[uuid.UUID]entity.Sale
	saleOrder  []uuid.UUID
	invoiceSeq int64
	customers  map[uuid.UUID]entity.Customer
	accounts   map[uuid.UUID]entity.CreditAccount
	entries    []entity.CreditEntry
	receipts   []entity.ReceiptCopy
	idem       map[string]entity.IdempotencyKey
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// NewStore creates an empty store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		now:       time.Now,
		products:  make(map[uuid.UUID]entity.Product),
		batches:   make(map[uuid.UUID]entity.Batch),
		sales:     make(map[uuid.UUID]entity.Sale),
		customers: make(map[uuid.UUID]entity.Customer),
		accounts:  make(map[uuid.UUID]entity.CreditAccount),
		idem:      make(map[string]entity.IdempotencyKey),
		faults:    make(map[string]error),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Do runs fn as one unit of work. Any error restores the state from before the call.
func (s *Store) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if inTx(ctx) {
		return fn(ctx)
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	snap := s.snapshot()
	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

// UnitOfWork exposes the store as a repository.UnitOfWork.
func (s *Store) UnitOfWork() repository.UnitOfWork {
	return s
}

// InjectFault makes the next call of the named operation fail with err.
// Operation names match the method names, e.g. "Sales.Create".
func (s *Store) InjectFault(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults[op] = err
}

func inTx(ctx context.Context) bool {
	v, _ := ctx.Value(txKey{}).(bool)
	return v
}

// write runs fn under the write lock, joining the caller's unit of work if there is one.
func (s *Store) write(ctx context.Context, op string, fn func() error) error {
	if !inTx(ctx) {
		s.txMu.Lock()
		defer s.txMu.Unlock()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err, ok := s.faults[op]; ok {
		delete(s.faults, op)
		return err
	}
	return fn()
}

func (s *Store) read(fn func()) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn()
}

func (s *Store) snapshot() snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshot{
		products:   maps.Clone(s.products),
		batches:    maps.Clone(s.batches),
		batchSeq:   s.batchSeq,
		movements:  s.movements[:len(s.movements):len(s.movements)],
		sales:      maps.Clone(s.sales),
		saleOrder:  s.saleOrder[:len(s.saleOrder):len(s.saleOrder)],
		invoiceSeq: s.invoiceSeq,
		customers:  maps.Clone(s.customers),
		accounts:   maps.Clone(s.accounts),
		entries:    s.entries[:len(s.entries):len(s.entries)],
		receipts:   s.receipts[:len(s.receipts):len(s.receipts)],
		idem:       maps.Clone(s.idem),
	}
}

func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products = snap.products
	s.batches = snap.batches
	s.batchSeq = snap.batchSeq
	s.movements = snap.movements
	s.sales = snap.sales
	s.saleOrder = snap.saleOrder
	s.invoiceSeq = snap.invoiceSeq
	s.customers = snap.customers
	s.accounts = snap.accounts
	s.entries = snap.entries
	s.receipts = snap.receipts
	s.idem = snap.idem
}
