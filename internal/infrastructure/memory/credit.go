package memory

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/checkout-api/internal/domain/entity"
	"github.com/sangkips/checkout-api/internal/domain/repository"
	"github.com/sangkips/checkout-api/pkg/pagination"
)

type creditRepository struct{ s *Store }

// Credit returns the credit account repository backed by this store.
func (s *Store) Credit() repository.CreditAccountRepository { return &creditRepository{s: s} }

func (r *creditRepository) Get(ctx context.Context, customerID uuid.UUID) (*entity.CreditAccount, error) {
	var out *entity.CreditAccount
	r.s.read(func() {
		if a, ok := r.s.accounts[customerID]; ok {
			out = &a
		}
	})
	return out, nil
}

// GetForUpdate needs no extra locking: units of work are already serialized.
func (r *creditRepository) GetForUpdate(ctx context.Context, customerID uuid.UUID) (*entity.CreditAccount, error) {
	return r.Get(ctx, customerID)
}

func (r *creditRepository) Save(ctx context.Context, account *entity.CreditAccount) error {
	return r.s.write(ctx, "Credit.Save", func() error {
		now := r.s.now()
		if account.CreatedAt.IsZero() {
			account.CreatedAt = now
		}
		account.UpdatedAt = now
		r.s.accounts[account.CustomerID] = *account
		return nil
	})
}

func (r *creditRepository) AddEntry(ctx context.Context, entry *entity.CreditEntry) error {
	return r.s.write(ctx, "Credit.AddEntry", func() error {
		if entry.ID == uuid.Nil {
			entry.ID = uuid.New()
		}
		entry.CreatedAt = r.s.now()
		r.s.entries = append(r.s.entries, *entry)
		return nil
	})
}

func (r *creditRepository) ListEntries(ctx context.Context, customerID uuid.UUID, params *pagination.PaginationParams) ([]entity.CreditEntry, int64, error) {
	params.Validate()
	var matched []entity.CreditEntry
	r.s.read(func() {
		for i := len(r.s.entries) - 1; i >= 0; i-- {
			if r.s.entries[i].CustomerID == customerID {
				matched = append(matched, r.s.entries[i])
			}
		}
	})
	start, end := params.Window(len(matched))
	return matched[start:end], int64(len(matched)), nil
}

type customerRepository struct{ s *Store }

// Customers returns the customer repository backed by this store.
func (s *Store) Customers() repository.CustomerRepository { return &customerRepository{s: s} }

func (r *customerRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Customer, error) {
	var out *entity.Customer
	r.s.read(func() {
		if c, ok := r.s.customers[id]; ok {
			out = &c
		}
	})
	return out, nil
}

func (r *customerRepository) Ensure(ctx context.Context, customer *entity.Customer) error {
	return r.s.write(ctx, "Customers.Ensure", func() error {
		if customer.ID == uuid.Nil {
			customer.ID = uuid.New()
		}
		if _, ok := r.s.customers[customer.ID]; ok {
			return nil
		}
		now := r.s.now()
		customer.CreatedAt = now
		customer.UpdatedAt = now
		r.s.customers[customer.ID] = *customer
		return nil
	})
}
