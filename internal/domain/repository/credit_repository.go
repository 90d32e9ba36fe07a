package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/checkout-api/internal/domain/entity"
	"github.com/sangkips/checkout-api/pkg/pagination"
)

// CreditAccountRepository persists customer credit balances.
type CreditAccountRepository interface {
	Get(ctx context.Context, customerID uuid.UUID) (*entity.CreditAccount, error)
	// GetForUpdate reads the account and holds a row lock until the unit of work ends.
	GetForUpdate(ctx context.Context, customerID uuid.UUID) (*entity.CreditAccount, error)
	Save(ctx context.Context, account *entity.CreditAccount) error
	AddEntry(ctx context.Context, entry *entity.CreditEntry) error
	ListEntries(ctx context.Context, customerID uuid.UUID, params *pagination.PaginationParams) ([]entity.CreditEntry, int64, error)
}
