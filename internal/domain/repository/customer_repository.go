package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/checkout-api/internal/domain/entity"
)

// CustomerRepository reads customer identities owned by the host CRM
type CustomerRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Customer, error)
	// Ensure creates the customer if it does not exist yet.
	Ensure(ctx context.Context, customer *entity.Customer) error
}
