package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/checkout-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// CatalogRepository is the read side of the product catalog.
// Lookups return (nil, nil) when nothing matches.
type CatalogRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Product, error)
	GetByBarcode(ctx context.Context, barcode string) (*entity.Product, error)
	// Search matches active products by case-insensitive name fragment.
	Search(ctx context.Context, fragment string, limit int) ([]entity.Product, error)
	// ListActive returns every active product, ordered by name.
	ListActive(ctx context.Context) ([]entity.Product, error)
	// Save inserts or updates a product; used by seeding and tests, the host owns real edits.
	Save(ctx context.Context, product *entity.Product) error
}

// BatchRepository persists lot quantities.
type BatchRepository interface {
	Create(ctx context.Context, batch *entity.Batch) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Batch, error)
	// ListByProduct returns all batches of a product with quantity > 0.
	ListByProduct(ctx context.Context, productID uuid.UUID) ([]entity.Batch, error)
	// ListByProducts is ListByProduct for several products in one query.
	ListByProducts(ctx context.Context, productIDs []uuid.UUID) ([]entity.Batch, error)
	// DecrementIfAvailable subtracts qty only if quantity >= qty.
	// Returns (false, nil) when stock is insufficient.
	DecrementIfAvailable(ctx context.Context, id uuid.UUID, qty decimal.Decimal) (bool, error)
}

// StockMovementRepository persists the decrement/intake trail.
type StockMovementRepository interface {
	Create(ctx context.Context, movement *entity.StockMovement) error
	ListByBatch(ctx context.Context, batchID uuid.UUID) ([]entity.StockMovement, error)
}
