package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/sangkips/checkout-api/internal/domain/entity"
	"github.com/sangkips/checkout-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

type catalogRepository struct{ s *Store }

// Catalog returns the product repository backed by this store.
func (s *Store) Catalog() repository.CatalogRepository { return &catalogRepository{s: s} }

func (r *catalogRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	var out *entity.Product
	r.s.read(func() {
		if p, ok := r.s.products[id]; ok {
			out = &p
		}
	})
	return out, nil
}

func (r *catalogRepository) GetByBarcode(ctx context.Context, barcode string) (*entity.Product, error) {
	var out *entity.Product
	r.s.read(func() {
		for _, p := range r.s.products {
			if p.Barcode == barcode {
				p := p
				out = &p
				return
			}
		}
	})
	return out, nil
}

func (r *catalogRepository) Search(ctx context.Context, fragment string, limit int) ([]entity.Product, error) {
	needle := strings.ToLower(strings.TrimSpace(fragment))
	var out []entity.Product
	r.s.read(func() {
		for _, p := range r.s.products {
			if p.Active && strings.Contains(strings.ToLower(p.Name), needle) {
				out = append(out, p)
			}
		}
	})
	sortProducts(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *catalogRepository) ListActive(ctx context.Context) ([]entity.Product, error) {
	var out []entity.Product
	r.s.read(func() {
		for _, p := range r.s.products {
			if p.Active {
				out = append(out, p)
			}
		}
	})
	sortProducts(out)
	return out, nil
}

func (r *catalogRepository) Save(ctx context.Context, product *entity.Product) error {
	return r.s.write(ctx, "Catalog.Save", func() error {
		if product.ID == uuid.Nil {
			product.ID = uuid.New()
		}
		now := r.s.now()
		if product.CreatedAt.IsZero() {
			product.CreatedAt = now
		}
		product.UpdatedAt = now
		stored := *product
		stored.Batches = nil
		r.s.products[product.ID] = stored
		return nil
	})
}

func sortProducts(ps []entity.Product) {
	sort.Slice(ps, func(i, j int) bool {
		if ps[i].Name != ps[j].Name {
			return ps[i].Name < ps[j].Name
		}
		return ps[i].ID.String() < ps[j].ID.String()
	})
}

type batchRepository struct{ s *Store }

// Batches returns the batch repository backed by this store.
func (s *Store) Batches() repository.BatchRepository { return &batchRepository{s: s} }

func (r *batchRepository) Create(ctx context.Context, batch *entity.Batch) error {
	return r.s.write(ctx, "Batches.Create", func() error {
		if batch.ID == uuid.Nil {
			batch.ID = uuid.New()
		}
		r.s.batchSeq++
		batch.Sequence = r.s.batchSeq
		now := r.s.now()
		batch.CreatedAt = now
		batch.UpdatedAt = now
		r.s.batches[batch.ID] = *batch
		return nil
	})
}

func (r *batchRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Batch, error) {
	var out *entity.Batch
	r.s.read(func() {
		if b, ok := r.s.batches[id]; ok {
			out = &b
		}
	})
	return out, nil
}

func (r *batchRepository) ListByProduct(ctx context.Context, productID uuid.UUID) ([]entity.Batch, error) {
	return r.ListByProducts(ctx, []uuid.UUID{productID})
}

func (r *batchRepository) ListByProducts(ctx context.Context, productIDs []uuid.UUID) ([]entity.Batch, error) {
	wanted := make(map[uuid.UUID]struct{}, len(productIDs))
	for _, id := range productIDs {
		wanted[id] = struct{}{}
	}
	var out []entity.Batch
	r.s.read(func() {
		for _, b := range r.s.batches {
			if _, ok := wanted[b.ProductID]; ok && b.Quantity.IsPositive() {
				out = append(out, b)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Sequence < out[j].Sequence })
	return out, nil
}

func (r *batchRepository) DecrementIfAvailable(ctx context.Context, id uuid.UUID, qty decimal.Decimal) (bool, error) {
	ok := false
	err := r.s.write(ctx, "Batches.DecrementIfAvailable", func() error {
		b, found := r.s.batches[id]
		if !found || b.Quantity.LessThan(qty) {
			return nil
		}
		b.Quantity = b.Quantity.Sub(qty)
		b.UpdatedAt = r.s.now()
		r.s.batches[id] = b
		ok = true
		return nil
	})
	return ok, err
}

type movementRepository struct{ s *Store }

// Movements returns the stock movement repository backed by this store.
func (s *Store) Movements() repository.StockMovementRepository { return &movementRepository{s: s} }

func (r *movementRepository) Create(ctx context.Context, m *entity.StockMovement) error {
	return r.s.write(ctx, "Movements.Create", func() error {
		if m.ID == uuid.Nil {
			m.ID = uuid.New()
		}
		m.CreatedAt = r.s.now()
		r.s.movements = append(r.s.movements, *m)
		return nil
	})
}

func (r *movementRepository) ListByBatch(ctx context.Context, batchID uuid.UUID) ([]entity.StockMovement, error) {
	var out []entity.StockMovement
	r.s.read(func() {
		for _, m := range r.s.movements {
			if m.BatchID == batchID {
				out = append(out, m)
			}
		}
	})
	return out, nil
}
