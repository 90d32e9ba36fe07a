package memory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/checkout-api/internal/domain/entity"
	"github.com/sangkips/checkout-api/internal/domain/repository"
)

type idempotencyRepository struct{ s *Store }

// Idempotency returns the idempotency key repository backed by this store.
func (s *Store) Idempotency() repository.IdempotencyRepository {
	return &idempotencyRepository{s: s}
}

func idemKey(key string, operatorID uuid.UUID) string {
	return operatorID.String() + "/" + key
}

func (r *idempotencyRepository) GetByKey(ctx context.Context, key string, operatorID uuid.UUID) (*entity.IdempotencyKey, error) {
	var out *entity.IdempotencyKey
	r.s.read(func() {
		if k, ok := r.s.idem[idemKey(key, operatorID)]; ok {
			out = &k
		}
	})
	return out, nil
}

func (r *idempotencyRepository) Create(ctx context.Context, ikey *entity.IdempotencyKey) error {
	return r.s.write(ctx, "Idempotency.Create", func() error {
		if ikey.ID == uuid.Nil {
			ikey.ID = uuid.New()
		}
		ikey.CreatedAt = r.s.now()
		r.s.idem[idemKey(ikey.Key, ikey.OperatorID)] = *ikey
		return nil
	})
}

func (r *idempotencyRepository) DeleteExpired(ctx context.Context, now time.Time) error {
	return r.s.write(ctx, "Idempotency.DeleteExpired", func() error {
		for k, v := range r.s.idem {
			if v.IsExpired(now) {
				delete(r.s.idem, k)
			}
		}
		return nil
	})
}
