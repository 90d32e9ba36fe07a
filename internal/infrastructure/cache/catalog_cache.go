// Package cache keeps hot catalog reads in Redis in front of the database.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/sangkips/checkout-api/internal/domain/entity"
	"github.com/sangkips/checkout-api/internal/domain/repository"
)

const (
	keyByID      = "catalog:product:id:"
	keyByBarcode = "catalog:product:barcode:"
)

// CatalogCache decorates a CatalogRepository with read-through caching of
// single-product lookups. Batch quantities are never cached.
type CatalogCache struct {
	next   repository.CatalogRepository
	client *redis.Client
	ttl    time.Duration
}

// NewCatalogCache wraps next. A non-positive ttl defaults to five minutes.
func NewCatalogCache(next repository.CatalogRepository, client *redis.Client, ttl time.Duration) *CatalogCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CatalogCache{next: next, client: client, ttl: ttl}
}

var _ repository.CatalogRepository = (*CatalogCache)(nil)

func (c *CatalogCache) GetByID(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	return c.cached(ctx, keyByID+id.String(), func() (*entity.Product, error) {
		return c.next.GetByID(ctx, id)
	})
}

func (c *CatalogCache) GetByBarcode(ctx context.Context, barcode string) (*entity.Product, error) {
	return c.cached(ctx, keyByBarcode+barcode, func() (*entity.Product, error) {
		return c.next.GetByBarcode(ctx, barcode)
	})
}

func (c *CatalogCache) Search(ctx context.Context, fragment string, limit int) ([]entity.Product, error) {
	return c.next.Search(ctx, fragment, limit)
}

func (c *CatalogCache) ListActive(ctx context.Context) ([]entity.Product, error) {
	return c.next.ListActive(ctx)
}

// Save writes through and evicts the product's entries.
func (c *CatalogCache) Save(ctx context.Context, product *entity.Product) error {
	var oldBarcode string
	if product.ID != uuid.Nil {
		if old, err := c.next.GetByID(ctx, product.ID); err == nil && old != nil {
			oldBarcode = old.Barcode
		}
	}
	if err := c.next.Save(ctx, product); err != nil {
		return err
	}
	c.Invalidate(ctx, product.ID, product.Barcode, oldBarcode)
	return nil
}

// Invalidate drops the cached entries of a product.
func (c *CatalogCache) Invalidate(ctx context.Context, id uuid.UUID, barcodes ...string) {
	keys := []string{keyByID + id.String()}
	for _, b := range barcodes {
		if b != "" {
			keys = append(keys, keyByBarcode+b)
		}
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		log.Warn().Err(err).Str("product_id", id.String()).Msg("catalog cache eviction failed")
	}
}

// cached serves key from Redis or loads it. Redis errors fall through to the loader.
// Misses (nil products) are not cached.
func (c *CatalogCache) cached(ctx context.Context, key string, load func() (*entity.Product, error)) (*entity.Product, error) {
	raw, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var p entity.Product
		if jerr := json.Unmarshal(raw, &p); jerr == nil {
			return &p, nil
		}
		log.Warn().Str("key", key).Msg("catalog cache entry unreadable, reloading")
	case !errors.Is(err, redis.Nil):
		log.Warn().Err(err).Str("key", key).Msg("catalog cache read failed")
	}

	p, err := load()
	if err != nil || p == nil {
		return p, err
	}

	if data, jerr := json.Marshal(p); jerr == nil {
		if serr := c.client.Set(ctx, key, data, c.ttl).Err(); serr != nil {
			log.Warn().Err(serr).Str("key", key).Msg("catalog cache write failed")
		}
	}
	return p, nil
}
