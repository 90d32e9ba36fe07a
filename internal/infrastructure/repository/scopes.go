package repository

import (
	"context"
	"time"

	"github.com/sangkips/checkout-api/internal/domain/repository"
	"github.com/sangkips/checkout-api/pkg/pagination"
	"gorm.io/gorm"
)

type ctxKey string

// txKey is the context key carrying the active *gorm.DB transaction
const txKey ctxKey = "gorm_tx"

// conn returns the transaction bound to ctx, or the base handle.
// Every repository goes through it so writes join the caller's unit of work.
func conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}

type unitOfWork struct {
	db *gorm.DB
}

// NewUnitOfWork creates a gorm-backed unit of work
func NewUnitOfWork(db *gorm.DB) repository.UnitOfWork {
	return &unitOfWork{db: db}
}

func (u *unitOfWork) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey).(*gorm.DB); ok {
		return fn(ctx)
	}
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey, tx))
	})
}

// Paginate applies offset/limit from the params
func Paginate(p *pagination.PaginationParams) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		p.Validate()
		return db.Offset(p.Offset()).Limit(p.PerPage)
	}
}

// CreatedBetween filters on created_at in [start, end)
func CreatedBetween(start, end *time.Time) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if start != nil {
			db = db.Where("created_at >= ?", *start)
		}
		if end != nil {
			db = db.Where("created_at < ?", *end)
		}
		return db
	}
}
