package repository

import "context"

// UnitOfWork groups repository writes so they all commit or all roll back.
// Repositories called with the ctx passed to fn take part in the same unit.
// Nested calls join the outer unit.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}
