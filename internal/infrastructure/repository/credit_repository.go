package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sangkips/checkout-api/internal/domain/entity"
	domainRepo "github.com/sangkips/checkout-api/internal/domain/repository"
	"github.com/sangkips/checkout-api/pkg/pagination"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type creditRepository struct {
	db *gorm.DB
}

// NewCreditAccountRepository creates a new credit account repository
func NewCreditAccountRepository(db *gorm.DB) domainRepo.CreditAccountRepository {
	return &creditRepository{db: db}
}

func (r *creditRepository) Get(ctx context.Context, customerID uuid.UUID) (*entity.CreditAccount, error) {
	var account entity.CreditAccount
	err := conn(ctx, r.db).First(&account, "customer_id = ?", customerID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &account, err
}

// GetForUpdate issues SELECT ... FOR UPDATE; the lock is held until the surrounding transaction ends.
func (r *creditRepository) GetForUpdate(ctx context.Context, customerID uuid.UUID) (*entity.CreditAccount, error) {
	var account entity.CreditAccount
	err := conn(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&account, "customer_id = ?", customerID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &account, err
}

func (r *creditRepository) Save(ctx context.Context, account *entity.CreditAccount) error {
	return conn(ctx, r.db).Save(account).Error
}

func (r *creditRepository) AddEntry(ctx context.Context, entry *entity.CreditEntry) error {
	return conn(ctx, r.db).Create(entry).Error
}

func (r *creditRepository) ListEntries(ctx context.Context, customerID uuid.UUID, params *pagination.PaginationParams) ([]entity.CreditEntry, int64, error) {
	var entries []entity.CreditEntry
	var total int64

	query := conn(ctx, r.db).Model(&entity.CreditEntry{}).Where("customer_id = ?", customerID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Order("created_at DESC").
		Scopes(Paginate(params)).
		Find(&entries).Error
	return entries, total, err
}
