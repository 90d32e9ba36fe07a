package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sangkips/checkout-api/internal/domain/entity"
	domainRepo "github.com/sangkips/checkout-api/internal/domain/repository"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type catalogRepository struct {
	db *gorm.DB
}

// NewCatalogRepository creates a new product catalog repository
func NewCatalogRepository(db *gorm.DB) domainRepo.CatalogRepository {
	return &catalogRepository{db: db}
}

func (r *catalogRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	var product entity.Product
	err := conn(ctx, r.db).First(&product, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &product, err
}

func (r *catalogRepository) GetByBarcode(ctx context.Context, barcode string) (*entity.Product, error) {
	var product entity.Product
	err := conn(ctx, r.db).First(&product, "barcode = ?", barcode).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &product, err
}

func (r *catalogRepository) Search(ctx context.Context, fragment string, limit int) ([]entity.Product, error) {
	var products []entity.Product
	query := conn(ctx, r.db).
		Where("active = ?", true).
		Where("name ILIKE ?", "%"+fragment+"%").
		Order("name ASC, id ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&products).Error
	return products, err
}

func (r *catalogRepository) ListActive(ctx context.Context) ([]entity.Product, error) {
	var products []entity.Product
	err := conn(ctx, r.db).
		Where("active = ?", true).
		Order("name ASC, id ASC").
		Find(&products).Error
	return products, err
}

func (r *catalogRepository) Save(ctx context.Context, product *entity.Product) error {
	return conn(ctx, r.db).Omit("Batches").Save(product).Error
}

type batchRepository struct {
	db *gorm.DB
}

// NewBatchRepository creates a new batch repository
func NewBatchRepository(db *gorm.DB) domainRepo.BatchRepository {
	return &batchRepository{db: db}
}

func (r *batchRepository) Create(ctx context.Context, batch *entity.Batch) error {
	return conn(ctx, r.db).Create(batch).Error
}

func (r *batchRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Batch, error) {
	var batch entity.Batch
	err := conn(ctx, r.db).First(&batch, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &batch, err
}

// ListByProduct returns batches in FEFO order. The ledger re-sorts and filters
// expiry itself; ordering here only keeps the SQL plan and result stable.
func (r *batchRepository) ListByProduct(ctx context.Context, productID uuid.UUID) ([]entity.Batch, error) {
	return r.ListByProducts(ctx, []uuid.UUID{productID})
}

func (r *batchRepository) ListByProducts(ctx context.Context, productIDs []uuid.UUID) ([]entity.Batch, error) {
	var batches []entity.Batch
	if len(productIDs) == 0 {
		return batches, nil
	}
	err := conn(ctx, r.db).
		Where("product_id IN ? AND quantity > 0", productIDs).
		Order(clause.OrderBy{Expression: clause.Expr{SQL: "expires_on ASC NULLS LAST, sequence ASC"}}).
		Find(&batches).Error
	return batches, err
}

// DecrementIfAvailable atomically decrements stock only if sufficient quantity exists.
// Uses: UPDATE batches SET quantity = quantity - amount WHERE id = ? AND quantity >= amount
func (r *batchRepository) DecrementIfAvailable(ctx context.Context, id uuid.UUID, qty decimal.Decimal) (bool, error) {
	result := conn(ctx, r.db).Model(&entity.Batch{}).
		Where("id = ? AND quantity >= ?", id, qty).
		Updates(map[string]interface{}{
			"quantity":   gorm.Expr("quantity - ?", qty),
			"updated_at": gorm.Expr("NOW()"),
		})

	if result.Error != nil {
		return false, result.Error
	}

	// If no rows were affected, insufficient stock
	return result.RowsAffected > 0, nil
}

type movementRepository struct {
	db *gorm.DB
}

// NewStockMovementRepository creates a new stock movement repository
func NewStockMovementRepository(db *gorm.DB) domainRepo.StockMovementRepository {
	return &movementRepository{db: db}
}

func (r *movementRepository) Create(ctx context.Context, movement *entity.StockMovement) error {
	return conn(ctx, r.db).Create(movement).Error
}

func (r *movementRepository) ListByBatch(ctx context.Context, batchID uuid.UUID) ([]entity.StockMovement, error) {
	var movements []entity.StockMovement
	err := conn(ctx, r.db).
		Where("batch_id = ?", batchID).
		Order("created_at ASC").
		Find(&movements).Error
	return movements, err
}
