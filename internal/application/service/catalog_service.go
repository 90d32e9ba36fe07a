package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/checkout-api/internal/domain/entity"
	"github.com/sangkips/checkout-api/internal/domain/repository"
	"github.com/sangkips/checkout-api/pkg/apperror"
	"github.com/sangkips/checkout-api/pkg/utils"
	"github.com/shopspring/decimal"
)

const defaultLookupLimit = 20

// CatalogService answers barcode and name lookups with live stock figures.
type CatalogService struct {
	catalog   repository.CatalogRepository
	inventory *InventoryLedger
}

// NewCatalogService creates a new catalog service
func NewCatalogService(catalog repository.CatalogRepository, inventory *InventoryLedger) *CatalogService {
	return &CatalogService{
		catalog:   catalog,
		inventory: inventory,
	}
}

// BatchView is a batch as shown to the cashier.
type BatchView struct {
	ID        uuid.UUID       `json:"id"`
	Label     string          `json:"label"`
	ExpiresOn *time.Time      `json:"expires_on,omitempty"`
	Quantity  decimal.Decimal `json:"quantity"`
	Expired   bool            `json:"expired"`
}

// CatalogItem is a product with its batches and sellable quantity.
type CatalogItem struct {
	Product   entity.Product  `json:"product"`
	Batches   []BatchView     `json:"batches"`
	Available decimal.Decimal `json:"available"`
}

// Lookup resolves a scanned barcode first and falls back to a name search.
func (s *CatalogService) Lookup(ctx context.Context, query string, limit int) ([]CatalogItem, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperror.NewBadRequestError("Query is required")
	}
	if limit <= 0 || limit > 100 {
		limit = defaultLookupLimit
	}

	product, err := s.catalog.GetByBarcode(ctx, query)
	if err != nil {
		return nil, err
	}
	var products []entity.Product
	if product != nil && product.Active {
		products = []entity.Product{*product}
	} else {
		products, err = s.catalog.Search(ctx, query, limit)
		if err != nil {
			return nil, err
		}
	}
	return s.items(ctx, products)
}

// ResolveBarcode returns the active product carrying barcode.
func (s *CatalogService) ResolveBarcode(ctx context.Context, barcode string) (*entity.Product, error) {
	product, err := s.catalog.GetByBarcode(ctx, strings.TrimSpace(barcode))
	if err != nil {
		return nil, err
	}
	if product == nil || !product.Active {
		return nil, apperror.NewNotFoundError("Product")
	}
	return product, nil
}

// GetProduct returns one product with its stock.
func (s *CatalogService) GetProduct(ctx context.Context, id uuid.UUID) (*CatalogItem, error) {
	product, err := s.catalog.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, apperror.NewNotFoundError("Product")
	}
	items, err := s.items(ctx, []entity.Product{*product})
	if err != nil {
		return nil, err
	}
	return &items[0], nil
}

func (s *CatalogService) items(ctx context.Context, products []entity.Product) ([]CatalogItem, error) {
	items := make([]CatalogItem, 0, len(products))
	if len(products) == 0 {
		return items, nil
	}

	ids := make([]uuid.UUID, len(products))
	for i := range products {
		ids[i] = products[i].ID
	}
	stock, err := s.inventory.StockFor(ctx, ids)
	if err != nil {
		return nil, err
	}

	for _, p := range products {
		st := stock[p.ID]
		batches := make([]BatchView, 0, len(st.Sellable)+len(st.Expired))
		for _, b := range st.Sellable {
			batches = append(batches, BatchView{ID: b.ID, Label: b.Label, ExpiresOn: b.ExpiresOn, Quantity: b.Quantity})
		}
		for _, b := range st.Expired {
			batches = append(batches, BatchView{ID: b.ID, Label: b.Label, ExpiresOn: b.ExpiresOn, Quantity: b.Quantity, Expired: true})
		}
		p.Batches = nil
		items = append(items, CatalogItem{Product: p, Batches: batches, Available: st.Available()})
	}
	return items, nil
}

// CreateProductInput represents the create product input
type CreateProductInput struct {
	Barcode          string
	Name             string
	SalePrice        decimal.Decimal
	CostPrice        decimal.Decimal
	ReorderThreshold decimal.Decimal
}

// CreateProduct registers a product. Used when the host catalog is not connected.
func (s *CatalogService) CreateProduct(ctx context.Context, input *CreateProductInput) (*entity.Product, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperror.NewValidationError([]apperror.FieldError{{Field: "name", Message: "is required"}})
	}
	if input.SalePrice.IsNegative() {
		return nil, apperror.NewInvalidQuantityError("sale_price", input.SalePrice.String())
	}
	if input.CostPrice.IsNegative() {
		return nil, apperror.NewInvalidQuantityError("cost_price", input.CostPrice.String())
	}

	// Auto-generate barcode if not provided
	barcode := strings.TrimSpace(input.Barcode)
	if barcode == "" {
		barcode = utils.GenerateBarcode()
	}

	existing, err := s.catalog.GetByBarcode(ctx, barcode)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperror.NewConflictError("Barcode already exists")
	}

	product := &entity.Product{
		Barcode:          barcode,
		Name:             name,
		SalePrice:        input.SalePrice.Round(2),
		CostPrice:        input.CostPrice.Round(2),
		ReorderThreshold: input.ReorderThreshold,
		Active:           true,
	}
	if err := s.catalog.Save(ctx, product); err != nil {
		return nil, apperror.NewPersistenceError(err)
	}
	return product, nil
}
