package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/checkout-api/internal/domain/entity"
	"github.com/sangkips/checkout-api/internal/domain/repository"
	"github.com/sangkips/checkout-api/pkg/apperror"
	"github.com/sangkips/checkout-api/pkg/pagination"
)

// SaleService reads committed sales
type SaleService struct {
	sales repository.SaleRepository
}

// NewSaleService creates a new sale service
func NewSaleService(sales repository.SaleRepository) *SaleService {
	return &SaleService{sales: sales}
}

// GetSale returns a sale by ID or invoice number
func (s *SaleService) GetSale(ctx context.Context, ref string) (*entity.Sale, error) {
	var (
		sale *entity.Sale
		err  error
	)
	if id, parseErr := uuid.Parse(ref); parseErr == nil {
		sale, err = s.sales.GetByID(ctx, id)
	} else {
		sale, err = s.sales.GetByInvoiceNo(ctx, ref)
	}
	if err != nil {
		return nil, apperror.NewPersistenceError(err)
	}
	if sale == nil {
		return nil, apperror.NewNotFoundError("Sale")
	}
	return sale, nil
}

// ListSales returns committed sales, newest first
func (s *SaleService) ListSales(ctx context.Context, params *repository.SaleFilterParams) (*pagination.PaginatedResult[entity.Sale], error) {
	if params.Pagination == nil {
		params.Pagination = pagination.DefaultPagination()
	}
	params.Pagination.Validate()

	sales, total, err := s.sales.List(ctx, params)
	if err != nil {
		return nil, apperror.NewPersistenceError(err)
	}
	return pagination.NewPaginatedResult(sales, params.Pagination, total), nil
}
