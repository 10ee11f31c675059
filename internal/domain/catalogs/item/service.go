package item

import (
	"context"

	"sitestock/internal/core/apperror"
	"sitestock/internal/core/id"
	"sitestock/internal/domain/stock"
	"sitestock/pkg/logger"
)

// Service provides business operations for the item catalog.
type Service struct {
	repo Repository
}

// NewService creates a new item catalog service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create validates and stores a new stock item.
func (s *Service) Create(ctx context.Context, item *StockItem) error {
	if err := item.Validate(ctx); err != nil {
		return err
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return err
	}
	logger.Info(ctx, "stock item created", "id", item.ID, "name", item.Name)
	return nil
}

// Update validates and stores changes to an existing item.
func (s *Service) Update(ctx context.Context, item *StockItem) error {
	if err := item.Validate(ctx); err != nil {
		return err
	}
	if id.IsNil(item.ID) {
		return apperror.NewValidation("id is required")
	}
	return s.repo.Update(ctx, item)
}

// GetByID returns one item scoped to the company.
func (s *Service) GetByID(ctx context.Context, companyID, itemID id.ID) (*StockItem, error) {
	return s.repo.GetByID(ctx, companyID, itemID)
}

// List returns the company's items.
func (s *Service) List(ctx context.Context, companyID id.ID, includeInactive bool) ([]StockItem, error) {
	if id.IsNil(companyID) {
		return nil, apperror.NewValidation("companyId is required")
	}
	return s.repo.ListByCompany(ctx, companyID, includeInactive)
}

// Deactivate soft-deletes an item. Movements referencing it stay untouched.
func (s *Service) Deactivate(ctx context.Context, companyID, itemID id.ID) error {
	return s.repo.Deactivate(ctx, companyID, itemID)
}

// ItemsByCompany implements stock.ItemSource for the overview aggregator.
func (s *Service) ItemsByCompany(ctx context.Context, companyID id.ID) (map[id.ID]stock.ItemInfo, error) {
	items, err := s.repo.ListByCompany(ctx, companyID, true)
	if err != nil {
		return nil, err
	}
	infos := make(map[id.ID]stock.ItemInfo, len(items))
	for _, it := range items {
		infos[it.ID] = stock.ItemInfo{
			ID:           it.ID,
			Name:         it.Name,
			Unit:         it.Unit,
			ReorderLevel: it.ReorderLevel,
		}
	}
	return infos, nil
}

// Ensure interface compliance.
var _ stock.ItemSource = (*Service)(nil)
