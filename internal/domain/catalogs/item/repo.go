package item

import (
	"context"

	"sitestock/internal/core/id"
)

// Repository defines persistence operations for the item catalog.
type Repository interface {
	Create(ctx context.Context, item *StockItem) error
	Update(ctx context.Context, item *StockItem) error
	GetByID(ctx context.Context, companyID, itemID id.ID) (*StockItem, error)
	ListByCompany(ctx context.Context, companyID id.ID, includeInactive bool) ([]StockItem, error)
	Deactivate(ctx context.Context, companyID, itemID id.ID) error
}
