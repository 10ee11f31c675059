package dto

import (
	"sitestock/internal/core/id"
	"sitestock/internal/core/types"
	"sitestock/internal/domain/catalogs/item"
)

// CreateStockItemRequest is the body of POST /items.
type CreateStockItemRequest struct {
	Name         string         `json:"name" binding:"required"`
	Unit         string         `json:"unit" binding:"required"`
	ReorderLevel *types.Decimal `json:"reorderLevel"`
}

// ToModel builds a catalog entry from the request.
func (r *CreateStockItemRequest) ToModel(companyID id.ID) *item.StockItem {
	m := item.NewStockItem(companyID, r.Name, r.Unit)
	m.ReorderLevel = r.ReorderLevel
	return m
}

// UpdateStockItemRequest is the body of PUT /items/:id.
type UpdateStockItemRequest struct {
	Name         string         `json:"name" binding:"required"`
	Unit         string         `json:"unit" binding:"required"`
	ReorderLevel *types.Decimal `json:"reorderLevel"`
	IsActive     *bool          `json:"isActive"`
}

// Apply overlays the request onto an existing catalog entry.
func (r *UpdateStockItemRequest) Apply(m *item.StockItem) {
	m.Name = r.Name
	m.Unit = r.Unit
	m.ReorderLevel = r.ReorderLevel
	if r.IsActive != nil {
		m.IsActive = *r.IsActive
	}
}
