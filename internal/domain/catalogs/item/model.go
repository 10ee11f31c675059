// Package item provides the stock item catalog: the materials a company
// tracks (cement, rebar, aggregate), each with a unit of measure and an
// optional reorder level used as the default low-stock threshold.
package item

import (
	"context"
	"time"

	"sitestock/internal/core/apperror"
	"sitestock/internal/core/id"
	"sitestock/internal/core/types"
)

// StockItem represents one tracked material, owned by a company.
type StockItem struct {
	ID        id.ID `db:"id" json:"id"`
	CompanyID id.ID `db:"company_id" json:"companyId"`

	Name string `db:"name" json:"name"`

	// Unit is the unit of measure the quantities are expressed in.
	Unit string `db:"unit" json:"unit"`

	// ReorderLevel flags the item as low-stock when on-hand falls below it.
	ReorderLevel *types.Decimal `db:"reorder_level" json:"reorderLevel,omitempty"`

	IsActive  bool      `db:"is_active" json:"isActive"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// NewStockItem creates a new StockItem with generated ID.
func NewStockItem(companyID id.ID, name, unit string) *StockItem {
	now := time.Now().UTC()
	return &StockItem{
		ID:        id.New(),
		CompanyID: companyID,
		Name:      name,
		Unit:      unit,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Validate checks required fields.
func (i *StockItem) Validate(ctx context.Context) error {
	if id.IsNil(i.CompanyID) {
		return apperror.NewValidation("companyId is required")
	}
	if i.Name == "" {
		return apperror.NewValidation("name is required").
			WithDetail("field", "name")
	}
	if i.Unit == "" {
		return apperror.NewValidation("unit is required").
			WithDetail("field", "unit")
	}
	if i.ReorderLevel != nil && i.ReorderLevel.IsNegative() {
		return apperror.NewValidation("reorderLevel must not be negative").
			WithDetail("field", "reorderLevel")
	}
	return nil
}
