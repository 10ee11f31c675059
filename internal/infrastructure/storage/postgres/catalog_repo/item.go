// Package catalog_repo provides PostgreSQL implementations for the catalog
// repositories.
package catalog_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"sitestock/internal/core/apperror"
	"sitestock/internal/core/id"
	"sitestock/internal/domain/catalogs/item"
	"sitestock/internal/infrastructure/storage/postgres"
)

const itemsTable = "stock_items"

var itemColumns = []string{
	"id", "company_id", "name", "unit", "reorder_level",
	"is_active", "created_at", "updated_at",
}

// ItemRepo implements item.Repository.
type ItemRepo struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType
}

// NewItemRepo creates a new item catalog repository.
func NewItemRepo(txm *postgres.TxManager) *ItemRepo {
	return &ItemRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a new stock item.
func (r *ItemRepo) Create(ctx context.Context, it *item.StockItem) error {
	q := r.builder.Insert(itemsTable).
		Columns(itemColumns...).
		Values(it.ID, it.CompanyID, it.Name, it.Unit, it.ReorderLevel,
			it.IsActive, it.CreatedAt, it.UpdatedAt)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert item: %w", err)
	}

	return nil
}

// Update stores changes to an existing item.
func (r *ItemRepo) Update(ctx context.Context, it *item.StockItem) error {
	q := r.builder.Update(itemsTable).
		Set("name", it.Name).
		Set("unit", it.Unit).
		Set("reorder_level", it.ReorderLevel).
		Set("is_active", it.IsActive).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": it.ID, "company_id": it.CompanyID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	tag, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("stock item", it.ID.String())
	}

	return nil
}

// GetByID returns one item scoped to the company.
func (r *ItemRepo) GetByID(ctx context.Context, companyID, itemID id.ID) (*item.StockItem, error) {
	q := r.builder.Select(itemColumns...).
		From(itemsTable).
		Where(squirrel.Eq{"id": itemID, "company_id": companyID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var it item.StockItem
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &it, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("stock item", itemID.String())
		}
		return nil, fmt.Errorf("get item: %w", err)
	}

	return &it, nil
}

// ListByCompany returns the company's items ordered by name.
func (r *ItemRepo) ListByCompany(ctx context.Context, companyID id.ID, includeInactive bool) ([]item.StockItem, error) {
	q := r.builder.Select(itemColumns...).
		From(itemsTable).
		Where(squirrel.Eq{"company_id": companyID})

	if !includeInactive {
		q = q.Where(squirrel.Eq{"is_active": true})
	}

	q = q.OrderBy("name", "id")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []item.StockItem
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &items, sql, args...); err != nil {
		return nil, fmt.Errorf("select items: %w", err)
	}

	return items, nil
}

// Deactivate soft-deletes an item.
func (r *ItemRepo) Deactivate(ctx context.Context, companyID, itemID id.ID) error {
	q := r.builder.Update(itemsTable).
		Set("is_active", false).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": itemID, "company_id": companyID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	tag, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("deactivate item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("stock item", itemID.String())
	}

	return nil
}

// Ensure interface compliance.
var _ item.Repository = (*ItemRepo)(nil)
