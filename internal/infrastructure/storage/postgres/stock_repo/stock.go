// Package stock_repo provides the PostgreSQL implementation of the stock
// ledger repository.
package stock_repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgconn"

	"sitestock/internal/core/apperror"
	"sitestock/internal/core/id"
	"sitestock/internal/core/types"
	"sitestock/internal/domain/stock"
	"sitestock/internal/infrastructure/storage/postgres"
)

const (
	movementsTable  = "stock_movements"
	balancesTable   = "stock_balances"
	thresholdsTable = "stock_thresholds"

	pgUniqueViolation = "23505"
)

var movementColumns = []string{
	"id", "company_id", "item_id", "type", "kind",
	"quantity", "unit_cost",
	"project_id", "destination_project_id", "vendor_id",
	"reference_type", "reference_id",
	"movement_date", "created_at",
}

// canonicalOrder is the replay order: business date, insert time, id as text.
var canonicalOrder = []string{"movement_date", "created_at", "id::text"}

// querierSource yields the statement executor bound to the calling
// transaction, or the pool outside one.
type querierSource interface {
	GetQuerier(ctx context.Context) postgres.Querier
}

// StockRepo implements stock.Repository.
type StockRepo struct {
	txm     querierSource
	builder squirrel.StatementBuilderType
}

// NewStockRepo creates a new stock ledger repository.
func NewStockRepo(txm *postgres.TxManager) *StockRepo {
	return &StockRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// CreateMovement appends one movement row.
func (r *StockRepo) CreateMovement(ctx context.Context, m *stock.Movement) error {
	q := r.builder.Insert(movementsTable).
		Columns(movementColumns...).
		Values(
			m.ID, m.CompanyID, m.ItemID, m.Type, m.Kind,
			m.Quantity, m.UnitCost,
			m.ProjectID, m.DestinationProjectID, m.VendorID,
			m.ReferenceType, m.ReferenceID,
			m.MovementDate, m.CreatedAt,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		// The partial unique index on the reference columns catches the
		// race the row lock cannot see: two first-time inserts for the
		// same external event. Retry-safe for the caller.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return apperror.NewConcurrentModification("stock_movement", m.ID.String()).WithCause(err)
		}
		return fmt.Errorf("insert movement: %w", err)
	}

	return nil
}

// FindMovementByReference returns the movement recorded for an external
// reference, or nil when none exists.
func (r *StockRepo) FindMovementByReference(ctx context.Context, companyID, itemID id.ID, mType stock.MovementType, refType, refID string) (*stock.Movement, error) {
	q := r.builder.Select(movementColumns...).
		From(movementsTable).
		Where(squirrel.Eq{
			"company_id":     companyID,
			"item_id":        itemID,
			"type":           mType,
			"reference_type": refType,
			"reference_id":   refID,
		}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var m stock.Movement
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &m, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("find movement by reference: %w", err)
	}

	return &m, nil
}

// ListMovements returns filtered movements in canonical replay order.
func (r *StockRepo) ListMovements(ctx context.Context, companyID id.ID, f stock.MovementFilter) ([]stock.Movement, error) {
	q := r.builder.Select(movementColumns...).
		From(movementsTable).
		Where(squirrel.Eq{"company_id": companyID})

	if f.ItemID != nil {
		q = q.Where(squirrel.Eq{"item_id": *f.ItemID})
	}
	if f.ProjectID != nil {
		q = q.Where(squirrel.Eq{"project_id": *f.ProjectID})
	}
	if f.Type != nil {
		q = q.Where(squirrel.Eq{"type": *f.Type})
	}
	if f.FromDate != nil {
		q = q.Where(squirrel.GtOrEq{"movement_date": *f.FromDate})
	}
	if f.ToDate != nil {
		q = q.Where(squirrel.LtOrEq{"movement_date": *f.ToDate})
	}

	q = q.OrderBy(canonicalOrder...)

	if f.Limit > 0 {
		q = q.Limit(uint64(f.Limit))
	}
	if f.Offset > 0 {
		q = q.Offset(uint64(f.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var movements []stock.Movement
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &movements, sql, args...); err != nil {
		return nil, fmt.Errorf("select movements: %w", err)
	}

	return movements, nil
}

// ListMovementsForScope returns movements visible to a scope. Transfers
// whose destination is the scope count even when their primary project
// differs.
func (r *StockRepo) ListMovementsForScope(ctx context.Context, companyID id.ID, projectID *id.ID) ([]stock.Movement, error) {
	q := r.builder.Select(movementColumns...).
		From(movementsTable).
		Where(squirrel.Eq{"company_id": companyID})

	if projectID != nil {
		q = q.Where(squirrel.Or{
			squirrel.Eq{"project_id": *projectID},
			squirrel.And{
				squirrel.Eq{"destination_project_id": *projectID},
				squirrel.Eq{"kind": stock.KindTransferIn},
			},
		})
	}

	q = q.OrderBy(canonicalOrder...)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var movements []stock.Movement
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &movements, sql, args...); err != nil {
		return nil, fmt.Errorf("select movements for scope: %w", err)
	}

	return movements, nil
}

// GetBalance returns the cached balance, zero-valued when absent.
func (r *StockRepo) GetBalance(ctx context.Context, companyID, itemID id.ID) (stock.Balance, error) {
	var balance stock.Balance

	q := r.builder.Select(
		"company_id", "item_id", "quantity", "avg_cost",
		"last_movement_at", "updated_at",
	).From(balancesTable).
		Where(squirrel.Eq{
			"company_id": companyID,
			"item_id":    itemID,
		}).Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return balance, fmt.Errorf("build query: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &balance, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return zeroBalance(companyID, itemID), nil
		}
		return balance, fmt.Errorf("get balance: %w", err)
	}

	return balance, nil
}

// GetBalanceForUpdate returns the balance with a pessimistic row lock.
// Concurrent adjusters on the same item queue here. A missing row gives
// the lock nothing to grip, so the zero row is materialized first and the
// select retried; concurrent first writers then serialize on the inserted
// row instead of both proceeding from an unlocked zero read.
func (r *StockRepo) GetBalanceForUpdate(ctx context.Context, companyID, itemID id.ID) (stock.Balance, error) {
	const lockSQL = `
		SELECT company_id, item_id, quantity, avg_cost, last_movement_at, updated_at
		FROM stock_balances
		WHERE company_id = $1 AND item_id = $2
		FOR UPDATE
	`

	querier := r.txm.GetQuerier(ctx)

	var balance stock.Balance
	err := pgxscan.Get(ctx, querier, &balance, lockSQL, companyID, itemID)
	if err == nil {
		return balance, nil
	}
	if !pgxscan.NotFound(err) {
		return balance, fmt.Errorf("get balance for update: %w", err)
	}

	const initSQL = `
		INSERT INTO stock_balances (company_id, item_id, quantity, avg_cost, last_movement_at, updated_at)
		VALUES ($1, $2, 0, 0, now(), now())
		ON CONFLICT (company_id, item_id) DO NOTHING
	`
	if _, err := querier.Exec(ctx, initSQL, companyID, itemID); err != nil {
		return balance, fmt.Errorf("init balance row: %w", err)
	}

	if err := pgxscan.Get(ctx, querier, &balance, lockSQL, companyID, itemID); err != nil {
		return balance, fmt.Errorf("lock balance row: %w", err)
	}

	return balance, nil
}

// UpsertBalance writes the cached balance row.
func (r *StockRepo) UpsertBalance(ctx context.Context, b stock.Balance) error {
	q := r.builder.Insert(balancesTable).
		Columns(
			"company_id", "item_id", "quantity", "avg_cost",
			"last_movement_at", "updated_at",
		).
		Values(b.CompanyID, b.ItemID, b.Quantity, b.AvgCost, b.LastMovementAt, b.UpdatedAt).
		Suffix(`ON CONFLICT (company_id, item_id) DO UPDATE SET
			quantity = EXCLUDED.quantity,
			avg_cost = EXCLUDED.avg_cost,
			last_movement_at = EXCLUDED.last_movement_at,
			updated_at = EXCLUDED.updated_at`)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build upsert: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("upsert balance: %w", err)
	}

	return nil
}

// ListBalances returns cached balances for a company.
func (r *StockRepo) ListBalances(ctx context.Context, companyID id.ID, f stock.BalanceFilter) ([]stock.Balance, error) {
	q := r.builder.Select(
		"company_id", "item_id", "quantity", "avg_cost",
		"last_movement_at", "updated_at",
	).From(balancesTable).
		Where(squirrel.Eq{"company_id": companyID})

	if len(f.ItemIDs) > 0 {
		q = q.Where(squirrel.Eq{"item_id": f.ItemIDs})
	}
	if f.ExcludeZero {
		q = q.Where(squirrel.NotEq{"quantity": 0})
	}

	q = q.OrderBy("item_id")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var balances []stock.Balance
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &balances, sql, args...); err != nil {
		return nil, fmt.Errorf("select balances: %w", err)
	}

	return balances, nil
}

// GetThresholds returns per-item minimum quantities for a scope. A project
// row shadows the company-wide row for the same item.
func (r *StockRepo) GetThresholds(ctx context.Context, companyID id.ID, projectID *id.ID) (map[id.ID]types.Decimal, error) {
	scope := squirrel.Or{squirrel.Eq{"project_id": nil}}
	if projectID != nil {
		scope = append(scope, squirrel.Eq{"project_id": *projectID})
	}

	q := r.builder.Select("item_id", "min_quantity", "project_id").
		From(thresholdsTable).
		Where(squirrel.Eq{"company_id": companyID}).
		Where(scope).
		OrderBy("project_id NULLS FIRST")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	type row struct {
		ItemID      id.ID         `db:"item_id"`
		MinQuantity types.Decimal `db:"min_quantity"`
		ProjectID   *id.ID        `db:"project_id"`
	}

	var rows []row
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("select thresholds: %w", err)
	}

	// Company-wide rows come first; project rows overwrite them.
	thresholds := make(map[id.ID]types.Decimal, len(rows))
	for _, r := range rows {
		thresholds[r.ItemID] = r.MinQuantity
	}

	return thresholds, nil
}

func zeroBalance(companyID, itemID id.ID) stock.Balance {
	return stock.Balance{
		CompanyID: companyID,
		ItemID:    itemID,
		Quantity:  types.Zero(),
		AvgCost:   types.Zero(),
	}
}

// Ensure interface compliance.
var _ stock.Repository = (*StockRepo)(nil)
