package stock

import (
	"context"
	"time"

	"sitestock/internal/core/id"
	"sitestock/internal/core/types"
)

// Repository defines persistence operations for the stock ledger.
// All methods participate in the caller's transaction when one is carried
// in the context.
type Repository interface {
	// CreateMovement appends one movement. Movements are immutable.
	CreateMovement(ctx context.Context, m *Movement) error

	// FindMovementByReference returns the movement already recorded for an
	// external reference, or nil when none exists. Must be called inside
	// the adjusting transaction so the idempotency check and the mutation
	// are atomic.
	FindMovementByReference(ctx context.Context, companyID, itemID id.ID, mType MovementType, refType, refID string) (*Movement, error)

	// ListMovements returns movements for reporting, filtered and in
	// canonical replay order.
	ListMovements(ctx context.Context, companyID id.ID, f MovementFilter) ([]Movement, error)

	// ListMovementsForScope returns all movements visible to a scope in
	// canonical replay order. A nil projectID means company-wide. Transfers
	// whose destination is the scope are included even when their primary
	// project differs.
	ListMovementsForScope(ctx context.Context, companyID id.ID, projectID *id.ID) ([]Movement, error)

	// GetBalance returns the cached balance, zero-valued when absent.
	GetBalance(ctx context.Context, companyID, itemID id.ID) (Balance, error)

	// GetBalanceForUpdate returns the balance with a row lock, creating the
	// zero row when the item has none so concurrent first writers queue on
	// it. Serializes concurrent adjusters on the same item.
	GetBalanceForUpdate(ctx context.Context, companyID, itemID id.ID) (Balance, error)

	// UpsertBalance writes the cached balance row.
	UpsertBalance(ctx context.Context, b Balance) error

	// ListBalances returns cached balances for a company.
	ListBalances(ctx context.Context, companyID id.ID, f BalanceFilter) ([]Balance, error)

	// GetThresholds returns per-item minimum-quantity overrides for a scope.
	// Project-level overrides shadow company-wide ones.
	GetThresholds(ctx context.Context, companyID id.ID, projectID *id.ID) (map[id.ID]types.Decimal, error)
}

// MovementFilter narrows movement listings.
type MovementFilter struct {
	ItemID    *id.ID
	ProjectID *id.ID
	Type      *MovementType
	FromDate  *time.Time
	ToDate    *time.Time
	Limit     int
	Offset    int
}

// BalanceFilter narrows balance listings.
type BalanceFilter struct {
	ItemIDs     []id.ID
	ExcludeZero bool
}

// ProjectResolver validates that a reporting scope belongs to the company.
// Implemented by the project catalog.
type ProjectResolver interface {
	Exists(ctx context.Context, companyID, projectID id.ID) (bool, error)
}

// ItemInfo is the catalog data the overview needs per item.
type ItemInfo struct {
	ID           id.ID
	Name         string
	Unit         string
	ReorderLevel *types.Decimal
}

// ItemSource supplies catalog data for display names and default low-stock
// thresholds. Implemented by the item catalog.
type ItemSource interface {
	ItemsByCompany(ctx context.Context, companyID id.ID) (map[id.ID]ItemInfo, error)
}

// AdjustmentRecord describes one applied adjustment for the audit trail.
// Before and Balance frame the adjustment: the locked balance as read and
// the balance as written.
type AdjustmentRecord struct {
	CompanyID  id.ID
	ItemID     id.ID
	MovementID id.ID
	Actor      string

	Type     MovementType
	Kind     *MovementKind
	Quantity types.Decimal
	UnitCost *types.Decimal

	ReferenceType *string
	ReferenceID   *string

	Before  Balance
	Balance Balance
}

// AuditLogger records applied adjustments. Implementations must not fail the
// adjustment itself; logging is best-effort after commit.
type AuditLogger interface {
	LogAdjustment(ctx context.Context, rec AdjustmentRecord) error
}
