package stock

import (
	"context"
	"fmt"
	"time"

	"sitestock/internal/core/apperror"
	appctx "sitestock/internal/core/context"
	"sitestock/internal/core/id"
	"sitestock/internal/core/tx"
	"sitestock/internal/core/types"
	"sitestock/pkg/logger"
)

// Service provides the stock ledger operations: the transactional adjuster,
// the overview aggregator, reads and reconciliation.
type Service struct {
	repo      Repository
	projects  ProjectResolver
	items     ItemSource
	txManager tx.Manager
	audit     AuditLogger // optional
}

// NewService creates a new stock service. audit may be nil.
func NewService(repo Repository, projects ProjectResolver, items ItemSource, txManager tx.Manager, audit AuditLogger) *Service {
	return &Service{
		repo:      repo,
		projects:  projects,
		items:     items,
		txManager: txManager,
		audit:     audit,
	}
}

// AdjustParams describes one requested balance mutation.
type AdjustParams struct {
	CompanyID id.ID
	ItemID    id.ID

	// Type conveys direction; Quantity must be strictly positive.
	// For TypeAdjust the quantity is the new absolute on-hand level,
	// not a delta.
	Type     MovementType
	Kind     *MovementKind
	Quantity types.Decimal
	UnitCost *types.Decimal

	ProjectID            *id.ID
	DestinationProjectID *id.ID
	VendorID             *id.ID

	// ReferenceType/ReferenceID identify the external event for
	// idempotent application. Both or neither must be set.
	ReferenceType *string
	ReferenceID   *string

	// MovementDate defaults to now when zero.
	MovementDate time.Time
}

// AdjustResult is returned on success.
type AdjustResult struct {
	MovementID id.ID   `json:"movementId"`
	Balance    Balance `json:"balance"`

	// AlreadyApplied is true when the reference was seen before and the
	// existing movement plus current balance were returned unchanged.
	AlreadyApplied bool `json:"alreadyApplied"`
}

func (p *AdjustParams) validate() error {
	if id.IsNil(p.CompanyID) {
		return apperror.NewValidation("companyId is required")
	}
	if id.IsNil(p.ItemID) {
		return apperror.NewValidation("itemId is required")
	}
	if !p.Type.IsValid() {
		return apperror.NewValidation("invalid movement type").
			WithDetail("type", string(p.Type))
	}
	if !p.Quantity.IsPositive() {
		return apperror.NewValidation("quantity must be positive").
			WithDetail("quantity", p.Quantity.String())
	}
	if (p.ReferenceType == nil) != (p.ReferenceID == nil) {
		return apperror.NewValidation("referenceType and referenceId must be supplied together")
	}
	return nil
}

// AdjustStock is the only mutation entry point for stock balances. It runs
// the whole read-modify-write as one transaction: idempotency lookup, locked
// balance read, new balance computation, movement insert, balance upsert.
// A failure leaves no partial movement or balance behind.
func (s *Service) AdjustStock(ctx context.Context, p AdjustParams) (*AdjustResult, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	if p.MovementDate.IsZero() {
		p.MovementDate = time.Now().UTC()
	}

	var result AdjustResult
	var before Balance
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		// Idempotency lookup happens inside the transaction; a separate
		// pre-check would race a concurrent identical request.
		if p.ReferenceType != nil {
			existing, err := s.repo.FindMovementByReference(ctx, p.CompanyID, p.ItemID, p.Type, *p.ReferenceType, *p.ReferenceID)
			if err != nil {
				return fmt.Errorf("find movement by reference: %w", err)
			}
			if existing != nil {
				balance, err := s.repo.GetBalance(ctx, p.CompanyID, p.ItemID)
				if err != nil {
					return fmt.Errorf("get balance: %w", err)
				}
				result = AdjustResult{
					MovementID:     existing.ID,
					Balance:        balance,
					AlreadyApplied: true,
				}
				return nil
			}
		}

		balance, err := s.repo.GetBalanceForUpdate(ctx, p.CompanyID, p.ItemID)
		if err != nil {
			return fmt.Errorf("get balance for update: %w", err)
		}
		before = balance

		newQty, newCost, signedQty, err := s.applyToBalance(balance, p)
		if err != nil {
			return err
		}
		if newQty.IsNegative() {
			return apperror.NewNegativeStock(p.ItemID.String(), newQty.String())
		}
		if newQty.IsZero() {
			// Balance invariant: cost is zero exactly when quantity is.
			newCost = types.Zero()
		}

		movement := &Movement{
			ID:                   id.New(),
			CompanyID:            p.CompanyID,
			ItemID:               p.ItemID,
			Type:                 p.Type,
			Kind:                 p.Kind,
			Quantity:             signedQty,
			UnitCost:             p.UnitCost,
			ProjectID:            p.ProjectID,
			DestinationProjectID: p.DestinationProjectID,
			VendorID:             p.VendorID,
			ReferenceType:        p.ReferenceType,
			ReferenceID:          p.ReferenceID,
			MovementDate:         p.MovementDate,
			CreatedAt:            time.Now().UTC(),
		}
		if err := s.repo.CreateMovement(ctx, movement); err != nil {
			return fmt.Errorf("create movement: %w", err)
		}

		balance.CompanyID = p.CompanyID
		balance.ItemID = p.ItemID
		balance.Quantity = newQty
		balance.AvgCost = newCost
		balance.LastMovementAt = p.MovementDate
		balance.UpdatedAt = time.Now().UTC()
		if err := s.repo.UpsertBalance(ctx, balance); err != nil {
			return fmt.Errorf("upsert balance: %w", err)
		}

		result = AdjustResult{MovementID: movement.ID, Balance: balance}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.AlreadyApplied {
		logger.Info(ctx, "stock adjustment replayed by reference",
			"item_id", p.ItemID,
			"movement_id", result.MovementID,
		)
		return &result, nil
	}

	logger.Info(ctx, "stock adjusted",
		"item_id", p.ItemID,
		"type", p.Type,
		"quantity", p.Quantity,
		"new_qty", result.Balance.Quantity,
		"new_avg_cost", result.Balance.AvgCost,
	)

	if s.audit != nil {
		rec := AdjustmentRecord{
			CompanyID:     p.CompanyID,
			ItemID:        p.ItemID,
			MovementID:    result.MovementID,
			Actor:         appctx.GetActor(ctx),
			Type:          p.Type,
			Kind:          p.Kind,
			Quantity:      p.Quantity,
			UnitCost:      p.UnitCost,
			ReferenceType: p.ReferenceType,
			ReferenceID:   p.ReferenceID,
			Before:        before,
			Balance:       result.Balance,
		}
		if err := s.audit.LogAdjustment(ctx, rec); err != nil {
			logger.Warn(ctx, "audit log failed", "movement_id", result.MovementID, "error", err)
		}
	}

	return &result, nil
}

// applyToBalance computes the new balance and the signed quantity to store
// on the movement row.
func (s *Service) applyToBalance(balance Balance, p AdjustParams) (newQty, newCost, signedQty types.Decimal, err error) {
	newCost = balance.AvgCost

	switch p.Type {
	case TypeIn:
		newQty = balance.Quantity.Add(p.Quantity)
		if p.UnitCost != nil {
			// Weighted blend against the current persisted balance; the
			// replay path recomputes the same formula over full history.
			blended := balance.Quantity.Mul(balance.AvgCost).Add(p.Quantity.Mul(*p.UnitCost))
			newCost = types.RoundCost(blended.Div(newQty))
		}
		signedQty = p.Quantity

	case TypeOut:
		if balance.Quantity.LessThan(p.Quantity) {
			// Strict rejection, no clamping: the online path prevents
			// negative stock instead of correcting it afterwards.
			return newQty, newCost, signedQty, apperror.NewInsufficientStock(
				p.ItemID.String(),
				p.Quantity.String(),
				balance.Quantity.String(),
			)
		}
		newQty = balance.Quantity.Sub(p.Quantity)
		signedQty = p.Quantity.Neg()

	case TypeAdjust:
		// Quantity is the new absolute on-hand level.
		newQty = p.Quantity
		if p.UnitCost != nil {
			newCost = types.RoundCost(*p.UnitCost)
		}
		signedQty = p.Quantity

	default:
		return newQty, newCost, signedQty, apperror.NewValidation("invalid movement type").
			WithDetail("type", string(p.Type))
	}

	return newQty, newCost, signedQty, nil
}

// GetBalance returns the cached balance for an item.
func (s *Service) GetBalance(ctx context.Context, companyID, itemID id.ID) (Balance, error) {
	if id.IsNil(companyID) || id.IsNil(itemID) {
		return Balance{}, apperror.NewValidation("companyId and itemId are required")
	}
	return s.repo.GetBalance(ctx, companyID, itemID)
}

// ListBalances returns cached balances for a company.
func (s *Service) ListBalances(ctx context.Context, companyID id.ID, f BalanceFilter) ([]Balance, error) {
	if id.IsNil(companyID) {
		return nil, apperror.NewValidation("companyId is required")
	}
	return s.repo.ListBalances(ctx, companyID, f)
}

// MovementHistory returns movements for ledger pages, in replay order.
func (s *Service) MovementHistory(ctx context.Context, companyID id.ID, f MovementFilter) ([]Movement, error) {
	if id.IsNil(companyID) {
		return nil, apperror.NewValidation("companyId is required")
	}
	return s.repo.ListMovements(ctx, companyID, f)
}

// Reconciliation compares an item's cached balance against a full replay of
// its history.
type Reconciliation struct {
	ItemID   id.ID     `json:"itemId"`
	Cached   Balance   `json:"cached"`
	Replayed ItemState `json:"replayed"`

	QuantityMatch bool `json:"quantityMatch"`
	CostMatch     bool `json:"costMatch"`
}

// Reconcile replays the item's full movement history and compares the result
// with the cached balance. A mismatch is not automatically an error: adjust
// movements are applied as absolute levels online but as deltas on replay,
// so histories containing them can legitimately diverge (see package doc).
func (s *Service) Reconcile(ctx context.Context, companyID, itemID id.ID) (*Reconciliation, error) {
	if id.IsNil(companyID) || id.IsNil(itemID) {
		return nil, apperror.NewValidation("companyId and itemId are required")
	}

	movements, err := s.repo.ListMovements(ctx, companyID, MovementFilter{ItemID: &itemID})
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}

	balance, err := s.repo.GetBalance(ctx, companyID, itemID)
	if err != nil {
		return nil, fmt.Errorf("get balance: %w", err)
	}

	state := &ItemState{}
	if replayed := Replay(movements)[itemID]; replayed != nil {
		state = replayed
	}

	return &Reconciliation{
		ItemID:        itemID,
		Cached:        balance,
		Replayed:      *state,
		QuantityMatch: balance.Quantity.Equal(state.OnHandQty),
		CostMatch:     balance.AvgCost.Equal(state.AvgCost),
	}, nil
}
