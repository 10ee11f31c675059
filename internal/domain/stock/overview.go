package stock

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"sitestock/internal/core/apperror"
	"sitestock/internal/core/id"
	"sitestock/internal/core/types"
)

// Scope selects the reporting boundary: one project, or company-wide when
// ProjectID is nil.
type Scope struct {
	ProjectID *id.ID
}

// OverviewItem is the per-item breakdown of the stock overview.
type OverviewItem struct {
	ItemID id.ID  `json:"itemId"`
	Name   string `json:"name"`
	Unit   string `json:"unit"`

	OpeningQty    types.Decimal `json:"openingQty"`
	OpeningValue  types.Decimal `json:"openingValue"`
	ReceivedQty   types.Decimal `json:"receivedQty"`
	ReceivedValue types.Decimal `json:"receivedValue"`
	IssuedQty     types.Decimal `json:"issuedQty"`
	IssuedValue   types.Decimal `json:"issuedValue"`
	WastageQty    types.Decimal `json:"wastageQty"`
	WastageValue  types.Decimal `json:"wastageValue"`

	RemainingQty types.Decimal `json:"remainingQty"`
	AvgCost      types.Decimal `json:"avgCost"`
	TotalValue   types.Decimal `json:"totalValue"`

	MinQuantity types.Decimal `json:"minQuantity"`
	IsLowStock  bool          `json:"isLowStock"`
}

// OverviewSummary aggregates the scope totals.
type OverviewSummary struct {
	TotalQtyOnHand      types.Decimal `json:"totalQtyOnHand"`
	TotalStockValue     types.Decimal `json:"totalStockValue"`
	UsedStockValue      types.Decimal `json:"usedStockValue"`
	RemainingStockValue types.Decimal `json:"remainingStockValue"`
	WastageValue        types.Decimal `json:"wastageValue"`

	// Shares of remaining+used value; zero when nothing moved.
	UsedPercentage      types.Decimal `json:"usedPercentage"`
	RemainingPercentage types.Decimal `json:"remainingPercentage"`
}

// Overview is the reporting shape consumed by dashboards and ledger pages.
type Overview struct {
	Summary OverviewSummary `json:"summary"`
	Items   []OverviewItem  `json:"items"`
}

// GetOverview replays the scope's movement history into a valuation report.
//
// Runs without locks; the result may trail adjustments committed while it
// was being computed (eventually consistent at read time).
func (s *Service) GetOverview(ctx context.Context, companyID id.ID, scope Scope) (*Overview, error) {
	if id.IsNil(companyID) {
		return nil, apperror.NewValidation("companyId is required")
	}

	if scope.ProjectID != nil {
		exists, err := s.projects.Exists(ctx, companyID, *scope.ProjectID)
		if err != nil {
			return nil, fmt.Errorf("resolve project: %w", err)
		}
		if !exists {
			return nil, apperror.NewNotFound("project", scope.ProjectID.String())
		}
	}

	movements, err := s.repo.ListMovementsForScope(ctx, companyID, scope.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}

	thresholds, err := s.repo.GetThresholds(ctx, companyID, scope.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("get thresholds: %w", err)
	}

	catalog, err := s.items.ItemsByCompany(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("load items: %w", err)
	}

	states := Replay(movements)

	overview := &Overview{Items: make([]OverviewItem, 0, len(states))}
	summary := &overview.Summary
	summary.TotalQtyOnHand = types.Zero()
	summary.TotalStockValue = types.Zero()
	summary.UsedStockValue = types.Zero()
	summary.RemainingStockValue = types.Zero()
	summary.WastageValue = types.Zero()

	for itemID, state := range states {
		info := catalog[itemID]

		minQty := types.Zero()
		if override, ok := thresholds[itemID]; ok {
			minQty = override
		} else if info.ReorderLevel != nil {
			minQty = *info.ReorderLevel
		}

		remaining := state.OnHandQty
		totalValue := state.RemainingValue()

		overview.Items = append(overview.Items, OverviewItem{
			ItemID:        itemID,
			Name:          info.Name,
			Unit:          info.Unit,
			OpeningQty:    state.OpeningQty,
			OpeningValue:  state.OpeningValue,
			ReceivedQty:   state.ReceivedQty,
			ReceivedValue: state.ReceivedValue,
			IssuedQty:     state.IssuedQty,
			IssuedValue:   state.IssuedValue,
			WastageQty:    state.WastageQty,
			WastageValue:  state.WastageValue,
			RemainingQty:  remaining,
			AvgCost:       state.AvgCost,
			TotalValue:    totalValue,
			MinQuantity:   minQty,
			IsLowStock:    remaining.LessThan(minQty),
		})

		summary.TotalQtyOnHand = summary.TotalQtyOnHand.Add(remaining)
		summary.UsedStockValue = summary.UsedStockValue.Add(state.IssuedValue)
		summary.RemainingStockValue = summary.RemainingStockValue.Add(totalValue)
		summary.WastageValue = summary.WastageValue.Add(state.WastageValue)
	}

	summary.TotalStockValue = summary.RemainingStockValue.
		Add(summary.UsedStockValue).
		Add(summary.WastageValue)

	turnover := summary.RemainingStockValue.Add(summary.UsedStockValue)
	summary.UsedPercentage = types.Zero()
	summary.RemainingPercentage = types.Zero()
	if turnover.IsPositive() {
		hundred := types.FromInt(100)
		summary.UsedPercentage = types.RoundPercent(summary.UsedStockValue.Mul(hundred).Div(turnover))
		summary.RemainingPercentage = types.RoundPercent(summary.RemainingStockValue.Mul(hundred).Div(turnover))
	}

	slices.SortFunc(overview.Items, func(a, b OverviewItem) int {
		if c := strings.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return strings.Compare(a.ItemID.String(), b.ItemID.String())
	})

	return overview, nil
}
