package stock

import (
	"slices"

	"sitestock/internal/core/id"
	"sitestock/internal/core/types"
)

// ItemState is the accumulator produced by Replay for one item. It exists
// only for the duration of one replay run and is never persisted.
type ItemState struct {
	OnHandQty types.Decimal `json:"onHandQty"`
	AvgCost   types.Decimal `json:"avgCost"`

	OpeningQty   types.Decimal `json:"openingQty"`
	OpeningValue types.Decimal `json:"openingValue"`

	ReceivedQty   types.Decimal `json:"receivedQty"`
	ReceivedValue types.Decimal `json:"receivedValue"`

	IssuedQty   types.Decimal `json:"issuedQty"`
	IssuedValue types.Decimal `json:"issuedValue"`

	WastageQty   types.Decimal `json:"wastageQty"`
	WastageValue types.Decimal `json:"wastageValue"`
}

// RemainingValue returns the valuation of what is still on hand.
func (s *ItemState) RemainingValue() types.Decimal {
	return s.OnHandQty.Mul(s.AvgCost)
}

// Replay reconstructs per-item valuation state from a movement history.
//
// The input is sorted into canonical order first (CompareMovements), so the
// result is a pure function of the movement set: any permutation of the
// same movements yields identical states. No I/O, safe to call repeatedly.
//
// Outflows that exceed the on-hand quantity are clamped to zero rather than
// rejected; preventing the condition is the online adjuster's job, the
// replayer only has to stay total over whatever history exists.
func Replay(movements []Movement) map[id.ID]*ItemState {
	sorted := slices.Clone(movements)
	SortMovements(sorted)

	states := make(map[id.ID]*ItemState)
	for i := range sorted {
		m := &sorted[i]
		state := states[m.ItemID]
		if state == nil {
			state = &ItemState{}
			states[m.ItemID] = state
		}

		switch Classify(*m) {
		case CategoryOpening:
			state.applyInbound(m, true)
		case CategoryIn:
			state.applyInbound(m, false)
		case CategoryOut:
			state.applyOutbound(m, false)
		case CategoryWastage:
			state.applyOutbound(m, true)
		case CategoryAdjust:
			// Sign decides direction; the flows land in the received or
			// issued buckets, there is no separate adjustment bucket.
			if m.Quantity.IsNegative() {
				state.applyOutbound(m, false)
			} else {
				state.applyInbound(m, false)
			}
		}
	}

	return states
}

// applyInbound blends the incoming quantity into the weighted average.
// A missing unit cost carries the current average forward.
func (s *ItemState) applyInbound(m *Movement, opening bool) {
	inQty := m.Quantity.Abs()
	inCost := s.AvgCost
	if m.UnitCost != nil {
		inCost = *m.UnitCost
	}
	inValue := inQty.Mul(inCost)

	if opening {
		s.OpeningQty = s.OpeningQty.Add(inQty)
		s.OpeningValue = s.OpeningValue.Add(inValue)
	} else {
		s.ReceivedQty = s.ReceivedQty.Add(inQty)
		s.ReceivedValue = s.ReceivedValue.Add(inValue)
	}

	newTotal := s.OnHandQty.Add(inQty)
	if newTotal.IsPositive() {
		// The rounded average feeds the next blend; rounding error
		// accumulates across the history on purpose.
		s.AvgCost = types.RoundCost(s.OnHandQty.Mul(s.AvgCost).Add(inValue).Div(newTotal))
	} else {
		s.AvgCost = types.RoundCost(inCost)
	}
	s.OnHandQty = newTotal
}

// applyOutbound values the outflow at the current average and clamps the
// on-hand quantity at zero. Cost never changes on an outflow, except that
// draining to zero resets it to exactly zero.
func (s *ItemState) applyOutbound(m *Movement, wastage bool) {
	outQty := m.Quantity.Abs()
	outValue := outQty.Mul(s.AvgCost)

	if wastage {
		s.WastageQty = s.WastageQty.Add(outQty)
		s.WastageValue = s.WastageValue.Add(outValue)
	} else {
		s.IssuedQty = s.IssuedQty.Add(outQty)
		s.IssuedValue = s.IssuedValue.Add(outValue)
	}

	s.OnHandQty = s.OnHandQty.Sub(outQty)
	if s.OnHandQty.IsNegative() {
		s.OnHandQty = types.Zero()
	}
	if s.OnHandQty.IsZero() {
		s.AvgCost = types.Zero()
	}
}
