package stock

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sitestock/internal/core/id"
	"sitestock/internal/core/types"
)

func costPtr(s string) *types.Decimal {
	d := types.MustDecimal(s)
	return &d
}

// mv builds a movement with a sequential date so order matches creation order.
func mv(itemID id.ID, seq int, typ MovementType, kind *MovementKind, qty string, cost *types.Decimal) Movement {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return Movement{
		ID:           id.New(),
		ItemID:       itemID,
		Type:         typ,
		Kind:         kind,
		Quantity:     types.MustDecimal(qty),
		UnitCost:     cost,
		MovementDate: base.AddDate(0, 0, seq),
		CreatedAt:    base.AddDate(0, 0, seq),
	}
}

func TestReplay_WeightedAverage(t *testing.T) {
	itemID := id.New()

	// 10 @ 100 then 10 @ 200 blends to 150; issues and wastage leave the
	// average untouched and drain value at 150 per unit.
	movements := []Movement{
		mv(itemID, 0, TypeIn, kindPtr(KindReceive), "10", costPtr("100")),
		mv(itemID, 1, TypeIn, kindPtr(KindReceive), "10", costPtr("200")),
		mv(itemID, 2, TypeOut, kindPtr(KindIssue), "-5", nil),
		mv(itemID, 3, TypeOut, kindPtr(KindWastage), "-5", nil),
	}

	state := Replay(movements)[itemID]
	require.NotNil(t, state)

	assert.True(t, state.OnHandQty.Equal(types.MustDecimal("10")), "on hand = %s", state.OnHandQty)
	assert.True(t, state.AvgCost.Equal(types.MustDecimal("150")), "avg cost = %s", state.AvgCost)
	assert.True(t, state.RemainingValue().Equal(types.MustDecimal("1500")))

	assert.True(t, state.ReceivedQty.Equal(types.MustDecimal("20")))
	assert.True(t, state.ReceivedValue.Equal(types.MustDecimal("3000")))
	assert.True(t, state.IssuedQty.Equal(types.MustDecimal("5")))
	assert.True(t, state.IssuedValue.Equal(types.MustDecimal("750")))
	assert.True(t, state.WastageQty.Equal(types.MustDecimal("5")))
	assert.True(t, state.WastageValue.Equal(types.MustDecimal("750")))
}

func TestReplay_MissingCostCarriesAverageForward(t *testing.T) {
	itemID := id.New()

	// The cost-less receipt inherits the running average, so the average
	// stays at 150 across it.
	movements := []Movement{
		mv(itemID, 0, TypeIn, kindPtr(KindReceive), "10", costPtr("100")),
		mv(itemID, 1, TypeIn, kindPtr(KindReceive), "10", costPtr("200")),
		mv(itemID, 2, TypeIn, kindPtr(KindTransferIn), "5", nil),
	}

	state := Replay(movements)[itemID]
	require.NotNil(t, state)

	assert.True(t, state.OnHandQty.Equal(types.MustDecimal("25")))
	assert.True(t, state.AvgCost.Equal(types.MustDecimal("150")), "avg cost = %s", state.AvgCost)
}

func TestReplay_OpeningBucket(t *testing.T) {
	itemID := id.New()

	movements := []Movement{
		mv(itemID, 0, TypeIn, kindPtr(KindOpening), "100", costPtr("50")),
		mv(itemID, 1, TypeIn, kindPtr(KindReceive), "20", costPtr("50")),
	}

	state := Replay(movements)[itemID]
	require.NotNil(t, state)

	assert.True(t, state.OpeningQty.Equal(types.MustDecimal("100")))
	assert.True(t, state.OpeningValue.Equal(types.MustDecimal("5000")))
	assert.True(t, state.ReceivedQty.Equal(types.MustDecimal("20")))
	assert.True(t, state.OnHandQty.Equal(types.MustDecimal("120")))
}

func TestReplay_OverdrawClampsToZero(t *testing.T) {
	itemID := id.New()

	movements := []Movement{
		mv(itemID, 0, TypeIn, kindPtr(KindReceive), "5", costPtr("100")),
		mv(itemID, 1, TypeOut, kindPtr(KindIssue), "-8", nil),
	}

	state := Replay(movements)[itemID]
	require.NotNil(t, state)

	// Quantity clamps at zero instead of going negative, and a zero on-hand
	// resets the average.
	assert.True(t, state.OnHandQty.IsZero())
	assert.True(t, state.AvgCost.IsZero())
	// The full requested outflow is still valued at the pre-clamp average.
	assert.True(t, state.IssuedValue.Equal(types.MustDecimal("800")))
}

func TestReplay_DrainToZeroResetsAverage(t *testing.T) {
	itemID := id.New()

	movements := []Movement{
		mv(itemID, 0, TypeIn, kindPtr(KindReceive), "10", costPtr("100")),
		mv(itemID, 1, TypeOut, kindPtr(KindIssue), "-10", nil),
		mv(itemID, 2, TypeIn, kindPtr(KindReceive), "4", costPtr("250")),
	}

	state := Replay(movements)[itemID]
	require.NotNil(t, state)

	// The restock after the drain starts a fresh average, unpolluted by the
	// previous batch.
	assert.True(t, state.OnHandQty.Equal(types.MustDecimal("4")))
	assert.True(t, state.AvgCost.Equal(types.MustDecimal("250")), "avg cost = %s", state.AvgCost)
}

func TestReplay_AdjustmentSignSplit(t *testing.T) {
	itemID := id.New()

	movements := []Movement{
		mv(itemID, 0, TypeIn, kindPtr(KindReceive), "10", costPtr("100")),
		mv(itemID, 1, TypeAdjust, kindPtr(KindAdjustment), "3", costPtr("100")),
		mv(itemID, 2, TypeAdjust, kindPtr(KindAdjustment), "-2", nil),
	}

	state := Replay(movements)[itemID]
	require.NotNil(t, state)

	// Positive adjustments land in the received bucket, negative ones in the
	// issued bucket; both apply as deltas.
	assert.True(t, state.OnHandQty.Equal(types.MustDecimal("11")))
	assert.True(t, state.ReceivedQty.Equal(types.MustDecimal("13")))
	assert.True(t, state.IssuedQty.Equal(types.MustDecimal("2")))
}

func TestReplay_RoundingFeedsNextBlend(t *testing.T) {
	itemID := id.New()

	// 3 @ 10 plus 3 @ 10.0001 averages 10.00005, which rounds half away
	// from zero to 10.0001 before the next computation sees it.
	movements := []Movement{
		mv(itemID, 0, TypeIn, kindPtr(KindReceive), "3", costPtr("10")),
		mv(itemID, 1, TypeIn, kindPtr(KindReceive), "3", costPtr("10.0001")),
	}

	state := Replay(movements)[itemID]
	require.NotNil(t, state)

	assert.True(t, state.AvgCost.Equal(types.MustDecimal("10.0001")), "avg cost = %s", state.AvgCost)
}

func TestReplay_OrderInsensitive(t *testing.T) {
	itemID := id.New()

	movements := []Movement{
		mv(itemID, 0, TypeIn, kindPtr(KindOpening), "50", costPtr("20")),
		mv(itemID, 1, TypeIn, kindPtr(KindReceive), "30", costPtr("26")),
		mv(itemID, 2, TypeOut, kindPtr(KindIssue), "-40", nil),
		mv(itemID, 3, TypeOut, kindPtr(KindWastage), "-5", nil),
		mv(itemID, 4, TypeAdjust, kindPtr(KindAdjustment), "-3", nil),
		mv(itemID, 5, TypeIn, kindPtr(KindReturnIn), "2", nil),
	}

	want := Replay(movements)[itemID]
	require.NotNil(t, want)

	for trial := 0; trial < 10; trial++ {
		shuffled := make([]Movement, len(movements))
		copy(shuffled, movements)
		rand.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})

		got := Replay(shuffled)[itemID]
		require.NotNil(t, got)
		assert.Equal(t, want, got)
	}
}

func TestReplay_InputNotMutated(t *testing.T) {
	itemID := id.New()

	movements := []Movement{
		mv(itemID, 1, TypeIn, kindPtr(KindReceive), "10", costPtr("100")),
		mv(itemID, 0, TypeIn, kindPtr(KindOpening), "5", costPtr("80")),
	}
	firstID := movements[0].ID

	Replay(movements)

	assert.Equal(t, firstID, movements[0].ID, "replay must sort a copy")
}

func TestReplay_MultipleItems(t *testing.T) {
	itemA := id.New()
	itemB := id.New()

	movements := []Movement{
		mv(itemA, 0, TypeIn, kindPtr(KindReceive), "10", costPtr("100")),
		mv(itemB, 0, TypeIn, kindPtr(KindReceive), "7", costPtr("30")),
		mv(itemA, 1, TypeOut, kindPtr(KindIssue), "-4", nil),
	}

	states := Replay(movements)
	require.Len(t, states, 2)

	assert.True(t, states[itemA].OnHandQty.Equal(types.MustDecimal("6")))
	assert.True(t, states[itemB].OnHandQty.Equal(types.MustDecimal("7")))
}

func TestReplay_Empty(t *testing.T) {
	states := Replay(nil)
	assert.Empty(t, states)
}
