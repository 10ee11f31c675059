// Package types provides shared numeric types for quantities and money.
package types

import (
	"github.com/shopspring/decimal"
)

// Decimal is the arithmetic type for all quantities and unit costs.
// Native floats are never used for stock math: the weighted-average chain
// carries rounding from one recomputation into the next, and float drift
// would break parity with stored balances.
type Decimal = decimal.Decimal

// CostScale is the number of fractional digits kept on unit costs.
// Matches NUMERIC(18,4) columns.
const CostScale = 4

// PercentScale is the number of fractional digits on report percentages.
const PercentScale = 2

// Zero returns the zero decimal value.
func Zero() Decimal {
	return decimal.Zero
}

// FromInt creates a Decimal from an integer.
func FromInt(v int64) Decimal {
	return decimal.NewFromInt(v)
}

// FromString parses a Decimal from its string form.
func FromString(s string) (Decimal, error) {
	return decimal.NewFromString(s)
}

// MustDecimal parses a Decimal from a string, panics on error.
// Use only for constants and tests.
func MustDecimal(s string) Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// RoundCost rounds to CostScale digits, half away from zero.
// Every weighted-average recomputation passes through this so the rounding
// itself is carried into the next blend.
func RoundCost(d Decimal) Decimal {
	return d.Round(CostScale)
}

// RoundPercent rounds to PercentScale digits, half away from zero.
func RoundPercent(d Decimal) Decimal {
	return d.Round(PercentScale)
}
