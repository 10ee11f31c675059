package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoundCost_HalfAwayFromZero(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"10.00005", "10.0001"},
		{"10.00004", "10"},
		{"-10.00005", "-10.0001"},
		{"-10.00004", "-10"},
		{"150", "150"},
		{"33.33335", "33.3334"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := RoundCost(MustDecimal(tt.in))
			assert.True(t, got.Equal(MustDecimal(tt.want)), "got %s", got)
		})
	}
}

func TestRoundPercent(t *testing.T) {
	assert.True(t, RoundPercent(MustDecimal("42.857142")).Equal(MustDecimal("42.86")))
	assert.True(t, RoundPercent(MustDecimal("57.142857")).Equal(MustDecimal("57.14")))
	assert.True(t, RoundPercent(MustDecimal("0.005")).Equal(MustDecimal("0.01")))
}
