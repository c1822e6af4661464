package formula

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInterpolate(t *testing.T) {
	tests := []struct {
		name     string
		value    any
		expected float64
	}{
		{name: "at min", value: 0.1, expected: 10},
		{name: "at max", value: 0.5, expected: 100},
		{name: "midpoint", value: 0.3, expected: 55},
		{name: "below min", value: 0.0, expected: 10},
		{name: "above max", value: 1.0, expected: 100},
		{name: "rounded to one decimal", value: 0.2001, expected: 32.5},
		{name: "numeric string", value: "0.3", expected: 55},
		{name: "non numeric", value: "abc", expected: 10},
		{name: "absent", value: nil, expected: 10},
		{name: "NaN", value: math.NaN(), expected: 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, err := Interpolate(tt.value, 0.1, 10, 0.5, 100)
			require.NoError(t, err)
			assert.InDelta(t, tt.expected, score, 1e-9)
		})
	}
}

func TestInterpolateRoundsOnExactValue(t *testing.T) {
	// 2.9 * 0.5 is stored just below 1.45
	score, err := Interpolate(0.5, 0, 0, 1, 2.9)
	require.NoError(t, err)
	assert.Equal(t, 1.4, score)

	score, err = Interpolate(0.5, 0, 0, 1, 0.5)
	require.NoError(t, err)
	assert.Equal(t, 0.3, score)
}

func TestInterpolateMonotonic(t *testing.T) {
	prev := math.Inf(-1)
	for v := -0.2; v <= 0.8; v += 0.01 {
		score, err := Interpolate(v, 0.1, 10, 0.5, 100)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, score, prev)
		prev = score
	}
}

func TestInterpolateInvalidRange(t *testing.T) {
	tests := []struct {
		name      string
		low, high float64
	}{
		{name: "inverted", low: 0.5, high: 0.1},
		{name: "equal", low: 1, high: 1},
		{name: "NaN low", low: math.NaN(), high: 1},
		{name: "NaN high", low: 0, high: math.NaN()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Interpolate(0.3, tt.low, 10, tt.high, 100)
			assert.ErrorIs(t, err, ErrInvalidRange)
		})
	}
}
