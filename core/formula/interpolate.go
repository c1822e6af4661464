package formula

import (
	"fmt"
	"math"

	"github.com/huangsam/indiscore/core/numeric"
)

// Interpolate maps value from [low, high] onto [lowScore, highScore].
// Values at or below low score lowScore, values at or above high score
// highScore, and a non-numeric value scores lowScore. In between, the linear
// offset from lowScore is rounded to one decimal place. high must be greater
// than low; otherwise ErrInvalidRange is returned.
func Interpolate(value any, low, lowScore, high, highScore float64) (float64, error) {
	if math.IsNaN(low) || math.IsNaN(high) || high <= low {
		return 0, fmt.Errorf("%w (min=%g, max=%g)", ErrInvalidRange, low, high)
	}

	v, ok := numeric.ToNumber(value)
	if !ok {
		return lowScore, nil
	}

	switch {
	case v <= low:
		return lowScore, nil
	case v >= high:
		return highScore, nil
	default:
		return lowScore + round1((highScore-lowScore)*(v-low)/(high-low)), nil
	}
}

// round1 rounds the way a decimal fixed-point rendering does: on the exact
// binary value, ties away from zero.
func round1(x float64) float64 {
	return numeric.RoundHalfAway(x, 1)
}
