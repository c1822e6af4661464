// Package numeric coerces raw indicator readings to numbers, formats them for
// display and computes the growth ratio between a current and previous reading.
package numeric

import (
	"encoding/json"
	"math"
	"math/big"
	"regexp"
	"strconv"
	"strings"
)

// Default fraction digits used when formatting values for display.
const (
	DefaultFractionDigits = 2
	ScoreFractionDigits   = 1
)

// NoBaselineRatio is reported when the previous reading is absent or zero.
// It is a sentinel meaning "baseline unusable", not a literal +100% change.
const NoBaselineRatio = 100.0

// numericPattern matches plain decimal literals such as "12", "-3.5", ".5" or "1e3".
var numericPattern = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

// IsNumeric reports whether raw looks like a number: a Go numeric type or a
// decimal string. Booleans, hex strings, "NaN" and "Infinity" are not numeric.
func IsNumeric(raw any) bool {
	switch v := raw.(type) {
	case nil:
		return false
	case float64, float32, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return true
	case *float64:
		return v != nil
	case json.Number:
		return numericPattern.MatchString(strings.TrimSpace(string(v)))
	case string:
		return numericPattern.MatchString(strings.TrimSpace(v))
	default:
		return false
	}
}

// ToNumber converts raw to a finite float64. The second return value is false
// when raw is absent, not numeric-like, or converts to NaN/Inf. It never panics.
func ToNumber(raw any) (float64, bool) {
	if !IsNumeric(raw) {
		return 0, false
	}

	var v float64
	switch x := raw.(type) {
	case float64:
		v = x
	case float32:
		v = float64(x)
	case int:
		v = float64(x)
	case int8:
		v = float64(x)
	case int16:
		v = float64(x)
	case int32:
		v = float64(x)
	case int64:
		v = float64(x)
	case uint:
		v = float64(x)
	case uint8:
		v = float64(x)
	case uint16:
		v = float64(x)
	case uint32:
		v = float64(x)
	case uint64:
		v = float64(x)
	case *float64:
		v = *x
	case json.Number:
		f, err := strconv.ParseFloat(strings.TrimSpace(string(x)), 64)
		if err != nil {
			return 0, false
		}
		v = f
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, false
		}
		v = f
	}

	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// Optional is ToNumber returning nil for absent values.
func Optional(raw any) *float64 {
	v, ok := ToNumber(raw)
	if !ok {
		return nil
	}
	return &v
}

// ComputeRatio returns the percentage change from previous to current.
//   - current absent: 0
//   - previous absent or zero: NoBaselineRatio
//   - otherwise: (current - previous) / previous * 100
func ComputeRatio(current, previous any) float64 {
	cur, ok := ToNumber(current)
	if !ok {
		return 0
	}
	prev, ok := ToNumber(previous)
	if !ok || prev == 0 {
		return NoBaselineRatio
	}
	return (cur - prev) / prev * 100
}

// maxRoundDigits bounds the scale used by RoundHalfAway; float64 carries no
// more significant decimal digits than this.
const maxRoundDigits = 20

// roundPrec holds a float64 multiplied by 10^maxRoundDigits exactly.
const roundPrec = 256

// RoundHalfAway rounds v to digits decimal places with ties going away from
// zero. The tie is decided on the exact binary value of v, so 0.125 rounds to
// 0.13 while 1.45 (stored as 1.4499...) rounds to 1.4.
func RoundHalfAway(v float64, digits int) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v == 0 {
		return v
	}
	digits = min(max(digits, 0), maxRoundDigits)

	pow := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(digits)), nil)
	scale := new(big.Float).SetPrec(roundPrec).SetInt(pow)

	y := new(big.Float).SetPrec(roundPrec).SetFloat64(math.Abs(v))
	y.Mul(y, scale)
	y.Add(y, big.NewFloat(0.5))
	n, _ := y.Int(nil)
	if n.Sign() == 0 {
		return 0
	}

	out, _ := new(big.Float).SetPrec(roundPrec).Quo(new(big.Float).SetPrec(roundPrec).SetInt(n), scale).Float64()
	return math.Copysign(out, v)
}
