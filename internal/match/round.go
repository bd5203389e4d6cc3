package match

import (
	"math"
	"strconv"
)

// Score precisions.
const (
	ScoreDecimals = 2
	PredDecimals  = 4
)

// Round rounds v to the given number of decimals. Ties are decided on the
// exact binary value of v and go to the even digit, so 0.125 rounds to 0.12
// and 2.675 (stored just below) rounds to 2.67.
func Round(v float64, decimals int) float64 {
	r, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', decimals, 64), 64)
	if err != nil {
		return v
	}
	return r
}

// Clamp01 bounds v to [0,1]; NaN becomes 0.
func Clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v) || v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

// Bound clamps v to [0,1] and rounds it to the given decimals.
func Bound(v float64, decimals int) float64 {
	return Round(Clamp01(v), decimals)
}
