package calculator

import (
	"math"
)

// Extremes returns the highest and lowest value. ok is false for an empty slice.
func Extremes(values []float64) (high, low float64, ok bool) {
	if len(values) == 0 {
		return 0, 0, false
	}
	high = math.Inf(-1)
	low = math.Inf(1)
	for _, v := range values {
		high = math.Max(high, v)
		low = math.Min(low, v)
	}
	return high, low, true
}

// BandPosition places the current price in the series' [min, max] band:
// 0 at the lowest stored price, 1 at the highest. A flat band gives 0.5.
// It is undefined when the band is inverted.
func BandPosition(current, high, low float64) Maybe {
	switch {
	case high < low:
		return Maybe{}
	case high == low:
		return Some(0.5)
	}
	return Some(math.Min(1, math.Max(0, (current-low)/(high-low))))
}
