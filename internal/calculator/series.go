package calculator

import (
	"time"

	"PriceFeed/internal/model"
)

// All functions in this file expect a series ascending by ObservedAt.

// Values extracts reading values as float64.
func Values(series []model.Reading) []float64 {
	values := make([]float64, len(series))
	for i, r := range series {
		values[i] = r.Float()
	}
	return values
}

// Current returns the value of the last reading.
func Current(series []model.Reading) (float64, bool) {
	if len(series) == 0 {
		return 0, false
	}
	return series[len(series)-1].Float(), true
}

// Max returns the highest reading value.
func Max(series []model.Reading) (float64, bool) {
	high, _, ok := Extremes(Values(series))
	return high, ok
}

// Min returns the lowest reading value.
func Min(series []model.Reading) (float64, bool) {
	_, low, ok := Extremes(Values(series))
	return low, ok
}

// Delta24h returns the percent change between the last reading and the reading
// closest to 24h before it. Equidistant candidates resolve to the earlier one.
func Delta24h(series []model.Reading) (float64, bool) {
	if len(series) < 2 {
		return 0, false
	}
	last := series[len(series)-1]
	target := last.ObservedAt.Add(-24 * time.Hour)

	best := 0
	bestDist := absDuration(series[0].ObservedAt.Sub(target))
	for i := 1; i < len(series); i++ {
		// strict comparison keeps the first occurrence on ties
		if d := absDuration(series[i].ObservedAt.Sub(target)); d < bestDist {
			best, bestDist = i, d
		}
	}

	ref := series[best].Float()
	if ref == 0 {
		return 0, false
	}
	return (last.Float() - ref) / ref * 100, true
}

// Mean7d returns the mean value over readings observed within 7 days of the last one.
func Mean7d(series []model.Reading) (float64, bool) {
	if len(series) == 0 {
		return 0, false
	}
	since := series[len(series)-1].ObservedAt.Add(-7 * 24 * time.Hour)
	sum, n := 0.0, 0
	for _, r := range series {
		if !r.ObservedAt.Before(since) {
			sum += r.Float()
			n++
		}
	}
	return sum / float64(n), true
}

// DailyChange is the last reading of a calendar day and its change vs the previous day.
type DailyChange struct {
	Day           time.Time `json:"day"`
	Close         float64   `json:"close"`
	PercentChange Maybe     `json:"percent_change"`
}

// DailyPercentChange resamples the series to the last reading of each calendar day
// (in the readings' own location) and computes the percent change vs the previous
// bucket. Only days with readings get a bucket: a day without readings produces no
// 0% entry, and the next day's change is measured against the last day that had one.
func DailyPercentChange(series []model.Reading) []DailyChange {
	var days []DailyChange
	for _, r := range series {
		y, m, d := r.ObservedAt.Date()
		day := time.Date(y, m, d, 0, 0, 0, 0, r.ObservedAt.Location())
		if n := len(days); n > 0 && days[n-1].Day.Equal(day) {
			days[n-1].Close = r.Float()
			continue
		}
		days = append(days, DailyChange{Day: day, Close: r.Float()})
	}
	for i := 1; i < len(days); i++ {
		if prev := days[i-1].Close; prev != 0 {
			days[i].PercentChange = Some((days[i].Close - prev) / prev * 100)
		}
	}
	return days
}

// Trend labels a 24h delta.
func Trend(delta float64) string {
	if delta > 0 {
		return "up"
	}
	return "down"
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
