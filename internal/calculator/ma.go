package calculator

// DefaultMAWindow is the moving-average window of the dashboard overlay.
const DefaultMAWindow = 5

// TrailingMean is the mean of the last window readings of a series.
// It is undefined when window is not positive or the series is shorter than window.
func TrailingMean(values []float64, window int) Maybe {
	if window <= 0 || len(values) < window {
		return Maybe{}
	}
	sum := 0.0
	for _, v := range values[len(values)-window:] {
		sum += v
	}
	return Some(sum / float64(window))
}

// MovingAverage returns, for each index i >= window-1, the mean of the window
// values ending at i. Earlier indices are undefined.
func MovingAverage(values []float64, window int) []Maybe {
	out := make([]Maybe, len(values))
	if window <= 0 {
		return out
	}
	sum := 0.0
	for i, v := range values {
		sum += v
		if i >= window {
			sum -= values[i-window]
		}
		if i >= window-1 {
			out[i] = Some(sum / float64(window))
		}
	}
	return out
}
