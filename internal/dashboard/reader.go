package dashboard

import (
	"context"
	"errors"

	"PriceFeed/internal/model"
	"PriceFeed/internal/recorder"
)

// ErrEmptySeries means the store holds no readings for the requested range.
// It is a presentation state, not a failure.
var ErrEmptySeries = errors.New("no readings yet")

// SeriesReader loads series for presentation. Every call reads the store.
type SeriesReader struct {
	Store recorder.Recorder
}

// LoadSeries returns the readings inside rng ascending by observation time.
func (r *SeriesReader) LoadSeries(ctx context.Context, rng model.TimeRange) ([]model.Reading, error) {
	series, err := r.Store.ReadAll(ctx, model.Ascending, rng)
	if err != nil {
		return nil, err
	}
	if len(series) == 0 {
		return nil, ErrEmptySeries
	}
	return series, nil
}

// Filter keeps the readings of an ascending series that fall inside rng.
func Filter(series []model.Reading, rng model.TimeRange) []model.Reading {
	if rng.IsZero() {
		return series
	}
	out := make([]model.Reading, 0, len(series))
	for _, r := range series {
		if rng.Contains(r.ObservedAt) {
			out = append(out, r)
		}
	}
	return out
}
