package collector

import (
	"context"
	"errors"
	"fmt"
	"time"

	"PriceFeed/internal/metrics"
	"PriceFeed/internal/model"
	"PriceFeed/internal/recorder"

	"github.com/rs/zerolog"
)

// Collector runs one fetch → normalize → store cycle at a time.
type Collector struct {
	Fetcher  Fetcher
	Recorder recorder.Recorder
	Metrics  *metrics.Recorder
	Log      zerolog.Logger
	Now      func() time.Time
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, rec recorder.Recorder, m *metrics.Recorder, log zerolog.Logger) *Collector {
	return &Collector{
		Fetcher:  fetcher,
		Recorder: rec,
		Metrics:  m,
		Log:      log.With().Str("component", "collector").Logger(),
		Now:      time.Now,
	}
}

// RunCycle performs one cycle. Failures are logged and counted; the returned
// error only reports what happened and never needs to stop the caller.
func (c *Collector) RunCycle(ctx context.Context) (model.Reading, error) {
	start := time.Now()

	raw, err := c.Fetcher.Fetch(ctx)
	if err != nil {
		c.fail(metrics.ResultUpstreamUnavailable, "fetch", err, start)
		return model.Reading{}, fmt.Errorf("fetch from %s: %w", c.Fetcher.Name(), err)
	}

	reading, err := Normalize(raw, c.Now())
	if err != nil {
		c.fail(metrics.ResultMalformedPayload, "normalize", err, start)
		return model.Reading{}, fmt.Errorf("normalize: %w", err)
	}

	stored, err := c.Recorder.Append(ctx, reading)
	if err != nil {
		c.fail(metrics.ResultPersistenceError, "store", err, start)
		return model.Reading{}, fmt.Errorf("store: %w", err)
	}

	c.Metrics.RecordCycle(metrics.ResultOK, time.Since(start))
	c.Metrics.RecordLastPrice(stored.BaseAsset, stored.QuoteCurrency, stored.Float())
	c.Log.Info().
		Int64("id", stored.ID).
		Str("value", stored.Value.String()).
		Str("pair", stored.BaseAsset+"-"+stored.QuoteCurrency).
		Msg("reading stored")
	return stored, nil
}

func (c *Collector) fail(result, stage string, err error, start time.Time) {
	c.Metrics.RecordCycle(result, time.Since(start))
	ev := c.Log.Warn()
	if errors.Is(err, recorder.ErrPersistence) {
		ev = c.Log.Error()
	}
	ev.Err(err).Str("stage", stage).Msg("cycle skipped")
}
