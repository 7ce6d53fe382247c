package recorder

import (
	"context"
	"errors"

	"PriceFeed/internal/model"
)

// ErrPersistence wraps every connectivity or constraint failure of a store.
var ErrPersistence = errors.New("persistence error")

// Supported drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Recorder is the durable, append-only table of price readings.
type Recorder interface {
	// Append assigns an ID to r and persists it.
	Append(ctx context.Context, r model.Reading) (model.Reading, error)
	// ReadAll returns the readings inside rng ordered by observed_at.
	ReadAll(ctx context.Context, order model.Order, rng model.TimeRange) ([]model.Reading, error)
	Ping(ctx context.Context) error
	Close() error
}

func validate(r model.Reading) error {
	switch {
	case !r.Value.IsPositive():
		return errors.New("value must be positive")
	case r.BaseAsset == "" || r.QuoteCurrency == "":
		return errors.New("base asset and quote currency are required")
	case r.ObservedAt.IsZero():
		return errors.New("observed_at is required")
	}
	return nil
}
