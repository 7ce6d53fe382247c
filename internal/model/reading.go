package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Reading is one timestamped price observation.
type Reading struct {
	ID            int64           `db:"id" json:"id"`
	Value         decimal.Decimal `db:"value" json:"value"`
	BaseAsset     string          `db:"base_asset" json:"base_asset"`
	QuoteCurrency string          `db:"quote_currency" json:"quote_currency"`
	ObservedAt    time.Time       `db:"observed_at" json:"observed_at"`
}

// Float returns the reading value as float64 for statistics.
func (r Reading) Float() float64 {
	return r.Value.InexactFloat64()
}

// Order selects the observed_at direction of a series read.
type Order int

const (
	Ascending Order = iota
	Descending
)

func (o Order) String() string {
	if o == Descending {
		return "DESC"
	}
	return "ASC"
}

// TimeRange is an inclusive [From, To] filter. A zero bound is open.
type TimeRange struct {
	From time.Time
	To   time.Time
}

// Contains reports whether t falls inside the range.
func (r TimeRange) Contains(t time.Time) bool {
	if !r.From.IsZero() && t.Before(r.From) {
		return false
	}
	if !r.To.IsZero() && t.After(r.To) {
		return false
	}
	return true
}

// IsZero reports whether both bounds are open.
func (r TimeRange) IsZero() bool {
	return r.From.IsZero() && r.To.IsZero()
}
