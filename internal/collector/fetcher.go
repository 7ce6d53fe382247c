package collector

import (
	"context"
	"errors"
)

var (
	// ErrUpstreamUnavailable covers transport errors, non-2xx statuses and unreadable bodies.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	// ErrMalformedPayload is returned when a payload lacks a usable amount, base or currency.
	ErrMalformedPayload = errors.New("malformed payload")
)

// RawPayload is the undecoded JSON body returned by the price API.
type RawPayload []byte

// Fetcher defines the interface for fetching the current spot price.
type Fetcher interface {
	Fetch(ctx context.Context) (RawPayload, error)
	Name() string
}
