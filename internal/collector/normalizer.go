package collector

import (
	"fmt"
	"time"

	"PriceFeed/internal/model"

	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"
)

// maxCodeLen matches the VARCHAR(10) code columns of price_readings.
const maxCodeLen = 10

// Normalize maps a spot-price payload into a Reading observed at now.
// It does not read the clock.
func Normalize(raw RawPayload, now time.Time) (model.Reading, error) {
	fields := gjson.GetManyBytes(raw, "data.amount", "data.base", "data.currency")
	amount, base, currency := fields[0], fields[1], fields[2]

	if amount.Type != gjson.String && amount.Type != gjson.Number {
		return model.Reading{}, fmt.Errorf("%w: data.amount missing", ErrMalformedPayload)
	}
	value, err := decimal.NewFromString(amount.String())
	if err != nil {
		return model.Reading{}, fmt.Errorf("%w: data.amount %q is not numeric", ErrMalformedPayload, amount.String())
	}
	if !value.IsPositive() {
		return model.Reading{}, fmt.Errorf("%w: data.amount must be positive, got %s", ErrMalformedPayload, value)
	}

	baseCode, err := code(base, "data.base")
	if err != nil {
		return model.Reading{}, err
	}
	quoteCode, err := code(currency, "data.currency")
	if err != nil {
		return model.Reading{}, err
	}

	return model.Reading{
		Value:         value,
		BaseAsset:     baseCode,
		QuoteCurrency: quoteCode,
		ObservedAt:    now.UTC(),
	}, nil
}

func code(r gjson.Result, path string) (string, error) {
	if r.Type != gjson.String || r.Str == "" {
		return "", fmt.Errorf("%w: %s missing", ErrMalformedPayload, path)
	}
	if len(r.Str) > maxCodeLen {
		return "", fmt.Errorf("%w: %s longer than %d characters", ErrMalformedPayload, path, maxCodeLen)
	}
	return r.Str, nil
}
