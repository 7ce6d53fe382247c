package collector

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_ValidPayload(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 30, 15, 0, time.FixedZone("BRT", -3*3600))
	raw := RawPayload(`{"data":{"amount":"64123.45","base":"BTC","currency":"USD"}}`)

	got, err := Normalize(raw, now)
	require.NoError(t, err)
	assert.True(t, got.Value.Equal(decimal.RequireFromString("64123.45")))
	assert.Equal(t, "BTC", got.BaseAsset)
	assert.Equal(t, "USD", got.QuoteCurrency)
	assert.True(t, got.ObservedAt.Equal(now))
	assert.Equal(t, time.UTC, got.ObservedAt.Location())
	assert.Zero(t, got.ID)
}

func TestNormalize_NumericAmount(t *testing.T) {
	got, err := Normalize(RawPayload(`{"data":{"amount":3120.5,"base":"ETH","currency":"EUR"}}`), time.Now())
	require.NoError(t, err)
	assert.True(t, got.Value.Equal(decimal.RequireFromString("3120.5")))
}

func TestNormalize_MalformedPayloads(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"missing amount", `{"data":{"base":"BTC","currency":"USD"}}`},
		{"non-numeric amount", `{"data":{"amount":"abc","base":"BTC","currency":"USD"}}`},
		{"null amount", `{"data":{"amount":null,"base":"BTC","currency":"USD"}}`},
		{"zero amount", `{"data":{"amount":"0","base":"BTC","currency":"USD"}}`},
		{"negative amount", `{"data":{"amount":"-1","base":"BTC","currency":"USD"}}`},
		{"missing base", `{"data":{"amount":"1","currency":"USD"}}`},
		{"missing currency", `{"data":{"amount":"1","base":"BTC"}}`},
		{"empty base", `{"data":{"amount":"1","base":"","currency":"USD"}}`},
		{"numeric currency", `{"data":{"amount":"1","base":"BTC","currency":840}}`},
		{"code too long", `{"data":{"amount":"1","base":"BITCOINCASH","currency":"USD"}}`},
		{"no data object", `{"errors":[{"id":"not_found"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Normalize(RawPayload(tt.raw), time.Now())
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformedPayload), "got %v", err)
		})
	}
}
