package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PriceFeed/internal/metrics"
	"PriceFeed/internal/model"
	"PriceFeed/internal/recorder"
)

type brokenStore struct{}

func (brokenStore) Append(context.Context, model.Reading) (model.Reading, error) {
	return model.Reading{}, recorder.ErrPersistence
}

func (brokenStore) ReadAll(context.Context, model.Order, model.TimeRange) ([]model.Reading, error) {
	return nil, errors.New("persistence error: connection refused")
}

func (brokenStore) Ping(context.Context) error { return errors.New("connection refused") }
func (brokenStore) Close() error               { return nil }

var day0 = time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC)

// seededStore holds one reading per hour for the 48h ending at day0.
func seededStore(t *testing.T) *recorder.MemoryRecorder {
	t.Helper()
	store := recorder.NewMemoryRecorder()
	for i := 48; i >= 0; i-- {
		v := decimal.NewFromFloat(1200 + float64(48-i)).Add(decimal.RequireFromString("0.5"))
		_, err := store.Append(context.Background(), model.Reading{
			Value:         v,
			BaseAsset:     "BTC",
			QuoteCurrency: "USD",
			ObservedAt:    day0.Add(-time.Duration(i) * time.Hour),
		})
		require.NoError(t, err)
	}
	return store
}

func newTestServer(t *testing.T, store recorder.Recorder) *echo.Echo {
	t.Helper()
	h, err := NewHandler(store, metrics.New(prometheus.NewRegistry()), zerolog.Nop(), Options{DefaultWindowDays: 30, MAWindow: 5})
	require.NoError(t, err)
	e := echo.New()
	h.RegisterRoutes(e)
	return e
}

func get(e *echo.Echo, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestIndex_RendersStatistics(t *testing.T) {
	e := newTestServer(t, seededStore(t))

	rec := get(e, "/?ma=true")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "$1,248.50", "current price")
	assert.Contains(t, body, "$1,200.50", "lowest price")
	assert.Contains(t, body, "(vs 24h ago)")
	assert.Contains(t, body, "The price of BTC is up over the last 24h.")
	assert.Contains(t, body, "05/03/2024 12:00:00")
	assert.Contains(t, body, "checked")
	assert.Contains(t, body, `value="2024-02-04"`, "default start is 30 days before the latest reading")
}

func TestIndex_EmptyStore(t *testing.T) {
	e := newTestServer(t, recorder.NewMemoryRecorder())

	rec := get(e, "/")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "No readings yet")
}

func TestIndex_StoreFailureShowsWarning(t *testing.T) {
	e := newTestServer(t, brokenStore{})

	rec := get(e, "/")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Could not read price readings")
}

func TestIndex_InvalidQuery(t *testing.T) {
	e := newTestServer(t, seededStore(t))

	for _, target := range []string{"/?start=2024-13-01", "/?ma=maybe", "/?start=2024-03-05&end=2024-03-01", "/?rows=9999"} {
		rec := get(e, target)
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
	}
}

func TestSeries_JSON(t *testing.T) {
	e := newTestServer(t, seededStore(t))

	rec := get(e, "/api/series?ma=true&start=2024-03-05")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Empty  bool    `json:"empty"`
		From   string  `json:"from"`
		To     string  `json:"to"`
		Points []struct {
			Value         float64  `json:"value"`
			MovingAverage *float64 `json:"moving_average"`
		} `json:"points"`
		Metrics struct {
			Current  float64  `json:"current"`
			Max      float64  `json:"max"`
			Delta24h *float64 `json:"delta_24h"`
			Trend    string   `json:"trend"`
			Count    int      `json:"count"`
		} `json:"metrics"`
		Daily []struct {
			PercentChange *float64 `json:"percent_change"`
		} `json:"daily"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.False(t, resp.Empty)
	assert.Equal(t, "2024-03-05", resp.From)
	assert.Equal(t, "2024-03-05", resp.To)
	// 00:00..12:00 on the filtered day
	require.Len(t, resp.Points, 13)
	for i := 0; i < 4; i++ {
		assert.Nil(t, resp.Points[i].MovingAverage)
	}
	require.NotNil(t, resp.Points[4].MovingAverage)
	assert.InDelta(t, (resp.Points[0].Value+resp.Points[4].Value)/2, *resp.Points[4].MovingAverage, 1e-9)

	// statistics cover the full series
	assert.Equal(t, 49, resp.Metrics.Count)
	assert.InDelta(t, 1248.5, resp.Metrics.Current, 1e-9)
	require.NotNil(t, resp.Metrics.Delta24h)
	assert.InDelta(t, (1248.5-1224.5)/1224.5*100, *resp.Metrics.Delta24h, 1e-9)
	assert.Equal(t, "up", resp.Metrics.Trend)

	require.Len(t, resp.Daily, 3)
	assert.Nil(t, resp.Daily[0].PercentChange)
	assert.NotNil(t, resp.Daily[1].PercentChange)
}

func TestSeries_WithoutMovingAverage(t *testing.T) {
	e := newTestServer(t, seededStore(t))

	rec := get(e, "/api/series")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "moving_average")
}

func TestSeries_Errors(t *testing.T) {
	rec := get(newTestServer(t, brokenStore{}), "/api/series")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = get(newTestServer(t, seededStore(t)), "/api/series?end=03-05-2024")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = get(newTestServer(t, recorder.NewMemoryRecorder()), "/api/series")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"empty":true`)
}

func TestExport_CSV(t *testing.T) {
	e := newTestServer(t, seededStore(t))

	rec := get(e, "/api/export.csv?start=2024-03-05")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get(echo.HeaderContentDisposition), ExportFilename)
	assert.True(t, strings.HasPrefix(rec.Header().Get(echo.HeaderContentType), "text/csv"))

	lines := strings.Split(strings.TrimSuffix(rec.Body.String(), "\n"), "\n")
	require.Len(t, lines, 14)
	assert.Equal(t, "\uFEFFvalor;timestamp", lines[0])
	assert.Equal(t, "$1.236,50;05/03/2024 00:00:00", lines[1])
	assert.Equal(t, "$1.248,50;05/03/2024 12:00:00", lines[13])
}

func TestExport_StoreFailure(t *testing.T) {
	rec := get(newTestServer(t, brokenStore{}), "/api/export.csv")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHealth(t *testing.T) {
	rec := get(newTestServer(t, recorder.NewMemoryRecorder()), "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = get(newTestServer(t, brokenStore{}), "/healthz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
