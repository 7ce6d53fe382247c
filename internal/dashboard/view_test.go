package dashboard

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PriceFeed/internal/model"
)

func TestBuildView_RowsNewestFirstAndLimited(t *testing.T) {
	var series []model.Reading
	for i := 0; i < 10; i++ {
		series = append(series, model.Reading{
			ID:         int64(i + 1),
			Value:      decimal.NewFromInt(int64(1000 + i)),
			BaseAsset:  "BTC",
			ObservedAt: day0.Add(time.Duration(i) * time.Minute),
		})
	}
	window := model.TimeRange{From: day0, To: day0.Add(time.Hour)}

	v := BuildView(series, Query{Rows: 3}, window, 5)
	require.Len(t, v.Rows, 3)
	assert.Equal(t, "$1,009.00", v.Rows[0].Value)
	assert.Equal(t, "$1,007.00", v.Rows[2].Value)
	assert.Len(t, v.Points, 10)
	assert.Nil(t, v.Points[9].MovingAverage, "overlay is off")

	require.NotNil(t, v.Stats)
	assert.Equal(t, 1009.0, v.Stats.Current)
	// the earliest reading is the closest one to 24h ago
	require.True(t, v.Stats.Delta24h.Valid)
	assert.InDelta(t, 0.9, v.Stats.Delta24h.Value, 1e-9)
	assert.Equal(t, "up", v.Stats.Trend)
}

func TestBuildView_FilterNarrowsChartOnly(t *testing.T) {
	series := []model.Reading{
		{Value: decimal.NewFromInt(10), ObservedAt: day0.Add(-72 * time.Hour)},
		{Value: decimal.NewFromInt(20), ObservedAt: day0},
	}
	window := model.TimeRange{From: day0.Add(-time.Hour), To: day0.Add(time.Hour)}

	v := BuildView(series, Query{Rows: 50, MA: true}, window, 5)
	assert.Len(t, v.Points, 1)
	assert.Equal(t, 10.0, v.Stats.Min)
	assert.Equal(t, 2, v.Stats.Count)

	chart := v.Chart()
	assert.Len(t, chart.Labels, 1)
	assert.Len(t, chart.MA, 1)
	assert.False(t, chart.MA[0].Valid)
	assert.Len(t, chart.DailyLabels, 2)
}
