package dashboard

import (
	"time"

	"PriceFeed/internal/calculator"
	"PriceFeed/internal/model"
)

// Stats are the headline statistics, computed over the full series.
type Stats struct {
	Base        string           `json:"base"`
	Quote       string           `json:"quote"`
	Count       int              `json:"count"`
	LastUpdated time.Time        `json:"last_updated"`
	Current     float64          `json:"current"`
	Delta24h    calculator.Maybe `json:"delta_24h"`
	Trend       string           `json:"trend,omitempty"`
	Max         float64          `json:"max"`
	Min         float64          `json:"min"`
	Mean7d      float64          `json:"mean_7d"`
	RSI         calculator.Maybe `json:"rsi"`
	Position    calculator.Maybe `json:"position"`
}

// Point is one chart sample. MovingAverage is set only when the overlay is on.
type Point struct {
	Time          time.Time         `json:"time"`
	Value         float64           `json:"value"`
	MovingAverage *calculator.Maybe `json:"moving_average,omitempty"`
}

// Row is one formatted line of the recent readings table.
type Row struct {
	Value     string
	Timestamp string
}

// View is everything the dashboard renders for one request.
type View struct {
	Query    Query
	Window   model.TimeRange
	MAWindow int
	Empty    bool
	Warning  string

	Stats  *Stats
	Points []Point
	Daily  []calculator.DailyChange
	Rows   []Row
}

// BuildView computes the view of an ascending, non-empty series.
func BuildView(series []model.Reading, q Query, window model.TimeRange, maWindow int) View {
	v := View{Query: q, Window: window, MAWindow: maWindow}
	v.Stats = buildStats(series)
	v.Daily = calculator.DailyPercentChange(series)

	filtered := Filter(series, window)
	values := calculator.Values(filtered)
	var ma []calculator.Maybe
	if q.MA {
		ma = calculator.MovingAverage(values, maWindow)
	}
	v.Points = make([]Point, len(filtered))
	for i, r := range filtered {
		v.Points[i] = Point{Time: r.ObservedAt.UTC(), Value: values[i]}
		if ma != nil {
			v.Points[i].MovingAverage = &ma[i]
		}
	}

	// newest first
	for i := len(filtered) - 1; i >= 0 && len(v.Rows) < q.Rows; i-- {
		v.Rows = append(v.Rows, Row{
			Value:     FormatUSD(filtered[i].Float()),
			Timestamp: FormatTimestamp(filtered[i].ObservedAt),
		})
	}
	return v
}

func buildStats(series []model.Reading) *Stats {
	last := series[len(series)-1]
	s := &Stats{
		Base:        last.BaseAsset,
		Quote:       last.QuoteCurrency,
		Count:       len(series),
		LastUpdated: last.ObservedAt.UTC(),
	}
	s.Current, _ = calculator.Current(series)
	s.Max, _ = calculator.Max(series)
	s.Min, _ = calculator.Min(series)
	s.Mean7d, _ = calculator.Mean7d(series)

	if delta, ok := calculator.Delta24h(series); ok {
		s.Delta24h = calculator.Some(delta)
		s.Trend = calculator.Trend(delta)
	}
	if rsi, ok, err := calculator.CalculateRSI(calculator.Values(series), calculator.DefaultRSIPeriod); err == nil && ok {
		s.RSI = calculator.Some(rsi)
	}
	s.Position = calculator.BandPosition(s.Current, s.Max, s.Min)
	return s
}

// ChartData is the JSON handed to the page scripts.
type ChartData struct {
	Labels      []string           `json:"labels"`
	Values      []float64          `json:"values"`
	MA          []calculator.Maybe `json:"ma,omitempty"`
	DailyLabels []string           `json:"daily_labels"`
	DailyValues []calculator.Maybe `json:"daily_values"`
}

// Chart returns the chart series of the view.
func (v View) Chart() ChartData {
	d := ChartData{
		Labels:      make([]string, len(v.Points)),
		Values:      make([]float64, len(v.Points)),
		DailyLabels: make([]string, len(v.Daily)),
		DailyValues: make([]calculator.Maybe, len(v.Daily)),
	}
	for i, p := range v.Points {
		d.Labels[i] = FormatTimestamp(p.Time)
		d.Values[i] = p.Value
		if p.MovingAverage != nil {
			d.MA = append(d.MA, *p.MovingAverage)
		}
	}
	for i, day := range v.Daily {
		d.DailyLabels[i] = day.Day.Format("02/01")
		d.DailyValues[i] = day.PercentChange
	}
	return d
}
