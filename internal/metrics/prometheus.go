package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Cycle results used as the "result" label of pricefeed_cycles_total.
const (
	ResultOK                  = "ok"
	ResultUpstreamUnavailable = "upstream_unavailable"
	ResultMalformedPayload    = "malformed_payload"
	ResultPersistenceError    = "persistence_error"
)

// Recorder exposes collector and dashboard metrics. A nil *Recorder is a no-op.
type Recorder struct {
	cycles        *prometheus.CounterVec
	lastPrice     *prometheus.GaugeVec
	cycleDuration prometheus.Histogram
	requests      *prometheus.CounterVec
}

// New registers all metrics on reg.
func New(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		cycles: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pricefeed_cycles_total",
				Help: "Collector cycles by result",
			},
			[]string{"result"},
		),
		lastPrice: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "pricefeed_last_price",
				Help: "Last stored price for a pair",
			},
			[]string{"base", "quote"},
		),
		cycleDuration: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "pricefeed_cycle_duration_seconds",
				Help:    "Duration of a fetch-normalize-store cycle",
				Buckets: prometheus.DefBuckets,
			},
		),
		requests: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pricefeed_dashboard_requests_total",
				Help: "Dashboard requests by route and status",
			},
			[]string{"route", "status"},
		),
	}
}

// RecordCycle counts a finished collector cycle.
func (r *Recorder) RecordCycle(result string, d time.Duration) {
	if r == nil {
		return
	}
	r.cycles.WithLabelValues(result).Inc()
	r.cycleDuration.Observe(d.Seconds())
}

// RecordLastPrice records the last stored price for a pair.
func (r *Recorder) RecordLastPrice(base, quote string, price float64) {
	if r == nil {
		return
	}
	r.lastPrice.WithLabelValues(base, quote).Set(price)
}

// RecordRequest counts a dashboard request.
func (r *Recorder) RecordRequest(route, status string) {
	if r == nil {
		return
	}
	r.requests.WithLabelValues(route, status).Inc()
}
