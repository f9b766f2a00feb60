package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics are the recompute counters exported on /metrics. Each server has
// its own registry so tests can build several.
type Metrics struct {
	registry  *prometheus.Registry
	duration  *prometheus.HistogramVec
	empty     *prometheus.CounterVec
	failures  *prometheus.CounterVec
	frameTick prometheus.Counter
}

func newMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Metrics{
		registry: reg,
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "hitboard_recompute_duration_seconds",
			Help:    "Duration of chart recomputes",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		}, []string{"chart"}),
		empty: f.NewCounterVec(prometheus.CounterOpts{
			Name: "hitboard_empty_results_total",
			Help: "Recomputes that produced an empty-result message",
		}, []string{"chart"}),
		failures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "hitboard_recompute_failures_total",
			Help: "Recomputes that failed with an error",
		}, []string{"chart"}),
		frameTick: f.NewCounter(prometheus.CounterOpts{
			Name: "hitboard_leaderboard_frames_total",
			Help: "Leaderboard frames served",
		}),
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
