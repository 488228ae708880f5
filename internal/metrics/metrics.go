package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds the Prometheus collectors of the selection pipeline
type Registry struct {
	reg *prometheus.Registry

	CoarseInput       prometheus.Gauge
	CoarseSurvivors   prometheus.Gauge
	FineScored        prometheus.Gauge
	Selected          prometheus.Gauge
	ScoreDistribution prometheus.Histogram
	SelectionRuns     *prometheus.CounterVec
	SelectionLatency  prometheus.Histogram
}

// New creates a registry with all collectors registered
func New() *Registry {
	r := &Registry{
		reg: prometheus.NewRegistry(),

		CoarseInput: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "fscore_coarse_input_symbols",
			Help: "Symbols received by the last coarse stage",
		}),
		CoarseSurvivors: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "fscore_coarse_survivors",
			Help: "Symbols passing the last coarse stage",
		}),
		FineScored: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "fscore_fine_scored_symbols",
			Help: "Symbols scored by the last fine stage",
		}),
		Selected: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "fscore_selected_symbols",
			Help: "Symbols at or above the threshold in the last fine stage",
		}),
		ScoreDistribution: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "fscore_score",
			Help:    "Distribution of computed F-Scores",
			Buckets: prometheus.LinearBuckets(0, 1, 10),
		}),
		SelectionRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fscore_selection_runs_total",
			Help: "Selection cycles by result",
		}, []string{"result"}),
		SelectionLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "fscore_selection_duration_seconds",
			Help:    "Wall time of a full coarse and fine selection cycle",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30},
		}),
	}

	r.reg.MustRegister(
		r.CoarseInput,
		r.CoarseSurvivors,
		r.FineScored,
		r.Selected,
		r.ScoreDistribution,
		r.SelectionRuns,
		r.SelectionLatency,
		collectors.NewGoCollector(),
	)

	return r
}

// ObserveRun records the outcome of one selection cycle
func (r *Registry) ObserveRun(started time.Time, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	r.SelectionRuns.WithLabelValues(result).Inc()
	r.SelectionLatency.Observe(time.Since(started).Seconds())
}

// Gatherer exposes the underlying registry
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.reg
}

// Handler serves the registry in the Prometheus text format
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}
