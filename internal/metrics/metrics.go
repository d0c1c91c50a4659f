package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors for simulation runs.
type Metrics struct {
	RunsTotal       *prometheus.CounterVec
	RunDuration     prometheus.Histogram
	SafetyStock     prometheus.Gauge
	StockoutPeriods prometheus.Histogram
	CacheHits       prometheus.Counter
	CacheMisses     prometheus.Counter
}

// New creates and registers all metrics on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		RunsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "skusim_runs_total",
				Help: "Simulation runs by outcome (completed, invalid_parameter, insufficient_data, index_out_of_range, error)",
			},
			[]string{"outcome"},
		),
		RunDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "skusim_run_duration_seconds",
			Help:    "Wall time of a simulation run, including input loading",
			Buckets: prometheus.ExponentialBuckets(0.0005, 4, 10),
		}),
		SafetyStock: factory.NewGauge(prometheus.GaugeOpts{
			Name: "skusim_last_safety_stock",
			Help: "Safety stock computed by the most recent run",
		}),
		StockoutPeriods: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "skusim_stockout_periods",
			Help:    "Number of periods with lost sales per run",
			Buckets: prometheus.LinearBuckets(0, 2, 10),
		}),
		CacheHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "skusim_run_cache_hits_total",
			Help: "Run lookups served from cache",
		}),
		CacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Name: "skusim_run_cache_misses_total",
			Help: "Run lookups that fell through to the repository",
		}),
	}
}
