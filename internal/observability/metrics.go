package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "wildfire_risk"

// Metrics holds the Prometheus collectors for the prediction service.
type Metrics struct {
	PredictionsTotal   *prometheus.CounterVec // labels: outcome={success,error}
	PredictionDuration prometheus.Histogram
	Probability        prometheus.Histogram
	UpstreamErrors     *prometheus.CounterVec // labels: source={geocoder,weather,air_quality,vegetation,store,events}
	GeocodeCache       *prometheus.CounterVec // labels: result={hit,miss}
	ForestTrees        prometheus.Gauge
	SchedulerRuns      prometheus.Counter
}

// NewMetrics registers with the default Prometheus registry.
func NewMetrics() *Metrics {
	return NewMetricsWithRegistry(prometheus.DefaultRegisterer)
}

// NewMetricsWithRegistry registers with the given registerer, so tests can
// use a fresh registry.
func NewMetricsWithRegistry(registerer prometheus.Registerer) *Metrics {
	factory := promauto.With(registerer)
	return &Metrics{
		PredictionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "predictions_total",
			Help:      "Wildfire assessments by outcome.",
		}, []string{"outcome"}),
		PredictionDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "prediction_duration_seconds",
			Help:      "End-to-end assessment latency including upstream calls.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		Probability: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "probability",
			Help:      "Distribution of predicted wildfire probabilities.",
			Buckets:   prometheus.LinearBuckets(0, 10, 10),
		}),
		UpstreamErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_errors_total",
			Help:      "Failures of collaborators by source.",
		}, []string{"source"}),
		GeocodeCache: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocode_cache_total",
			Help:      "Geocoder cache lookups by result.",
		}, []string{"result"}),
		ForestTrees: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "forest_trees",
			Help:      "Number of trees in the loaded ensemble.",
		}),
		SchedulerRuns: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scheduler_runs_total",
			Help:      "Completed watchlist refresh runs.",
		}),
	}
}

// GeocodeCacheHook adapts GeocodeCache to a hit/miss callback.
func (m *Metrics) GeocodeCacheHook() func(hit bool) {
	return func(hit bool) {
		if hit {
			m.GeocodeCache.WithLabelValues("hit").Inc()
			return
		}
		m.GeocodeCache.WithLabelValues("miss").Inc()
	}
}
