package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service's collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	Predictions          *prometheus.CounterVec
	PredictionErrors     *prometheus.CounterVec
	InferenceSeconds     prometheus.Histogram
	TranslationFallbacks prometheus.Counter
	CatalogMisses        prometheus.Counter
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Predictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "leafdoc_predictions_total",
			Help: "Completed predictions by category.",
		}, []string{"category"}),
		PredictionErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "leafdoc_prediction_errors_total",
			Help: "Failed predictions by kind.",
		}, []string{"kind"}),
		InferenceSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "leafdoc_inference_seconds",
			Help:    "Model forward pass latency.",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
		}),
		TranslationFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "leafdoc_translation_fallbacks_total",
			Help: "Fields shown untranslated because translation failed.",
		}),
		CatalogMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "leafdoc_catalog_misses_total",
			Help: "Predictions with no descriptive record.",
		}),
	}
	m.registry.MustRegister(
		m.Predictions,
		m.PredictionErrors,
		m.InferenceSeconds,
		m.TranslationFallbacks,
		m.CatalogMisses,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry for tests and extra collectors.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }
