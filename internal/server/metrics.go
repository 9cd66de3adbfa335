package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Shvm190/heart-disease-mlops/internal/schema"
)

// Metrics holds the per-request observations exposed for the external
// scraper: request count, latency, outcome counts by risk level and class,
// a histogram of the model's confidence, and feature gauges that track the
// latest applicant for drift monitoring.
type Metrics struct {
	registry    *prometheus.Registry
	predictions prometheus.Counter
	latency     prometheus.Histogram
	results     *prometheus.CounterVec
	confidence  prometheus.Histogram
	featureAge  prometheus.Gauge
	featureChol prometheus.Gauge
}

func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		predictions: factory.NewCounter(prometheus.CounterOpts{
			Name: "prediction_count_total",
			Help: "Total number of heart disease predictions",
		}),
		latency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "prediction_latency_seconds",
			Help:    "Time spent processing a prediction",
			Buckets: prometheus.DefBuckets,
		}),
		results: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "model_prediction_results_total",
			Help: "Count of predictions by risk level and class",
		}, []string{"risk_level", "prediction_class"}),
		confidence: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "prediction_confidence",
			Help:    "Distribution of predicted disease probabilities",
			Buckets: prometheus.LinearBuckets(0, 0.1, 11),
		}),
		featureAge: factory.NewGauge(prometheus.GaugeOpts{
			Name: "feature_age_years",
			Help: "Age of the latest applicant",
		}),
		featureChol: factory.NewGauge(prometheus.GaugeOpts{
			Name: "feature_cholesterol_mgdl",
			Help: "Cholesterol level of the latest applicant",
		}),
	}
}

// ObservePrediction implements service.Observer.
func (m *Metrics) ObservePrediction(rec schema.Record, class int, probability float64, riskLevel string, elapsed time.Duration) {
	m.predictions.Inc()
	m.latency.Observe(elapsed.Seconds())
	m.confidence.Observe(probability)
	m.results.WithLabelValues(riskLevel, strconv.Itoa(class)).Inc()

	if age, ok := rec["age"]; ok {
		v, _ := age.Float64()
		m.featureAge.Set(v)
	}
	if chol, ok := rec["chol"]; ok {
		v, _ := chol.Float64()
		m.featureChol.Set(v)
	}
}

// Handler serves the scrape endpoint for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
