package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "wbgt"

// Recorder holds the service collectors on a private registry.
// A nil *Recorder is valid and records nothing.
type Recorder struct {
	registry *prometheus.Registry

	predictions        *prometheus.CounterVec
	predictionValue    *prometheus.GaugeVec
	predictionDuration prometheus.Histogram
	sensorFailures     *prometheus.CounterVec
}

// NewRecorder creates a Recorder with Go and process collectors registered.
func NewRecorder() *Recorder {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &Recorder{
		registry: registry,
		predictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "predictions_total",
			Help:      "Total prediction requests by horizon and outcome.",
		}, []string{"horizon", "outcome"}),
		predictionValue: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "prediction_celsius",
			Help:      "Most recent WBGT prediction by horizon.",
		}, []string{"horizon"}),
		predictionDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "prediction_duration_seconds",
			Help:      "Duration of a full prediction including sensor fetches.",
			Buckets:   prometheus.DefBuckets,
		}),
		sensorFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sensor_fetch_failures_total",
			Help:      "Sensor fetches that fell back to the default value.",
		}, []string{"sensor"}),
	}

	registry.MustRegister(
		r.predictions,
		r.predictionValue,
		r.predictionDuration,
		r.sensorFailures,
	)
	return r
}

// Registry exposes the underlying registry, mainly for tests.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

func (r *Recorder) SensorFetchFailed(sensor string) {
	if r == nil {
		return
	}
	r.sensorFailures.WithLabelValues(sensor).Inc()
}

func (r *Recorder) PredictionServed(horizon string, wbgt float64, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.predictions.WithLabelValues(horizon, "success").Inc()
	r.predictionValue.WithLabelValues(horizon).Set(wbgt)
	r.predictionDuration.Observe(elapsed.Seconds())
}

func (r *Recorder) PredictionFailed(horizon string, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.predictions.WithLabelValues(horizon, "error").Inc()
	r.predictionDuration.Observe(elapsed.Seconds())
}
