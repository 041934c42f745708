// Package metrics exposes Prometheus collectors for translation, engine
// calls and segmentation runs.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "folio"

// Recorder owns a registry and the collectors registered on it. A nil
// *Recorder is valid and records nothing.
type Recorder struct {
	registry *prometheus.Registry

	translations  *prometheus.CounterVec
	diagnostics   *prometheus.CounterVec
	engineReqs    *prometheus.CounterVec
	engineLatency prometheus.Histogram
	segmentations *prometheus.CounterVec
	storeHits     prometheus.Counter
}

// New creates a recorder with its own registry, including Go runtime and
// process collectors.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		translations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "translations_total",
				Help:      "Settings translations by mode (fresh, page) and result",
			},
			[]string{"mode", "result"},
		),
		diagnostics: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "translation_diagnostics_total",
				Help:      "Diagnostics emitted during translation by severity and code",
			},
			[]string{"severity", "code"},
		),
		engineReqs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "engine_requests_total",
				Help:      "Segmentation engine requests by result",
			},
			[]string{"result"},
		),
		engineLatency: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "engine_request_duration_seconds",
				Help:      "Duration of segmentation engine requests",
				Buckets:   prometheus.ExponentialBuckets(0.1, 2, 10),
			},
		),
		segmentations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "segmentations_total",
				Help:      "Page segmentations by source (engine, stored, empty)",
			},
			[]string{"source"},
		),
		storeHits: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "annotation_store_hits_total",
				Help:      "Segment requests answered from stored annotations",
			},
		),
	}
	r.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.translations, r.diagnostics, r.engineReqs, r.engineLatency, r.segmentations, r.storeHits,
	)
	return r
}

// Registry returns the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// Handler returns the http.Handler for /metrics.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// ObserveTranslation counts a translation. mode is "fresh" or "page".
func (r *Recorder) ObserveTranslation(mode string, err error) {
	if r == nil {
		return
	}
	r.translations.WithLabelValues(mode, result(err)).Inc()
}

// ObserveDiagnostic counts one translation diagnostic.
func (r *Recorder) ObserveDiagnostic(severity, code string) {
	if r == nil {
		return
	}
	r.diagnostics.WithLabelValues(severity, code).Inc()
}

// ObserveEngine records one engine call, including all retries.
func (r *Recorder) ObserveEngine(d time.Duration, err error) {
	if r == nil {
		return
	}
	r.engineReqs.WithLabelValues(result(err)).Inc()
	r.engineLatency.Observe(d.Seconds())
}

// ObserveSegmentation counts a page segmentation by where the result came from.
func (r *Recorder) ObserveSegmentation(source string) {
	if r == nil {
		return
	}
	r.segmentations.WithLabelValues(source).Inc()
	if source == "stored" {
		r.storeHits.Inc()
	}
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
