// Package metrics exposes prometheus counters for the extraction pipeline.
//
// A nil *Metrics is valid and records nothing, so packages can take one as
// an optional dependency without branching at every call site.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "tradecsv"

// Metrics holds the collectors registered on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	extractionAttempts *prometheus.CounterVec
	filesProcessed     *prometheus.CounterVec
	tradesExtracted    prometheus.Counter
	batchDuration      *prometheus.HistogramVec
}

// New creates a registry with process/runtime collectors and the pipeline metrics.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: reg,
		extractionAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "extraction_attempts_total",
			Help:      "Table extraction attempts by flavor and outcome (ok, empty, error).",
		}, []string{"flavor", "outcome"}),
		filesProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_processed_total",
			Help:      "Uploaded PDFs processed, by result.",
		}, []string{"result"}),
		tradesExtracted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "trades_extracted_total",
			Help:      "Trade records written to the combined CSV.",
		}),
		batchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_duration_seconds",
			Help:      "Wall time of a whole upload batch.",
			Buckets:   []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"result"}),
	}

	reg.MustRegister(m.extractionAttempts, m.filesProcessed, m.tradesExtracted, m.batchDuration)
	return m
}

// Handler serves the registry in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ExtractionAttempt counts one strategy attempt.
func (m *Metrics) ExtractionAttempt(flavor, outcome string) {
	if m == nil {
		return
	}
	m.extractionAttempts.WithLabelValues(flavor, outcome).Inc()
}

// FileProcessed counts one uploaded file, result is "ok" or "error".
func (m *Metrics) FileProcessed(result string) {
	if m == nil {
		return
	}
	m.filesProcessed.WithLabelValues(result).Inc()
}

// TradesExtracted adds n written trade records.
func (m *Metrics) TradesExtracted(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.tradesExtracted.Add(float64(n))
}

// ObserveBatch records the duration of a finished batch.
func (m *Metrics) ObserveBatch(result string, d time.Duration) {
	if m == nil {
		return
	}
	m.batchDuration.WithLabelValues(result).Observe(d.Seconds())
}
