// Package metrics exposes Prometheus metrics for indexing runs. The CLI is
// short-lived, so metrics are written in the node_exporter textfile format
// rather than served over HTTP.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "relterms"

// Document results.
const (
	ResultIndexed = "indexed"
	ResultSkipped = "skipped"
	ResultFailed  = "failed"
)

// Metrics holds the indexer metrics on a private registry.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	documentsTotal   *prometheus.CounterVec
	termsWritten     prometheus.Counter
	documentDuration prometheus.Histogram
	batchesTotal     prometheus.Counter
	batchDocuments   prometheus.Gauge
	batchFailures    prometheus.Gauge
	lastBatch        prometheus.Gauge
}

// New creates the metrics and registers them on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		documentsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_total",
			Help:      "Documents processed by the indexer",
		}, []string{"result"}),

		termsWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "terms_written_total",
			Help:      "Term rows written to the cache",
		}),

		documentDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "document_duration_seconds",
			Help:      "Time to index one document",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),

		batchesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batches_total",
			Help:      "Completed batch runs",
		}),

		batchDocuments: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_batch_documents",
			Help:      "Documents listed by the last batch",
		}),

		batchFailures: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_batch_failures",
			Help:      "Documents that failed in the last batch",
		}),

		lastBatch: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_batch_timestamp_seconds",
			Help:      "Unix time the last batch finished",
		}),
	}

	m.registry.MustRegister(
		m.documentsTotal,
		m.termsWritten,
		m.documentDuration,
		m.batchesTotal,
		m.batchDocuments,
		m.batchFailures,
		m.lastBatch,
	)
	return m
}

// Registry returns the registry holding the metrics.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveDocument records one IndexDocument outcome.
func (m *Metrics) ObserveDocument(result string, terms int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.documentsTotal.WithLabelValues(result).Inc()
	if terms > 0 {
		m.termsWritten.Add(float64(terms))
	}
	m.documentDuration.Observe(elapsed.Seconds())
}

// ObserveBatch records a finished batch.
func (m *Metrics) ObserveBatch(listed, failed int, finished time.Time) {
	if m == nil {
		return
	}
	m.batchesTotal.Inc()
	m.batchDocuments.Set(float64(listed))
	m.batchFailures.Set(float64(failed))
	m.lastBatch.Set(float64(finished.Unix()))
}

// WriteTextfile atomically writes all metrics to path in the text
// exposition format.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}
