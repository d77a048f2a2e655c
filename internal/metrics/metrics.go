// Package metrics holds the Prometheus collectors of the closing pipeline on
// a private registry.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "cierres"

// Ingestion outcomes.
const (
	OutcomeAccepted = "accepted"
	OutcomeRejected = "rejected"
)

type Metrics struct {
	registry *prometheus.Registry

	Ingestions       *prometheus.CounterVec
	IngestDuration   prometheus.Histogram
	RowsAccepted     prometheus.Counter
	RowsDiscarded    *prometheus.CounterVec
	ApproximateCols  prometheus.Counter
	PersistFailures  prometheus.Counter
	HistorySnapshots prometheus.Gauge
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Ingestions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingestions_total",
			Help:      "Closing sheets processed, by outcome.",
		}, []string{"outcome"}),
		IngestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "ingest_duration_seconds",
			Help:      "Time spent reading and processing one sheet.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
		}),
		RowsAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_accepted_total",
			Help:      "Rows kept after classification.",
		}),
		RowsDiscarded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_discarded_total",
			Help:      "Rows dropped by classification, by reason.",
		}, []string{"reason"}),
		ApproximateCols: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "approximate_columns_total",
			Help:      "Columns resolved by substring instead of an exact header.",
		}),
		PersistFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "history_persist_failures_total",
			Help:      "History saves that failed after the in-memory update.",
		}),
		HistorySnapshots: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "history_snapshots",
			Help:      "Snapshots currently held in the history.",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.Ingestions,
		m.IngestDuration,
		m.RowsAccepted,
		m.RowsDiscarded,
		m.ApproximateCols,
		m.PersistFailures,
		m.HistorySnapshots,
	)

	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
