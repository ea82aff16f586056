package observability

import (
	"context"
	"net/http"
	"strings"

	"github.com/aretw0/isoscene/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "isoscene"

// Metrics holds the collectors fed by state hooks.
type Metrics struct {
	registry *prometheus.Registry

	mutations     *prometheus.CounterVec
	persistErrors *prometheus.CounterVec
	persistBytes  *prometheus.HistogramVec
	historyOps    *prometheus.CounterVec
	undoDepth     *prometheus.GaugeVec
	redoDepth     *prometheus.GaugeVec
}

// NewMetrics creates and registers the collectors. Process and Go runtime collectors are
// included.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "state_mutations_total",
			Help:      "Committed state mutations by operation.",
		}, []string{"workspace", "op"}),
		persistErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "state_persist_errors_total",
			Help:      "Snapshot writes or deletes that failed.",
		}, []string{"workspace"}),
		persistBytes: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "state_snapshot_bytes",
			Help:      "Size of persisted state snapshots.",
			Buckets:   prometheus.ExponentialBuckets(512, 2, 10),
		}, []string{"workspace"}),
		historyOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "history_operations_total",
			Help:      "History log operations (add, undo, redo).",
		}, []string{"workspace", "op"}),
		undoDepth: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "history_undo_depth",
			Help:      "Entries on the undo stack.",
		}, []string{"workspace"}),
		redoDepth: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "history_redo_depth",
			Help:      "Entries on the redo stack.",
		}, []string{"workspace"}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.mutations, m.persistErrors, m.persistBytes, m.historyOps, m.undoDepth, m.redoDepth,
	)
	return m
}

// Registry exposes the registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the metrics in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Hooks returns state hooks that record into m under the workspace label.
func (m *Metrics) Hooks(workspace string) domain.StateHooks {
	return domain.StateHooks{
		OnMutation: func(_ context.Context, op string) {
			m.mutations.WithLabelValues(workspace, opLabel(op)).Inc()
		},
		OnPersist: func(_ context.Context, size int) {
			m.persistBytes.WithLabelValues(workspace).Observe(float64(size))
		},
		OnPersistError: func(_ context.Context, _ error) {
			m.persistErrors.WithLabelValues(workspace).Inc()
		},
		OnHistory: func(_ context.Context, op string, undo, redo int) {
			m.historyOps.WithLabelValues(workspace, op).Inc()
			m.undoDepth.WithLabelValues(workspace).Set(float64(undo))
			m.redoDepth.WithLabelValues(workspace).Set(float64(redo))
		},
	}
}

// opLabel keeps label cardinality bounded: path writes collapse to "set".
func opLabel(op string) string {
	if strings.HasPrefix(op, "set:") {
		return "set"
	}
	return op
}
