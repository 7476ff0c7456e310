// Package metrics exposes Prometheus instrumentation for the RPC surface and
// the ledger.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mmynk/splitledger/internal/models"
)

const namespace = "splitledger"

// Metrics owns a private registry so tests can create as many as they like.
type Metrics struct {
	registry *prometheus.Registry

	rpcTotal    *prometheus.CounterVec
	rpcDuration *prometheus.HistogramVec
	entries     *prometheus.CounterVec
	rejections  *prometheus.CounterVec
}

// New creates and registers every collector.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		rpcTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rpc_requests_total",
			Help:      "RPC calls by procedure and result code.",
		}, []string{"procedure", "code"}),
		rpcDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "rpc_duration_seconds",
			Help:      "RPC latency by procedure.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"procedure"}),
		entries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ledger_entries_appended_total",
			Help:      "Ledger entries appended by kind.",
		}, []string{"kind"}),
		rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "settlements_rejected_total",
			Help:      "Settlements refused by the validator.",
		}, []string{"reason"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.rpcTotal,
		m.rpcDuration,
		m.entries,
		m.rejections,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveRPC records one finished call.
func (m *Metrics) ObserveRPC(procedure, code string, elapsed time.Duration) {
	m.rpcTotal.WithLabelValues(procedure, code).Inc()
	m.rpcDuration.WithLabelValues(procedure).Observe(elapsed.Seconds())
}

// EntryAppended counts a committed ledger entry.
func (m *Metrics) EntryAppended(kind models.EntryKind) {
	m.entries.WithLabelValues(string(kind)).Inc()
}

// SettlementRejected counts a settlement refused by validation.
func (m *Metrics) SettlementRejected(reason string) {
	m.rejections.WithLabelValues(reason).Inc()
}
