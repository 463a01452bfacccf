// ABOUTME: Prometheus metrics for conversation turns, persisted routines and LLM latency
// ABOUTME: Every method is safe to call on a nil *Metrics so components can run without metrics
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "wodsmith"

// Outcome labels for message metrics
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Metrics holds the collectors registered on a private registry
type Metrics struct {
	registry *prometheus.Registry

	messages       *prometheus.CounterVec
	persisted      prometheus.Counter
	llmCalls       *prometheus.HistogramVec
	activeSessions prometheus.Gauge
}

// New creates and registers all collectors
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		messages: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "messages_total",
				Help:      "Conversation messages processed, by detected intent and outcome",
			},
			[]string{"intent", "outcome"},
		),
		persisted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "routines_persisted_total",
			Help:      "Routines upserted into the vector collection",
		}),
		llmCalls: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "llm_call_seconds",
				Help:      "Language model call latency in seconds",
				Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 120},
			},
			[]string{"mode"},
		),
		activeSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Sessions currently held by the session store",
		}),
	}

	registry.MustRegister(m.messages, m.persisted, m.llmCalls, m.activeSessions)
	return m
}

// ObserveMessage counts one processed message
func (m *Metrics) ObserveMessage(intent string, failed bool) {
	if m == nil {
		return
	}
	outcome := OutcomeOK
	if failed {
		outcome = OutcomeError
	}
	m.messages.WithLabelValues(intent, outcome).Inc()
}

// RoutinePersisted counts one successful upsert
func (m *Metrics) RoutinePersisted() {
	if m == nil {
		return
	}
	m.persisted.Inc()
}

// ObserveLLMCall records the latency of one completion call. mode is generate, edit or ingest.
func (m *Metrics) ObserveLLMCall(mode string, d time.Duration) {
	if m == nil {
		return
	}
	m.llmCalls.WithLabelValues(mode).Observe(d.Seconds())
}

// SetActiveSessions sets the active session gauge
func (m *Metrics) SetActiveSessions(n int) {
	if m == nil {
		return
	}
	m.activeSessions.Set(float64(n))
}

// Registry returns the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler returns the /metrics HTTP handler
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
