package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Default histogram buckets for invocation duration (in seconds)
var defaultBuckets = []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30}

// Metrics wraps the prometheus collectors for the CRM functions.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	invocationsTotal   *prometheus.CounterVec
	invocationDuration *prometheus.HistogramVec
	upstreamTotal      *prometheus.CounterVec
}

// New creates a registry with Go and process collectors plus the
// function and upstream collectors under namespace.
func New(namespace string) *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{
		registry: registry,

		invocationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "invocations_total",
				Help:      "Total number of function invocations",
			},
			[]string{"function", "outcome"},
		),

		invocationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "invocation_duration_seconds",
				Help:      "Function invocation latency",
				Buckets:   defaultBuckets,
			},
			[]string{"function"},
		),

		upstreamTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "upstream_requests_total",
				Help:      "Outbound requests by operation and HTTP status",
			},
			[]string{"operation", "status"},
		),
	}

	registry.MustRegister(m.invocationsTotal, m.invocationDuration, m.upstreamTotal)
	return m
}

// ObserveInvocation records one function invocation.
func (m *Metrics) ObserveInvocation(function, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.invocationsTotal.WithLabelValues(function, outcome).Inc()
	m.invocationDuration.WithLabelValues(function).Observe(d.Seconds())
}

// ObserveUpstream records one outbound request. A zero status means the
// request never got a response.
func (m *Metrics) ObserveUpstream(operation string, status int) {
	if m == nil {
		return
	}
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	m.upstreamTotal.WithLabelValues(operation, label).Inc()
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
