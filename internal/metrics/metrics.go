// Package metrics provides Prometheus collectors for the aggregation engine
// and the HTTP surface.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	// Namespace is the namespace for all footprint metrics.
	Namespace = "footprint"

	subsystemEngine = "engine"
	subsystemHTTP   = "http"
)

// Provider outcome label values.
const (
	statusOK     = "ok"
	statusFailed = "failed"
)

// Metrics holds all Prometheus metrics.
type Metrics struct {
	// Engine metrics
	AnalysesTotal    *prometheus.CounterVec
	CacheLookups     *prometheus.CounterVec
	ProviderCalls    *prometheus.CounterVec
	ProviderDuration *prometheus.HistogramVec
	FindingsTotal    *prometheus.CounterVec

	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	RateLimited     prometheus.Counter

	gatherer prometheus.Gatherer
}

// New creates and registers all metrics on reg. A nil reg uses a fresh
// private registry so tests and multiple engines never collide.
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	factory := promauto.With(reg)
	m := &Metrics{gatherer: reg}

	m.initEngineMetrics(factory)
	m.initHTTPMetrics(factory)

	return m
}

func (m *Metrics) initEngineMetrics(factory promauto.Factory) {
	m.AnalysesTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: subsystemEngine,
			Name:      "analyses_total",
			Help:      "Total analyses by provenance (live, cached) or error",
		},
		[]string{"result"},
	)

	m.CacheLookups = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: subsystemEngine,
			Name:      "cache_lookups_total",
			Help:      "Report cache lookups by outcome (hit, miss, corrupt)",
		},
		[]string{"outcome"},
	)

	m.ProviderCalls = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: subsystemEngine,
			Name:      "provider_calls_total",
			Help:      "Provider invocations by provider and status",
		},
		[]string{"provider", "status"},
	)

	m.ProviderDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: subsystemEngine,
			Name:      "provider_duration_seconds",
			Help:      "Time spent in a provider collect call",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"provider"},
	)

	m.FindingsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: subsystemEngine,
			Name:      "findings_total",
			Help:      "Findings placed in assembled reports by kind",
		},
		[]string{"kind"},
	)
}

func (m *Metrics) initHTTPMetrics(factory promauto.Factory) {
	m.RequestsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: subsystemHTTP,
			Name:      "requests_total",
			Help:      "HTTP requests by route and status code",
		},
		[]string{"route", "code"},
	)

	m.RequestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: subsystemHTTP,
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"route"},
	)

	m.RateLimited = factory.NewCounter(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: subsystemHTTP,
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the per-client rate limiter",
		},
	)
}

// ObserveProvider records one provider call.
func (m *Metrics) ObserveProvider(name string, d time.Duration, err error) {
	status := statusOK
	if err != nil {
		status = statusFailed
	}
	m.ProviderCalls.WithLabelValues(name, status).Inc()
	m.ProviderDuration.WithLabelValues(name).Observe(d.Seconds())
}

// ObserveCache records a report cache lookup outcome.
func (m *Metrics) ObserveCache(outcome string) {
	m.CacheLookups.WithLabelValues(outcome).Inc()
}

// ObserveAnalysis records a finished analysis.
func (m *Metrics) ObserveAnalysis(result string) {
	m.AnalysesTotal.WithLabelValues(result).Inc()
}

// ObserveFindings adds n findings of the given kind.
func (m *Metrics) ObserveFindings(kind string, n int) {
	if n > 0 {
		m.FindingsTotal.WithLabelValues(kind).Add(float64(n))
	}
}

// ObserveRequest records a served HTTP request.
func (m *Metrics) ObserveRequest(route string, code int, d time.Duration) {
	m.RequestsTotal.WithLabelValues(route, strconv.Itoa(code)).Inc()
	m.RequestDuration.WithLabelValues(route).Observe(d.Seconds())
}

// ObserveRateLimited records a request rejected by the rate limiter.
func (m *Metrics) ObserveRateLimited() {
	m.RateLimited.Inc()
}

// Handler returns the /metrics handler for the registry the metrics were
// registered on.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
