// Package metrics provides Prometheus metrics for the HTTP surface, the intent
// handler and the agent's capability calls.
//
// A nil *Metrics is valid and records nothing, so components can be wired
// without a registry in tests and in the one-shot CLI.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "zapbot"

// Intent outcomes.
const (
	IntentSucceeded = "succeeded"
	IntentFailed    = "failed"
	IntentRejected  = "rejected"
)

// Metrics holds the collectors registered on a private registry.
type Metrics struct {
	reg *prometheus.Registry

	TotalHTTPRequestsCounter prometheus.Counter
	HTTPResponsesCounter     *prometheus.CounterVec
	HTTPDurationHistogram    prometheus.Histogram

	IntentsCounter          *prometheus.CounterVec
	IntentDurationHistogram prometheus.Histogram

	CapabilityCallsCounter *prometheus.CounterVec
}

// New creates a Metrics instance with all collectors registered.
func New() *Metrics {
	m := &Metrics{reg: prometheus.NewRegistry()}

	m.TotalHTTPRequestsCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total HTTP requests",
	})
	m.HTTPResponsesCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_responses_total",
		Help:      "HTTP responses by status code",
	}, []string{"code"})
	m.HTTPDurationHistogram = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration in seconds",
		Buckets:   []float64{0.1, 0.3, 0.5, 0.7, 1.0, 3.0, 5.0, 7.0, 10.0},
	})

	m.IntentsCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "intents_total",
		Help:      "Intent requests handled, by outcome",
	}, []string{"outcome"})
	// agent turns include one or more LLM round-trips
	m.IntentDurationHistogram = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "intent_duration_seconds",
		Help:      "Time spent in the agent runtime per intent",
		Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30, 60},
	})

	m.CapabilityCallsCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "capability_calls_total",
		Help:      "Capability invocations made by the agent runtime",
	}, []string{"capability", "currency"})

	m.reg.MustRegister(
		m.TotalHTTPRequestsCounter,
		m.HTTPResponsesCounter,
		m.HTTPDurationHistogram,
		m.IntentsCounter,
		m.IntentDurationHistogram,
		m.CapabilityCallsCounter,
	)

	return m
}

// Registry exposes the underlying registry for custom collectors and tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.reg
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}

// ObserveIntent records one handled intent.
func (m *Metrics) ObserveIntent(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.IntentsCounter.WithLabelValues(outcome).Inc()
	if outcome != IntentRejected {
		m.IntentDurationHistogram.Observe(d.Seconds())
	}
}

// ObserveCapability records one capability call made by the agent.
func (m *Metrics) ObserveCapability(capability, currency string) {
	if m == nil {
		return
	}
	m.CapabilityCallsCounter.WithLabelValues(capability, currency).Inc()
}

// HTTPMiddleware returns a chi-compatible middleware that tracks HTTP metrics.
func (m *Metrics) HTTPMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if m == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			m.TotalHTTPRequestsCounter.Inc()

			rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(rw, r)

			m.HTTPDurationHistogram.Observe(time.Since(start).Seconds())
			m.HTTPResponsesCounter.WithLabelValues(strconv.Itoa(rw.statusCode)).Inc()
		})
	}
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
