package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the edge router. Each
// instance owns its own registry so that several routers in one
// process never contend over collector registration.
type Metrics struct {
	dispatchesTotal    *prometheus.CounterVec
	dispatchDuration   *prometheus.HistogramVec
	notFoundTotal      prometheus.Counter
	methodNotAllowed   prometheus.Counter
	handlerErrors      prometheus.Counter
	panicsRecovered    prometheus.Counter
	patternCacheHits   prometheus.Counter
	patternCacheMisses prometheus.Counter
	patternCacheSize   prometheus.Gauge
	registry           *prometheus.Registry
}

// NewMetrics creates a new Metrics instance.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "edgerouter"
	}

	m := &Metrics{
		registry: prometheus.NewRegistry(),
	}

	m.dispatchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dispatches_total",
			Help:      "Total number of dispatched request events",
		},
		[]string{"method", "status"},
	)

	m.dispatchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "dispatch_duration_seconds",
			Help:      "Dispatch duration in seconds",
			Buckets: []float64{
				.0001, .0005, .001, .005, .01,
				.025, .05, .1, .25, .5, 1,
			},
		},
		[]string{"method", "status"},
	)

	m.notFoundTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "not_found_total",
			Help:      "Total number of dispatches with no matching route",
		},
	)

	m.methodNotAllowed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "method_not_allowed_total",
			Help:      "Total number of dispatches matching a path but no method",
		},
	)

	m.handlerErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "handler_errors_total",
			Help:      "Total number of handler callback failures",
		},
	)

	m.panicsRecovered = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "panics_recovered_total",
			Help:      "Total number of panics recovered from handlers",
		},
	)

	m.patternCacheHits = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pattern",
			Name:      "cache_hits_total",
			Help:      "Total number of compiled pattern cache hits",
		},
	)

	m.patternCacheMisses = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pattern",
			Name:      "cache_misses_total",
			Help:      "Total number of compiled pattern cache misses",
		},
	)

	m.patternCacheSize = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "pattern",
			Name:      "cache_size",
			Help:      "Current number of compiled patterns in the cache",
		},
	)

	m.registry.MustRegister(
		m.dispatchesTotal,
		m.dispatchDuration,
		m.notFoundTotal,
		m.methodNotAllowed,
		m.handlerErrors,
		m.panicsRecovered,
		m.patternCacheHits,
		m.patternCacheMisses,
		m.patternCacheSize,
		collectors.NewGoCollector(),
	)

	return m
}

// ObserveDispatch records a completed dispatch.
func (m *Metrics) ObserveDispatch(method string, status int, duration time.Duration) {
	code := strconv.Itoa(status)
	m.dispatchesTotal.WithLabelValues(method, code).Inc()
	m.dispatchDuration.WithLabelValues(method, code).Observe(duration.Seconds())
}

// IncNotFound increments the 404 counter.
func (m *Metrics) IncNotFound() {
	m.notFoundTotal.Inc()
}

// IncMethodNotAllowed increments the 405 counter.
func (m *Metrics) IncMethodNotAllowed() {
	m.methodNotAllowed.Inc()
}

// IncHandlerError increments the handler failure counter.
func (m *Metrics) IncHandlerError() {
	m.handlerErrors.Inc()
}

// IncPanicRecovered increments the recovered panic counter.
func (m *Metrics) IncPanicRecovered() {
	m.panicsRecovered.Inc()
}

// PatternCacheHit increments the pattern cache hit counter.
func (m *Metrics) PatternCacheHit() {
	m.patternCacheHits.Inc()
}

// PatternCacheMiss increments the pattern cache miss counter.
func (m *Metrics) PatternCacheMiss() {
	m.patternCacheMisses.Inc()
}

// SetPatternCacheSize sets the pattern cache size gauge.
func (m *Metrics) SetPatternCacheSize(n int) {
	m.patternCacheSize.Set(float64(n))
}

// Registry returns the underlying Prometheus registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns an HTTP handler for the metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
