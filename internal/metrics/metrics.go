// Package metrics owns the Prometheus registry for clubcal. Collectors cover
// inbound HTTP traffic, the per-collection upstream fetches behind every
// month view, and month cache lookups. All methods are safe on a nil
// *Metrics so tests and tools can skip instrumentation.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Fetch outcomes recorded for each upstream collection request.
const (
	OutcomeOK       = "ok"
	OutcomeDegraded = "degraded"
)

// Metrics holds the registry and collectors.
type Metrics struct {
	registry *prometheus.Registry
	handler  http.Handler

	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	fetchTotal      *prometheus.CounterVec
	fetchDuration   *prometheus.HistogramVec
	cacheLookups    *prometheus.CounterVec
}

// New registers all collectors on a private registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "clubcal_http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "clubcal_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "route", "status"})

	fetchTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "clubcal_upstream_fetch_total",
		Help: "Upstream collection fetches by outcome",
	}, []string{"collection", "outcome"})

	fetchDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "clubcal_upstream_fetch_duration_seconds",
		Help:    "Latency of upstream collection fetches",
		Buckets: prometheus.DefBuckets,
	}, []string{"collection"})

	cacheLookups := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "clubcal_month_cache_lookups_total",
		Help: "Month snapshot cache lookups by tier and result",
	}, []string{"tier", "result"})

	registry.MustRegister(
		requestDuration, requestTotal,
		fetchTotal, fetchDuration,
		cacheLookups,
		collectors.NewGoCollector(),
	)

	return &Metrics{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		fetchTotal:      fetchTotal,
		fetchDuration:   fetchDuration,
		cacheLookups:    cacheLookups,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records one inbound request. route is the matched
// route pattern, not the raw path, to keep label cardinality bounded.
func (m *Metrics) ObserveHTTPRequest(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	code := strconv.Itoa(status)
	m.requestDuration.WithLabelValues(method, route, code).Observe(d.Seconds())
	m.requestTotal.WithLabelValues(method, route, code).Inc()
}

// ObserveFetch records one upstream collection fetch.
func (m *Metrics) ObserveFetch(collection, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.fetchTotal.WithLabelValues(collection, outcome).Inc()
	m.fetchDuration.WithLabelValues(collection).Observe(d.Seconds())
}

// ObserveCache records a cache lookup against the given tier ("local", "redis").
func (m *Metrics) ObserveCache(tier string, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(tier, result).Inc()
}
