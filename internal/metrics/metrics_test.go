package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveFetch_CountsByOutcome(t *testing.T) {
	m := New()

	m.ObserveFetch("holidays", OutcomeDegraded, 20*time.Millisecond)
	m.ObserveFetch("events", OutcomeOK, 5*time.Millisecond)
	m.ObserveFetch("events", OutcomeOK, 7*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.fetchTotal.WithLabelValues("events", OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.fetchTotal.WithLabelValues("holidays", OutcomeDegraded)))
}

func TestObserveCache(t *testing.T) {
	m := New()

	m.ObserveCache("local", true)
	m.ObserveCache("local", false)
	m.ObserveCache("redis", false)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.cacheLookups.WithLabelValues("local", "hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cacheLookups.WithLabelValues("redis", "miss")))
}

func TestHandler_ExposesCollectors(t *testing.T) {
	m := New()
	m.ObserveHTTPRequest(http.MethodGet, "/calendar", http.StatusOK, time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "clubcal_http_requests_total")
}

func TestNilMetrics_IsSafe(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.ObserveFetch("events", OutcomeOK, time.Millisecond)
		m.ObserveCache("local", true)
		m.ObserveHTTPRequest(http.MethodGet, "/", http.StatusOK, time.Millisecond)
	})

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
