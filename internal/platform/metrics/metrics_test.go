package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	t.Parallel()

	m := New()
	m.ObserveRequest("online_score", 200, 3*time.Millisecond)
	m.ObserveRequest("online_score", 200, time.Millisecond)
	m.ObserveRequest("", 400, time.Millisecond)
	m.BackendAttempt("get", errors.New("down"))
	m.BackendAttempt("get", nil)
	m.BackendExhausted("set")
	m.CacheLookup(true)
	m.CacheLookup(false)
	m.CacheLookup(false)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("online_score", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("none", "400")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.backendAttempts.WithLabelValues("get", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.backendAttempts.WithLabelValues("get", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.backendExhaust.WithLabelValues("set")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.cacheLookups.WithLabelValues("miss")))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	t.Parallel()

	var m *Metrics
	m.ObserveRequest("x", 200, time.Second)
	m.BackendAttempt("get", nil)
	m.BackendExhausted("get")
	m.CacheLookup(true)
}

func TestMetrics_Handler(t *testing.T) {
	t.Parallel()

	m := New()
	m.CacheLookup(true)

	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, strings.Contains(rr.Body.String(), "scoring_store_cache_lookups_total"))
}
