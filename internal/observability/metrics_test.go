package observability

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetrics(t *testing.T) {
	t.Parallel()

	m := NewMetrics("")
	require.NotNil(t, m)
	assert.NotNil(t, m.Registry())

	// A second instance must not panic on duplicate registration.
	m2 := NewMetrics("edgerouter")
	assert.NotNil(t, m2)
}

func TestMetrics_ObserveDispatch(t *testing.T) {
	t.Parallel()

	m := NewMetrics("test")

	m.ObserveDispatch("GET", 200, 5*time.Millisecond)
	m.ObserveDispatch("GET", 200, time.Millisecond)
	m.ObserveDispatch("POST", 405, time.Millisecond)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.dispatchesTotal.WithLabelValues("GET", "200")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.dispatchesTotal.WithLabelValues("POST", "405")))
}

func TestMetrics_Counters(t *testing.T) {
	t.Parallel()

	m := NewMetrics("test")

	m.IncNotFound()
	m.IncNotFound()
	m.IncMethodNotAllowed()
	m.IncHandlerError()
	m.IncPanicRecovered()
	m.PatternCacheHit()
	m.PatternCacheMiss()
	m.SetPatternCacheSize(3)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.notFoundTotal))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.methodNotAllowed))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.handlerErrors))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.panicsRecovered))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.patternCacheHits))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.patternCacheMisses))
	assert.Equal(t, float64(3), testutil.ToFloat64(m.patternCacheSize))
}

func TestMetrics_Handler(t *testing.T) {
	t.Parallel()

	m := NewMetrics("test")
	m.IncNotFound()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/metrics", nil)
	m.Handler().ServeHTTP(rec, req)

	require.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), "test_not_found_total")
}
