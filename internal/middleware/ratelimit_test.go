package middleware

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgefuncs/router/internal/event"
)

func TestRateLimiter_Global(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(1, 2, false)
	defer rl.Stop()

	assert.True(t, rl.Allow("10.0.0.1"))
	assert.True(t, rl.Allow("10.0.0.2"))
	assert.False(t, rl.Allow("10.0.0.3"), "burst exhausted regardless of client")
}

func TestRateLimiter_PerClient(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(1, 1, true)
	defer rl.Stop()

	assert.True(t, rl.Allow("10.0.0.1"))
	assert.False(t, rl.Allow("10.0.0.1"))
	assert.True(t, rl.Allow("10.0.0.2"), "each client has its own budget")
}

func TestRateLimiter_Cleanup(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(1, 1, true, WithClientTTL(time.Millisecond))
	defer rl.Stop()

	rl.Allow("10.0.0.1")
	time.Sleep(5 * time.Millisecond)
	rl.cleanup()

	rl.mu.Lock()
	defer rl.mu.Unlock()
	assert.Empty(t, rl.clients)
}

func TestRateLimit_Handler(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(1, 1, false)
	defer rl.Stop()
	fn := RateLimit(rl)

	req := newRequest(t, http.MethodGet, "/x")
	req.RemoteAddr = "10.0.0.1:1234"

	res := event.NewResponseBuilder()
	require.NoError(t, fn(context.Background(), req, res))
	assert.False(t, res.Ended(), "first request passes through")

	res = event.NewResponseBuilder()
	require.NoError(t, fn(context.Background(), req, res))
	assert.True(t, res.Ended())
	assert.Equal(t, http.StatusTooManyRequests, res.StatusCode())
	assert.Equal(t, "1", res.Header().Get(HeaderRetryAfter))
	assert.Contains(t, string(res.Body()), "rate limit exceeded")
}

func TestRateLimiter_StopIsIdempotent(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(1, 1, true)
	rl.Stop()
	rl.Stop()
}
