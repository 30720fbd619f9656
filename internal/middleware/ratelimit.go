package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/edgefuncs/router/internal/event"
	"github.com/edgefuncs/router/internal/observability"
	"github.com/edgefuncs/router/internal/router"
)

// Rate limiter default configuration constants.
const (
	// DefaultClientTTL is the default TTL for per-client limiter entries.
	DefaultClientTTL = 10 * time.Minute

	// cleanupInterval is how often stale per-client entries are dropped.
	cleanupInterval = time.Minute

	// HeaderRetryAfter is the Retry-After response header name.
	HeaderRetryAfter = "Retry-After"
)

// clientEntry holds a rate limiter and its last access time for
// TTL-based cleanup.
type clientEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// RateLimiter limits request throughput, globally or per client
// address.
type RateLimiter struct {
	limiter   *rate.Limiter
	perClient bool
	clients   map[string]*clientEntry
	mu        sync.Mutex
	rps       int
	burst     int
	logger    observability.Logger
	clientTTL time.Duration
	stopCh    chan struct{}
	stopOnce  sync.Once
}

// RateLimiterOption is a functional option for configuring the rate
// limiter.
type RateLimiterOption func(*RateLimiter)

// WithRateLimiterLogger sets the logger for the rate limiter.
func WithRateLimiterLogger(logger observability.Logger) RateLimiterOption {
	return func(rl *RateLimiter) {
		rl.logger = logger
	}
}

// WithClientTTL overrides the TTL for per-client limiter entries.
func WithClientTTL(ttl time.Duration) RateLimiterOption {
	return func(rl *RateLimiter) {
		rl.clientTTL = ttl
	}
}

// NewRateLimiter creates a rate limiter. When perClient is set, each
// client address gets an independent limiter and stale entries are
// cleaned up in the background until Stop is called.
func NewRateLimiter(rps, burst int, perClient bool, opts ...RateLimiterOption) *RateLimiter {
	rl := &RateLimiter{
		limiter:   rate.NewLimiter(rate.Limit(rps), burst),
		perClient: perClient,
		clients:   make(map[string]*clientEntry),
		rps:       rps,
		burst:     burst,
		logger:    observability.NopLogger(),
		clientTTL: DefaultClientTTL,
		stopCh:    make(chan struct{}),
	}

	for _, opt := range opts {
		opt(rl)
	}

	if perClient {
		go rl.cleanupLoop()
	}

	return rl
}

// Allow checks whether a request from the given client is admitted.
func (rl *RateLimiter) Allow(client string) bool {
	if rl.perClient {
		return rl.allowPerClient(client)
	}
	return rl.limiter.Allow()
}

// allowPerClient checks rate limit per client. Lookup and lastAccess
// update share one critical section; Allow itself is thread-safe on
// the limiter.
func (rl *RateLimiter) allowPerClient(client string) bool {
	now := time.Now()

	rl.mu.Lock()
	entry, exists := rl.clients[client]
	if !exists {
		entry = &clientEntry{
			limiter: rate.NewLimiter(rate.Limit(rl.rps), rl.burst),
		}
		rl.clients[client] = entry
	}
	entry.lastAccess = now
	limiter := entry.limiter
	rl.mu.Unlock()

	return limiter.Allow()
}

// Stop terminates the background cleanup goroutine. Safe to call more
// than once.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() {
		close(rl.stopCh)
	})
}

func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stopCh:
			return
		case <-ticker.C:
			rl.cleanup()
		}
	}
}

func (rl *RateLimiter) cleanup() {
	cutoff := time.Now().Add(-rl.clientTTL)

	rl.mu.Lock()
	for client, entry := range rl.clients {
		if entry.lastAccess.Before(cutoff) {
			delete(rl.clients, client)
		}
	}
	rl.mu.Unlock()
}

// RateLimit returns a handler rejecting requests over the limit with
// 429. The client key is the request's remote address.
func RateLimit(rl *RateLimiter) router.HandlerFunc {
	return func(_ context.Context, req *event.Request, res *event.ResponseBuilder) error {
		if rl.Allow(req.RemoteAddr) {
			return nil
		}

		rl.logger.Warn("rate limit exceeded",
			observability.String("client", req.RemoteAddr),
			observability.String("path", req.Path()),
		)

		res.SetHeader(HeaderRetryAfter, "1")
		return res.JSON(http.StatusTooManyRequests, map[string]string{
			"error": "rate limit exceeded",
		})
	}
}
