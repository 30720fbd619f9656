package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"github.com/edgefuncs/router/internal/event"
	"github.com/edgefuncs/router/internal/observability"
	"github.com/edgefuncs/router/internal/router"
)

// CircuitBreakerStateFunc is called when the circuit breaker changes
// state. Parameters: name (circuit breaker name), state (0=closed,
// 1=half-open, 2=open).
type CircuitBreakerStateFunc func(name string, state int)

// CircuitBreaker wraps gobreaker.CircuitBreaker.
type CircuitBreaker struct {
	cb            *gobreaker.CircuitBreaker
	logger        observability.Logger
	stateCallback CircuitBreakerStateFunc
}

// CircuitBreakerOption is a functional option for configuring the
// circuit breaker.
type CircuitBreakerOption func(*CircuitBreaker)

// WithCircuitBreakerLogger sets the logger for the circuit breaker.
func WithCircuitBreakerLogger(logger observability.Logger) CircuitBreakerOption {
	return func(cb *CircuitBreaker) {
		cb.logger = logger
	}
}

// WithCircuitBreakerStateCallback sets a callback for circuit breaker
// state changes.
func WithCircuitBreakerStateCallback(fn CircuitBreakerStateFunc) CircuitBreakerOption {
	return func(cb *CircuitBreaker) {
		cb.stateCallback = fn
	}
}

// NewCircuitBreaker creates a circuit breaker. The breaker trips once
// at least threshold requests were seen within the window and half of
// them failed.
func NewCircuitBreaker(
	name string,
	threshold int,
	timeout time.Duration,
	opts ...CircuitBreakerOption,
) *CircuitBreaker {
	cb := &CircuitBreaker{
		logger: observability.NopLogger(),
	}

	for _, opt := range opts {
		opt(cb)
	}

	thresholdU32 := safeIntToUint32(threshold)

	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: thresholdU32,
		Interval:    timeout,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= thresholdU32 && failureRatio >= 0.5
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			cb.logger.Info("circuit breaker state change",
				observability.String("name", name),
				observability.String("from", from.String()),
				observability.String("to", to.String()),
			)

			if cb.stateCallback != nil {
				cb.stateCallback(name, int(to))
			}
		},
	}

	cb.cb = gobreaker.NewCircuitBreaker(settings)
	return cb
}

// safeIntToUint32 safely converts int to uint32.
func safeIntToUint32(n int) uint32 {
	if n < 0 {
		return 0
	}
	if n > int(^uint32(0)) {
		return ^uint32(0)
	}
	return uint32(n) //nolint:gosec // bounds checked above
}

// State returns the current state of the circuit breaker.
func (cb *CircuitBreaker) State() gobreaker.State {
	return cb.cb.State()
}

// Protect wraps a handler with circuit breaker protection. A handler
// error or a 5xx response counts as a failure; while the breaker is
// open, requests are rejected with 503 without invoking the handler.
func (cb *CircuitBreaker) Protect(fn router.HandlerFunc) router.HandlerFunc {
	return func(ctx context.Context, req *event.Request, res *event.ResponseBuilder) error {
		_, err := cb.cb.Execute(func() (interface{}, error) {
			if err := fn(ctx, req, res); err != nil {
				return nil, err
			}
			if res.StatusCode() >= http.StatusInternalServerError {
				return nil, fmt.Errorf("server error status %d", res.StatusCode())
			}
			return nil, nil
		})

		if err == nil {
			return nil
		}

		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			cb.logger.Warn("circuit breaker rejected request",
				observability.String("path", req.Path()),
				observability.String("state", cb.State().String()),
			)

			if !res.Ended() {
				return res.JSON(http.StatusServiceUnavailable, map[string]string{
					"error": "service unavailable",
				})
			}
			return nil
		}

		if res.Ended() {
			// The handler produced its own failure response.
			return nil
		}
		return err
	}
}
