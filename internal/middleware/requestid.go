package middleware

import (
	"context"

	"github.com/google/uuid"

	"github.com/edgefuncs/router/internal/event"
	"github.com/edgefuncs/router/internal/router"
)

const (
	// RequestIDHeader is the header name for request ID.
	RequestIDHeader = "X-Request-ID"

	// requestIDKey is the request value key the ID is stored under.
	requestIDKey = "request_id"
)

// RequestID returns a handler that assigns every request an ID,
// reusing one supplied by the client when present. The ID is stored on
// the request and echoed on the response.
func RequestID() router.HandlerFunc {
	return RequestIDWithGenerator(func() string {
		return uuid.New().String()
	})
}

// RequestIDWithGenerator returns a request ID handler using a custom
// ID generator.
func RequestIDWithGenerator(generator func() string) router.HandlerFunc {
	return func(_ context.Context, req *event.Request, res *event.ResponseBuilder) error {
		requestID := req.HeaderValue(RequestIDHeader)
		if requestID == "" {
			requestID = generator()
		}

		req.SetValue(requestIDKey, requestID)
		res.SetHeader(RequestIDHeader, requestID)
		return nil
	}
}

// RequestIDFrom returns the ID assigned to a request, or "" when the
// request ID handler has not run.
func RequestIDFrom(req *event.Request) string {
	if id, ok := req.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}
