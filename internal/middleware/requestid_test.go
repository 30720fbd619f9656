package middleware

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgefuncs/router/internal/event"
)

func newRequest(t *testing.T, method, rawURL string) *event.Request {
	t.Helper()

	req, err := event.NewRequest(method, rawURL)
	require.NoError(t, err)
	return req
}

func TestRequestID_GeneratesID(t *testing.T) {
	t.Parallel()

	req := newRequest(t, http.MethodGet, "/x")
	res := event.NewResponseBuilder()

	require.NoError(t, RequestID()(context.Background(), req, res))

	id := RequestIDFrom(req)
	require.NotEmpty(t, id)

	_, err := uuid.Parse(id)
	assert.NoError(t, err)
	assert.Equal(t, id, res.Header().Get(RequestIDHeader))
	assert.False(t, res.Ended())
}

func TestRequestID_ReusesClientID(t *testing.T) {
	t.Parallel()

	req := newRequest(t, http.MethodGet, "/x")
	req.Header.Set(RequestIDHeader, "client-supplied-id")
	res := event.NewResponseBuilder()

	require.NoError(t, RequestID()(context.Background(), req, res))

	assert.Equal(t, "client-supplied-id", RequestIDFrom(req))
	assert.Equal(t, "client-supplied-id", res.Header().Get(RequestIDHeader))
}

func TestRequestID_CustomGenerator(t *testing.T) {
	t.Parallel()

	req := newRequest(t, http.MethodGet, "/x")
	res := event.NewResponseBuilder()

	fn := RequestIDWithGenerator(func() string { return "fixed-id" })
	require.NoError(t, fn(context.Background(), req, res))

	assert.Equal(t, "fixed-id", RequestIDFrom(req))
}

func TestRequestIDFrom_WithoutMiddleware(t *testing.T) {
	t.Parallel()

	req := newRequest(t, http.MethodGet, "/x")
	assert.Empty(t, RequestIDFrom(req))
}
