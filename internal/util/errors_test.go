package util

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouteNotFoundError(t *testing.T) {
	t.Parallel()

	err := NewRouteNotFoundError("GET", "/missing")
	assert.Equal(t, "no route found for GET /missing", err.Error())
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrMethodNotAllowed)

	var target *RouteNotFoundError
	require.ErrorAs(t, fmt.Errorf("dispatch: %w", err), &target)
	assert.Equal(t, "/missing", target.Path)
}

func TestMethodNotAllowedError(t *testing.T) {
	t.Parallel()

	err := NewMethodNotAllowedError("POST", "/items/42", []string{"GET", "HEAD"})
	assert.Equal(t, "method POST not allowed for /items/42 (allowed: GET, HEAD)", err.Error())
	assert.ErrorIs(t, err, ErrMethodNotAllowed)
	assert.NotErrorIs(t, err, ErrNotFound)

	var target *MethodNotAllowedError
	require.ErrorAs(t, err, &target)
	assert.Equal(t, []string{"GET", "HEAD"}, target.Allowed)
}

func TestHandlerError(t *testing.T) {
	t.Parallel()

	cause := errors.New("boom")
	err := NewHandlerError("/items/:id", cause)

	assert.Equal(t, "handler /items/:id failed: boom", err.Error())
	assert.ErrorIs(t, err, cause)

	var target *HandlerError
	require.ErrorAs(t, err, &target)
	assert.Equal(t, "/items/:id", target.Pattern)

	bare := NewHandlerError("", cause)
	assert.Equal(t, "handler failed: boom", bare.Error())
}

func TestHandlerError_WrapsTaxonomy(t *testing.T) {
	t.Parallel()

	err := NewHandlerError("*", NewRouteNotFoundError("GET", "/x"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestConfigError(t *testing.T) {
	t.Parallel()

	err := NewConfigError("server.listen", "must not be empty")
	assert.Equal(t, "config error at server.listen: must not be empty", err.Error())
	assert.ErrorIs(t, err, ErrConfigInvalid)

	noField := &ConfigError{Message: "broken"}
	assert.Equal(t, "config error: broken", noField.Error())
}

func TestWrapError(t *testing.T) {
	t.Parallel()

	assert.NoError(t, WrapError(nil, "context"))

	base := errors.New("base")
	wrapped := WrapError(base, "loading config")
	assert.EqualError(t, wrapped, "loading config: base")
	assert.ErrorIs(t, wrapped, base)
}

func TestIsClientError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"not found", NewRouteNotFoundError("GET", "/x"), true},
		{"method not allowed", NewMethodNotAllowedError("POST", "/x", []string{"GET"}), true},
		{"handler error", NewHandlerError("*", errors.New("boom")), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, IsClientError(tt.err))
		})
	}
}
