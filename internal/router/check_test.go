package router

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgefuncs/router/internal/event"
)

func TestMethodAllowed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		methods []string
		method  string
		want    bool
	}{
		{name: "exact match", methods: []string{"GET"}, method: "GET", want: true},
		{name: "miss", methods: []string{"GET"}, method: "POST", want: false},
		{name: "wildcard", methods: []string{"*"}, method: "PURGE", want: true},
		{name: "head matches get", methods: []string{"GET"}, method: "HEAD", want: true},
		{name: "get does not match head", methods: []string{"HEAD"}, method: "GET", want: false},
		{name: "multi method", methods: []string{"GET", "POST"}, method: "POST", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, methodAllowed(tt.methods, tt.method))
		})
	}
}

func TestMergeAllowed(t *testing.T) {
	t.Parallel()

	allowed := mergeAllowed(nil, []string{"GET", "POST"})
	allowed = mergeAllowed(allowed, []string{"POST", "PUT"})
	allowed = mergeAllowed(allowed, []string{"GET"})

	assert.Equal(t, []string{"GET", "POST", "PUT"}, allowed)
}

func TestNewRouteEntry(t *testing.T) {
	t.Parallel()

	t.Run("uppercases methods", func(t *testing.T) {
		t.Parallel()

		entry := newRouteEntry([]string{"get", "Post"}, "/x")
		assert.Equal(t, []string{"GET", "POST"}, entry.methods)
	})

	t.Run("empty list defaults to wildcard", func(t *testing.T) {
		t.Parallel()

		entry := newRouteEntry(nil, "/x")
		assert.Equal(t, []string{Wildcard}, entry.methods)
	})
}

func TestNewCheck(t *testing.T) {
	t.Parallel()

	rt := New(Options{ExtractRequestParameters: true})

	t.Run("path miss is not found", func(t *testing.T) {
		t.Parallel()

		check := rt.newCheck(newRouteEntry([]string{"GET"}, "/items"))
		req, err := event.NewRequest(http.MethodGet, "/users")
		require.NoError(t, err)

		result, err := check(req)
		require.NoError(t, err)
		assert.Equal(t, CheckNotFound, result.Kind)
	})

	t.Run("path hit with wrong method is mismatch", func(t *testing.T) {
		t.Parallel()

		check := rt.newCheck(newRouteEntry([]string{"GET", "POST"}, "/items/:id"))
		req, err := event.NewRequest(http.MethodDelete, "/items/7")
		require.NoError(t, err)

		result, err := check(req)
		require.NoError(t, err)
		assert.Equal(t, CheckMethodMismatch, result.Kind)
		assert.Equal(t, []string{"GET", "POST"}, result.Allowed)
		assert.Equal(t, "7", req.Param("id"), "params attach on path match regardless of method")
	})

	t.Run("path and method hit is matched", func(t *testing.T) {
		t.Parallel()

		check := rt.newCheck(newRouteEntry([]string{"GET"}, "/items/:id"))
		req, err := event.NewRequest(http.MethodGet, "/items/7")
		require.NoError(t, err)

		result, err := check(req)
		require.NoError(t, err)
		assert.Equal(t, CheckMatched, result.Kind)
	})

	t.Run("universal pattern skips path matching", func(t *testing.T) {
		t.Parallel()

		check := rt.newCheck(newRouteEntry([]string{"GET"}, Wildcard))
		req, err := event.NewRequest(http.MethodGet, "/anything/at/all")
		require.NoError(t, err)

		result, err := check(req)
		require.NoError(t, err)
		assert.Equal(t, CheckMatched, result.Kind)
	})

	t.Run("invalid pattern surfaces the compile error", func(t *testing.T) {
		t.Parallel()

		check := rt.newCheck(newRouteEntry([]string{"GET"}, "/bad/:"))
		req, err := event.NewRequest(http.MethodGet, "/bad/x")
		require.NoError(t, err)

		_, err = check(req)
		assert.Error(t, err)
	})
}
