package event

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResponseBuilder_Headers(t *testing.T) {
	t.Parallel()

	b := NewResponseBuilder()
	b.SetHeader("X-One", "a")
	b.AddHeader("X-One", "b")
	b.SetHeader("x-two", "c")

	assert.Equal(t, []string{"a", "b"}, b.Header().Values("X-One"))
	assert.Equal(t, "c", b.Header().Get("X-Two"))
}

func TestResponseBuilder_Ended(t *testing.T) {
	t.Parallel()

	b := NewResponseBuilder()
	assert.False(t, b.Ended())

	b.Status(201).SetBody([]byte("ok"))
	assert.False(t, b.Ended())

	b.End()
	assert.True(t, b.Ended())
}

func TestResponseBuilder_Text(t *testing.T) {
	t.Parallel()

	b := NewResponseBuilder()
	b.Text(http.StatusTeapot, "short and stout")

	assert.True(t, b.Ended())
	assert.Equal(t, http.StatusTeapot, b.StatusCode())
	assert.Equal(t, "text/plain; charset=utf-8", b.Header().Get("Content-Type"))
	assert.Equal(t, "short and stout", string(b.Body()))
}

func TestResponseBuilder_JSON(t *testing.T) {
	t.Parallel()

	b := NewResponseBuilder()
	err := b.JSON(http.StatusOK, map[string]string{"status": "ok"})
	require.NoError(t, err)

	assert.True(t, b.Ended())
	assert.Equal(t, "application/json", b.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"status":"ok"}`, string(b.Body()))
}

func TestResponseBuilder_JSON_MarshalError(t *testing.T) {
	t.Parallel()

	b := NewResponseBuilder()
	err := b.JSON(http.StatusOK, make(chan int))
	assert.Error(t, err)
	assert.False(t, b.Ended())
}

func TestResponseBuilder_Redirect(t *testing.T) {
	t.Parallel()

	b := NewResponseBuilder()
	b.Redirect(http.StatusFound, "/login")

	assert.True(t, b.Ended())
	assert.Equal(t, http.StatusFound, b.StatusCode())
	assert.Equal(t, "/login", b.Header().Get("Location"))
}

func TestResponseBuilder_SetCookie(t *testing.T) {
	t.Parallel()

	b := NewResponseBuilder()
	b.SetCookie(&http.Cookie{Name: "a", Value: "1"})
	b.SetCookie(&http.Cookie{Name: "b", Value: "2"})
	b.SetCookie(&http.Cookie{Name: "a", Value: "3"})

	v, ok := b.Cookie("a")
	require.True(t, ok)
	assert.Equal(t, "a=3", v)

	_, ok = b.Cookie("missing")
	assert.False(t, ok)
}

func TestFinalize_StatusDefaults(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		build func(*ResponseBuilder)
		want  int
	}{
		{"empty builder yields 204", func(*ResponseBuilder) {}, http.StatusNoContent},
		{"body without status yields 200", func(b *ResponseBuilder) {
			b.SetBody([]byte("hi"))
		}, http.StatusOK},
		{"explicit status wins", func(b *ResponseBuilder) {
			b.Status(http.StatusCreated).SetBody([]byte("hi"))
		}, http.StatusCreated},
		{"explicit status without body", func(b *ResponseBuilder) {
			b.Status(http.StatusNotFound)
		}, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			b := NewResponseBuilder()
			tt.build(b)
			assert.Equal(t, tt.want, b.Finalize(false).StatusCode)
		})
	}
}

func TestFinalize_CookieWorkaround(t *testing.T) {
	t.Parallel()

	b := NewResponseBuilder()
	// A Set-Cookie written through the generic header path must be
	// discarded in favor of the tracked cookies.
	b.SetHeader("Set-Cookie", "stale=1")
	b.SetCookie(&http.Cookie{Name: "first", Value: "1"})
	b.SetCookie(&http.Cookie{Name: "second", Value: "2", Path: "/"})
	b.SetCookie(&http.Cookie{Name: "third", Value: "3"})

	resp := b.Finalize(false)

	cookies := resp.Header.Values("Set-Cookie")
	require.Len(t, cookies, 3)
	assert.Equal(t, "first=1", cookies[0])
	assert.Equal(t, "second=2; Path=/", cookies[1])
	assert.Equal(t, "third=3", cookies[2])
}

func TestFinalize_HeadersCopied(t *testing.T) {
	t.Parallel()

	b := NewResponseBuilder()
	b.AddHeader("X-Multi", "a")
	b.AddHeader("X-Multi", "b")

	resp := b.Finalize(false)
	assert.Equal(t, []string{"a", "b"}, resp.Header.Values("X-Multi"))

	// Mutating the wire header must not leak back into the builder.
	resp.Header.Set("X-Multi", "mutated")
	assert.Equal(t, []string{"a", "b"}, b.Header().Values("X-Multi"))
}

func TestFinalize_AutoContentType(t *testing.T) {
	t.Parallel()

	b := NewResponseBuilder()
	b.SetBody([]byte("<html><body>hi</body></html>"))

	resp := b.Finalize(true)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")

	// Disabled: no content type is invented.
	resp = NewResponseBuilder().SetBody([]byte("plain")).Finalize(false)
	assert.Empty(t, resp.Header.Get("Content-Type"))

	// An explicit content type is never overridden.
	b = NewResponseBuilder()
	b.SetHeader("Content-Type", "application/custom")
	b.SetBody([]byte("payload"))
	resp = b.Finalize(true)
	assert.Equal(t, "application/custom", resp.Header.Get("Content-Type"))
}
