package event

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// Request is the inbound side of one dispatch. It is owned exclusively
// by the dispatch that created it and must not be shared across
// requests.
type Request struct {
	// Method is the HTTP method, uppercase.
	Method string
	// URL is the parsed request URL; URL.Path is the decoded
	// pathname used for route matching.
	URL *url.URL
	// Header holds the request headers. Lookups through Get are
	// case-insensitive.
	Header http.Header
	// Body is the raw request payload, nil when absent.
	Body []byte
	// RemoteAddr is the peer address as reported by the host.
	RemoteAddr string
	// Params holds path parameters extracted during matching. It is
	// populated only when parameter extraction is enabled on the
	// router.
	Params map[string]string
	// Cookies holds the parsed request cookies, populated only when
	// cookie parsing is enabled on the router.
	Cookies map[string]string

	values map[string]any
}

// NewRequest creates a request for the given method and URL.
func NewRequest(method, rawURL string) (*Request, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid request URL %q: %w", rawURL, err)
	}

	return &Request{
		Method: strings.ToUpper(method),
		URL:    u,
		Header: make(http.Header),
	}, nil
}

// FromHTTP builds a request event from a net/http request, consuming
// its body.
func FromHTTP(r *http.Request) (*Request, error) {
	req := &Request{
		Method:     strings.ToUpper(r.Method),
		URL:        r.URL,
		Header:     r.Header,
		RemoteAddr: r.RemoteAddr,
	}

	if r.Body != nil && r.Body != http.NoBody {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			return nil, fmt.Errorf("reading request body: %w", err)
		}
		if len(body) > 0 {
			req.Body = body
		}
	}

	return req, nil
}

// Path returns the decoded pathname, never empty.
func (r *Request) Path() string {
	if r.URL == nil || r.URL.Path == "" {
		return "/"
	}
	return r.URL.Path
}

// HeaderValue returns the first value of the named header,
// case-insensitively.
func (r *Request) HeaderValue(name string) string {
	return r.Header.Get(name)
}

// HasHeader reports whether the named header is present,
// case-insensitively.
func (r *Request) HasHeader(name string) bool {
	return r.Header.Get(name) != ""
}

// Param returns the named path parameter, or "" when absent.
func (r *Request) Param(name string) string {
	return r.Params[name]
}

// SetParams merges extracted path parameters into the request.
func (r *Request) SetParams(params map[string]string) {
	if len(params) == 0 {
		return
	}
	if r.Params == nil {
		r.Params = make(map[string]string, len(params))
	}
	for k, v := range params {
		r.Params[k] = v
	}
}

// ParseCookies populates Cookies from the Cookie request header.
func (r *Request) ParseCookies() {
	r.Cookies = make(map[string]string)
	// net/http owns cookie-string parsing; borrow it through a
	// throwaway request shell.
	shell := http.Request{Header: r.Header}
	for _, c := range shell.Cookies() {
		r.Cookies[c.Name] = c.Value
	}
}

// SetValue stores a request-scoped value, for middleware that needs to
// hand data to later handlers.
func (r *Request) SetValue(key string, value any) {
	if r.values == nil {
		r.values = make(map[string]any)
	}
	r.values[key] = value
}

// Value returns a request-scoped value stored by SetValue.
func (r *Request) Value(key string) any {
	return r.values[key]
}
