package event

import (
	"encoding/json"
	"net/http"
)

// ResponseBuilder accumulates the response for one dispatch. Handlers
// mutate it in place; the serializer reads it once at the end of
// dispatch. The builder is owned exclusively by the in-flight dispatch
// and is not safe for concurrent use.
type ResponseBuilder struct {
	status      int
	header      http.Header
	cookieNames []string
	cookies     map[string]string
	body        []byte
	ended       bool
}

// NewResponseBuilder creates an empty response builder.
func NewResponseBuilder() *ResponseBuilder {
	return &ResponseBuilder{
		header:  make(http.Header),
		cookies: make(map[string]string),
	}
}

// Status sets the response status code.
func (b *ResponseBuilder) Status(code int) *ResponseBuilder {
	b.status = code
	return b
}

// StatusCode returns the status code, 0 when unset.
func (b *ResponseBuilder) StatusCode() int {
	return b.status
}

// SetHeader replaces the named header with a single value.
func (b *ResponseBuilder) SetHeader(name, value string) *ResponseBuilder {
	b.header.Set(name, value)
	return b
}

// AddHeader appends a value to the named header.
func (b *ResponseBuilder) AddHeader(name, value string) *ResponseBuilder {
	b.header.Add(name, value)
	return b
}

// Header exposes the accumulated header multi-map.
func (b *ResponseBuilder) Header() http.Header {
	return b.header
}

// SetCookie registers a cookie for the response. Cookies are tracked
// separately from the generic header map so that each one survives
// serialization as its own Set-Cookie header; setting a cookie again
// replaces its value but keeps its original position.
func (b *ResponseBuilder) SetCookie(c *http.Cookie) *ResponseBuilder {
	if _, ok := b.cookies[c.Name]; !ok {
		b.cookieNames = append(b.cookieNames, c.Name)
	}
	b.cookies[c.Name] = c.String()
	return b
}

// Cookie returns the serialized cookie string registered under name.
func (b *ResponseBuilder) Cookie(name string) (string, bool) {
	v, ok := b.cookies[name]
	return v, ok
}

// SetBody replaces the response payload without ending the response.
func (b *ResponseBuilder) SetBody(body []byte) *ResponseBuilder {
	b.body = body
	return b
}

// Body returns the accumulated payload.
func (b *ResponseBuilder) Body() []byte {
	return b.body
}

// Ended reports whether a terminal response has been produced.
func (b *ResponseBuilder) Ended() bool {
	return b.ended
}

// End marks the response as complete, suppressing all further handler
// execution in the current chain.
func (b *ResponseBuilder) End() {
	b.ended = true
}

// Text writes a plain-text payload and ends the response.
func (b *ResponseBuilder) Text(status int, body string) {
	b.status = status
	b.header.Set("Content-Type", "text/plain; charset=utf-8")
	b.body = []byte(body)
	b.ended = true
}

// JSON marshals v as the payload and ends the response.
func (b *ResponseBuilder) JSON(status int, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}

	b.status = status
	b.header.Set("Content-Type", "application/json")
	b.body = data
	b.ended = true
	return nil
}

// Redirect sets a Location header and ends the response.
func (b *ResponseBuilder) Redirect(status int, location string) {
	b.status = status
	b.header.Set("Location", location)
	b.ended = true
}
