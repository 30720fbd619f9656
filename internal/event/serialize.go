package event

import "net/http"

// Response is the wire-level response produced at the end of a
// dispatch, understood by the hosting response constructor.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Finalize converts the accumulated builder state into the wire-level
// response.
//
// The status defaults to 200 when a body is present and no status was
// explicitly set, else 204. Any Set-Cookie entries produced through
// the generic header path are discarded and replaced by one Set-Cookie
// value per tracked cookie, in insertion order. SetHeader collapses
// identically-named headers during assembly, and Set-Cookie is the one
// header where that must not reach the wire.
func (b *ResponseBuilder) Finalize(autoContentType bool) *Response {
	status := b.status
	if status == 0 {
		if len(b.body) > 0 {
			status = http.StatusOK
		} else {
			status = http.StatusNoContent
		}
	}

	header := make(http.Header, len(b.header)+1)
	for name, values := range b.header {
		header[name] = append([]string(nil), values...)
	}

	header.Del("Set-Cookie")
	for _, name := range b.cookieNames {
		header.Add("Set-Cookie", b.cookies[name])
	}

	if autoContentType && len(b.body) > 0 && header.Get("Content-Type") == "" {
		header.Set("Content-Type", http.DetectContentType(b.body))
	}

	return &Response{
		StatusCode: status,
		Header:     header,
		Body:       b.body,
	}
}
