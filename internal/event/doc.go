// Package event models one inbound request event and the response
// being assembled for it.
//
// A Request wraps the method, decoded URL, and case-insensitive
// headers of an inbound event, plus a mutable params slot populated
// during route matching. A ResponseBuilder accumulates status,
// headers, cookies, and body as handlers execute, and exposes an
// "ended" flag that gates further handler execution once a terminal
// response has been produced. Finalize converts the accumulated state
// into the wire-level Response, applying the Set-Cookie workaround so
// that each tracked cookie is emitted as its own header value.
package event
