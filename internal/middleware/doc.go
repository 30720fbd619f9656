// Package middleware provides stock handlers for the dispatch chain:
// request ID propagation, rate limiting, and circuit breaking.
//
// Middleware here are plain router handlers. They run in registration
// order like any other handler and reject a request by ending the
// response, which short-circuits the rest of the chain.
package middleware
