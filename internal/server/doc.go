// Package server bridges the dispatch core to net/http. The Handler
// adapter converts inbound http.Requests to request events, runs them
// through a dispatcher, and writes the serialized response back. The
// Server wraps an http.Server with lifecycle management and graceful
// shutdown.
//
// The dispatcher behind a Handler can be swapped at runtime, which is
// how configuration hot-reload replaces the routing table without
// dropping in-flight requests.
package server
