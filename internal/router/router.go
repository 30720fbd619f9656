package router

import (
	"context"
	"net/http"
	"strings"
	"sync"

	"github.com/edgefuncs/router/internal/event"
	"github.com/edgefuncs/router/internal/observability"
	"github.com/edgefuncs/router/internal/pattern"
)

// HandlerFunc is a request handler or middleware callback. Handlers
// mutate the response builder in place and may end the response to
// short-circuit the remaining chain.
type HandlerFunc func(ctx context.Context, req *event.Request, res *event.ResponseBuilder) error

// ErrorHandlerFunc is an error handler callback, invoked with the
// dispatch failure in addition to the request and response.
type ErrorHandlerFunc func(ctx context.Context, dispatchErr error, req *event.Request, res *event.ResponseBuilder) error

// CORSPreflightConfig configures the automatic CORS preflight handler.
type CORSPreflightConfig struct {
	// TrustedOrigins lists the origins the preflight handler will
	// authorize. A single "*" entry trusts every origin.
	TrustedOrigins []string
}

// Options are the recognized router options.
type Options struct {
	// ParseCookie parses incoming cookies onto the request.
	ParseCookie bool
	// Auto405 emits 405 instead of 404 when a path matched but the
	// method did not.
	Auto405 bool
	// ExtractRequestParameters populates request params on match.
	ExtractRequestParameters bool
	// AutoContentType detects a Content-Type for responses that
	// carry a body without declaring one.
	AutoContentType bool
	// AutoCORSPreflight, when set, installs a wildcard OPTIONS
	// handler answering CORS preflight requests.
	AutoCORSPreflight *CORSPreflightConfig

	// Logger receives dispatch and error logs. Defaults to a
	// no-op logger.
	Logger observability.Logger
	// Metrics, when set, receives dispatch metrics.
	Metrics *observability.Metrics
}

// routeEntry binds a method set and a path pattern. It is created once
// at registration and immutable thereafter.
type routeEntry struct {
	methods []string
	pattern string
}

// requestHandler pairs a route entry's check with a request callback.
type requestHandler struct {
	entry routeEntry
	check checkFunc
	fn    HandlerFunc
}

// errorHandler pairs a route entry's check with an error callback.
type errorHandler struct {
	entry routeEntry
	check checkFunc
	fn    ErrorHandlerFunc
}

// Router is the dispatcher. Handler registration order is execution
// order; lists are never re-sorted.
type Router struct {
	opts     Options
	logger   observability.Logger
	metrics  *observability.Metrics
	patterns *pattern.Cache

	mu          sync.RWMutex
	handlers    []*requestHandler
	errHandlers []*errorHandler
}

// New creates a router with the given options. When CORS preflight
// configuration is supplied, a wildcard OPTIONS handler is installed
// before any user route.
func New(opts Options) *Router {
	logger := opts.Logger
	if logger == nil {
		logger = observability.NopLogger()
	}

	var cacheOpts []pattern.CacheOption
	if opts.Metrics != nil {
		cacheOpts = append(cacheOpts, pattern.WithMetrics(opts.Metrics))
	}

	rt := &Router{
		opts:     opts,
		logger:   logger,
		metrics:  opts.Metrics,
		patterns: pattern.NewCache(cacheOpts...),
	}

	if opts.AutoCORSPreflight != nil {
		rt.Route([]string{http.MethodOptions}, Wildcard, corsPreflight(opts.AutoCORSPreflight.TrustedOrigins))
	}

	return rt
}

// Route registers a request handler for the given methods and path
// pattern. An empty method list is treated as the method wildcard.
func (rt *Router) Route(methods []string, pat string, fn HandlerFunc) {
	entry := newRouteEntry(methods, pat)

	rt.mu.Lock()
	defer rt.mu.Unlock()
	rt.handlers = append(rt.handlers, &requestHandler{
		entry: entry,
		check: rt.newCheck(entry),
		fn:    fn,
	})
}

// Use registers wildcard middleware running for every request.
func (rt *Router) Use(fns ...HandlerFunc) {
	for _, fn := range fns {
		rt.Route([]string{Wildcard}, Wildcard, fn)
	}
}

// UseAt registers middleware scoped to a path pattern, matched for
// every method.
func (rt *Router) UseAt(pat string, fn HandlerFunc) {
	rt.Route([]string{Wildcard}, pat, fn)
}

// UseError registers wildcard error handlers. User error handlers run
// before the built-in default, in registration order.
func (rt *Router) UseError(fns ...ErrorHandlerFunc) {
	for _, fn := range fns {
		rt.UseErrorAt(Wildcard, fn)
	}
}

// UseErrorAt registers an error handler scoped to a path pattern.
func (rt *Router) UseErrorAt(pat string, fn ErrorHandlerFunc) {
	entry := newRouteEntry([]string{Wildcard}, pat)

	rt.mu.Lock()
	defer rt.mu.Unlock()
	rt.errHandlers = append(rt.errHandlers, &errorHandler{
		entry: entry,
		check: rt.newCheck(entry),
		fn:    fn,
	})
}

// Get registers a GET handler.
func (rt *Router) Get(pat string, fn HandlerFunc) {
	rt.Route([]string{http.MethodGet}, pat, fn)
}

// Post registers a POST handler.
func (rt *Router) Post(pat string, fn HandlerFunc) {
	rt.Route([]string{http.MethodPost}, pat, fn)
}

// Put registers a PUT handler.
func (rt *Router) Put(pat string, fn HandlerFunc) {
	rt.Route([]string{http.MethodPut}, pat, fn)
}

// Delete registers a DELETE handler.
func (rt *Router) Delete(pat string, fn HandlerFunc) {
	rt.Route([]string{http.MethodDelete}, pat, fn)
}

// Head registers a HEAD handler.
func (rt *Router) Head(pat string, fn HandlerFunc) {
	rt.Route([]string{http.MethodHead}, pat, fn)
}

// Options registers an OPTIONS handler.
func (rt *Router) Options(pat string, fn HandlerFunc) {
	rt.Route([]string{http.MethodOptions}, pat, fn)
}

// Patch registers a PATCH handler.
func (rt *Router) Patch(pat string, fn HandlerFunc) {
	rt.Route([]string{http.MethodPatch}, pat, fn)
}

// Purge registers a PURGE handler.
func (rt *Router) Purge(pat string, fn HandlerFunc) {
	rt.Route([]string{"PURGE"}, pat, fn)
}

// All registers a handler matching every method.
func (rt *Router) All(pat string, fn HandlerFunc) {
	rt.Route([]string{Wildcard}, pat, fn)
}

// newRouteEntry normalizes methods to uppercase and defaults an empty
// list to the wildcard.
func newRouteEntry(methods []string, pat string) routeEntry {
	if len(methods) == 0 {
		methods = []string{Wildcard}
	}

	normalized := make([]string, len(methods))
	for i, m := range methods {
		normalized[i] = strings.ToUpper(m)
	}

	return routeEntry{methods: normalized, pattern: pat}
}

// snapshotHandlers returns the current handler lists for one dispatch.
func (rt *Router) snapshotHandlers() ([]*requestHandler, []*errorHandler) {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	return rt.handlers, rt.errHandlers
}
