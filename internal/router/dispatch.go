package router

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/edgefuncs/router/internal/event"
	"github.com/edgefuncs/router/internal/observability"
	"github.com/edgefuncs/router/internal/util"
)

// Dispatch runs one inbound event through the request-handler chain,
// falling back to the error-handler chain on any failure, and
// serializes the final response. It always produces a response.
func (rt *Router) Dispatch(ctx context.Context, req *event.Request) *event.Response {
	// A host adapter may have stamped the context before handing the
	// request over; prefer its clock so the measured duration covers
	// the full hosting path.
	start := util.StartTimeFromContext(ctx)
	if start.IsZero() {
		start = time.Now()
	}
	res := event.NewResponseBuilder()

	if rt.opts.ParseCookie {
		req.ParseCookies()
	}

	handlers, errHandlers := rt.snapshotHandlers()

	if err := rt.runRequestChain(ctx, handlers, req, res); err != nil {
		rt.runErrorChain(ctx, errHandlers, err, req, res)
	}

	resp := res.Finalize(rt.opts.AutoContentType)
	duration := time.Since(start)

	if rt.metrics != nil {
		rt.metrics.ObserveDispatch(req.Method, resp.StatusCode, duration)
	}

	fields := []observability.Field{
		observability.String("method", req.Method),
		observability.String("path", req.Path()),
		observability.Int("status", resp.StatusCode),
		observability.Duration("duration", duration),
	}
	if id := util.RequestIDFromContext(ctx); id != "" {
		fields = append(fields, observability.String("request_id", id))
	}
	rt.logger.Debug("dispatch complete", fields...)

	return resp
}

// runRequestChain iterates the registered request handlers in
// registration order, stopping once the response is ended. When the
// chain runs out, the outcome is keyed on the last evaluated check,
// not on whether anything earlier matched: a pass-through match
// followed by a miss still ends in not-found. Method mismatches
// accumulated anywhere in the chain take precedence over not-found.
func (rt *Router) runRequestChain(ctx context.Context, handlers []*requestHandler, req *event.Request, res *event.ResponseBuilder) error {
	var last CheckResult
	var allowed []string

	for _, h := range handlers {
		if res.Ended() {
			return nil
		}

		result, err := h.check(req)
		if err != nil {
			return util.NewHandlerError(h.entry.pattern, err)
		}

		switch result.Kind {
		case CheckMatched:
			if err := rt.invoke(ctx, h, req, res); err != nil {
				return err
			}
		case CheckMethodMismatch:
			allowed = mergeAllowed(allowed, result.Allowed)
		case CheckNotFound:
			// The route is invisible to this request.
		}

		last = result
	}

	if last.Kind == CheckMatched {
		return nil
	}

	if len(allowed) > 0 {
		if rt.metrics != nil {
			rt.metrics.IncMethodNotAllowed()
		}
		return util.NewMethodNotAllowedError(req.Method, req.Path(), allowed)
	}

	if rt.metrics != nil {
		rt.metrics.IncNotFound()
	}
	return util.NewRouteNotFoundError(req.Method, req.Path())
}

// invoke runs one request callback, converting panics into handler
// errors.
func (rt *Router) invoke(ctx context.Context, h *requestHandler, req *event.Request, res *event.ResponseBuilder) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			rt.logger.Error("panic recovered",
				observability.String("pattern", h.entry.pattern),
				observability.String("method", req.Method),
				observability.String("path", req.Path()),
				observability.Any("error", rec),
				observability.String("stack", string(debug.Stack())),
			)
			if rt.metrics != nil {
				rt.metrics.IncPanicRecovered()
			}
			err = util.NewHandlerError(h.entry.pattern, fmt.Errorf("panic: %v", rec))
		}
	}()

	if err := h.fn(ctx, req, res); err != nil {
		if rt.metrics != nil {
			rt.metrics.IncHandlerError()
		}
		return util.NewHandlerError(h.entry.pattern, err)
	}
	return nil
}

// runErrorChain iterates the error handlers in registration order with
// the built-in default appended last, so the chain always terminates
// in a final response. A user error handler that itself fails is
// logged and skipped.
func (rt *Router) runErrorChain(ctx context.Context, errHandlers []*errorHandler, dispatchErr error, req *event.Request, res *event.ResponseBuilder) {
	chain := make([]*errorHandler, 0, len(errHandlers)+1)
	chain = append(chain, errHandlers...)
	chain = append(chain, &errorHandler{
		entry: routeEntry{methods: []string{Wildcard}, pattern: Wildcard},
		check: alwaysMatched,
		fn:    rt.defaultErrorHandler,
	})

	for _, h := range chain {
		if res.Ended() {
			return
		}

		result, err := h.check(req)
		if err != nil {
			rt.logger.Warn("error handler check failed",
				observability.String("pattern", h.entry.pattern),
				observability.Error(err),
			)
			continue
		}
		if result.Kind != CheckMatched {
			continue
		}

		if err := rt.invokeError(ctx, h, dispatchErr, req, res); err != nil {
			rt.logger.Error("error handler failed",
				observability.String("pattern", h.entry.pattern),
				observability.Error(err),
			)
		}
	}
}

// invokeError runs one error callback, converting panics into errors
// so a faulty user error handler cannot take down the dispatch.
func (rt *Router) invokeError(ctx context.Context, h *errorHandler, dispatchErr error, req *event.Request, res *event.ResponseBuilder) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			if rt.metrics != nil {
				rt.metrics.IncPanicRecovered()
			}
			err = fmt.Errorf("panic: %v", rec)
		}
	}()

	return h.fn(ctx, dispatchErr, req, res)
}

// alwaysMatched is the check of the built-in default error handler.
func alwaysMatched(*event.Request) (CheckResult, error) {
	return CheckResult{Kind: CheckMatched}, nil
}

// defaultErrorHandler terminates the error chain: not-found (and
// method-not-allowed with Auto405 disabled) resolve to 404,
// method-not-allowed with Auto405 enabled resolves to 405 with an
// Allow header, and anything else is logged and resolved to a 500
// JSON body.
func (rt *Router) defaultErrorHandler(_ context.Context, dispatchErr error, req *event.Request, res *event.ResponseBuilder) error {
	var notAllowed *util.MethodNotAllowedError
	if errors.As(dispatchErr, &notAllowed) {
		if !rt.opts.Auto405 {
			res.Status(http.StatusNotFound)
			res.End()
			return nil
		}
		res.SetHeader("Allow", strings.Join(notAllowed.Allowed, ", "))
		res.Status(http.StatusMethodNotAllowed)
		res.End()
		return nil
	}

	if errors.Is(dispatchErr, util.ErrNotFound) {
		res.Status(http.StatusNotFound)
		res.End()
		return nil
	}

	rt.logger.Error("unhandled handler error",
		observability.String("method", req.Method),
		observability.String("path", req.Path()),
		observability.Error(dispatchErr),
	)

	return res.JSON(http.StatusInternalServerError, map[string]string{
		"error": rootMessage(dispatchErr),
	})
}

// rootMessage extracts the original callback failure message from a
// wrapped handler error.
func rootMessage(err error) string {
	var handlerErr *util.HandlerError
	if errors.As(err, &handlerErr) && handlerErr.Cause != nil {
		return handlerErr.Cause.Error()
	}
	return err.Error()
}
