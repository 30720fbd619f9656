package server

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/edgefuncs/router/internal/event"
	"github.com/edgefuncs/router/internal/middleware"
	"github.com/edgefuncs/router/internal/observability"
	"github.com/edgefuncs/router/internal/util"
)

// Dispatcher runs one request event through a handler chain and
// always produces a response.
type Dispatcher interface {
	Dispatch(ctx context.Context, req *event.Request) *event.Response
}

// dispatcherHolder wraps a Dispatcher so atomic.Value accepts
// differing concrete types across swaps.
type dispatcherHolder struct {
	d Dispatcher
}

// Handler adapts a Dispatcher to http.Handler. The dispatcher may be
// replaced at runtime with Swap; in-flight requests keep the
// dispatcher they started with.
type Handler struct {
	dispatcher atomic.Value
	logger     observability.Logger
}

// HandlerOption is a functional option for configuring the handler.
type HandlerOption func(*Handler)

// WithHandlerLogger sets the logger for the handler.
func WithHandlerLogger(logger observability.Logger) HandlerOption {
	return func(h *Handler) {
		h.logger = logger
	}
}

// NewHandler creates an http.Handler backed by the given dispatcher.
func NewHandler(d Dispatcher, opts ...HandlerOption) *Handler {
	h := &Handler{
		logger: observability.NopLogger(),
	}
	h.dispatcher.Store(dispatcherHolder{d: d})

	for _, opt := range opts {
		opt(h)
	}

	return h
}

// Swap replaces the dispatcher serving subsequent requests.
func (h *Handler) Swap(d Dispatcher) {
	h.dispatcher.Store(dispatcherHolder{d: d})
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	req, err := event.FromHTTP(r)
	if err != nil {
		h.logger.Warn("failed to read request",
			observability.String("method", r.Method),
			observability.String("path", r.URL.Path),
			observability.Error(err),
		)
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	ctx := util.ContextWithStartTime(r.Context(), time.Now())
	if id := r.Header.Get(middleware.RequestIDHeader); id != "" {
		ctx = util.ContextWithRequestID(ctx, id)
	}

	d := h.dispatcher.Load().(dispatcherHolder).d
	resp := d.Dispatch(ctx, req)

	header := w.Header()
	for name, values := range resp.Header {
		for _, value := range values {
			header.Add(name, value)
		}
	}

	w.WriteHeader(resp.StatusCode)
	if len(resp.Body) > 0 && r.Method != http.MethodHead {
		_, _ = w.Write(resp.Body)
	}
}
