package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/edgefuncs/router/internal/config"
	"github.com/edgefuncs/router/internal/observability"
)

// Server is a managed HTTP server with graceful shutdown.
type Server struct {
	config  config.ListenConfig
	server  *http.Server
	handler http.Handler
	logger  observability.Logger
	addr    atomic.Value
	running atomic.Bool
}

// Option is a functional option for configuring the server.
type Option func(*Server)

// WithLogger sets the logger for the server.
func WithLogger(logger observability.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// New creates a server serving the given handler.
func New(cfg config.ListenConfig, handler http.Handler, opts ...Option) *Server {
	s := &Server{
		config:  cfg,
		handler: handler,
		logger:  observability.NopLogger(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Address returns the address the server is bound to. Before Start it
// is the configured address; after Start it is the resolved listen
// address, useful when the configuration requested port 0.
func (s *Server) Address() string {
	if addr, ok := s.addr.Load().(string); ok {
		return addr
	}
	return s.config.Address
}

// Start binds the listen address and begins serving in the
// background.
func (s *Server) Start(ctx context.Context) error {
	if s.running.Load() {
		return fmt.Errorf("server is already running")
	}

	s.server = &http.Server{
		Addr:              s.config.Address,
		Handler:           s.handler,
		ReadTimeout:       s.config.ReadTimeout.Duration(),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      s.config.WriteTimeout.Duration(),
		IdleTimeout:       s.config.IdleTimeout.Duration(),
		MaxHeaderBytes:    1 << 20, // 1MB
	}

	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", s.config.Address)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.config.Address, err)
	}

	s.addr.Store(ln.Addr().String())
	s.running.Store(true)

	s.logger.Info("server started",
		observability.String("address", ln.Addr().String()),
	)

	go s.serve(ln)

	return nil
}

// serve runs the accept loop.
func (s *Server) serve(ln net.Listener) {
	if err := s.server.Serve(ln); err != nil && err != http.ErrServerClosed {
		s.logger.Error("server error",
			observability.Error(err),
		)
	}
	s.running.Store(false)
}

// Stop shuts the server down gracefully, falling back to an immediate
// close when the context expires first.
func (s *Server) Stop(ctx context.Context) error {
	if !s.running.Load() {
		return nil
	}

	s.logger.Info("stopping server")

	if err := s.server.Shutdown(ctx); err != nil {
		if closeErr := s.server.Close(); closeErr != nil {
			return fmt.Errorf("failed to close server: %w", closeErr)
		}
		return fmt.Errorf("failed to shutdown server gracefully: %w", err)
	}

	s.running.Store(false)

	s.logger.Info("server stopped")

	return nil
}

// IsRunning reports whether the server is accepting connections.
func (s *Server) IsRunning() bool {
	return s.running.Load()
}
