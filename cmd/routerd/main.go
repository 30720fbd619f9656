// Package main is the entry point for the router daemon.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/edgefuncs/router/internal/config"
	"github.com/edgefuncs/router/internal/event"
	"github.com/edgefuncs/router/internal/middleware"
	"github.com/edgefuncs/router/internal/observability"
	"github.com/edgefuncs/router/internal/router"
	"github.com/edgefuncs/router/internal/server"
)

// Version information (set at build time).
var (
	version   = "dev"
	buildTime = "unknown"
	gitCommit = "unknown"
)

// cliFlags holds command line flags.
type cliFlags struct {
	configPath  string
	logLevel    string
	logFormat   string
	showVersion bool
}

func main() {
	flags := parseFlags()

	if flags.showVersion {
		printVersion()
		return
	}

	logger := initLogger(flags)
	defer func() { _ = logger.Sync() }()

	cfg := loadAndValidateConfig(flags.configPath, logger)
	app := newApplication(cfg, logger)

	run(app, flags.configPath, logger)
}

// parseFlags parses command line flags.
func parseFlags() cliFlags {
	configPath := flag.String("config", getEnvOrDefault("ROUTERD_CONFIG_PATH", "configs/routerd.yaml"),
		"Path to configuration file")
	logLevel := flag.String("log-level", getEnvOrDefault("ROUTERD_LOG_LEVEL", "info"),
		"Log level (debug, info, warn, error)")
	logFormat := flag.String("log-format", getEnvOrDefault("ROUTERD_LOG_FORMAT", "json"),
		"Log format (json, console)")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	return cliFlags{
		configPath:  *configPath,
		logLevel:    *logLevel,
		logFormat:   *logFormat,
		showVersion: *showVersion,
	}
}

// printVersion prints version information.
func printVersion() {
	fmt.Printf("routerd version %s\n", version)
	fmt.Printf("  Build time: %s\n", buildTime)
	fmt.Printf("  Git commit: %s\n", gitCommit)
}

// initLogger initializes the logger.
func initLogger(flags cliFlags) observability.Logger {
	logger, err := observability.NewLogger(observability.LogConfig{
		Level:  flags.logLevel,
		Format: flags.logFormat,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	return logger
}

// fatal logs a fatal error and exits.
func fatal(logger observability.Logger, msg string, err error) {
	logger.Error(msg, observability.Error(err))
	_ = logger.Sync()
	os.Exit(1)
}

// loadAndValidateConfig loads and validates the configuration.
func loadAndValidateConfig(configPath string, logger observability.Logger) *config.Config {
	logger.Info("starting routerd",
		observability.String("version", version),
		observability.String("config", configPath),
	)

	cfg, err := config.Load(configPath)
	if err != nil {
		fatal(logger, "failed to load configuration", err)
	}

	if err := config.Validate(cfg); err != nil {
		fatal(logger, "invalid configuration", err)
	}

	logger.Info("configuration loaded",
		observability.String("listen", cfg.Listen.Address),
		observability.Bool("auto405", cfg.Dispatch.Auto405),
		observability.Bool("metrics", cfg.Metrics.Enabled),
		observability.Bool("rateLimit", cfg.RateLimit.Enabled),
	)

	return cfg
}

// application holds all daemon components.
type application struct {
	handler *server.Handler
	server  *server.Server
	metrics *observability.Metrics
	logger  observability.Logger

	mu      sync.Mutex
	config  *config.Config
	limiter *middleware.RateLimiter
}

// newApplication wires the daemon components from configuration.
func newApplication(cfg *config.Config, logger observability.Logger) *application {
	app := &application{
		config: cfg,
		logger: logger,
	}

	if cfg.Metrics.Enabled {
		app.metrics = observability.NewMetrics("routerd")
	}

	rt, limiter := buildRouter(cfg, logger, app.metrics)
	app.limiter = limiter
	app.handler = server.NewHandler(rt, server.WithHandlerLogger(logger))

	mux := http.NewServeMux()
	if cfg.Metrics.Enabled {
		mux.Handle(cfg.Metrics.Path, app.metrics.Handler())
	}
	mux.Handle("/", app.handler)

	app.server = server.New(cfg.Listen, mux, server.WithLogger(logger))

	return app
}

// buildRouter constructs the dispatch router from configuration,
// including built-in routes and stock middleware.
func buildRouter(
	cfg *config.Config,
	logger observability.Logger,
	metrics *observability.Metrics,
) (*router.Router, *middleware.RateLimiter) {
	opts := router.Options{
		ParseCookie:              cfg.Dispatch.ParseCookie,
		Auto405:                  cfg.Dispatch.Auto405,
		ExtractRequestParameters: cfg.Dispatch.ExtractRequestParameters,
		AutoContentType:          cfg.Dispatch.AutoContentType,
		Logger:                   logger,
		Metrics:                  metrics,
	}
	if cors := cfg.Dispatch.CORSPreflight; cors != nil {
		opts.AutoCORSPreflight = &router.CORSPreflightConfig{
			TrustedOrigins: cors.TrustedOrigins,
		}
	}

	rt := router.New(opts)

	rt.Use(middleware.RequestID())

	var limiter *middleware.RateLimiter
	if cfg.RateLimit.Enabled {
		limiter = middleware.NewRateLimiter(
			cfg.RateLimit.RequestsPerSecond,
			cfg.RateLimit.Burst,
			cfg.RateLimit.PerClient,
			middleware.WithRateLimiterLogger(logger),
		)
		rt.Use(middleware.RateLimit(limiter))
	}

	rt.Get("/healthz", func(_ context.Context, _ *event.Request, res *event.ResponseBuilder) error {
		return res.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	rt.Get("/version", func(_ context.Context, _ *event.Request, res *event.ResponseBuilder) error {
		return res.JSON(http.StatusOK, map[string]string{
			"version":   version,
			"buildTime": buildTime,
			"gitCommit": gitCommit,
		})
	})
	rt.All("/echo/*", func(_ context.Context, req *event.Request, res *event.ResponseBuilder) error {
		return res.JSON(http.StatusOK, map[string]string{
			"method": req.Method,
			"path":   req.Path(),
			"rest":   req.Param("*"),
			"body":   string(req.Body),
		})
	})

	return rt, limiter
}

// reload rebuilds the router from a new configuration and swaps it
// into the running handler.
func (app *application) reload(cfg *config.Config) {
	rt, limiter := buildRouter(cfg, app.logger, app.metrics)
	app.handler.Swap(rt)

	app.mu.Lock()
	oldLimiter := app.limiter
	app.limiter = limiter
	app.config = cfg
	app.mu.Unlock()

	if oldLimiter != nil {
		oldLimiter.Stop()
	}
}

// run starts the daemon and blocks until a shutdown signal arrives.
func run(app *application, configPath string, logger observability.Logger) {
	ctx := context.Background()

	if err := app.server.Start(ctx); err != nil {
		fatal(logger, "failed to start server", err)
	}

	watcher, err := config.NewWatcher(configPath, func(newCfg *config.Config) {
		logger.Info("configuration changed, reloading")
		app.reload(newCfg)
	}, config.WithLogger(logger))
	if err != nil {
		fatal(logger, "failed to create config watcher", err)
	}

	if err := watcher.Start(ctx); err != nil {
		fatal(logger, "failed to start config watcher", err)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh

	logger.Info("shutdown signal received",
		observability.String("signal", sig.String()),
	)

	if err := watcher.Stop(); err != nil {
		logger.Error("failed to stop config watcher", observability.Error(err))
	}

	app.mu.Lock()
	shutdownTimeout := app.config.Listen.ShutdownTimeout.Duration()
	limiter := app.limiter
	app.mu.Unlock()

	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	if err := app.server.Stop(shutdownCtx); err != nil {
		logger.Error("failed to stop server", observability.Error(err))
	}

	if limiter != nil {
		limiter.Stop()
	}

	logger.Info("routerd stopped")
}

// getEnvOrDefault returns an environment variable value or a default.
func getEnvOrDefault(key, def string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return def
}
