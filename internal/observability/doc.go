// Package observability provides logging and metrics for the edge
// router.
//
// # Logging
//
// Structured logging is backed by zap behind a small Logger interface
// so that packages do not depend on zap directly:
//
//	logger, err := observability.NewLogger(observability.LogConfig{
//	    Level:  "info",
//	    Format: "json",
//	})
//	logger.Info("dispatch complete",
//	    observability.String("method", "GET"),
//	    observability.Int("status", 200),
//	)
//
// # Metrics
//
// Prometheus metrics are held in a per-instance registry so that
// multiple routers in one process never contend over collector
// registration:
//
//	metrics := observability.NewMetrics("edgerouter")
//	mux.Handle("/metrics", metrics.Handler())
package observability
