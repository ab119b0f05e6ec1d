// Package logging provides structured logging for showcase.
//
// # Overview
//
// Logging package wraps Zap with:
//   - Custom Trace level (-2, below Debug)
//   - Optional OpenTelemetry output next to the console writer
//   - Automatic context field injection (trace_id, span_id, request.id, trigger)
//   - An observer-backed TestLogger for assertions in tests
//
// # Usage
//
//	cfg := logging.NewDefaultConfig()
//	logger, err := logging.NewLogger(cfg, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer logger.Sync()
//
//	ctx = logging.WithTrigger(ctx, "title_search")
//	logger.Info(ctx, "results published", zap.Int("count", n))
//
// Console output goes to stderr so that commands printing results on stdout
// stay machine readable.
package logging
