// Package observability provides OpenTelemetry tracing and metrics for
// goal stores.
//
// Initialize the providers at startup:
//
//	p, err := observability.New(ctx, &observability.Config{
//		ServiceName:  "goalkeeper",
//		OTLPEndpoint: "otel-collector:4317",
//		Enabled:      true,
//	})
//	defer p.Shutdown(ctx)
//
// Wrap any kv.Store so every backend call gets a span, a counter increment,
// a latency sample and a debug log record:
//
//	store := observability.Instrument(redisstore.New(addr, "", 0), p, logger)
//	cfg.SetStore(store)
package observability
