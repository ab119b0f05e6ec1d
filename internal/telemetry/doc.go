// Package telemetry provides OpenTelemetry tracing and metrics export for
// showcase.
//
// Telemetry is off by default. When enabled, spans and metrics are exported
// over OTLP (gRPC or HTTP/protobuf) to a collector and the providers are
// installed globally, so packages that call otel.Tracer or otel.Meter pick
// them up without further wiring.
//
// # Usage
//
//	tel, err := telemetry.New(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	defer tel.Shutdown(ctx)
//
// # Configuration
//
//	telemetry:
//	  enabled: true
//	  endpoint: "localhost:4317"
//	  protocol: grpc        # or http/protobuf
//	  sampling:
//	    rate: 1.0
//	  metrics:
//	    enabled: true
//	    export_interval: 15s
//
// # Errors
//
// Exporter failures do not stop the application. The instance is marked
// degraded and falls back to the global no-op providers.
//
// # Testing
//
//	tt := telemetry.NewTestTelemetry()
//	_, span := tt.Tracer("test").Start(ctx, "test-span")
//	span.End()
//	tt.AssertSpanExists(t, "test-span")
package telemetry
