// Package observe provides the telemetry surface for guarded calls:
// structured logging, OpenTelemetry tracing and metrics, and exporter
// wiring.
//
// The resilience packages depend only on the small Logger and Metrics
// interfaces defined here; everything OpenTelemetry-specific stays behind
// NewObserver, which assembles providers from configuration:
//
//	obs, err := observe.NewObserver(ctx, observe.Config{
//	    ServiceName: "orders-api",
//	    Metrics:     observe.MetricsConfig{Enabled: true, Exporter: "prometheus"},
//	    Logging:     observe.LoggingConfig{Enabled: true, Level: "info"},
//	})
//
// Components that are handed no logger or metrics fall back to no-op
// implementations, so telemetry is always optional.
package observe
