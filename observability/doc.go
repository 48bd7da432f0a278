// Package observability wires OpenTelemetry tracing and metrics for the
// BillingLogix client.
//
// The client itself only depends on the trace and metric APIs; providers
// passed in Options (or the otel globals) decide where data goes. InitTracer
// and InitMeter build OTLP/HTTP exporting providers for programs such as
// blx that want to ship telemetry:
//
//	tp, err := observability.InitTracer(ctx, observability.DefaultTracerConfig("blx"))
//	defer tp.Shutdown(ctx)
//
//	mp, err := observability.InitMeter(ctx, observability.DefaultMeterConfig("blx"))
//	defer mp.Shutdown(ctx)
package observability
