// Package telemetry sets up OpenTelemetry tracing for the command line tool.
package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// Setup registers a global tracer provider exporting to the OTLP/HTTP
// endpointURL. With an empty endpointURL tracing stays disabled and the
// returned shutdown does nothing.
//
// The gRPC channels of the clients pick the global provider up, so Setup
// must run before they are created. Shutdown flushes pending spans.
func Setup(ctx context.Context, serviceName, endpointURL string) (shutdown func(context.Context) error, err error) {
	noop := func(context.Context) error { return nil }
	if endpointURL == "" {
		return noop, nil
	}

	exporter, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(endpointURL))
	if err != nil {
		return noop, err
	}

	res, err := resource.New(ctx, resource.WithAttributes(semconv.ServiceName(serviceName)))
	if err != nil {
		return noop, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	return tp.Shutdown, nil
}
