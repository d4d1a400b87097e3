// Package telemetry builds the tracer provider of the executables.
package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Settings selects where and how much is traced.
type Settings struct {
	ServiceName string
	// Endpoint is the OTLP/HTTP collector URL, tracing is off when empty.
	Endpoint string
	// SampleRatio is the share of new traces that are sampled, between 0 and 1.
	SampleRatio float64
}

// Shutdown flushes pending spans.
type Shutdown func(context.Context) error

// Setup returns the tracer provider to hand to instrumented code.
//
// Tracing is opt-in: without an endpoint the provider is a no-op one and the
// shutdown function does nothing. Spans of sampled parents are always kept.
// No global provider is registered, only the trace context propagator.
func Setup(ctx context.Context, settings Settings) (trace.TracerProvider, Shutdown, error) {
	noopShutdown := func(context.Context) error { return nil }

	if settings.Endpoint == "" {
		return noop.NewTracerProvider(), noopShutdown, nil
	}
	if settings.SampleRatio < 0 || settings.SampleRatio > 1 {
		return nil, noopShutdown, fmt.Errorf("telemetry: sample ratio %v out of [0, 1]", settings.SampleRatio)
	}

	exporter, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(settings.Endpoint))
	if err != nil {
		return nil, noopShutdown, fmt.Errorf("telemetry: exporter: %w", err)
	}
	res, err := resource.New(ctx, resource.WithAttributes(semconv.ServiceName(settings.ServiceName)))
	if err != nil {
		return nil, noopShutdown, fmt.Errorf("telemetry: resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(settings.SampleRatio))),
	)
	otel.SetTextMapPropagator(propagation.TraceContext{})
	return tp, tp.Shutdown, nil
}
