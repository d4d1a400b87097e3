// Package oteldispatch records dispatched commands as OpenTelemetry spans.
//
// Handlers are wrapped individually with Handler or all at once with Registry.
// A command implementing
//
//	Context() context.Context
//
// gets its span parented by that context, every other command starts a new trace.
package oteldispatch

import (
	"context"

	"github.com/io-da/dispatch"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	// ScopeName is the instrumentation scope of the default tracer.
	ScopeName = "github.com/io-da/dispatch/oteldispatch"
	// IdentifierKey is the span attribute holding the command identifier.
	IdentifierKey = attribute.Key("dispatch.command.identifier")
)

// Option configures the traced handlers.
type Option func(*config)

type config struct {
	tracer trace.Tracer
}

// WithTracerProvider selects the provider of the tracer, the global one is used otherwise.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(cfg *config) {
		if tp != nil {
			cfg.tracer = tp.Tracer(ScopeName)
		}
	}
}

func newConfig(opts []Option) *config {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.tracer == nil {
		cfg.tracer = otel.GetTracerProvider().Tracer(ScopeName)
	}
	return cfg
}

type contextCarrier interface {
	Context() context.Context
}

type tracedHandler struct {
	next   dispatch.Handler
	tracer trace.Tracer
}

// Handler wraps next so that every command it handles is recorded as a span named "dispatch <identifier>".
// Errors are recorded on the span and returned unchanged.
func Handler(next dispatch.Handler, opts ...Option) dispatch.Handler {
	return &tracedHandler{
		next:   next,
		tracer: newConfig(opts).tracer,
	}
}

func (hdl *tracedHandler) Handle(cmd dispatch.Command) (any, error) {
	ctx := context.Background()
	if carrier, ok := cmd.(contextCarrier); ok && carrier.Context() != nil {
		ctx = carrier.Context()
	}
	id := cmd.Identifier()
	_, span := hdl.tracer.Start(ctx, "dispatch "+string(id),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(IdentifierKey.String(string(id))),
	)
	defer span.End()

	data, err := hdl.next.Handle(cmd)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return data, err
}

// Registry returns a new registry binding the same identifiers as reg to traced handlers.
// The handlers of the returned registry are new values, merging it with reg reports conflicts.
// A registry built by a failed merge is refused with its conflict.
func Registry(reg *dispatch.Registry, opts ...Option) (*dispatch.Registry, error) {
	if err := reg.Err(); err != nil {
		return nil, err
	}
	cfg := newConfig(opts)
	traced := dispatch.NewRegistry()
	for _, id := range reg.Identifiers() {
		hdl, ok := reg.Handler(id)
		if !ok {
			continue
		}
		if err := traced.Register(id, &tracedHandler{next: hdl, tracer: cfg.tracer}); err != nil {
			return nil, err
		}
	}
	return traced, nil
}
