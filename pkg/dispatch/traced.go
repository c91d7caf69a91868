package dispatch

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/observe/pkg/observe"
)

// Default tracer name for traced dispatchers.
const defaultTracerName = "observe"

// TracedConfig configures the tracing dispatcher decorator.
type TracedConfig struct {
	// TracerName is the name of the tracer (default: "observe").
	TracerName string

	// SpanName is the name used for each dispatched invocation
	// (default: "observe.dispatch").
	SpanName string

	// Attributes are added to every span.
	Attributes []attribute.KeyValue

	// tracer is the resolved tracer instance.
	tracer trace.Tracer
}

// TracedOption configures the tracing dispatcher decorator.
type TracedOption func(*TracedConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) TracedOption {
	return func(c *TracedConfig) {
		c.TracerName = name
	}
}

// WithSpanName sets the span name for dispatched invocations.
func WithSpanName(name string) TracedOption {
	return func(c *TracedConfig) {
		c.SpanName = name
	}
}

// WithAttributes adds attributes to every span.
func WithAttributes(attrs ...attribute.KeyValue) TracedOption {
	return func(c *TracedConfig) {
		c.Attributes = append(c.Attributes, attrs...)
	}
}

// defaultTracedConfig returns the default tracing configuration.
func defaultTracedConfig() TracedConfig {
	return TracedConfig{
		TracerName: defaultTracerName,
		SpanName:   "observe.dispatch",
	}
}

// Traced decorates next so that every deferred observer invocation runs
// inside an OpenTelemetry span. The span covers the eventual invocation on
// the dispatcher's execution context, not the posting itself. A panicking
// observer is recorded on the span before it propagates.
//
// The tracer comes from the global tracer provider; configure it in
// main() before emitting:
//
//	otel.SetTracerProvider(tp)
//	conn.DispatchVia(dispatch.Traced(loop.Dispatch))
func Traced(next observe.Dispatcher, opts ...TracedOption) observe.Dispatcher {
	config := defaultTracedConfig()
	for _, opt := range opts {
		opt(&config)
	}

	// Resolve tracer from global provider
	config.tracer = otel.Tracer(config.TracerName)

	return func(fn func()) {
		next(func() {
			_, span := config.tracer.Start(
				context.Background(),
				config.SpanName,
				trace.WithSpanKind(trace.SpanKindInternal),
				trace.WithAttributes(config.Attributes...),
			)
			defer span.End()
			defer func() {
				if r := recover(); r != nil {
					err := fmt.Errorf("observer panic: %v", r)
					span.RecordError(err)
					span.SetStatus(codes.Error, err.Error())
					panic(r)
				}
			}()

			fn()
			span.SetStatus(codes.Ok, "")
		})
	}
}
