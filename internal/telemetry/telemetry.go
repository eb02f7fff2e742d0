// Package telemetry wraps task invocations in an OTel span
// (SPEC_FULL.md §4.E), grounded on the teacher's telemetry package (its
// InitTelemetry/Trace/NewTraceExporter shape survives as test-only
// signatures in the teacher's own tree - the concrete provider wiring
// here is a fresh implementation over go.mod's otel/sdk +
// exporters/stdout/stdouttrace, since the teacher only ships otlp-grpc and
// otlp-http exporters this module doesn't depend on). Purely observational:
// span start/end never changes a task's control flow or its
// short-circuit-on-first-failure contract.
package telemetry

import (
	"context"
	"io"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/forgebuild/forge/internal/taskgraph"

var (
	mu       sync.Mutex
	provider *sdktrace.TracerProvider
)

// Options configures Init; an empty Options disables tracing (spans
// become no-ops), matching the teacher's "telemetry disabled" mode.
type Options struct {
	Enabled bool
	Writer  io.Writer // destination for the stdout exporter; defaults to io.Discard
}

// Init installs a global TracerProvider writing spans to opts.Writer. Init
// is idempotent: calling it again replaces the previous provider.
func Init(opts Options) error {
	mu.Lock()
	defer mu.Unlock()

	if !opts.Enabled {
		provider = nil
		otel.SetTracerProvider(trace.NewNoopTracerProvider())

		return nil
	}

	w := opts.Writer
	if w == nil {
		w = io.Discard
	}

	exporter, err := stdouttrace.New(stdouttrace.WithWriter(w), stdouttrace.WithoutTimestamps())
	if err != nil {
		return err
	}

	provider = sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
	otel.SetTracerProvider(provider)

	return nil
}

// Shutdown flushes and releases the installed provider, if any.
func Shutdown(ctx context.Context) error {
	mu.Lock()
	p := provider
	provider = nil
	mu.Unlock()

	if p == nil {
		return nil
	}

	return p.Shutdown(ctx)
}

// TraceTask runs action inside a span named after a task's hyphen-cased
// name, with description recorded as a span attribute (SPEC_FULL.md
// §4.E). The span's error status mirrors action's return value but the
// return value itself is passed through unchanged.
func TraceTask(ctx context.Context, name, description string, action func(context.Context) error) error {
	tracer := otel.Tracer(instrumentationName)

	ctx, span := tracer.Start(ctx, name, trace.WithAttributes(attribute.String("task.description", description)))
	defer span.End()

	err := action(ctx)
	if err != nil {
		span.RecordError(err)
	}

	return err
}
