package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the instrumentation name every span opened by this
// repository's non-core packages is recorded under.
const TracerName = "github.com/vault-rs/rscodec"

// NewTracerProvider builds a trace.TracerProvider that writes spans to
// stdout and registers it as the global provider, so a plain
// otel.Tracer(TracerName) call from any package picks it up. Returns a
// shutdown func the caller should defer.
func NewTracerProvider(serviceName string) (shutdown func(context.Context) error, err error) {
	exporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, fmt.Errorf("telemetry: build stdout exporter: %w", err)
	}

	res, err := resource.Merge(resource.Default(), resource.NewSchemaless(
		attribute.String("service.name", serviceName),
	))
	if err != nil {
		return nil, fmt.Errorf("telemetry: build resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	return tp.Shutdown, nil
}

// Tracer returns the package-wide tracer. Safe to call before
// NewTracerProvider — it will simply produce no-op spans until a real
// provider is registered.
func Tracer() trace.Tracer {
	return otel.Tracer(TracerName)
}
