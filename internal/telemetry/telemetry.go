// Package telemetry installs the process-wide OpenTelemetry tracer provider.
// The pipeline and provider packages create spans through otel.Tracer; with
// the "none" exporter those spans are no-ops.
package telemetry

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/example/go-script-tts/internal/config"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.30.0"
)

// ServiceName identifies this program in exported traces.
const ServiceName = "scripttts"

const (
	ExporterNone   = "none"
	ExporterStdout = "stdout"
	ExporterOTLP   = "otlp"
)

// ShutdownFunc flushes pending spans and releases the exporter.
type ShutdownFunc func(context.Context) error

// Options tunes Setup.
type Options struct {
	// Version is reported as service.version.
	Version string
	// Writer receives stdout-exporter output. Defaults to os.Stderr so
	// traces never mix with command output.
	Writer io.Writer
	Logger *slog.Logger
}

// Setup installs a tracer provider for cfg and returns its shutdown func.
// The "none" exporter installs nothing and returns a no-op shutdown.
func Setup(ctx context.Context, cfg config.TelemetryConfig, opts Options) (ShutdownFunc, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	exporter := strings.ToLower(strings.TrimSpace(cfg.Exporter))
	if exporter == "" || exporter == ExporterNone {
		return func(context.Context) error { return nil }, nil
	}

	tp, err := newTracerProvider(ctx, exporter, cfg, opts)
	if err != nil {
		return nil, err
	}
	otel.SetTracerProvider(tp)

	attrs := []any{slog.String("exporter", exporter)}
	if exporter == ExporterOTLP {
		attrs = append(attrs, slog.String("endpoint", cfg.OTLPEndpoint))
	}
	logger.Debug("telemetry initialized", attrs...)

	return tp.Shutdown, nil
}

func newTracerProvider(ctx context.Context, exporter string, cfg config.TelemetryConfig, opts Options) (*sdktrace.TracerProvider, error) {
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(ServiceName),
			semconv.ServiceVersion(opts.Version),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("telemetry resource: %w", err)
	}

	var exp sdktrace.SpanExporter
	switch exporter {
	case ExporterStdout:
		w := opts.Writer
		if w == nil {
			w = os.Stderr
		}
		exp, err = stdouttrace.New(stdouttrace.WithWriter(w))
	case ExporterOTLP:
		endpoint := strings.TrimSpace(cfg.OTLPEndpoint)
		if endpoint == "" {
			return nil, fmt.Errorf("telemetry: otlp exporter needs an endpoint")
		}
		grpcOpts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(endpoint)}
		if cfg.OTLPInsecure {
			grpcOpts = append(grpcOpts, otlptracegrpc.WithInsecure())
		}
		exp, err = otlptracegrpc.New(ctx, grpcOpts...)
	default:
		return nil, fmt.Errorf("telemetry: unknown exporter %q (want none|stdout|otlp)", exporter)
	}
	if err != nil {
		return nil, fmt.Errorf("telemetry %s exporter: %w", exporter, err)
	}

	return sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(res),
	), nil
}
