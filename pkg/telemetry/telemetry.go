// Package telemetry provides OpenTelemetry tracing for the skill registry.
package telemetry

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"

	"github.com/parchment-ai/skillreg/pkg/version"
)

const tracerName = "skillreg"

// Config represents the configuration for the telemetry system
type Config struct {
	// Enabled determines if tracing is enabled
	Enabled bool `mapstructure:"enabled"`
	// ServiceName is the name of the service in traces
	ServiceName string `mapstructure:"service_name"`
	// ServiceVersion is the version of the service in traces
	ServiceVersion string `mapstructure:"service_version"`
	// SamplerType is the type of sampler to use (always, never, ratio)
	SamplerType string `mapstructure:"sampler_type"`
	// SamplerRatio is the sampling ratio when using the ratio sampler
	SamplerRatio float64 `mapstructure:"sampler_ratio"`
}

// InitTracer initializes the OpenTelemetry tracer provider and returns a
// shutdown function to call before process termination. The OTLP exporter
// reads OTEL_EXPORTER_OTLP_ENDPOINT and OTEL_EXPORTER_OTLP_HEADERS from the
// environment.
func InitTracer(ctx context.Context, cfg Config) (shutdown func(context.Context) error, err error) {
	if !cfg.Enabled {
		return func(context.Context) error { return nil }, nil
	}

	if cfg.ServiceName == "" {
		cfg.ServiceName = tracerName
	}
	if cfg.ServiceVersion == "" {
		cfg.ServiceVersion = version.Get().Version
	}

	var shutdownFuncs []func(context.Context) error

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(cfg.ServiceVersion),
		),
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create resource")
	}

	exporter, err := otlptracehttp.New(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create trace exporter")
	}
	shutdownFuncs = append(shutdownFuncs, exporter.Shutdown)

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithSpanProcessor(sdktrace.NewBatchSpanProcessor(
			exporter,
			sdktrace.WithBatchTimeout(1*time.Second),
		)),
		sdktrace.WithSampler(sampler(cfg)),
	)
	shutdownFuncs = append(shutdownFuncs, provider.Shutdown)

	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return func(ctx context.Context) error {
		var err error
		for _, fn := range shutdownFuncs {
			err = stderrors.Join(err, fn(ctx))
		}
		return err
	}, nil
}

func sampler(cfg Config) sdktrace.Sampler {
	switch cfg.SamplerType {
	case "never":
		return sdktrace.NeverSample()
	case "ratio":
		return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SamplerRatio))
	default:
		return sdktrace.AlwaysSample()
	}
}
