package telemetry

import (
	"context"
	"errors"
	"listingscraper/lib/configutil"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/trace"
)

type Telemetry struct {
	TracerProvider *trace.TracerProvider
	MeterProvider  *metric.MeterProvider
}

// Shutdown flushes and stops both providers, it is a no-op on a zero Telemetry.
func (t Telemetry) Shutdown(ctx context.Context) error {
	var errlist []error
	if t.TracerProvider != nil {
		err := t.TracerProvider.Shutdown(ctx)
		if err != nil {
			errlist = append(errlist, err)
		}
	}
	if t.MeterProvider != nil {
		err := t.MeterProvider.Shutdown(ctx)
		if err != nil {
			errlist = append(errlist, err)
		}
	}
	return errors.Join(errlist...)
}

type OtlpConnConfig struct {
	GrpcEndpoint string            `json:"grpc_endpoint"`
	HttpEndpoint string            `json:"http_endpoint"`
	Headers      map[string]string `json:"headers"`
}

type OtlpConfig struct {
	Traces  OtlpConnConfig `json:"traces"`
	Metrics OtlpConnConfig `json:"metrics"`
}

type Config struct {
	Otlp OtlpConfig `json:"otlp"`
}

// searches up the filesystem from the cwd to find a file
// called telemetry.json5, once found it will then use it
// as a config to setup telemetry
//
// returns os.ErrNotExist if no such file exists, in which case the global
// otel providers stay no-ops.
func SetupFromEnv(ctx context.Context, serviceName string) (Telemetry, error) {
	config, err := configutil.ReadRecursively[Config]("telemetry.json5")
	if err != nil {
		return Telemetry{}, err
	}
	return Setup(ctx, serviceName, config)
}

// Setup installs the global otel providers for every signal that has an
// endpoint configured. Signals without one keep the no-op global provider.
func Setup(ctx context.Context, serviceName string, config Config) (Telemetry, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Second*15)
	defer cancel()

	r, err := newResource(serviceName)
	if err != nil {
		return Telemetry{}, err
	}

	var out Telemetry
	traces := config.Otlp.Traces
	if traces.protocol() != protocolNone {
		out.TracerProvider, err = newTracerProvider(ctx, r, traces)
		if err != nil {
			return Telemetry{}, err
		}
		otel.SetTracerProvider(out.TracerProvider)
	}
	slog.Info(
		"trace export",
		"protocol", traces.protocol(),
		"endpoint", traces.endpoint(),
		"headers", len(traces.Headers) > 0,
	)

	metrics := config.Otlp.Metrics
	if metrics.protocol() != protocolNone {
		out.MeterProvider, err = newMeterProvider(ctx, r, metrics)
		if err != nil {
			return Telemetry{}, errors.Join(err, out.Shutdown(context.Background()))
		}
		otel.SetMeterProvider(out.MeterProvider)
	}
	slog.Info(
		"metric export",
		"protocol", metrics.protocol(),
		"endpoint", metrics.endpoint(),
		"headers", len(metrics.Headers) > 0,
	)

	return out, nil
}
