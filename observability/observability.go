// Package observability exports host and GPU gauges over OTLP.
package observability

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"

	"gpuinfo-agent/config"
)

const meterName = "gpuinfo-agent"

// InitProviders starts the metric pipeline. Every exported series carries
// nodeID as host id; mountsFile feeds the hard disk gauge.
func InitProviders(ctx context.Context, cfg config.OTelConfig, mountsFile, nodeID string) (shutdown func(context.Context) error, err error) {
	res, err := resource.New(ctx, resource.WithAttributes(
		semconv.ServiceName(cfg.ServiceName),
		semconv.HostIDKey.String(nodeID),
	))
	if err != nil {
		return nil, err
	}

	meterProvider, err := initMeterProvider(ctx, cfg, res)
	if err != nil {
		return nil, err
	}
	if err := RegisterMetrics(meterProvider, mountsFile); err != nil {
		return nil, errors.Join(err, meterProvider.Shutdown(ctx))
	}

	shutdown = func(ctx context.Context) error {
		var errs error
		if err := meterProvider.Shutdown(ctx); err != nil {
			errs = errors.Join(errs, err)
		}
		return errs
	}

	return shutdown, nil
}
