// Package telemetry wires OpenTelemetry tracing, metrics and log export, the
// scan metrics, database instrumentation and Pyroscope profiling.
package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
	"go.uber.org/zap"
)

const (
	providerShutdownTimeout = 10 * time.Second
	defaultServiceVersion   = "0.0.0-dev"
)

// newResource describes this process to the collector
func newResource(serviceName, serviceVersion string) (*resource.Resource, error) {
	if serviceVersion == "" {
		serviceVersion = defaultServiceVersion
	}
	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(serviceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}
	return res, nil
}

// shutdownProvider flushes and stops an SDK provider within
// providerShutdownTimeout. kind names the signal in logs and errors.
func shutdownProvider(ctx context.Context, logger *zap.Logger, kind string, shutdown func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, providerShutdownTimeout)
	defer cancel()

	if err := shutdown(ctx); err != nil {
		logger.Error("Telemetry provider shutdown failed", zap.String("signal", kind), zap.Error(err))
		return fmt.Errorf("failed to shutdown %s provider: %w", kind, err)
	}
	logger.Info("Telemetry provider shut down", zap.String("signal", kind))
	return nil
}
