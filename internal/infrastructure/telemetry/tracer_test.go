package telemetry_test

import (
	"context"
	"testing"

	"github.com/erp/stockscan/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestNewTracerProvider_Disabled(t *testing.T) {
	ctx := context.Background()

	tp, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           false,
		CollectorEndpoint: "localhost:14317",
		SamplingRatio:     1.0,
		ServiceName:       "stockscan-test",
	}, zaptest.NewLogger(t))
	require.NoError(t, err)
	require.NotNil(t, tp)

	assert.False(t, tp.IsEnabled())
	assert.NoError(t, tp.ForceFlush(ctx))
	assert.NoError(t, tp.Shutdown(ctx))
}

func TestTracerProvider_TracerFallsBackToGlobal(t *testing.T) {
	ctx := context.Background()

	tp, err := telemetry.NewTracerProvider(ctx, telemetry.Config{ServiceName: "stockscan-test"}, zaptest.NewLogger(t))
	require.NoError(t, err)

	tracer := tp.Tracer("scan")
	require.NotNil(t, tracer)

	_, span := tracer.Start(ctx, "noop")
	span.End()
}

func TestTracerProvider_EnableSpanProfilesDisabled(t *testing.T) {
	tp, err := telemetry.NewTracerProvider(context.Background(), telemetry.Config{ServiceName: "stockscan-test"}, zaptest.NewLogger(t))
	require.NoError(t, err)

	tp.EnableSpanProfiles()
	assert.False(t, tp.SpanProfilesEnabled())
}
