package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observedLogger(level zapcore.Level) (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(level)
	return zap.New(core), logs
}

func contextWithSpan(t *testing.T) (context.Context, trace.Span) {
	t.Helper()
	tp := sdktrace.NewTracerProvider()
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return tp.Tracer("test").Start(context.Background(), "scan")
}

func TestFromContext(t *testing.T) {
	log, _ := observedLogger(zapcore.InfoLevel)

	assert.Same(t, log, FromContext(WithContext(context.Background(), log)))
	assert.NotNil(t, FromContext(context.Background()))
	assert.NotNil(t, FromContext(context.WithValue(context.Background(), loggerKey, "not a logger")))
}

func TestWithRequestIDAndShipmentID(t *testing.T) {
	base, logs := observedLogger(zapcore.InfoLevel)

	ctx, log := WithRequestID(context.Background(), base, "req-1")
	ctx, log = WithShipmentID(ctx, log, "shp-9")
	log.Info("scan")

	assert.Equal(t, "req-1", GetRequestID(ctx))
	assert.Equal(t, "shp-9", GetShipmentID(ctx))
	assert.Same(t, log, FromContext(ctx))

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, "shp-9", fields["shipment_id"])
}

func TestGetters_Empty(t *testing.T) {
	assert.Empty(t, GetRequestID(context.Background()))
	assert.Empty(t, GetShipmentID(context.Background()))
}

func TestWithTraceContext(t *testing.T) {
	base, logs := observedLogger(zapcore.InfoLevel)

	assert.Same(t, base, WithTraceContext(context.Background(), base))

	ctx, span := contextWithSpan(t)
	defer span.End()
	WithTraceContext(ctx, base).Info("traced")

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, span.SpanContext().TraceID().String(), fields["trace_id"])
	assert.Equal(t, span.SpanContext().SpanID().String(), fields["span_id"])
}

func TestContextLogger(t *testing.T) {
	base, logs := observedLogger(zapcore.DebugLevel)
	ctx, span := contextWithSpan(t)
	defer span.End()
	ctx = WithContext(ctx, base)

	cl := L(ctx).With(zap.String("direction", "incoming"))
	cl.Debug("d")
	cl.Info("i")
	cl.Warn("w")
	cl.Error("e")

	require.Equal(t, 4, logs.Len())
	for _, entry := range logs.All() {
		fields := entry.ContextMap()
		assert.Equal(t, "incoming", fields["direction"])
		assert.Equal(t, span.SpanContext().TraceID().String(), fields["trace_id"])
	}
	assert.NotNil(t, cl.Zap())
}

func TestWithLogger_NilLoggerDoesNotPanic(t *testing.T) {
	assert.NotPanics(t, func() {
		cl := WithLogger(context.Background(), nil)
		cl.Info("ignored")
		cl.With(zap.Int("n", 1)).Error("ignored")
	})
}
