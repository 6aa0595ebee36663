package telemetry_test

import (
	"context"
	"errors"
	"testing"

	"github.com/erp/stockscan/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

// setupTestTracer installs an in-memory span recorder as the global provider.
func setupTestTracer(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()

	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))

	original := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(original)
		_ = tp.Shutdown(context.Background())
	})
	return sr
}

func attrMap(attrs []attribute.KeyValue) map[string]attribute.Value {
	m := make(map[string]attribute.Value, len(attrs))
	for _, a := range attrs {
		m[string(a.Key)] = a.Value
	}
	return m
}

func TestStartServiceSpan(t *testing.T) {
	sr := setupTestTracer(t)
	shipmentID := uuid.New()

	_, span := telemetry.StartServiceSpan(context.Background(), "scan", "apply",
		telemetry.WithAttribute(telemetry.SpanAttrShipmentID, shipmentID),
		telemetry.WithSpanKind(trace.SpanKindServer),
	)
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "scan.apply", spans[0].Name())
	assert.Equal(t, trace.SpanKindServer, spans[0].SpanKind())
	assert.Equal(t, shipmentID.String(), attrMap(spans[0].Attributes())[telemetry.SpanAttrShipmentID].AsString())
}

func TestSetAttributes(t *testing.T) {
	sr := setupTestTracer(t)

	_, span := telemetry.StartSpan(context.Background(), "scan.apply")
	telemetry.SetAttributes(span,
		telemetry.SpanAttrDirection, "incoming",
		telemetry.SpanAttrAbsorbed, false,
		42, "ignored",
		"lines", 3,
		"ratio", 0.5,
	)
	telemetry.SetAttributes(span, telemetry.SpanAttrLotRef, "L1", "dangling")
	span.End()

	attrs := attrMap(sr.Ended()[0].Attributes())
	assert.Equal(t, "incoming", attrs[telemetry.SpanAttrDirection].AsString())
	assert.False(t, attrs[telemetry.SpanAttrAbsorbed].AsBool())
	assert.Equal(t, int64(3), attrs["lines"].AsInt64())
	assert.Equal(t, 0.5, attrs["ratio"].AsFloat64())
	assert.Equal(t, "L1", attrs[telemetry.SpanAttrLotRef].AsString())
	assert.Len(t, attrs, 5)
}

func TestRecordError(t *testing.T) {
	sr := setupTestTracer(t)

	_, span := telemetry.StartSpan(context.Background(), "scan.apply")
	telemetry.RecordError(span, errors.New("lot table locked"))
	telemetry.RecordError(span, nil)
	span.End()

	ended := sr.Ended()[0]
	assert.Equal(t, codes.Error, ended.Status().Code)
	assert.Equal(t, "lot table locked", ended.Status().Description)
	require.Len(t, ended.Events(), 1)
	assert.Equal(t, "exception", ended.Events()[0].Name)
}

func TestHelpersTolerateNilSpan(t *testing.T) {
	assert.NotPanics(t, func() {
		telemetry.SetAttributes(nil, "k", "v")
		telemetry.RecordError(nil, errors.New("x"))
	})
}
