package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func setupTestTracer(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		_ = tp.Shutdown(t.Context())
	})
	return recorder
}

func attrMap(kvs []attribute.KeyValue) map[attribute.Key]attribute.Value {
	m := make(map[attribute.Key]attribute.Value, len(kvs))
	for _, kv := range kvs {
		m[kv.Key] = kv.Value
	}
	return m
}

func newTracedEngine() *gin.Engine {
	r := gin.New()
	r.Use(RequestID(), Tracing(TracingConfig{ServiceName: "stockscan-test", Enabled: true}), SpanAttributes())
	r.POST("/api/v1/shipments/:id/scan", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	r.GET("/api/v1/shipments/:id/moves", func(c *gin.Context) {
		c.Status(http.StatusNotFound)
	})
	r.GET("/boom", func(c *gin.Context) {
		c.Status(http.StatusInternalServerError)
	})
	return r
}

func TestTracing_SpanPerRequest(t *testing.T) {
	recorder := setupTestTracer(t)
	r := newTracedEngine()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/shipments/abc/scan", nil)
	req.Header.Set(RequestIDHeader, "req-1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	span := spans[0]
	assert.Equal(t, trace.SpanKindServer, span.SpanKind())
	assert.Contains(t, span.Name(), "/api/v1/shipments/:id/scan")

	attrs := attrMap(span.Attributes())
	assert.Equal(t, "req-1", attrs["request_id"].AsString())
	assert.Equal(t, "abc", attrs["shipment_id"].AsString())
	assert.NotEqual(t, codes.Error, span.Status().Code)
}

func TestTracing_ErrorStatus(t *testing.T) {
	recorder := setupTestTracer(t)
	r := newTracedEngine()

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/shipments/abc/moves", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/boom", nil))

	spans := recorder.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, "Not Found", spans[0].Status().Description)
	assert.Equal(t, codes.Error, spans[1].Status().Code)
}

func TestTracing_Disabled(t *testing.T) {
	recorder := setupTestTracer(t)
	r := gin.New()
	r.Use(Tracing(TracingConfig{Enabled: false}), SpanAttributes())
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, recorder.Ended())
}
