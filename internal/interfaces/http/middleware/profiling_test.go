package middleware

import (
	"net/http"
	"net/http/httptest"
	"runtime/pprof"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestProfiling_Labels(t *testing.T) {
	r := gin.New()
	r.Use(Profiling(true))

	var route, method, resource string
	r.POST("/api/v1/shipments/:id/scan", func(c *gin.Context) {
		ctx := c.Request.Context()
		route, _ = pprof.Label(ctx, "route")
		method, _ = pprof.Label(ctx, "method")
		resource, _ = pprof.Label(ctx, "resource")
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/shipments/0b1c/scan", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "/api/v1/shipments/:id/scan", route)
	assert.Equal(t, http.MethodPost, method)
	assert.Equal(t, "shipments", resource)
}

func TestProfiling_Disabled(t *testing.T) {
	r := gin.New()
	r.Use(Profiling(false))

	labeled := true
	r.GET("/health", func(c *gin.Context) {
		_, labeled = pprof.Label(c.Request.Context(), "route")
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.False(t, labeled)
}

func TestResourceFromRoute(t *testing.T) {
	assert.Equal(t, "shipments", resourceFromRoute("/api/v1/shipments/:id/moves"))
	assert.Equal(t, "scanner", resourceFromRoute("/api/v1/scanner/configuration"))
	assert.Equal(t, "health", resourceFromRoute("/health"))
}
