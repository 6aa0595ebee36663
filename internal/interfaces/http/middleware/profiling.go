package middleware

import (
	"context"
	"strings"

	"github.com/erp/stockscan/internal/infrastructure/telemetry"
	"github.com/gin-gonic/gin"
)

// Profiling attaches route, method and resource labels to the request
// goroutine so Pyroscope profiles can be sliced per endpoint. Unmatched
// routes are left unlabeled.
func Profiling(enabled bool) gin.HandlerFunc {
	if !enabled {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" {
			c.Next()
			return
		}

		labels := map[string]string{
			telemetry.ProfilingLabelRoute:    route,
			telemetry.ProfilingLabelMethod:   c.Request.Method,
			telemetry.ProfilingLabelResource: resourceFromRoute(route),
		}
		telemetry.WithProfilingLabels(c.Request.Context(), labels, func(ctx context.Context) {
			c.Request = c.Request.WithContext(ctx)
			c.Next()
		})
	}
}

// resourceFromRoute returns the first segment after /api/<version>,
// e.g. "/api/v1/shipments/:id/scan" -> "shipments". Other routes yield
// their first segment.
func resourceFromRoute(route string) string {
	parts := strings.Split(strings.Trim(route, "/"), "/")
	if len(parts) >= 3 && parts[0] == "api" {
		return parts[2]
	}
	return parts[0]
}
