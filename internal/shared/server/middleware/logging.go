package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/shobhitgupta26/resumeai2-sub000/internal/shared/telemetry"
)

// Logging emits a structured log per request.
func Logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.EqualFold(c.Request.Method, "OPTIONS") {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		latency := time.Since(start)
		status := c.Writer.Status()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		fields := map[string]any{
			"request_id":  RequestIDFromContext(c),
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"route":       route,
			"status":      status,
			"duration_ms": float64(latency.Microseconds()) / 1000.0,
			"client_ip":   c.ClientIP(),
			"user_agent":  c.Request.UserAgent(),
		}
		if id := c.GetString("savedId"); id != "" {
			fields["saved_id"] = id
		}
		if isSample, ok := c.Get("isSample"); ok {
			fields["is_sample"] = isSample
		}
		if key := c.GetString("storageKey"); key != "" {
			fields["storage_key"] = key
		}
		telemetry.Info("request.complete", fields)
	}
}
