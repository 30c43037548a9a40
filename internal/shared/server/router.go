package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shobhitgupta26/resumeai2-sub000/internal/shared/config"
	"github.com/shobhitgupta26/resumeai2-sub000/internal/shared/metrics"
	"github.com/shobhitgupta26/resumeai2-sub000/internal/shared/server/middleware"
	"github.com/shobhitgupta26/resumeai2-sub000/internal/shared/server/respond"
)

// RouteRegistrar is implemented by feature handlers.
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// RouterDeps carries the handlers mounted under /api/v1.
type RouterDeps struct {
	Config          config.Config
	AnalysisHandler RouteRegistrar
	HistoryHandler  RouteRegistrar
	// UploadsHandler is set only when direct S3 uploads and the job queue are configured.
	UploadsHandler RouteRegistrar
	// Limiter is shared across requests; nil creates one.
	Limiter *middleware.RateLimiter
}

const (
	rateGroupAnalysis = "ANALYSIS"
	rateGroupRead     = "READ"
)

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
	)

	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	})

	limited := api.Group("")
	limited.Use(middleware.RateLimit(middleware.RateLimitConfig{
		DefaultGroup: rateGroupAnalysis,
		GroupFor:     rateGroupFor,
		Limiter:      deps.Limiter,
		Rules: map[string]middleware.RateLimitRule{
			rateGroupAnalysis: {Rate: 0.2, Burst: 5},
			rateGroupRead:     {Rate: 5, Burst: 20},
		},
	}))
	if deps.AnalysisHandler != nil {
		deps.AnalysisHandler.RegisterRoutes(limited)
	}
	if deps.HistoryHandler != nil {
		deps.HistoryHandler.RegisterRoutes(limited)
	}
	if deps.UploadsHandler != nil {
		deps.UploadsHandler.RegisterRoutes(limited)
	}

	return r
}

// rateGroupFor sends model-calling POSTs to the tight bucket.
func rateGroupFor(c *gin.Context) string {
	if c.Request.Method == http.MethodPost {
		return rateGroupAnalysis
	}
	return rateGroupRead
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
