package api

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/xiaotaozi1127/story-teller-backend/api/health"
	"github.com/xiaotaozi1127/story-teller-backend/api/preview"
	"github.com/xiaotaozi1127/story-teller-backend/api/stories"
	"github.com/xiaotaozi1127/story-teller-backend/api/types"
	"github.com/xiaotaozi1127/story-teller-backend/api/version"
	"github.com/xiaotaozi1127/story-teller-backend/api/voices"
	_ "github.com/xiaotaozi1127/story-teller-backend/docs/swagger"
	"github.com/xiaotaozi1127/story-teller-backend/pkg/config"
)

// Rate limit groups, in requests per minute per client
const (
	limitDefault   = "default"
	limitSynthesis = "synthesis"
	limitUpload    = "upload"
)

var defaultLimits = map[string]int{
	limitDefault:   120,
	limitSynthesis: 10,
	limitUpload:    10,
}

// RegisterRoutes registers all API routes
func RegisterRoutes(engine *gin.Engine, deps *types.Dependencies, rateLimiters *sync.Map, cleanupStop chan struct{}, cleanupInitialized *sync.Once) error {
	if deps == nil {
		deps = &types.Dependencies{}
	}
	cfg := deps.Config
	if cfg == nil {
		cfg = &config.Config{}
	}

	// Register public routes (no rate limiting)
	health.RegisterRoutes(engine, deps)
	version.RegisterRoutes(engine, deps)

	// Register Swagger documentation route
	engine.GET("/docs", func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, "/docs/index.html")
	})
	docsGroup := engine.Group("/docs")
	docsGroup.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	if deps.MetricsHandler != nil {
		path := cfg.Monitoring.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		engine.GET(path, gin.WrapH(deps.MetricsHandler))
	}

	// Setup 404 handler
	engine.NoRoute(NotFoundHandler())

	limit := func(name string) gin.HandlerFunc {
		if !cfg.RateLimiting.Enabled {
			return nil
		}
		perMinute, ok := cfg.RateLimiting.Endpoints[name]
		if !ok || perMinute <= 0 {
			perMinute = defaultLimits[name]
		}
		return PerClientRateLimit(rateLimiters, cleanupStop, cleanupInitialized, name, perMinute, perMinute)
	}

	// API v1 routes
	v1 := engine.Group("/api/v1")
	if mw := limit(limitDefault); mw != nil {
		v1.Use(mw)
	}

	stories.RegisterRoutes(v1.Group("/stories"), deps, limit(limitSynthesis))
	voices.RegisterRoutes(v1.Group("/voices"), deps, limit(limitUpload))

	ttsGroup := v1.Group("/tts")
	if mw := limit(limitSynthesis); mw != nil {
		preview.RegisterRoutes(ttsGroup, deps, mw)
	} else {
		preview.RegisterRoutes(ttsGroup, deps)
	}

	return nil
}

// NotFoundHandler handles 404 errors
func NotFoundHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"status":  types.StatusError,
			"message": "The requested endpoint was not found",
			"error":   "NOT_FOUND",
			"path":    c.Request.URL.Path,
		})
	}
}
