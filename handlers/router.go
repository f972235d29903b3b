package handlers

import (
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"verdix/middleware"
)

type RouterConfig struct {
	AllowedOrigins []string
	JWTSecret      string
	// RateLimit is analyze requests per client per minute; 0 disables it
	RateLimit int
}

// NewRouter mounts all routes on a fresh gin engine
func NewRouter(h *Handlers, cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	router.GET("/health", h.HealthCheck)
	router.GET("/version", h.Version)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	analyze := []gin.HandlerFunc{h.Analyze}
	if cfg.RateLimit > 0 {
		analyze = append([]gin.HandlerFunc{middleware.RateLimitMiddleware(cfg.RateLimit)}, analyze...)
	}

	api := router.Group("/api")
	api.Use(middleware.Identity(cfg.JWTSecret))
	{
		api.POST("/analyze", analyze...)
		api.POST("/parse", h.Parse)
		api.GET("/history", h.GetHistory)
		api.DELETE("/history", h.ClearHistory)
		api.GET("/profile", h.GetProfile)
		api.GET("/recycling-centers", h.GetRecyclingCenters)
		api.POST("/carbon", h.CalculateCarbon)
	}
	return router
}
