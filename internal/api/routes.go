// Package api wires the extractor handlers into the shared Gin server.
package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/masoudtahsiri/sitemap-extractor/internal/handler"
	"github.com/masoudtahsiri/sitemap-extractor/internal/middleware"
)

// RateLimit configures the per-client limiter on /api routes.
type RateLimit struct {
	PerMinute int
	Burst     int
	Done      <-chan struct{}
}

// SetupRoutes configures all API routes. Health routes are registered by
// the infrastructure gin builder; CORS preflights are answered by its
// middleware before routing.
func SetupRoutes(router *gin.Engine, h *handler.ExtractHandler, gatherer prometheus.Gatherer, rl RateLimit) {
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	v := router.Group("/api")
	v.Use(middleware.RateLimiter(rl.PerMinute, rl.Burst, rl.Done))
	v.POST("/extract", h.Extract)
	v.POST("/download", h.Download)
}
