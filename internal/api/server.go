package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	infragin "github.com/masoudtahsiri/sitemap-extractor/infrastructure/gin"
	infralogger "github.com/masoudtahsiri/sitemap-extractor/infrastructure/logger"
	"github.com/masoudtahsiri/sitemap-extractor/internal/config"
	"github.com/masoudtahsiri/sitemap-extractor/internal/handler"
)

const (
	defaultReadTimeout = 10 * time.Second
	defaultIdleTimeout = 60 * time.Second
	// writeTimeoutSlack lets a request that hits request_timeout still
	// write its 500 response.
	writeTimeoutSlack = 10 * time.Second
)

// NewServer creates the HTTP server. done stops the rate limiter sweeper.
func NewServer(
	h *handler.ExtractHandler,
	cfg *config.Config,
	gatherer prometheus.Gatherer,
	log infralogger.Logger,
	done <-chan struct{},
) *infragin.Server {
	return infragin.NewServerBuilder(cfg.Service.Name, cfg.Service.Port).
		WithLogger(log).
		WithDebug(cfg.Service.Debug).
		WithVersion(cfg.Service.Version).
		WithCORSOrigins(cfg.Service.CORSOrigins).
		WithTimeouts(defaultReadTimeout, cfg.Service.RequestTimeout+writeTimeoutSlack, defaultIdleTimeout).
		WithRoutes(func(router *gin.Engine) {
			SetupRoutes(router, h, gatherer, RateLimit{
				PerMinute: cfg.RateLimit.RequestsPerMinute,
				Burst:     cfg.RateLimit.Burst,
				Done:      done,
			})
		}).
		Build()
}
