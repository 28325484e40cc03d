// Package serve implements the serve command, which runs the HTTP API.
package serve

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/masoudtahsiri/sitemap-extractor/cmd/common"
	"github.com/masoudtahsiri/sitemap-extractor/infrastructure/logger"
	"github.com/masoudtahsiri/sitemap-extractor/internal/api"
	"github.com/masoudtahsiri/sitemap-extractor/internal/handler"
	"github.com/masoudtahsiri/sitemap-extractor/internal/sitemap"
)

// Command returns the serve command.
func Command() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the extraction HTTP API",
		Long: `Start the HTTP API. POST /api/extract resolves a sitemap URL and returns
its page URLs as CSV; POST /api/download returns CSV as a file attachment.`,
		Args: cobra.NoArgs,
		RunE: run,
	}
}

func run(cmd *cobra.Command, _ []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	debug, _ := cmd.Flags().GetBool("debug")

	deps, err := common.NewCommandDeps(configPath, debug)
	if err != nil {
		return err
	}
	defer func() { _ = deps.Logger.Sync() }()

	cfg, log := deps.Config, deps.Logger

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := sitemap.NewMetrics(reg)

	resolver := common.NewResolver(cfg.Resolver, cfg.Resolver.Limits(), log, metrics)
	extractHandler := handler.NewExtractHandler(resolver, log, cfg.Service.RequestTimeout)

	done := make(chan struct{})
	defer close(done)

	server := api.NewServer(extractHandler, cfg, reg, log, done)

	limits := resolver.Limits()
	log.Info("Sitemap extractor starting",
		logger.Int("port", cfg.Service.Port),
		logger.Int("max_sitemaps", limits.MaxSitemaps),
		logger.Int("max_depth", limits.MaxDepth),
		logger.Int("concurrency", limits.Concurrency),
		logger.Duration("fetch_timeout", limits.FetchTimeout),
		logger.Duration("request_timeout", cfg.Service.RequestTimeout),
	)

	if err := server.RunWithGracefulShutdown(cmd.Context()); err != nil {
		log.Error("Server error", logger.Error(err))
		return fmt.Errorf("serve: %w", err)
	}

	log.Info("Sitemap extractor exited cleanly")
	return nil
}
