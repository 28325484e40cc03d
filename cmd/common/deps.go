// Package common provides shared wiring for command implementations.
package common

import (
	"fmt"

	infraconfig "github.com/masoudtahsiri/sitemap-extractor/infrastructure/config"
	infrahttp "github.com/masoudtahsiri/sitemap-extractor/infrastructure/http"
	"github.com/masoudtahsiri/sitemap-extractor/infrastructure/logger"
	"github.com/masoudtahsiri/sitemap-extractor/internal/config"
	"github.com/masoudtahsiri/sitemap-extractor/internal/sitemap"
)

// DefaultConfigPath is read when neither --config nor CONFIG_PATH is set.
const DefaultConfigPath = "config.yml"

// CommandDeps holds the dependencies shared by all commands.
type CommandDeps struct {
	Config *config.Config
	Logger logger.Logger
}

// NewCommandDeps loads the configuration and creates the logger.
func NewCommandDeps(configPath string, debug bool, logOutputs ...string) (CommandDeps, error) {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return CommandDeps{}, err
	}

	log, err := NewLogger(cfg, debug, logOutputs...)
	if err != nil {
		return CommandDeps{}, err
	}

	return CommandDeps{Config: cfg, Logger: log}, nil
}

// LoadConfig loads and validates the configuration at path, falling back to
// CONFIG_PATH and then DefaultConfigPath when path is empty.
func LoadConfig(path string) (*config.Config, error) {
	if path == "" {
		path = infraconfig.GetConfigPath(DefaultConfigPath)
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// NewLogger creates the process logger. CLI runs log to stderr so stdout
// stays clean for exports.
func NewLogger(cfg *config.Config, debug bool, outputs ...string) (logger.Logger, error) {
	level := cfg.Logging.Level
	if debug {
		level = "debug"
	}

	log, err := logger.New(logger.Config{
		Level:       level,
		Format:      cfg.Logging.Format,
		Development: cfg.Service.Debug || debug,
		OutputPaths: outputs,
	})
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	return log.With(logger.String("service", cfg.Service.Name)), nil
}

// NewResolver builds the HTTP fetcher and resolver for the given settings.
func NewResolver(rc config.ResolverConfig, limits sitemap.Limits, log logger.Logger, metrics *sitemap.Metrics) *sitemap.Resolver {
	client := infrahttp.NewClient(&infrahttp.ClientConfig{
		Timeout:             limits.FetchTimeout,
		MaxIdleConnsPerHost: limits.Concurrency,
	})

	fetcher := sitemap.NewHTTPFetcher(client,
		sitemap.WithUserAgent(rc.UserAgent),
		sitemap.WithMaxBodyBytes(rc.MaxBodyBytes),
	)

	opts := []sitemap.Option{sitemap.WithLimits(limits)}
	if metrics != nil {
		opts = append(opts, sitemap.WithMetrics(metrics))
	}
	return sitemap.NewResolver(fetcher, log, opts...)
}
