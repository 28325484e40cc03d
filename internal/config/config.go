// Package config holds the sitemap extractor service configuration.
package config

import (
	"time"

	infraconfig "github.com/masoudtahsiri/sitemap-extractor/infrastructure/config"
	"github.com/masoudtahsiri/sitemap-extractor/internal/sitemap"
)

// Default configuration values.
const (
	defaultServiceName    = "sitemap-extractor"
	defaultServicePort    = 8095
	defaultVersion        = "0.1.0"
	defaultRequestTimeout = 120 * time.Second
	defaultLoggingLevel   = "info"
	defaultLoggingFmt     = "json"

	defaultRequestsPerMinute = 30
	defaultBurst             = 10
)

// Config holds the application configuration.
type Config struct {
	Service   ServiceConfig   `yaml:"service"`
	Resolver  ResolverConfig  `yaml:"resolver"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ServiceConfig holds service-level configuration.
type ServiceConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
	Port    int    `env:"SITEMAP_PORT" yaml:"port"`
	Debug   bool   `env:"APP_DEBUG"    yaml:"debug"`
	// RequestTimeout bounds one /api/extract call end to end.
	RequestTimeout time.Duration `env:"SITEMAP_REQUEST_TIMEOUT" yaml:"request_timeout"`
	CORSOrigins    []string      `env:"SITEMAP_CORS_ORIGINS"    yaml:"cors_origins"`
}

// ResolverConfig bounds each resolution run and configures the fetcher.
type ResolverConfig struct {
	MaxSitemaps int `env:"SITEMAP_MAX_SITEMAPS" yaml:"max_sitemaps"`
	// MaxDepth 0 in a file or the environment selects the default; use the
	// CLI flag to fetch the root only.
	MaxDepth     int           `env:"SITEMAP_MAX_DEPTH"      yaml:"max_depth"`
	Concurrency  int           `env:"SITEMAP_CONCURRENCY"    yaml:"concurrency"`
	FetchTimeout time.Duration `env:"SITEMAP_FETCH_TIMEOUT"  yaml:"fetch_timeout"`
	UserAgent    string        `env:"SITEMAP_USER_AGENT"     yaml:"user_agent"`
	MaxBodyBytes int64         `env:"SITEMAP_MAX_BODY_BYTES" yaml:"max_body_bytes"`
}

// Limits converts the config into resolver bounds.
func (r ResolverConfig) Limits() sitemap.Limits {
	return sitemap.Limits{
		MaxSitemaps:  r.MaxSitemaps,
		MaxDepth:     r.MaxDepth,
		Concurrency:  r.Concurrency,
		FetchTimeout: r.FetchTimeout,
	}
}

// RateLimitConfig holds per-client rate limiting for /api routes.
type RateLimitConfig struct {
	RequestsPerMinute int `env:"SITEMAP_RATE_LIMIT_RPM"   yaml:"requests_per_minute"`
	Burst             int `env:"SITEMAP_RATE_LIMIT_BURST" yaml:"burst"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `env:"LOG_LEVEL"  yaml:"level"`
	Format string `env:"LOG_FORMAT" yaml:"format"`
}

// Load loads configuration from the specified path. A missing file leaves
// defaults and environment overrides in effect.
func Load(path string) (*Config, error) {
	return infraconfig.LoadWithDefaults[Config](path, setDefaults)
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	setDefaults(cfg)
	return cfg
}

func setDefaults(cfg *Config) {
	setServiceDefaults(&cfg.Service)
	setResolverDefaults(&cfg.Resolver)
	setRateLimitDefaults(&cfg.RateLimit)
	setLoggingDefaults(&cfg.Logging)
}

func setServiceDefaults(svc *ServiceConfig) {
	if svc.Name == "" {
		svc.Name = defaultServiceName
	}
	if svc.Version == "" {
		svc.Version = defaultVersion
	}
	if svc.Port == 0 {
		svc.Port = defaultServicePort
	}
	if svc.RequestTimeout == 0 {
		svc.RequestTimeout = defaultRequestTimeout
	}
	if len(svc.CORSOrigins) == 0 {
		svc.CORSOrigins = []string{"*"}
	}
}

func setResolverDefaults(r *ResolverConfig) {
	if r.MaxSitemaps == 0 {
		r.MaxSitemaps = sitemap.DefaultMaxSitemaps
	}
	if r.MaxDepth == 0 {
		r.MaxDepth = sitemap.DefaultMaxDepth
	}
	if r.Concurrency == 0 {
		r.Concurrency = sitemap.DefaultConcurrency
	}
	if r.FetchTimeout == 0 {
		r.FetchTimeout = sitemap.DefaultFetchTimeout
	}
	if r.UserAgent == "" {
		r.UserAgent = sitemap.DefaultUserAgent
	}
	if r.MaxBodyBytes == 0 {
		r.MaxBodyBytes = sitemap.DefaultMaxBodyBytes
	}
}

func setRateLimitDefaults(rl *RateLimitConfig) {
	if rl.RequestsPerMinute == 0 {
		rl.RequestsPerMinute = defaultRequestsPerMinute
	}
	if rl.Burst == 0 {
		rl.Burst = defaultBurst
	}
}

func setLoggingDefaults(log *LoggingConfig) {
	if log.Level == "" {
		log.Level = defaultLoggingLevel
	}
	if log.Format == "" {
		log.Format = defaultLoggingFmt
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := infraconfig.ValidatePort("service.port", c.Service.Port); err != nil {
		return err
	}
	if c.Service.RequestTimeout <= 0 {
		return &infraconfig.ValidationError{Field: "service.request_timeout", Message: "must be positive"}
	}
	if err := c.validateResolver(); err != nil {
		return err
	}
	if err := infraconfig.ValidatePositive("rate_limit.requests_per_minute", c.RateLimit.RequestsPerMinute); err != nil {
		return err
	}
	if err := infraconfig.ValidatePositive("rate_limit.burst", c.RateLimit.Burst); err != nil {
		return err
	}
	if err := infraconfig.ValidateLogLevel(c.Logging.Level); err != nil {
		return err
	}
	return infraconfig.ValidateLogFormat(c.Logging.Format)
}

func (c *Config) validateResolver() error {
	r := c.Resolver
	if err := infraconfig.ValidatePositive("resolver.max_sitemaps", r.MaxSitemaps); err != nil {
		return err
	}
	if err := infraconfig.ValidateNonNegative("resolver.max_depth", r.MaxDepth); err != nil {
		return err
	}
	if err := infraconfig.ValidatePositive("resolver.concurrency", r.Concurrency); err != nil {
		return err
	}
	if r.FetchTimeout <= 0 {
		return &infraconfig.ValidationError{Field: "resolver.fetch_timeout", Message: "must be positive"}
	}
	if r.MaxBodyBytes <= 0 {
		return &infraconfig.ValidationError{Field: "resolver.max_body_bytes", Message: "must be positive"}
	}
	return nil
}
