package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/masoudtahsiri/sitemap-extractor/infrastructure/config"
)

type testResolver struct {
	MaxDepth     int           `env:"TEST_LOADER_MAX_DEPTH"     yaml:"max_depth"`
	FetchTimeout time.Duration `env:"TEST_LOADER_FETCH_TIMEOUT" yaml:"fetch_timeout"`
}

type testConfig struct {
	Name     string       `env:"TEST_LOADER_NAME"    yaml:"name"`
	Debug    bool         `env:"TEST_LOADER_DEBUG"   yaml:"debug"`
	Origins  []string     `env:"TEST_LOADER_ORIGINS" yaml:"origins"`
	Resolver testResolver `yaml:"resolver"`
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_ReadsYAML(t *testing.T) {
	path := writeConfig(t, "name: extractor\nresolver:\n  max_depth: 5\n  fetch_timeout: 15s\n")

	cfg, err := config.Load[testConfig](path)
	require.NoError(t, err)

	assert.Equal(t, "extractor", cfg.Name)
	assert.Equal(t, 5, cfg.Resolver.MaxDepth)
	assert.Equal(t, 15*time.Second, cfg.Resolver.FetchTimeout)
}

func TestLoad_EnvOverridesNestedFields(t *testing.T) {
	t.Setenv("TEST_LOADER_MAX_DEPTH", "7")
	t.Setenv("TEST_LOADER_FETCH_TIMEOUT", "2s")
	t.Setenv("TEST_LOADER_DEBUG", "yes")
	t.Setenv("TEST_LOADER_ORIGINS", "https://a.example, https://b.example")

	path := writeConfig(t, "resolver:\n  max_depth: 5\n")

	cfg, err := config.Load[testConfig](path)
	require.NoError(t, err)

	assert.Equal(t, 7, cfg.Resolver.MaxDepth)
	assert.Equal(t, 2*time.Second, cfg.Resolver.FetchTimeout)
	assert.True(t, cfg.Debug)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Origins)
}

func TestLoad_MissingFileUsesEnvOnly(t *testing.T) {
	t.Setenv("TEST_LOADER_NAME", "from-env")

	cfg, err := config.Load[testConfig](filepath.Join(t.TempDir(), "absent.yml"))
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Name)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "name: [unterminated\n")

	_, err := config.Load[testConfig](path)
	require.Error(t, err)
}

func TestLoadWithDefaults_EnvWinsOverDefaults(t *testing.T) {
	t.Setenv("TEST_LOADER_MAX_DEPTH", "9")

	cfg, err := config.LoadWithDefaults[testConfig](writeConfig(t, "{}\n"), func(c *testConfig) {
		c.Resolver.MaxDepth = 3
		c.Name = "default-name"
	})
	require.NoError(t, err)

	assert.Equal(t, 9, cfg.Resolver.MaxDepth)
	assert.Equal(t, "default-name", cfg.Name)
}

func TestGetConfigPath(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	assert.Equal(t, "config.yml", config.GetConfigPath("config.yml"))

	t.Setenv("CONFIG_PATH", "/etc/sitemap-extractor/config.yml")
	assert.Equal(t, "/etc/sitemap-extractor/config.yml", config.GetConfigPath("config.yml"))
}

func TestValidationHelpers(t *testing.T) {
	t.Parallel()

	require.NoError(t, config.ValidatePort("service.port", 8080))
	require.EqualError(t, config.ValidatePort("service.port", 70000), "service.port: must be between 1 and 65535")
	require.EqualError(t, config.ValidatePositive("resolver.max_sitemaps", 0), "resolver.max_sitemaps: must be at least 1")
	require.NoError(t, config.ValidateNonNegative("resolver.max_depth", 0))
	require.EqualError(t, config.ValidateNonNegative("resolver.max_depth", -1), "resolver.max_depth: must not be negative")
	require.Error(t, config.ValidateLogLevel("verbose"))
	require.NoError(t, config.ValidateLogFormat("console"))
}
