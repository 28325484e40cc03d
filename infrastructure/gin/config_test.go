package gin

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestConfig_SetDefaults(t *testing.T) {
	t.Parallel()

	cfg := NewConfig("svc", 8080)

	assert.Equal(t, DefaultReadTimeout, cfg.ReadTimeout)
	assert.Equal(t, DefaultWriteTimeout, cfg.WriteTimeout)
	assert.True(t, cfg.CORS.Enabled)
	assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)
}

func TestConfig_SetDefaultsKeepsExplicitValues(t *testing.T) {
	t.Parallel()

	cfg := &Config{WriteTimeout: time.Minute, CORS: CORSConfig{AllowedOrigins: []string{"https://a.example"}}}
	cfg.SetDefaults()

	assert.Equal(t, time.Minute, cfg.WriteTimeout)
	assert.Equal(t, []string{"https://a.example"}, cfg.CORS.AllowedOrigins)
}

func TestFormatUptime(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   time.Duration
		want string
	}{
		{5 * time.Second, "5s"},
		{3*time.Minute + 2*time.Second, "3m 2s"},
		{2*time.Hour + 5*time.Minute, "2h 5m"},
		{50*time.Hour + 1*time.Minute, "2d 2h 1m"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatUptime(tt.in))
	}
}
