package server

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func resetConfig(t *testing.T) {
	t.Helper()
	t.Cleanup(func() {
		SetConfig(nil)
	})
}

func TestDefaultConfig(t *testing.T) {
	resetConfig(t)

	cfg := NewConfig()

	assert.Equal(t, ":8080", cfg.Port)
	assert.Equal(t, int64(512), cfg.MaxMessageSize)
	assert.Equal(t, 128, cfg.MaxSessions)
	assert.Equal(t, 5, cfg.RateLimit.Burst)
	assert.Equal(t, time.Second, cfg.RateLimit.RefillInterval)
	assert.NotEmpty(t, cfg.AllowedOrigins)
}

func TestConfigFromEnv(t *testing.T) {
	resetConfig(t)

	t.Setenv("SERVER_PORT", ":9999")
	t.Setenv("ALLOWED_ORIGINS", "https://example.com, http://other.test")
	t.Setenv("MAX_MESSAGE_SIZE", "1024")
	t.Setenv("MAX_SESSIONS", "3")
	t.Setenv("RATE_LIMIT_BURST", "10")
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "2")

	cfg := NewConfigFromEnv()

	assert.Equal(t, ":9999", cfg.Port)
	assert.Equal(t, []string{"https://example.com", "http://other.test"}, cfg.AllowedOrigins)
	assert.Equal(t, int64(1024), cfg.MaxMessageSize)
	assert.Equal(t, 3, cfg.MaxSessions)
	assert.Equal(t, 10, cfg.RateLimit.Burst)
	assert.Equal(t, 2*time.Second, cfg.RateLimit.RefillInterval)
}

func TestConfigFromEnvIgnoresInvalidValues(t *testing.T) {
	resetConfig(t)

	t.Setenv("MAX_MESSAGE_SIZE", "not-a-number")
	t.Setenv("MAX_SESSIONS", "-5")
	t.Setenv("RATE_LIMIT_BURST", "0")

	cfg := NewConfigFromEnv()

	assert.Equal(t, int64(512), cfg.MaxMessageSize)
	assert.Equal(t, 128, cfg.MaxSessions)
	assert.Equal(t, 5, cfg.RateLimit.Burst)
}

func TestSetConfigSanitizes(t *testing.T) {
	resetConfig(t)

	SetConfig(&Config{
		Port:           "",
		MaxMessageSize: -1,
		MaxSessions:    0,
	})

	cfg := currentConfig()
	assert.Equal(t, ":8080", cfg.Port)
	assert.Equal(t, int64(512), cfg.MaxMessageSize)
	assert.Equal(t, 128, cfg.MaxSessions)
	assert.Equal(t, 5, cfg.RateLimit.Burst)
}
