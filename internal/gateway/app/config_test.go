package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg := LoadConfig()

	require.Equal(t, "24h", cfg.UserTokenTTL)
	require.Equal(t, "1h", cfg.AccessTokenTTL)
	require.Equal(t, 100, cfg.RateLimitMax)
	require.Equal(t, time.Minute, cfg.RateLimitWindow)
	require.Equal(t, "gateway.db", cfg.DatabaseFile)
	require.Equal(t, "dev", cfg.Env)
	require.Equal(t, 8080, cfg.Port)
	require.Equal(t, 10*time.Second, cfg.ShutdownGracePeriod)
	require.Equal(t, time.Minute, cfg.SweepInterval)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("GATEWAY_SECRET", "hunter2")
	t.Setenv("RATE_LIMIT_MAX", "5")
	t.Setenv("RATE_LIMIT_WINDOW", "30s")
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "prod")

	cfg := LoadConfig()
	require.Equal(t, "hunter2", cfg.Secret)
	require.Equal(t, 5, cfg.RateLimitMax)
	require.Equal(t, 30*time.Second, cfg.RateLimitWindow)
	require.Equal(t, 9090, cfg.Port)
	require.Equal(t, "prod", cfg.Env)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfigWindowInMilliseconds(t *testing.T) {
	t.Setenv("RATE_LIMIT_WINDOW", "60000")

	cfg := LoadConfig()
	require.Equal(t, time.Minute, cfg.RateLimitWindow)
}

func TestValidateRequiresSecret(t *testing.T) {
	var cfg Config
	require.ErrorIs(t, cfg.Validate(), ErrMissingSecret)
}

func TestInvalidEnvValuesFallBack(t *testing.T) {
	t.Setenv("RATE_LIMIT_MAX", "lots")
	t.Setenv("RATE_LIMIT_WINDOW", "soon")

	cfg := LoadConfig()
	require.Equal(t, 100, cfg.RateLimitMax)
	require.Equal(t, time.Minute, cfg.RateLimitWindow)
}
