package app

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/consciousness-backend/internal/http/middleware"
	"github.com/yungbote/consciousness-backend/internal/platform/logger"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "s3cret")
	for _, k := range []string{
		"PORT", "ACCESS_TOKEN_TTL", "REFRESH_TOKEN_TTL", "REFLECTION_TZ", "LLM_PROVIDER",
		"LLM_TIMEOUT_SECONDS", "LLM_TEMPERATURE", "LLM_MAX_RETRIES", "REDIS_ADDR", "CORS_ALLOWED_ORIGINS",
		"RECENT_REFLECTIONS_LIMIT", "WORKER_CONCURRENCY", "WORKER_QUEUE_SIZE",
	} {
		t.Setenv(k, "")
	}

	cfg, err := LoadConfig(logger.NewNop())
	require.NoError(t, err)

	assert.Equal(t, ":5000", cfg.Address())
	assert.Equal(t, 15*time.Minute, cfg.AccessTokenTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.RefreshTokenTTL)
	assert.Equal(t, time.UTC, cfg.ReflectionLocation)
	assert.Equal(t, "gemini", cfg.LLM.Provider)
	assert.Equal(t, 180*time.Second, cfg.LLM.Timeout)
	assert.Nil(t, cfg.LLM.Temperature)
	assert.Zero(t, cfg.LLM.MaxRetries)
	assert.Empty(t, cfg.Redis.Addr)
	assert.Equal(t, middleware.DefaultAllowedOrigins, cfg.AllowedOrigins)
	assert.Equal(t, 8, cfg.RecentReflections)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "s3cret")
	t.Setenv("PORT", "8081")
	t.Setenv("REFLECTION_TZ", "Australia/Sydney")
	t.Setenv("LLM_PROVIDER", "openai")
	t.Setenv("LLM_TEMPERATURE", "0.4")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://journal.example.com")

	cfg, err := LoadConfig(logger.NewNop())
	require.NoError(t, err)

	assert.Equal(t, ":8081", cfg.Address())
	assert.Equal(t, "Australia/Sydney", cfg.ReflectionLocation.String())
	assert.Equal(t, "openai", cfg.LLM.Provider)
	require.NotNil(t, cfg.LLM.Temperature)
	assert.InDelta(t, 0.4, *cfg.LLM.Temperature, 1e-9)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, []string{"https://journal.example.com"}, cfg.AllowedOrigins)
}

func TestLoadConfigRejectsBadInput(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "")
	_, err := LoadConfig(logger.NewNop())
	require.Error(t, err)

	t.Setenv("JWT_SECRET_KEY", "s3cret")
	t.Setenv("REFLECTION_TZ", "Mars/Olympus")
	_, err = LoadConfig(logger.NewNop())
	require.Error(t, err)

	t.Setenv("REFLECTION_TZ", "UTC")
	t.Setenv("LLM_TEMPERATURE", "warm")
	_, err = LoadConfig(logger.NewNop())
	require.Error(t, err)
}
