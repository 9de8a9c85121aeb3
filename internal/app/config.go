package app

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/yungbote/consciousness-backend/internal/data/db"
	"github.com/yungbote/consciousness-backend/internal/http/middleware"
	"github.com/yungbote/consciousness-backend/internal/platform/envutil"
	"github.com/yungbote/consciousness-backend/internal/platform/llm"
	"github.com/yungbote/consciousness-backend/internal/platform/logger"
	"github.com/yungbote/consciousness-backend/internal/realtime/bus"
)

type Config struct {
	Port        string
	ServiceName string
	Environment string
	Version     string

	PostgresDSN string

	JWTSecretKey    string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	LLM llm.Config

	WorkerConcurrency int
	WorkerQueueSize   int

	// Redis is optional; an empty Addr keeps analysis_ready events in process.
	Redis bus.RedisConfig

	AllowedOrigins []string

	ReflectionLocation *time.Location
	RecentReflections  int
}

func LoadConfig(log *logger.Logger) (Config, error) {
	cfg := Config{
		Port:        envutil.String("PORT", "5000", log),
		ServiceName: envutil.String("OTEL_SERVICE_NAME", "consciousness-backend", nil),
		Environment: envutil.String("APP_ENV", "development", nil),
		Version:     envutil.String("APP_VERSION", "dev", nil),

		PostgresDSN: db.DSNFromEnv(log),

		JWTSecretKey:    envutil.String("JWT_SECRET_KEY", "", nil),
		AccessTokenTTL:  envutil.Seconds("ACCESS_TOKEN_TTL", 15*time.Minute),
		RefreshTokenTTL: envutil.Seconds("REFRESH_TOKEN_TTL", 7*24*time.Hour),

		LLM: llm.Config{
			Provider:      envutil.String("LLM_PROVIDER", llm.ProviderGemini, log),
			GeminiAPIKey:  envutil.String("GEMINI_API_KEY", "", nil),
			GeminiModel:   envutil.String("GEMINI_MODEL", "", nil),
			OpenAIAPIKey:  envutil.String("OPENAI_API_KEY", "", nil),
			OpenAIModel:   envutil.String("OPENAI_MODEL", "", nil),
			OpenAIBaseURL: envutil.String("OPENAI_BASE_URL", "", nil),
			Timeout:       envutil.Seconds("LLM_TIMEOUT_SECONDS", 180*time.Second),
			MaxRetries:    envutil.Int("LLM_MAX_RETRIES", 0),
		},

		WorkerConcurrency: envutil.Int("WORKER_CONCURRENCY", 4),
		WorkerQueueSize:   envutil.Int("WORKER_QUEUE_SIZE", 256),

		Redis: bus.RedisConfig{
			Addr:     envutil.String("REDIS_ADDR", "", nil),
			Password: envutil.String("REDIS_PASSWORD", "", nil),
			DB:       envutil.Int("REDIS_DB", 0),
			Channel:  envutil.String("REDIS_CHANNEL", "", nil),
		},

		AllowedOrigins:    envutil.List("CORS_ALLOWED_ORIGINS", middleware.DefaultAllowedOrigins),
		RecentReflections: envutil.Int("RECENT_REFLECTIONS_LIMIT", 8),
	}

	if cfg.JWTSecretKey == "" {
		return Config{}, fmt.Errorf("JWT_SECRET_KEY must be set")
	}

	tz := envutil.String("REFLECTION_TZ", "UTC", log)
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return Config{}, fmt.Errorf("load REFLECTION_TZ %q: %w", tz, err)
	}
	cfg.ReflectionLocation = loc

	if temp := strings.TrimSpace(envutil.String("LLM_TEMPERATURE", "", nil)); temp != "" {
		t, err := strconv.ParseFloat(temp, 64)
		if err != nil {
			return Config{}, fmt.Errorf("parse LLM_TEMPERATURE %q: %w", temp, err)
		}
		cfg.LLM.Temperature = &t
	}
	return cfg, nil
}

func (c Config) Address() string {
	return ":" + c.Port
}
