package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/yungbote/consciousness-backend/internal/platform/logger"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// Model is a text-in, text-out generation capability. Output is free text with
// no structural guarantee.
type Model interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Info() Info
}

type Info struct {
	Provider string `json:"provider"`
	Model    string `json:"model"`
}

// ModelError is returned by every provider when generation fails.
type ModelError struct {
	Provider string
	Model    string
	Status   int
	Err      error
}

func (e *ModelError) Error() string {
	if e == nil {
		return ""
	}
	if e.Status != 0 {
		return fmt.Sprintf("%s %s: status %d: %v", e.Provider, e.Model, e.Status, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Provider, e.Model, e.Err)
}

func (e *ModelError) Unwrap() error { return e.Err }

func (e *ModelError) HTTPStatusCode() int {
	if e == nil {
		return 0
	}
	return e.Status
}

type Config struct {
	Provider string

	GeminiAPIKey string
	GeminiModel  string

	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAIBaseURL string

	Timeout     time.Duration
	MaxRetries  int
	Temperature *float64
}

// New builds the provider named by cfg.Provider.
func New(ctx context.Context, cfg Config, log *logger.Logger) (Model, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", ProviderGemini:
		return NewGemini(ctx, cfg, log)
	case ProviderOpenAI:
		return NewOpenAI(cfg, log)
	default:
		return nil, fmt.Errorf("unknown LLM_PROVIDER %q", cfg.Provider)
	}
}
