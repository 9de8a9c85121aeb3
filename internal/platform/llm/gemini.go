package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/yungbote/consciousness-backend/internal/platform/logger"
)

const defaultGeminiModel = "gemini-2.5-pro"

// Gemini generates text through the Gemini API.
type Gemini struct {
	client      *genai.Client
	model       string
	temperature *float32
	retry       *retrier
}

func NewGemini(ctx context.Context, cfg Config, log *logger.Logger) (*Gemini, error) {
	apiKey := strings.TrimSpace(cfg.GeminiAPIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("missing GEMINI_API_KEY")
	}
	model := strings.TrimSpace(cfg.GeminiModel)
	if model == "" {
		model = defaultGeminiModel
	}
	return newGemini(ctx, cfg, log, model, &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{},
	})
}

func newGemini(ctx context.Context, cfg Config, log *logger.Logger, model string, cc *genai.ClientConfig) (*Gemini, error) {
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	var temp *float32
	if cfg.Temperature != nil {
		temp = genai.Ptr(float32(*cfg.Temperature))
	}
	info := Info{Provider: ProviderGemini, Model: model}
	return &Gemini{
		client:      client,
		model:       model,
		temperature: temp,
		retry: &retrier{
			log:        log.With("service", "GeminiModel"),
			info:       info,
			maxRetries: cfg.MaxRetries,
			timeout:    cfg.Timeout,
			baseDelay:  time.Second,
			maxDelay:   10 * time.Second,
		},
	}, nil
}

func (g *Gemini) Info() Info {
	return g.retry.info
}

func (g *Gemini) Generate(ctx context.Context, prompt string) (string, error) {
	var genCfg *genai.GenerateContentConfig
	if g.temperature != nil {
		genCfg = &genai.GenerateContentConfig{Temperature: g.temperature}
	}
	return g.retry.do(ctx, func(ctx context.Context) (string, error) {
		resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), genCfg)
		if err != nil {
			if status := geminiStatus(err); status != 0 {
				return "", &ModelError{Provider: ProviderGemini, Model: g.model, Status: status, Err: err}
			}
			return "", err
		}
		text := resp.Text()
		if strings.TrimSpace(text) == "" {
			g.retry.log.Warn("model returned no text", "model", g.model)
		}
		return text, nil
	})
}

// geminiStatus digs the HTTP status out of a genai API error, if any.
func geminiStatus(err error) int {
	for e := err; e != nil; e = errors.Unwrap(e) {
		switch v := any(e).(type) {
		case genai.APIError:
			return v.Code
		case *genai.APIError:
			if v != nil {
				return v.Code
			}
		}
	}
	return 0
}
