package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/yungbote/consciousness-backend/internal/platform/httpx"
	"github.com/yungbote/consciousness-backend/internal/platform/logger"
)

const (
	defaultOpenAIModel   = "gpt-4.1"
	defaultOpenAIBaseURL = "https://api.openai.com"
)

// OpenAI generates text through the Responses API.
type OpenAI struct {
	baseURL     string
	apiKey      string
	model       string
	httpClient  *http.Client
	temperature *float64
	// set once the model rejects the temperature parameter
	noTemp atomic.Bool
	retry  *retrier
}

func NewOpenAI(cfg Config, log *logger.Logger) (*OpenAI, error) {
	apiKey := strings.TrimSpace(cfg.OpenAIAPIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("missing OPENAI_API_KEY")
	}
	baseURL := strings.TrimSpace(cfg.OpenAIBaseURL)
	if baseURL == "" {
		baseURL = defaultOpenAIBaseURL
	}
	model := strings.TrimSpace(cfg.OpenAIModel)
	if model == "" {
		model = defaultOpenAIModel
	}
	info := Info{Provider: ProviderOpenAI, Model: model}
	return &OpenAI{
		baseURL:     strings.TrimRight(baseURL, "/"),
		apiKey:      apiKey,
		model:       model,
		httpClient:  &http.Client{},
		temperature: cfg.Temperature,
		retry: &retrier{
			log:        log.With("service", "OpenAIModel"),
			info:       info,
			maxRetries: cfg.MaxRetries,
			timeout:    cfg.Timeout,
			baseDelay:  time.Second,
			maxDelay:   10 * time.Second,
		},
	}, nil
}

func (c *OpenAI) Info() Info {
	return c.retry.info
}

type inputMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responsesRequest struct {
	Model       string         `json:"model"`
	Input       []inputMessage `json:"input"`
	Temperature *float64       `json:"temperature,omitempty"`
}

type responsesResponse struct {
	Output []struct {
		Type    string `json:"type"`
		Role    string `json:"role,omitempty"`
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text,omitempty"`
		} `json:"content,omitempty"`
	} `json:"output"`
	Refusal string `json:"refusal,omitempty"`
}

type openAIHTTPError struct {
	httpx.StatusError
	retryAfter time.Duration
}

func (e *openAIHTTPError) Error() string {
	return fmt.Sprintf("openai http %d: %s", e.StatusCode, e.Body)
}

func (e *openAIHTTPError) RetryAfter() time.Duration { return e.retryAfter }

func (c *OpenAI) Generate(ctx context.Context, prompt string) (string, error) {
	req := responsesRequest{
		Model: c.model,
		Input: []inputMessage{{Role: "user", Content: prompt}},
	}
	if c.temperature != nil && !c.noTemp.Load() {
		req.Temperature = c.temperature
	}

	return c.retry.do(ctx, func(ctx context.Context) (string, error) {
		var resp responsesResponse
		err := c.doOnce(ctx, &req, &resp)
		if err != nil && req.Temperature != nil && isUnsupportedTemperatureParam(err) {
			c.noTemp.Store(true)
			req.Temperature = nil
			err = c.doOnce(ctx, &req, &resp)
		}
		if err != nil {
			return "", err
		}
		if resp.Refusal != "" {
			return "", &ModelError{Provider: ProviderOpenAI, Model: c.model, Err: fmt.Errorf("model refused: %s", resp.Refusal)}
		}
		text := extractOutputText(resp)
		if strings.TrimSpace(text) == "" {
			c.retry.log.Warn("no output_text found in response", "model", c.model)
		}
		return text, nil
	})
}

func (c *OpenAI) doOnce(ctx context.Context, body *responsesRequest, out *responsesResponse) error {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/responses", &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return readErr
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &openAIHTTPError{
			StatusError: httpx.StatusError{StatusCode: resp.StatusCode, Body: string(raw)},
			retryAfter:  httpx.RetryAfterDuration(resp, 0, 10*time.Second),
		}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("openai decode error: %w", err)
	}
	return nil
}

func extractOutputText(resp responsesResponse) string {
	var out strings.Builder
	for _, item := range resp.Output {
		if item.Type == "message" && item.Role == "assistant" {
			for _, c := range item.Content {
				if c.Type == "output_text" && c.Text != "" {
					out.WriteString(c.Text)
				}
			}
		}
	}
	return out.String()
}

func isUnsupportedTemperatureParam(err error) bool {
	var he *openAIHTTPError
	if !errors.As(err, &he) || he.StatusCode != http.StatusBadRequest {
		return false
	}
	msg := strings.ToLower(he.Body)
	if !strings.Contains(msg, "temperature") {
		return false
	}
	for _, hint := range []string{"unsupported parameter", "unknown parameter", "not supported", "does not support", "only the default", "unsupported_value"} {
		if strings.Contains(msg, hint) {
			return true
		}
	}
	return false
}
