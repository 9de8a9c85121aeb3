package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/yungbote/consciousness-backend/internal/platform/logger"
)

const assistantBody = `{"output":[{"type":"message","role":"assistant","content":[{"type":"output_text","text":"**ANALYSIS:** fine"}]}]}`

func newTestOpenAI(t *testing.T, url string, retries int) *OpenAI {
	t.Helper()
	m, err := NewOpenAI(Config{OpenAIAPIKey: "sk-test", OpenAIBaseURL: url, MaxRetries: retries, Timeout: 5 * time.Second}, logger.NewNop())
	require.NoError(t, err)
	m.retry.baseDelay = time.Millisecond
	return m
}

func TestOpenAIGenerateSendsPromptAndReturnsText(t *testing.T) {
	var got responsesRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/responses", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &got)
		_, _ = w.Write([]byte(assistantBody))
	}))
	defer srv.Close()

	m := newTestOpenAI(t, srv.URL, 0)
	text, err := m.Generate(context.Background(), "hello prompt")
	require.NoError(t, err)
	assert.Equal(t, "**ANALYSIS:** fine", text)
	require.Len(t, got.Input, 1)
	assert.Equal(t, "hello prompt", got.Input[0].Content)
	assert.Equal(t, Info{Provider: ProviderOpenAI, Model: defaultOpenAIModel}, m.Info())
}

func TestOpenAIRetriesTransientStatus(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(assistantBody))
	}))
	defer srv.Close()

	text, err := newTestOpenAI(t, srv.URL, 2).Generate(context.Background(), "p")
	require.NoError(t, err)
	assert.NotEmpty(t, text)
	assert.EqualValues(t, 2, calls.Load())
}

func TestOpenAIFailsWithModelErrorOnClientStatus(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"bad key"}`))
	}))
	defer srv.Close()

	_, err := newTestOpenAI(t, srv.URL, 3).Generate(context.Background(), "p")
	var me *ModelError
	require.True(t, errors.As(err, &me))
	assert.Equal(t, http.StatusUnauthorized, me.Status)
	assert.Equal(t, ProviderOpenAI, me.Provider)
	assert.EqualValues(t, 1, calls.Load())
}

func TestOpenAIDropsRejectedTemperature(t *testing.T) {
	var withTemp, withoutTemp atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		if strings.Contains(string(raw), "temperature") {
			withTemp.Add(1)
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":{"message":"Unsupported parameter: 'temperature' is not supported with this model."}}`))
			return
		}
		withoutTemp.Add(1)
		_, _ = w.Write([]byte(assistantBody))
	}))
	defer srv.Close()

	temp := 0.2
	m, err := NewOpenAI(Config{OpenAIAPIKey: "k", OpenAIBaseURL: srv.URL, Temperature: &temp}, logger.NewNop())
	require.NoError(t, err)

	_, err = m.Generate(context.Background(), "p")
	require.NoError(t, err)
	_, err = m.Generate(context.Background(), "p")
	require.NoError(t, err)
	assert.EqualValues(t, 1, withTemp.Load())
	assert.EqualValues(t, 2, withoutTemp.Load())
}

func TestOpenAIEmptyOutputReturnsEmptyText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"output":[]}`))
	}))
	defer srv.Close()

	text, err := newTestOpenAI(t, srv.URL, 0).Generate(context.Background(), "p")
	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestOpenAINoRetryWithZeroBudget(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := newTestOpenAI(t, srv.URL, 0).Generate(context.Background(), "p")
	var me *ModelError
	require.ErrorAs(t, err, &me)
	assert.Equal(t, http.StatusServiceUnavailable, me.Status)
	assert.EqualValues(t, 1, calls.Load())
}

func TestGeminiGenerateReadsCandidateText(t *testing.T) {
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"**ANALYSIS:** gemini says hi"}]}}]}`))
	}))
	defer srv.Close()

	g, err := newGemini(context.Background(), Config{}, logger.NewNop(), "gemini-2.5-pro", &genai.ClientConfig{
		APIKey:      "test-key",
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  srv.Client(),
		HTTPOptions: genai.HTTPOptions{BaseURL: srv.URL + "/"},
	})
	require.NoError(t, err)

	text, err := g.Generate(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, "**ANALYSIS:** gemini says hi", text)
	assert.Contains(t, path, "gemini-2.5-pro:generateContent")
	assert.Equal(t, Info{Provider: ProviderGemini, Model: "gemini-2.5-pro"}, g.Info())
}

func TestNewRejectsUnknownProvider(t *testing.T) {
	_, err := New(context.Background(), Config{Provider: "llama"}, logger.NewNop())
	require.Error(t, err)
}

func TestNewGeminiRequiresKey(t *testing.T) {
	_, err := New(context.Background(), Config{Provider: "gemini"}, logger.NewNop())
	require.ErrorContains(t, err, "GEMINI_API_KEY")
}
