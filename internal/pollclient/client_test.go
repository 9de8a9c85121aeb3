package pollclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/consciousness-backend/internal/services"
)

func TestClientLoginSubmitAndPoll(t *testing.T) {
	reflectionID := uuid.New()
	var latestCalls atomic.Int32

	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"token": "tok", "refreshToken": "ref"})
	})
	mux.HandleFunc("/api/reflections", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		var in services.ReflectionInput
		_ = json.NewDecoder(r.Body).Decode(&in)
		if in.DaySummary == "" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":{"message":"Day summary is required","code":"validation_error"}}`))
			return
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"message":    "Reflection submitted successfully",
			"reflection": map[string]any{"id": reflectionID, "reflectionDate": "2026-03-14"},
		})
	})
	mux.HandleFunc("/api/analysis/latest", func(w http.ResponseWriter, r *http.Request) {
		if latestCalls.Add(1) < 2 {
			_, _ = w.Write([]byte(`{"analysis":null}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"analysis": map[string]any{
			"id":             uuid.New(),
			"reflectionId":   reflectionID,
			"analysisText":   "You did well.",
			"reflectionDate": "2026-03-14",
		}})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	ctx := context.Background()
	c := NewClient(srv.URL+"/", time.Second)
	require.NoError(t, c.Login(ctx, "ada@example.com", "secret1"))
	require.Equal(t, "tok", c.Token())

	_, err := c.SubmitReflection(ctx, services.ReflectionInput{})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusBadRequest, apiErr.Status)
	require.Equal(t, "validation_error", apiErr.Code)
	require.Equal(t, "Day summary is required", apiErr.Message)

	submitted, err := c.SubmitReflection(ctx, services.ReflectionInput{DaySummary: "ok"})
	require.NoError(t, err)
	require.Equal(t, reflectionID, submitted.ID)
	require.Equal(t, "2026-03-14", submitted.ReflectionDate)

	p := fastPoller()
	p.WantReflectionID = submitted.ID
	res, err := p.Wait(ctx, c)
	require.NoError(t, err)
	require.True(t, res.Ready())
	require.Equal(t, "You did well.", res.Analysis.AnalysisText)
	require.Equal(t, "2026-03-14", res.Analysis.ReflectionDate)
}
