package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/consciousness-backend/internal/platform/apierr"
)

func serve(t *testing.T, err error) (*httptest.ResponseRecorder, *gin.Context) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	RespondServiceError(c, err)
	return rec, c
}

func TestRespondServiceError_APIError(t *testing.T) {
	rec, c := serve(t, apierr.Conflict("reflection_exists", "You have already submitted a reflection for today"))

	require.Equal(t, http.StatusConflict, rec.Code)
	var env ErrorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.Equal(t, "reflection_exists", env.Error.Code)
	require.Equal(t, "You have already submitted a reflection for today", env.Error.Message)
	require.Empty(t, c.Errors)
}

func TestRespondServiceError_HidesInternalCause(t *testing.T) {
	rec, c := serve(t, errors.New("pq: connection refused"))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.NotContains(t, rec.Body.String(), "connection refused")
	var env ErrorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.Equal(t, "internal_error", env.Error.Code)
	require.Len(t, c.Errors, 1)
}
