package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/consciousness-backend/internal/platform/apierr"
	"github.com/yungbote/consciousness-backend/internal/platform/ctxutil"
	"github.com/yungbote/consciousness-backend/internal/platform/logger"
	"github.com/yungbote/consciousness-backend/internal/services"
)

// stubAuth accepts exactly one token.
type stubAuth struct {
	services.AuthService
	token  string
	userID uuid.UUID
}

func (s stubAuth) SetContextFromToken(ctx context.Context, token string) (context.Context, error) {
	if token != s.token {
		return ctx, apierr.Unauthorized("unauthorized", "Session has ended")
	}
	return ctxutil.WithRequestData(ctx, &ctxutil.RequestData{TokenString: token, UserID: s.userID}), nil
}

func authedEngine(auth services.AuthService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(NewAuthMiddleware(logger.NewNop(), auth).RequireAuth())
	r.GET("/whoami", func(c *gin.Context) {
		c.String(http.StatusOK, ctxutil.UserID(c.Request.Context()).String())
	})
	return r
}

func TestRequireAuth(t *testing.T) {
	userID := uuid.New()
	r := authedEngine(stubAuth{token: "good", userID: userID})

	cases := []struct {
		name   string
		setup  func(*http.Request)
		status int
	}{
		{"missing", func(*http.Request) {}, http.StatusUnauthorized},
		{"bad bearer", func(req *http.Request) { req.Header.Set("Authorization", "Bearer nope") }, http.StatusUnauthorized},
		{"bearer", func(req *http.Request) { req.Header.Set("Authorization", "Bearer good") }, http.StatusOK},
		{"lowercase scheme", func(req *http.Request) { req.Header.Set("Authorization", "bearer good") }, http.StatusOK},
		{"query token", func(req *http.Request) { req.URL.RawQuery = "token=good" }, http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			tc.setup(req)
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			require.Equal(t, tc.status, rec.Code)
			if tc.status == http.StatusOK {
				require.Equal(t, userID.String(), rec.Body.String())
			} else {
				require.Contains(t, rec.Body.String(), `"code":"unauthorized"`)
			}
		})
	}
}

func TestRequireAuth_RejectsAnonymousIdentity(t *testing.T) {
	r := authedEngine(stubAuth{token: "good", userID: uuid.Nil})
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer good")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAttachTraceContext_EchoesRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AttachTraceContext())
	r.GET("/ping", func(c *gin.Context) {
		td := ctxutil.GetTraceData(c.Request.Context())
		c.String(http.StatusOK, td.RequestID)
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Request-Id", "req-123")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, "req-123", rec.Body.String())
	require.Equal(t, "req-123", rec.Header().Get("X-Request-Id"))
	require.NotEmpty(t, rec.Header().Get("X-Trace-Id"))

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
	require.NotEmpty(t, rec.Body.String())
}

func TestAttachTraceContext_ReplacesOversizedIDs(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AttachTraceContext())
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	long := strings.Repeat("x", maxRequestIDLen+1)
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Request-Id", long)
	req.Header.Set("X-Trace-Id", "trace-abc")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.NotEqual(t, long, rec.Header().Get("X-Request-Id"))
	require.NotEmpty(t, rec.Header().Get("X-Request-Id"))
	require.Equal(t, "trace-abc", rec.Header().Get("X-Trace-Id"))
}
