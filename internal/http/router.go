package http

import (
	nethttp "net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/consciousness-backend/internal/http/handlers"
	httpMW "github.com/yungbote/consciousness-backend/internal/http/middleware"
	"github.com/yungbote/consciousness-backend/internal/http/response"
	"github.com/yungbote/consciousness-backend/internal/observability"
	"github.com/yungbote/consciousness-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	Metrics        *observability.Metrics
	AllowedOrigins []string
	ServiceName    string

	AuthMiddleware *httpMW.AuthMiddleware

	HealthHandler     *httpH.HealthHandler
	AuthHandler       *httpH.AuthHandler
	ProfileHandler    *httpH.ProfileHandler
	ReflectionHandler *httpH.ReflectionHandler
	AnalysisHandler   *httpH.AnalysisHandler
	RealtimeHandler   *httpH.RealtimeHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.AllowedOrigins))

	r.NoRoute(func(c *gin.Context) {
		response.RespondError(c, nethttp.StatusNotFound, "route_not_found", errRouteNotFound)
	})

	// Ops
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	api := r.Group("/api")
	{
		// Auth (public)
		if cfg.AuthHandler != nil {
			api.POST("/auth/register", cfg.AuthHandler.Register)
			api.POST("/auth/login", cfg.AuthHandler.Login)
			api.POST("/auth/refresh", cfg.AuthHandler.Refresh)
		}
	}

	protected := api.Group("/")
	{
		// Middleware
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		// Auth (protected)
		if cfg.AuthHandler != nil {
			protected.POST("/auth/logout", cfg.AuthHandler.Logout)
			protected.GET("/auth/me", cfg.AuthHandler.Me)
		}

		// Profile
		if cfg.ProfileHandler != nil {
			protected.POST("/profile", cfg.ProfileHandler.Save)
			protected.GET("/profile", cfg.ProfileHandler.Get)
		}

		// Reflections
		if cfg.ReflectionHandler != nil {
			protected.POST("/reflections", cfg.ReflectionHandler.Create)
			protected.GET("/reflections", cfg.ReflectionHandler.List)
			protected.GET("/reflections/today", cfg.ReflectionHandler.Today)
			protected.GET("/reflections/:id", cfg.ReflectionHandler.Get)
		}

		// Analysis
		if cfg.RealtimeHandler != nil {
			protected.GET("/analysis/stream", cfg.RealtimeHandler.Stream)
		}
		if cfg.AnalysisHandler != nil {
			protected.GET("/analysis/latest", cfg.AnalysisHandler.Latest)
			protected.GET("/analysis/all", cfg.AnalysisHandler.All)
			protected.GET("/analysis/:reflectionId", cfg.AnalysisHandler.ForReflection)
		}
	}

	return r
}
