package app

import (
	httpserver "github.com/yungbote/consciousness-backend/internal/http"
	httpH "github.com/yungbote/consciousness-backend/internal/http/handlers"
	"github.com/yungbote/consciousness-backend/internal/http/middleware"
	"github.com/yungbote/consciousness-backend/internal/observability"
	"github.com/yungbote/consciousness-backend/internal/platform/logger"
	"github.com/yungbote/consciousness-backend/internal/realtime"
)

func wireServer(log *logger.Logger, cfg Config, svc Services, metrics *observability.Metrics, hub *realtime.SSEHub) *httpserver.Server {
	log.Info("Wiring HTTP server...")
	return httpserver.NewServer(httpserver.RouterConfig{
		Log:               log,
		Metrics:           metrics,
		AllowedOrigins:    cfg.AllowedOrigins,
		ServiceName:       cfg.ServiceName,
		AuthMiddleware:    middleware.NewAuthMiddleware(log, svc.Auth),
		HealthHandler:     httpH.NewHealthHandler(),
		AuthHandler:       httpH.NewAuthHandler(svc.Auth),
		ProfileHandler:    httpH.NewProfileHandler(svc.Profile),
		ReflectionHandler: httpH.NewReflectionHandler(svc.Reflection),
		AnalysisHandler:   httpH.NewAnalysisHandler(svc.Analysis),
		RealtimeHandler:   httpH.NewRealtimeHandler(log, hub),
	})
}
