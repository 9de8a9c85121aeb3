package http

import (
	"context"
	"errors"
	nethttp "net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/consciousness-backend/internal/platform/apierr"
	"github.com/yungbote/consciousness-backend/internal/platform/logger"
)

const shutdownTimeout = 15 * time.Second

var errRouteNotFound = apierr.NotFound("route_not_found", "Route not found")

type Server struct {
	Engine *gin.Engine
	log    *logger.Logger
}

func NewServer(cfg RouterConfig) *Server {
	log := cfg.Log
	if log == nil {
		log = logger.NewNop()
	}
	return &Server{Engine: NewRouter(cfg), log: log.With("component", "HTTPServer")}
}

// Run serves on address until ctx ends, then shuts down gracefully. Open SSE
// streams are cut once the shutdown timeout passes.
func (s *Server) Run(ctx context.Context, address string) error {
	srv := &nethttp.Server{
		Addr:              address,
		Handler:           s.Engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("Server listening", "addr", address)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, nethttp.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	s.log.Info("Shutting down server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.log.Warn("Graceful shutdown timed out; closing connections", "error", err)
		return srv.Close()
	}
	return nil
}
