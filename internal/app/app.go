package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/consciousness-backend/internal/data/db"
	httpserver "github.com/yungbote/consciousness-backend/internal/http"
	"github.com/yungbote/consciousness-backend/internal/jobs/worker"
	"github.com/yungbote/consciousness-backend/internal/observability"
	"github.com/yungbote/consciousness-backend/internal/platform/logger"
	"github.com/yungbote/consciousness-backend/internal/realtime"
)

// drainTimeout bounds how long in-flight analyses may keep running after a
// shutdown signal.
const drainTimeout = 30 * time.Second

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Cfg      Config
	Repos    Repos
	Clients  Clients
	Services Services
	SSEHub   *realtime.SSEHub
	Metrics  *observability.Metrics
	Server   *httpserver.Server

	pg           *db.PostgresService
	otelShutdown func(context.Context) error
}

func New(ctx context.Context) (*App, error) {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading environment variables...")
	cfg, err := LoadConfig(log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("load config: %w", err)
	}

	otelShutdown := observability.InitOTel(ctx, log, observability.OtelConfig{
		ServiceName: cfg.ServiceName,
		Environment: cfg.Environment,
		Version:     cfg.Version,
	})
	metrics := observability.Init(log)

	pg, err := db.NewPostgresService(log, cfg.PostgresDSN)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init postgres: %w", err)
	}
	if err := db.Migrate(pg.DB()); err != nil {
		_ = pg.Close()
		log.Sync()
		return nil, fmt.Errorf("postgres migrate: %w", err)
	}
	theDB := pg.DB()

	reposet := wireRepos(theDB, log)

	clients, err := wireClients(ctx, log, cfg)
	if err != nil {
		_ = pg.Close()
		log.Sync()
		return nil, err
	}

	serviceset, err := wireServices(theDB, log, cfg, reposet, clients)
	if err != nil {
		_ = clients.Close()
		_ = pg.Close()
		log.Sync()
		return nil, err
	}

	hub := realtime.NewSSEHub(log)

	return &App{
		Log:          log,
		DB:           theDB,
		Cfg:          cfg,
		Repos:        reposet,
		Clients:      clients,
		Services:     serviceset,
		SSEHub:       hub,
		Metrics:      metrics,
		Server:       wireServer(log, cfg, serviceset, metrics, hub),
		pg:           pg,
		otelShutdown: otelShutdown,
	}, nil
}

// Run serves HTTP and runs background analyses until ctx ends. After the
// server stops, queued analyses get drainTimeout to finish.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}

	a.Services.Workers.Start(ctx)

	if err := a.Clients.Bus.StartForwarder(ctx, a.SSEHub.Broadcast); err != nil {
		a.Log.Warn("Event forwarder not started; streams will stay silent", "error", err)
	}
	a.Metrics.StartPostgresCollector(ctx, a.Log, a.DB)
	if a.Clients.Redis != nil {
		a.Metrics.StartRedisCollector(ctx, a.Log, a.Clients.Redis)
	}

	return serveThenDrain(ctx, func(ctx context.Context) error {
		return a.Server.Run(ctx, a.Cfg.Address())
	}, a.Services.Workers, drainTimeout)
}

// serveThenDrain closes the pool only after serve returns, so requests still
// in flight during shutdown can enqueue their analyses.
func serveThenDrain(ctx context.Context, serve func(context.Context) error, pool *worker.Pool, timeout time.Duration) error {
	serveErr := serve(ctx)

	drainCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()
	if err := pool.Close(drainCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return errors.Join(serveErr, fmt.Errorf("drain workers: %w", err))
	}
	return serveErr
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.otelShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := a.otelShutdown(ctx); err != nil {
			a.Log.Warn("otel shutdown failed", "error", err)
		}
		cancel()
	}
	if err := a.Clients.Close(); err != nil {
		a.Log.Warn("event bus close failed", "error", err)
	}
	if a.pg != nil {
		if err := a.pg.Close(); err != nil {
			a.Log.Warn("postgres close failed", "error", err)
		}
	}
	a.Log.Sync()
}
