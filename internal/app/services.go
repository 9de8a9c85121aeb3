package app

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/consciousness-backend/internal/jobs/worker"
	"github.com/yungbote/consciousness-backend/internal/modules/analysis"
	"github.com/yungbote/consciousness-backend/internal/platform/logger"
	"github.com/yungbote/consciousness-backend/internal/services"
)

type Services struct {
	Auth       services.AuthService
	Profile    services.ProfileService
	Reflection services.ReflectionService
	Analysis   services.AnalysisService

	Workers *worker.Pool
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, reposet Repos, clients Clients) (Services, error) {
	log.Info("Wiring services...")

	analyzer := analysis.New(analysis.UsecasesDeps{
		Log:         log,
		Model:       clients.Model,
		Profiles:    reposet.Profile,
		Reflections: reposet.Reflection,
		Analyses:    reposet.Analysis,
		Bus:         clients.Bus,
		RecentLimit: cfg.RecentReflections,
	})

	registry := worker.NewRegistry()
	if err := registry.Register(analysis.NewHandler(analyzer)); err != nil {
		return Services{}, fmt.Errorf("register analysis handler: %w", err)
	}
	pool := worker.NewPool(log, registry, worker.Config{
		Concurrency: cfg.WorkerConcurrency,
		QueueSize:   cfg.WorkerQueueSize,
	})

	return Services{
		Auth: services.NewAuthService(
			db,
			log,
			reposet.User,
			reposet.UserToken,
			cfg.JWTSecretKey,
			cfg.AccessTokenTTL,
			cfg.RefreshTokenTTL,
		),
		Profile: services.NewProfileService(log, reposet.Profile),
		Reflection: services.NewReflectionService(
			log,
			reposet.Reflection,
			analysis.NewTrigger(log, pool),
			cfg.ReflectionLocation,
		),
		Analysis: services.NewAnalysisService(log, reposet.Analysis, reposet.Reflection),
		Workers:  pool,
	}, nil
}
