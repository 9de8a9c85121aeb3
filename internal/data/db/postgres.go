package db

import (
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/yungbote/consciousness-backend/internal/platform/envutil"
	"github.com/yungbote/consciousness-backend/internal/platform/logger"
)

type PostgresService struct {
	db  *gorm.DB
	log *logger.Logger
}

// DSNFromEnv prefers POSTGRES_DSN and otherwise assembles one from POSTGRES_*.
func DSNFromEnv(logg *logger.Logger) string {
	if dsn := envutil.String("POSTGRES_DSN", "", nil); dsn != "" {
		return dsn
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		envutil.String("POSTGRES_USER", "postgres", logg),
		envutil.String("POSTGRES_PASSWORD", "", logg),
		envutil.String("POSTGRES_HOST", "localhost", logg),
		envutil.String("POSTGRES_PORT", "5432", logg),
		envutil.String("POSTGRES_NAME", "consciousness", logg),
		envutil.String("POSTGRES_SSLMODE", "disable", nil),
	)
}

func NewPostgresService(logg *logger.Logger, dsn string) (*PostgresService, error) {
	serviceLog := logg.With("service", "PostgresService")

	gormLog := gormLogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormLogger.Config{
			SlowThreshold:             1 * time.Second,
			LogLevel:                  gormLogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormLog,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Postgres: %w", err)
	}

	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`).Error; err != nil {
		return nil, fmt.Errorf("failed to enable uuid-ossp extension: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(envutil.Int("POSTGRES_MAX_OPEN_CONNS", 20))
	sqlDB.SetMaxIdleConns(envutil.Int("POSTGRES_MAX_IDLE_CONNS", 5))
	sqlDB.SetConnMaxLifetime(envutil.Seconds("POSTGRES_CONN_MAX_LIFETIME_SECONDS", 30*time.Minute))

	serviceLog.Info("connected to postgres")
	return &PostgresService{db: db, log: serviceLog}, nil
}

func (s *PostgresService) DB() *gorm.DB { return s.db }

func (s *PostgresService) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
