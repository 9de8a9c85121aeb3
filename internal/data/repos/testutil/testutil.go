// Package testutil opens the shared Postgres used by repo integration tests.
// Tests skip unless TEST_POSTGRES_DSN is set.
package testutil

import (
	"errors"
	"os"
	"sync"
	"testing"

	"gorm.io/gorm"

	appdb "github.com/yungbote/consciousness-backend/internal/data/db"
	"github.com/yungbote/consciousness-backend/internal/platform/logger"
)

var errMissingDSN = errors.New("missing TEST_POSTGRES_DSN")

var (
	setupOnce sync.Once
	shared    *gorm.DB
	setupErr  error
)

func Logger(tb testing.TB) *logger.Logger {
	tb.Helper()
	log, err := logger.New("test")
	if err != nil {
		tb.Fatalf("init logger: %v", err)
	}
	return log
}

// DB connects and migrates once per test binary.
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()
	setupOnce.Do(func() {
		dsn := os.Getenv("TEST_POSTGRES_DSN")
		if dsn == "" {
			setupErr = errMissingDSN
			return
		}
		pg, err := appdb.NewPostgresService(logger.NewNop(), dsn)
		if err != nil {
			setupErr = err
			return
		}
		shared = pg.DB()
		setupErr = appdb.Migrate(shared)
	})
	if errors.Is(setupErr, errMissingDSN) {
		tb.Skip("set TEST_POSTGRES_DSN to run repo integration tests")
	}
	if setupErr != nil {
		tb.Fatalf("init test db: %v", setupErr)
	}
	return shared
}

// Tx opens a transaction that is rolled back when the test ends.
func Tx(tb testing.TB, db *gorm.DB) *gorm.DB {
	tb.Helper()
	tx := db.Begin()
	if tx.Error != nil {
		tb.Fatalf("begin tx: %v", tx.Error)
	}
	tb.Cleanup(func() { _ = tx.Rollback().Error })
	return tx
}
