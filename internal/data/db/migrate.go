package db

import (
	"fmt"

	"gorm.io/gorm"

	types "github.com/yungbote/consciousness-backend/internal/domain"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		// identity + auth
		&types.User{},
		&types.UserToken{},

		// journal
		&types.Profile{},
		&types.Reflection{},
		&types.Analysis{},
	)
}

// EnsureJournalIndexes adds indexes gorm tags cannot express.
func EnsureJournalIndexes(db *gorm.DB) error {
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`).Error; err != nil {
		return fmt.Errorf("enable uuid-ossp: %w", err)
	}
	if err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_user_token_expires_at ON user_token(expires_at);`).Error; err != nil {
		return fmt.Errorf("create idx_user_token_expires_at: %w", err)
	}
	if err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_daily_reflection_user_created ON daily_reflection(user_id, created_at DESC);`).Error; err != nil {
		return fmt.Errorf("create idx_daily_reflection_user_created: %w", err)
	}
	if err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_ai_analysis_meta_parse_mode ON ai_analysis((meta->>'parse_mode'));`).Error; err != nil {
		return fmt.Errorf("create idx_ai_analysis_meta_parse_mode: %w", err)
	}
	return nil
}

func Migrate(db *gorm.DB) error {
	if err := AutoMigrateAll(db); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return EnsureJournalIndexes(db)
}
