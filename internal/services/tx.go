package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/yungbote/consciousness-backend/internal/pkg/dbctx"
)

// inTx runs fn inside a database transaction. Without a database handle (unit
// tests over in-memory repos) fn runs directly.
func inTx(ctx context.Context, db *gorm.DB, fn func(dbc dbctx.Context) error) error {
	if db == nil {
		return fn(dbctx.Context{Ctx: ctx})
	}
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(dbctx.Context{Ctx: ctx, Tx: tx})
	})
}
