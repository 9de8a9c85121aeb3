package journal

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/consciousness-backend/internal/domain"
	"github.com/yungbote/consciousness-backend/internal/pkg/dbctx"
	"github.com/yungbote/consciousness-backend/internal/platform/logger"
)

// AnalysisRepo lookups are always scoped by the owning user. Reads preload the
// owning reflection.
type AnalysisRepo interface {
	Create(dbc dbctx.Context, analysis *types.Analysis) (*types.Analysis, error)
	GetLatestByUser(dbc dbctx.Context, userID uuid.UUID) (*types.Analysis, error)
	GetByReflectionForUser(dbc dbctx.Context, reflectionID, userID uuid.UUID) (*types.Analysis, error)
	ListByUser(dbc dbctx.Context, userID uuid.UUID, limit, offset int) ([]*types.Analysis, error)
}

type analysisRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAnalysisRepo(db *gorm.DB, baseLog *logger.Logger) AnalysisRepo {
	repoLog := baseLog.With("repo", "AnalysisRepo")
	return &analysisRepo{db: db, log: repoLog}
}

func (ar *analysisRepo) Create(dbc dbctx.Context, analysis *types.Analysis) (*types.Analysis, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = ar.db
	}

	if analysis.ID == uuid.Nil {
		analysis.ID = uuid.New()
	}
	if err := transaction.WithContext(dbc.Ctx).
		Omit("User", "Reflection").
		Create(analysis).Error; err != nil {
		return nil, err
	}
	return analysis, nil
}

func (ar *analysisRepo) GetLatestByUser(dbc dbctx.Context, userID uuid.UUID) (*types.Analysis, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = ar.db
	}

	var analysis types.Analysis
	err := transaction.WithContext(dbc.Ctx).
		Preload("Reflection").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Take(&analysis).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &analysis, nil
}

// GetByReflectionForUser returns the newest analysis of the reflection when
// more than one run wrote a row.
func (ar *analysisRepo) GetByReflectionForUser(dbc dbctx.Context, reflectionID, userID uuid.UUID) (*types.Analysis, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = ar.db
	}

	var analysis types.Analysis
	err := transaction.WithContext(dbc.Ctx).
		Preload("Reflection").
		Where("reflection_id = ? AND user_id = ?", reflectionID, userID).
		Order("created_at DESC").
		Take(&analysis).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &analysis, nil
}

func (ar *analysisRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID, limit, offset int) ([]*types.Analysis, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = ar.db
	}

	results := []*types.Analysis{}
	if limit <= 0 {
		return results, nil
	}

	if err := transaction.WithContext(dbc.Ctx).
		Preload("Reflection").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
