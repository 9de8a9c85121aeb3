package journal

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	types "github.com/yungbote/consciousness-backend/internal/domain"
	"github.com/yungbote/consciousness-backend/internal/pkg/dbctx"
	"github.com/yungbote/consciousness-backend/internal/platform/logger"
)

// ReflectionRepo lookups are always scoped by the owning user.
type ReflectionRepo interface {
	Create(dbc dbctx.Context, reflection *types.Reflection) (*types.Reflection, error)
	GetByUserAndDate(dbc dbctx.Context, userID uuid.UUID, day datatypes.Date) (*types.Reflection, error)
	GetByIDForUser(dbc dbctx.Context, id, userID uuid.UUID) (*types.Reflection, error)
	// ListRecent returns up to n reflections, newest date first.
	ListRecent(dbc dbctx.Context, userID uuid.UUID, n int) ([]*types.Reflection, error)
	ListByUser(dbc dbctx.Context, userID uuid.UUID, limit, offset int) ([]*types.Reflection, error)
}

type reflectionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewReflectionRepo(db *gorm.DB, baseLog *logger.Logger) ReflectionRepo {
	repoLog := baseLog.With("repo", "ReflectionRepo")
	return &reflectionRepo{db: db, log: repoLog}
}

func (rr *reflectionRepo) Create(dbc dbctx.Context, reflection *types.Reflection) (*types.Reflection, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = rr.db
	}

	if reflection.ID == uuid.Nil {
		reflection.ID = uuid.New()
	}
	if err := transaction.WithContext(dbc.Ctx).Create(reflection).Error; err != nil {
		return nil, err
	}
	return reflection, nil
}

func (rr *reflectionRepo) GetByUserAndDate(dbc dbctx.Context, userID uuid.UUID, day datatypes.Date) (*types.Reflection, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = rr.db
	}

	var reflection types.Reflection
	err := transaction.WithContext(dbc.Ctx).
		Where("user_id = ? AND reflection_date = ?", userID, day).
		Take(&reflection).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &reflection, nil
}

func (rr *reflectionRepo) GetByIDForUser(dbc dbctx.Context, id, userID uuid.UUID) (*types.Reflection, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = rr.db
	}

	var reflection types.Reflection
	err := transaction.WithContext(dbc.Ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Take(&reflection).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &reflection, nil
}

func (rr *reflectionRepo) ListRecent(dbc dbctx.Context, userID uuid.UUID, n int) ([]*types.Reflection, error) {
	return rr.ListByUser(dbc, userID, n, 0)
}

func (rr *reflectionRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID, limit, offset int) ([]*types.Reflection, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = rr.db
	}

	results := []*types.Reflection{}
	if limit <= 0 {
		return results, nil
	}

	if err := transaction.WithContext(dbc.Ctx).
		Where("user_id = ?", userID).
		Order("reflection_date DESC").
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
