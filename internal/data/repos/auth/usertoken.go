package auth

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/consciousness-backend/internal/domain"
	"github.com/yungbote/consciousness-backend/internal/pkg/dbctx"
	"github.com/yungbote/consciousness-backend/internal/platform/logger"
)

// UserTokenRepo stores one row per issued session: the access token, its
// refresh token and the refresh window's end.
type UserTokenRepo interface {
	Create(dbc dbctx.Context, userTokens []*types.UserToken) ([]*types.UserToken, error)
	GetByUserIDs(dbc dbctx.Context, userIDs []uuid.UUID) ([]*types.UserToken, error)
	GetByAccessTokens(dbc dbctx.Context, accessTokens []string) ([]*types.UserToken, error)
	GetByRefreshTokens(dbc dbctx.Context, refreshTokens []string) ([]*types.UserToken, error)
	FullDeleteByTokens(dbc dbctx.Context, userTokens []*types.UserToken) error
	FullDeleteByIDs(dbc dbctx.Context, tokenIDs []uuid.UUID) error
	DeleteExpired(dbc dbctx.Context, before time.Time) (int64, error)
}

type userTokenRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserTokenRepo(db *gorm.DB, baseLog *logger.Logger) UserTokenRepo {
	return &userTokenRepo{db: db, log: baseLog.With("repo", "UserTokenRepo")}
}

func (utr *userTokenRepo) Create(dbc dbctx.Context, userTokens []*types.UserToken) ([]*types.UserToken, error) {
	if len(userTokens) == 0 {
		return []*types.UserToken{}, nil
	}
	if err := dbc.DB(utr.db).Create(&userTokens).Error; err != nil {
		return nil, err
	}
	return userTokens, nil
}

func (utr *userTokenRepo) GetByUserIDs(dbc dbctx.Context, userIDs []uuid.UUID) ([]*types.UserToken, error) {
	return findIn(dbc.DB(utr.db), "user_id", userIDs)
}

func (utr *userTokenRepo) GetByAccessTokens(dbc dbctx.Context, accessTokens []string) ([]*types.UserToken, error) {
	return findIn(dbc.DB(utr.db), "access_token", accessTokens)
}

func (utr *userTokenRepo) GetByRefreshTokens(dbc dbctx.Context, refreshTokens []string) ([]*types.UserToken, error) {
	return findIn(dbc.DB(utr.db), "refresh_token", refreshTokens)
}

func (utr *userTokenRepo) FullDeleteByTokens(dbc dbctx.Context, userTokens []*types.UserToken) error {
	ids := make([]uuid.UUID, 0, len(userTokens))
	for _, t := range userTokens {
		if t != nil {
			ids = append(ids, t.ID)
		}
	}
	return utr.FullDeleteByIDs(dbc, ids)
}

func (utr *userTokenRepo) FullDeleteByIDs(dbc dbctx.Context, tokenIDs []uuid.UUID) error {
	if len(tokenIDs) == 0 {
		return nil
	}
	return dbc.DB(utr.db).Unscoped().Where("id IN ?", tokenIDs).Delete(&types.UserToken{}).Error
}

// DeleteExpired hard-deletes sessions whose refresh window ended before the given time.
func (utr *userTokenRepo) DeleteExpired(dbc dbctx.Context, before time.Time) (int64, error) {
	res := dbc.DB(utr.db).Unscoped().Where("expires_at < ?", before).Delete(&types.UserToken{})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func findIn[T any](db *gorm.DB, column string, values []T) ([]*types.UserToken, error) {
	out := []*types.UserToken{}
	if len(values) == 0 {
		return out, nil
	}
	if err := db.Where(column+" IN ?", values).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
