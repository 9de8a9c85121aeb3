package user

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/consciousness-backend/internal/domain"
	"github.com/yungbote/consciousness-backend/internal/pkg/dbctx"
	"github.com/yungbote/consciousness-backend/internal/platform/logger"
)

type UserRepo interface {
	Create(dbc dbctx.Context, users []*types.User) ([]*types.User, error)
	GetByIDs(dbc dbctx.Context, userIDs []uuid.UUID) ([]*types.User, error)
	GetByEmails(dbc dbctx.Context, userEmails []string) ([]*types.User, error)
	EmailExists(dbc dbctx.Context, userEmail string) (bool, error)
}

type userRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo {
	return &userRepo{db: db, log: baseLog.With("repo", "UserRepo")}
}

func (ur *userRepo) Create(dbc dbctx.Context, users []*types.User) ([]*types.User, error) {
	if len(users) == 0 {
		return []*types.User{}, nil
	}
	if err := dbc.DB(ur.db).Create(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (ur *userRepo) GetByIDs(dbc dbctx.Context, userIDs []uuid.UUID) ([]*types.User, error) {
	out := []*types.User{}
	if len(userIDs) == 0 {
		return out, nil
	}
	if err := dbc.DB(ur.db).Where("id IN ?", userIDs).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// GetByEmails matches exactly; callers normalize addresses before lookup.
func (ur *userRepo) GetByEmails(dbc dbctx.Context, userEmails []string) ([]*types.User, error) {
	out := []*types.User{}
	if len(userEmails) == 0 {
		return out, nil
	}
	if err := dbc.DB(ur.db).Where("email IN ?", userEmails).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (ur *userRepo) EmailExists(dbc dbctx.Context, userEmail string) (bool, error) {
	var count int64
	err := dbc.DB(ur.db).Model(&types.User{}).Where("email = ?", userEmail).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
