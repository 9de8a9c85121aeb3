package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/consciousness-backend/internal/data/repos/auth"
	"github.com/yungbote/consciousness-backend/internal/data/repos/journal"
	"github.com/yungbote/consciousness-backend/internal/data/repos/user"
	"github.com/yungbote/consciousness-backend/internal/platform/logger"
)

type UserRepo = user.UserRepo
type UserTokenRepo = auth.UserTokenRepo

type ProfileRepo = journal.ProfileRepo
type ReflectionRepo = journal.ReflectionRepo
type AnalysisRepo = journal.AnalysisRepo

func NewUserRepo(db *gorm.DB, log *logger.Logger) UserRepo { return user.NewUserRepo(db, log) }
func NewUserTokenRepo(db *gorm.DB, log *logger.Logger) UserTokenRepo {
	return auth.NewUserTokenRepo(db, log)
}

func NewProfileRepo(db *gorm.DB, log *logger.Logger) ProfileRepo {
	return journal.NewProfileRepo(db, log)
}
func NewReflectionRepo(db *gorm.DB, log *logger.Logger) ReflectionRepo {
	return journal.NewReflectionRepo(db, log)
}
func NewAnalysisRepo(db *gorm.DB, log *logger.Logger) AnalysisRepo {
	return journal.NewAnalysisRepo(db, log)
}
