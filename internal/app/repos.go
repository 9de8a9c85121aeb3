package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/consciousness-backend/internal/data/repos"
	"github.com/yungbote/consciousness-backend/internal/platform/logger"
)

type Repos struct {
	User       repos.UserRepo
	UserToken  repos.UserTokenRepo
	Profile    repos.ProfileRepo
	Reflection repos.ReflectionRepo
	Analysis   repos.AnalysisRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:       repos.NewUserRepo(db, log),
		UserToken:  repos.NewUserTokenRepo(db, log),
		Profile:    repos.NewProfileRepo(db, log),
		Reflection: repos.NewReflectionRepo(db, log),
		Analysis:   repos.NewAnalysisRepo(db, log),
	}
}
