package domain

import (
	"github.com/yungbote/consciousness-backend/internal/domain/auth"
	"github.com/yungbote/consciousness-backend/internal/domain/journal"
	"github.com/yungbote/consciousness-backend/internal/domain/user"
)

type (
	User      = user.User
	UserToken = auth.UserToken

	Profile      = journal.Profile
	Reflection   = journal.Reflection
	Analysis     = journal.Analysis
	AnalysisView = journal.AnalysisView
)

const (
	ParseModeStructured = journal.ParseModeStructured
	ParseModePartial    = journal.ParseModePartial
	ParseModeFallback   = journal.ParseModeFallback
)
