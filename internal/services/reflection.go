package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/consciousness-backend/internal/data/repos"
	types "github.com/yungbote/consciousness-backend/internal/domain"
	"github.com/yungbote/consciousness-backend/internal/domain/journal"
	"github.com/yungbote/consciousness-backend/internal/observability"
	"github.com/yungbote/consciousness-backend/internal/pkg/dbctx"
	"github.com/yungbote/consciousness-backend/internal/platform/apierr"
	"github.com/yungbote/consciousness-backend/internal/platform/logger"
)

const (
	DefaultPageLimit = 30
	MaxPageLimit     = 100
)

// AnalysisTrigger schedules background analysis of a stored reflection. It
// must not block and has no way to report failure.
type AnalysisTrigger interface {
	TriggerAnalysis(ctx context.Context, reflection *types.Reflection)
}

type ReflectionInput struct {
	DaySummary           string `json:"daySummary"`
	SocialMediaTime      string `json:"socialMediaTime"`
	TruthfulnessKindness string `json:"truthfulnessKindness"`
	ConsciousActions     string `json:"consciousActions"`
	OverthinkingStress   string `json:"overthinkingStress"`
	GratitudeExpression  string `json:"gratitudeExpression"`
	ProudMoment          string `json:"proudMoment"`
}

// TodayStatus answers whether the caller already reflected today.
type TodayStatus struct {
	Exists       bool       `json:"exists"`
	ReflectionID *uuid.UUID `json:"reflectionId"`
}

type ReflectionService interface {
	// CreateReflection stores today's reflection and schedules its analysis.
	// It returns once the row is committed.
	CreateReflection(ctx context.Context, in ReflectionInput) (*types.Reflection, error)
	ListReflections(ctx context.Context, limit, offset int) ([]*types.Reflection, error)
	GetReflection(ctx context.Context, id uuid.UUID) (*types.Reflection, error)
	Today(ctx context.Context) (*TodayStatus, error)
}

type reflectionService struct {
	log            *logger.Logger
	reflectionRepo repos.ReflectionRepo
	trigger        AnalysisTrigger
	loc            *time.Location
	now            func() time.Time
}

// NewReflectionService counts calendar days in loc (UTC when nil).
func NewReflectionService(log *logger.Logger, reflectionRepo repos.ReflectionRepo, trigger AnalysisTrigger, loc *time.Location) ReflectionService {
	if loc == nil {
		loc = time.UTC
	}
	return &reflectionService{
		log:            log.With("service", "ReflectionService"),
		reflectionRepo: reflectionRepo,
		trigger:        trigger,
		loc:            loc,
		now:            time.Now,
	}
}

func (rs *reflectionService) CreateReflection(ctx context.Context, in ReflectionInput) (*types.Reflection, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	in = in.trimmed()
	if err := in.validate(); err != nil {
		observability.Current().IncReflection("invalid")
		return nil, err
	}

	dbc := dbctx.Context{Ctx: ctx}
	day := journal.DayOf(rs.now(), rs.loc)

	existing, err := rs.reflectionRepo.GetByUserAndDate(dbc, userID, day)
	if err != nil {
		return nil, fmt.Errorf("check today's reflection: %w", err)
	}
	if existing != nil {
		observability.Current().IncReflection("conflict")
		return nil, alreadyReflected()
	}

	created, err := rs.reflectionRepo.Create(dbc, &types.Reflection{
		UserID:               userID,
		ReflectionDate:       day,
		DaySummary:           in.DaySummary,
		SocialMediaTime:      in.SocialMediaTime,
		TruthfulnessKindness: in.TruthfulnessKindness,
		ConsciousActions:     in.ConsciousActions,
		OverthinkingStress:   in.OverthinkingStress,
		GratitudeExpression:  in.GratitudeExpression,
		ProudMoment:          in.ProudMoment,
	})
	if err != nil {
		// a concurrent submission won the race past the check above
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			observability.Current().IncReflection("conflict")
			return nil, alreadyReflected()
		}
		return nil, fmt.Errorf("create reflection: %w", err)
	}
	observability.Current().IncReflection("created")
	rs.log.Info("Reflection created", "user_id", userID.String(), "reflection_id", created.ID.String(), "date", created.Day())

	if rs.trigger != nil {
		rs.trigger.TriggerAnalysis(ctx, created)
	}
	return created, nil
}

func (rs *reflectionService) ListReflections(ctx context.Context, limit, offset int) ([]*types.Reflection, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	limit, offset, err = normalizePage(limit, offset)
	if err != nil {
		return nil, err
	}
	out, err := rs.reflectionRepo.ListByUser(dbctx.Context{Ctx: ctx}, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list reflections: %w", err)
	}
	return out, nil
}

func (rs *reflectionService) GetReflection(ctx context.Context, id uuid.UUID) (*types.Reflection, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	r, err := rs.reflectionRepo.GetByIDForUser(dbctx.Context{Ctx: ctx}, id, userID)
	if err != nil {
		return nil, fmt.Errorf("load reflection: %w", err)
	}
	if r == nil {
		return nil, reflectionNotFound()
	}
	return r, nil
}

func (rs *reflectionService) Today(ctx context.Context) (*TodayStatus, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	r, err := rs.reflectionRepo.GetByUserAndDate(dbctx.Context{Ctx: ctx}, userID, journal.DayOf(rs.now(), rs.loc))
	if err != nil {
		return nil, fmt.Errorf("check today's reflection: %w", err)
	}
	if r == nil {
		return &TodayStatus{}, nil
	}
	id := r.ID
	return &TodayStatus{Exists: true, ReflectionID: &id}, nil
}

func (in ReflectionInput) trimmed() ReflectionInput {
	return ReflectionInput{
		DaySummary:           strings.TrimSpace(in.DaySummary),
		SocialMediaTime:      strings.TrimSpace(in.SocialMediaTime),
		TruthfulnessKindness: strings.TrimSpace(in.TruthfulnessKindness),
		ConsciousActions:     strings.TrimSpace(in.ConsciousActions),
		OverthinkingStress:   strings.TrimSpace(in.OverthinkingStress),
		GratitudeExpression:  strings.TrimSpace(in.GratitudeExpression),
		ProudMoment:          strings.TrimSpace(in.ProudMoment),
	}
}

func (in ReflectionInput) validate() error {
	switch {
	case in.DaySummary == "":
		return apierr.Validation("Day summary is required")
	case in.SocialMediaTime == "":
		return apierr.Validation("Social media time is required")
	case in.TruthfulnessKindness == "":
		return apierr.Validation("Truthfulness and kindness response is required")
	case in.ConsciousActions == "":
		return apierr.Validation("Conscious actions response is required")
	case in.OverthinkingStress == "":
		return apierr.Validation("Overthinking/stress response is required")
	case in.GratitudeExpression == "":
		return apierr.Validation("Gratitude expression is required")
	case in.ProudMoment == "":
		return apierr.Validation("Proud moment is required")
	}
	return nil
}

func alreadyReflected() error {
	return apierr.Conflict("reflection_exists", "You have already submitted a reflection for today")
}

func reflectionNotFound() error {
	return apierr.NotFound("reflection_not_found", "Reflection not found")
}

func normalizePage(limit, offset int) (int, int, error) {
	if limit == 0 {
		limit = DefaultPageLimit
	}
	if limit < 0 || offset < 0 {
		return 0, 0, apierr.Validation("limit and offset must not be negative")
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	return limit, offset, nil
}
