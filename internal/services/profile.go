package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/yungbote/consciousness-backend/internal/data/repos"
	types "github.com/yungbote/consciousness-backend/internal/domain"
	"github.com/yungbote/consciousness-backend/internal/pkg/dbctx"
	"github.com/yungbote/consciousness-backend/internal/platform/apierr"
	"github.com/yungbote/consciousness-backend/internal/platform/ctxutil"
	"github.com/yungbote/consciousness-backend/internal/platform/logger"
)

type ProfileInput struct {
	SelfIntroduction string `json:"selfIntroduction"`
	GoodQualities    string `json:"goodQualities"`
	BadQualities     string `json:"badQualities"`
	LifeGoals        string `json:"lifeGoals"`
	Challenges       string `json:"challenges"`
	AdditionalInfo   string `json:"additionalInfo"`
}

type ProfileService interface {
	// SaveProfile creates the caller's profile or replaces its fields.
	SaveProfile(ctx context.Context, in ProfileInput) (*types.Profile, error)
	// GetProfile returns (nil, nil) when the caller has no profile yet.
	GetProfile(ctx context.Context) (*types.Profile, error)
}

type profileService struct {
	log         *logger.Logger
	profileRepo repos.ProfileRepo
}

func NewProfileService(log *logger.Logger, profileRepo repos.ProfileRepo) ProfileService {
	return &profileService{
		log:         log.With("service", "ProfileService"),
		profileRepo: profileRepo,
	}
}

func (ps *profileService) SaveProfile(ctx context.Context, in ProfileInput) (*types.Profile, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	in = in.trimmed()
	if err := in.validate(); err != nil {
		return nil, err
	}

	saved, err := ps.profileRepo.Upsert(dbctx.Context{Ctx: ctx}, &types.Profile{
		UserID:           userID,
		SelfIntroduction: in.SelfIntroduction,
		GoodQualities:    in.GoodQualities,
		BadQualities:     in.BadQualities,
		LifeGoals:        in.LifeGoals,
		Challenges:       in.Challenges,
		AdditionalInfo:   in.AdditionalInfo,
	})
	if err != nil {
		return nil, fmt.Errorf("save profile: %w", err)
	}
	return saved, nil
}

func (ps *profileService) GetProfile(ctx context.Context) (*types.Profile, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	p, err := ps.profileRepo.GetByUserID(dbctx.Context{Ctx: ctx}, userID)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	return p, nil
}

func (in ProfileInput) trimmed() ProfileInput {
	return ProfileInput{
		SelfIntroduction: strings.TrimSpace(in.SelfIntroduction),
		GoodQualities:    strings.TrimSpace(in.GoodQualities),
		BadQualities:     strings.TrimSpace(in.BadQualities),
		LifeGoals:        strings.TrimSpace(in.LifeGoals),
		Challenges:       strings.TrimSpace(in.Challenges),
		AdditionalInfo:   strings.TrimSpace(in.AdditionalInfo),
	}
}

func (in ProfileInput) validate() error {
	switch {
	case in.SelfIntroduction == "":
		return apierr.Validation("Self introduction is required")
	case in.GoodQualities == "":
		return apierr.Validation("Good qualities are required")
	case in.BadQualities == "":
		return apierr.Validation("Bad qualities are required")
	case in.LifeGoals == "":
		return apierr.Validation("Life goals are required")
	case in.Challenges == "":
		return apierr.Validation("Challenges are required")
	}
	return nil
}

func requireUser(ctx context.Context) (uuid.UUID, error) {
	userID := ctxutil.UserID(ctx)
	if userID == uuid.Nil {
		return uuid.Nil, apierr.Unauthorized("unauthorized", "Not authenticated")
	}
	return userID, nil
}
