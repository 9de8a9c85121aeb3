package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/yungbote/consciousness-backend/internal/data/repos"
	types "github.com/yungbote/consciousness-backend/internal/domain"
	"github.com/yungbote/consciousness-backend/internal/domain/journal"
	"github.com/yungbote/consciousness-backend/internal/pkg/dbctx"
	"github.com/yungbote/consciousness-backend/internal/platform/apierr"
	"github.com/yungbote/consciousness-backend/internal/platform/logger"
)

// AnalysisService is read-only; analyses are written by the background
// analysis module.
type AnalysisService interface {
	// Latest returns (nil, nil) while no analysis exists yet.
	Latest(ctx context.Context) (*types.AnalysisView, error)
	List(ctx context.Context, limit, offset int) ([]*types.AnalysisView, error)
	ForReflection(ctx context.Context, reflectionID uuid.UUID) (*types.Analysis, error)
}

type analysisService struct {
	log            *logger.Logger
	analysisRepo   repos.AnalysisRepo
	reflectionRepo repos.ReflectionRepo
}

func NewAnalysisService(log *logger.Logger, analysisRepo repos.AnalysisRepo, reflectionRepo repos.ReflectionRepo) AnalysisService {
	return &analysisService{
		log:            log.With("service", "AnalysisService"),
		analysisRepo:   analysisRepo,
		reflectionRepo: reflectionRepo,
	}
}

func (as *analysisService) Latest(ctx context.Context) (*types.AnalysisView, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	a, err := as.analysisRepo.GetLatestByUser(dbctx.Context{Ctx: ctx}, userID)
	if err != nil {
		return nil, fmt.Errorf("load latest analysis: %w", err)
	}
	return journal.NewAnalysisView(a), nil
}

func (as *analysisService) List(ctx context.Context, limit, offset int) ([]*types.AnalysisView, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	limit, offset, err = normalizePage(limit, offset)
	if err != nil {
		return nil, err
	}
	rows, err := as.analysisRepo.ListByUser(dbctx.Context{Ctx: ctx}, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list analyses: %w", err)
	}
	out := make([]*types.AnalysisView, 0, len(rows))
	for _, a := range rows {
		out = append(out, journal.NewAnalysisView(a))
	}
	return out, nil
}

// ForReflection distinguishes an unknown reflection from one whose analysis
// has not been written yet.
func (as *analysisService) ForReflection(ctx context.Context, reflectionID uuid.UUID) (*types.Analysis, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	dbc := dbctx.Context{Ctx: ctx}
	r, err := as.reflectionRepo.GetByIDForUser(dbc, reflectionID, userID)
	if err != nil {
		return nil, fmt.Errorf("load reflection: %w", err)
	}
	if r == nil {
		return nil, reflectionNotFound()
	}
	a, err := as.analysisRepo.GetByReflectionForUser(dbc, reflectionID, userID)
	if err != nil {
		return nil, fmt.Errorf("load analysis: %w", err)
	}
	if a == nil {
		return nil, apierr.NotFound("analysis_not_found", "Analysis not found for this reflection")
	}
	return a, nil
}
