package steps

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"

	"github.com/yungbote/consciousness-backend/internal/data/repos"
	types "github.com/yungbote/consciousness-backend/internal/domain"
	"github.com/yungbote/consciousness-backend/internal/pkg/dbctx"
	"github.com/yungbote/consciousness-backend/internal/platform/llm"
	"github.com/yungbote/consciousness-backend/internal/platform/logger"
)

const DefaultRecentLimit = 8

type GenerateDeps struct {
	Log         *logger.Logger
	Model       llm.Model
	Profiles    repos.ProfileRepo
	Reflections repos.ReflectionRepo
	Analyses    repos.AnalysisRepo
	RecentLimit int
}

type GenerateInput struct {
	Reflection *types.Reflection
}

type GenerateOutput struct {
	Analysis *types.Analysis
	Mode     string
}

// Stage names the step a failed run stopped in.
type Stage string

const (
	StageGathering  Stage = "gathering"
	StageGenerating Stage = "generating"
	StagePersisting Stage = "persisting"
)

type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string { return fmt.Sprintf("analysis %s: %v", e.Stage, e.Err) }
func (e *StageError) Unwrap() error { return e.Err }

// Generate turns one stored reflection into one stored analysis. Nothing is
// written unless the model call succeeds.
func Generate(ctx context.Context, deps GenerateDeps, in GenerateInput) (GenerateOutput, error) {
	out := GenerateOutput{}
	if deps.Model == nil || deps.Profiles == nil || deps.Reflections == nil || deps.Analyses == nil {
		return out, fmt.Errorf("analysis generate: missing deps")
	}
	cur := in.Reflection
	if cur == nil {
		return out, fmt.Errorf("analysis generate: missing reflection")
	}
	limit := deps.RecentLimit
	if limit <= 0 {
		limit = DefaultRecentLimit
	}

	// ---- gathering ----
	var (
		profile *types.Profile
		recent  []*types.Reflection
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := deps.Profiles.GetByUserID(dbctx.Context{Ctx: gctx}, cur.UserID)
		if err != nil {
			return fmt.Errorf("load profile: %w", err)
		}
		profile = p
		return nil
	})
	g.Go(func() error {
		rows, err := deps.Reflections.ListRecent(dbctx.Context{Ctx: gctx}, cur.UserID, limit)
		if err != nil {
			return fmt.Errorf("load recent reflections: %w", err)
		}
		recent = rows
		return nil
	})
	if err := g.Wait(); err != nil {
		return out, &StageError{Stage: StageGathering, Err: err}
	}
	recent = CurrentFirst(cur, recent, limit)

	// ---- generating ----
	prompt := BuildPrompt(profile, cur, recent)
	raw, err := deps.Model.Generate(ctx, prompt)
	if err != nil {
		return out, &StageError{Stage: StageGenerating, Err: err}
	}

	// ---- parsing ----
	sections := ParseResponse(raw)
	out.Mode = sections.Mode
	if sections.Mode != types.ParseModeStructured && deps.Log != nil {
		deps.Log.Warn("Model output missing section markers",
			"reflection_id", cur.ID,
			"parse_mode", sections.Mode,
		)
	}

	// ---- persisting ----
	info := deps.Model.Info()
	row := &types.Analysis{
		UserID:              cur.UserID,
		ReflectionID:        cur.ID,
		AnalysisText:        sections.Analysis,
		Recommendations:     sections.Recommendations,
		MotivationalMessage: sections.MotivationalMessage,
		Meta: datatypes.JSONMap{
			"provider":   info.Provider,
			"model":      info.Model,
			"parse_mode": sections.Mode,
		},
	}
	created, err := deps.Analyses.Create(dbctx.Context{Ctx: ctx}, row)
	if err != nil {
		return out, &StageError{Stage: StagePersisting, Err: err}
	}
	out.Analysis = created
	return out, nil
}

// CurrentFirst returns recent with cur at index 0, without duplicates of cur,
// capped at limit entries.
func CurrentFirst(cur *types.Reflection, recent []*types.Reflection, limit int) []*types.Reflection {
	if len(recent) > 0 && recent[0] != nil && recent[0].ID == cur.ID {
		if limit > 0 && len(recent) > limit {
			return recent[:limit]
		}
		return recent
	}
	out := make([]*types.Reflection, 0, len(recent)+1)
	out = append(out, cur)
	for _, r := range recent {
		if r == nil || r.ID == cur.ID {
			continue
		}
		out = append(out, r)
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
