package analysis

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/yungbote/consciousness-backend/internal/data/repos"
	"github.com/yungbote/consciousness-backend/internal/modules/analysis/steps"
	"github.com/yungbote/consciousness-backend/internal/observability"
	"github.com/yungbote/consciousness-backend/internal/platform/ctxutil"
	"github.com/yungbote/consciousness-backend/internal/platform/llm"
	"github.com/yungbote/consciousness-backend/internal/platform/logger"
	"github.com/yungbote/consciousness-backend/internal/realtime"
	"github.com/yungbote/consciousness-backend/internal/realtime/bus"
)

type UsecasesDeps struct {
	Log *logger.Logger

	Model       llm.Model
	Profiles    repos.ProfileRepo
	Reflections repos.ReflectionRepo
	Analyses    repos.AnalysisRepo

	// Optional: analysis_ready notifications.
	Bus bus.Bus

	RecentLimit int
}

type Usecases struct {
	deps UsecasesDeps
}

func New(deps UsecasesDeps) Usecases {
	if deps.Log == nil {
		deps.Log = logger.NewNop()
	}
	deps.Log = deps.Log.With("module", "analysis")
	return Usecases{deps: deps}
}

type (
	GenerateInput  = steps.GenerateInput
	GenerateOutput = steps.GenerateOutput
)

// Generate runs one analysis and persists it. It honors ctx; the worker pool
// cancels job contexts only when a shutdown deadline passes.
func (u Usecases) Generate(ctx context.Context, in GenerateInput) (GenerateOutput, error) {
	start := time.Now()

	ctx, span := observability.Tracer("analysis").Start(ctx, "analysis.generate")
	defer span.End()

	log := u.deps.Log
	if in.Reflection != nil {
		span.SetAttributes(attribute.String("reflection.id", in.Reflection.ID.String()))
		log = log.With("reflection_id", in.Reflection.ID.String(), "user_id", in.Reflection.UserID.String())
	}
	if td := ctxutil.GetTraceData(ctx); td != nil && td.RequestID != "" {
		log = log.With("request_id", td.RequestID)
	}

	out, err := steps.Generate(ctx, steps.GenerateDeps{
		Log:         log,
		Model:       u.deps.Model,
		Profiles:    u.deps.Profiles,
		Reflections: u.deps.Reflections,
		Analyses:    u.deps.Analyses,
		RecentLimit: u.deps.RecentLimit,
	}, in)
	if err != nil {
		outcome := outcomeOf(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
		observability.Current().ObserveAnalysis(outcome, out.Mode, time.Since(start))
		log.Error("Analysis run failed", "outcome", outcome, "error", err)
		return out, err
	}

	span.SetAttributes(attribute.String("analysis.parse_mode", out.Mode))
	observability.Current().ObserveAnalysis("persisted", out.Mode, time.Since(start))
	log.Info("Analysis persisted",
		"analysis_id", out.Analysis.ID.String(),
		"parse_mode", out.Mode,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	u.publishReady(ctx, log, out)
	return out, nil
}

func (u Usecases) publishReady(ctx context.Context, log *logger.Logger, out GenerateOutput) {
	if u.deps.Bus == nil || out.Analysis == nil {
		return
	}
	a := out.Analysis
	msg := realtime.SSEMessage{
		Channel: realtime.UserChannel(a.UserID),
		Event:   realtime.SSEEventAnalysisReady,
		Data: map[string]any{
			"analysisId":   a.ID.String(),
			"reflectionId": a.ReflectionID.String(),
		},
	}
	if err := u.deps.Bus.Publish(ctx, msg); err != nil {
		log.Warn("Failed to publish analysis_ready", "error", err)
		return
	}
	observability.Current().IncPublished(string(realtime.SSEEventAnalysisReady))
}

func outcomeOf(err error) string {
	var me *llm.ModelError
	if errors.As(err, &me) {
		return "model_error"
	}
	var se *steps.StageError
	if errors.As(err, &se) {
		return string(se.Stage) + "_error"
	}
	return "error"
}
