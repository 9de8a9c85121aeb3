package analysis

import (
	"context"
	"fmt"

	types "github.com/yungbote/consciousness-backend/internal/domain"
	"github.com/yungbote/consciousness-backend/internal/jobs/worker"
	"github.com/yungbote/consciousness-backend/internal/platform/ctxutil"
	"github.com/yungbote/consciousness-backend/internal/platform/logger"
)

const JobTypeGenerate = "analysis_generate"

type generateJob struct {
	Reflection *types.Reflection
	RequestID  string
}

// Handler adapts Usecases to the worker pool. Job contexts are already
// detached from the submitting request.
type Handler struct {
	uc Usecases
}

func NewHandler(uc Usecases) *Handler { return &Handler{uc: uc} }

func (h *Handler) Type() string { return JobTypeGenerate }

func (h *Handler) Run(ctx context.Context, payload any) error {
	job, ok := payload.(generateJob)
	if !ok {
		return fmt.Errorf("%s: unexpected payload %T", JobTypeGenerate, payload)
	}
	if job.RequestID != "" {
		ctx = ctxutil.WithTraceData(ctx, &ctxutil.TraceData{RequestID: job.RequestID})
	}
	_, err := h.uc.Generate(ctx, GenerateInput{Reflection: job.Reflection})
	return err
}

type Submitter interface {
	Submit(job worker.Job) error
}

// Trigger hands freshly stored reflections to the background pool. It never
// blocks and never reports failure to the caller.
type Trigger struct {
	log  *logger.Logger
	jobs Submitter
}

func NewTrigger(log *logger.Logger, jobs Submitter) *Trigger {
	return &Trigger{log: log.With("component", "AnalysisTrigger"), jobs: jobs}
}

func (t *Trigger) TriggerAnalysis(ctx context.Context, reflection *types.Reflection) {
	if t == nil || t.jobs == nil || reflection == nil {
		return
	}
	job := generateJob{Reflection: reflection}
	if td := ctxutil.GetTraceData(ctx); td != nil {
		job.RequestID = td.RequestID
	}
	if err := t.jobs.Submit(worker.Job{Type: JobTypeGenerate, Payload: job}); err != nil {
		t.log.Warn("Analysis not scheduled", "reflection_id", reflection.ID.String(), "error", err)
	}
}
