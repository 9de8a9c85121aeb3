package pollclient

import (
	"context"
	"time"

	"github.com/google/uuid"

	types "github.com/yungbote/consciousness-backend/internal/domain"
	"github.com/yungbote/consciousness-backend/internal/platform/httpx"
	"github.com/yungbote/consciousness-backend/internal/platform/logger"
)

const (
	DefaultInitialDelay = 2 * time.Second
	DefaultInterval     = 3 * time.Second
	DefaultMaxAttempts  = 10
)

// LatestFetcher returns the caller's most recent analysis, or nil while none
// exists.
type LatestFetcher interface {
	Latest(ctx context.Context) (*types.AnalysisView, error)
}

type Status string

const (
	StatusReady   Status = "ready"
	StatusPending Status = "pending"
)

// Result is Ready with the analysis, or Pending once attempts run out.
type Result struct {
	Status   Status
	Analysis *types.AnalysisView
	Attempts int
}

func (r Result) Ready() bool { return r.Status == StatusReady }

// Poller waits for an analysis by polling "latest" on a fixed schedule: one
// initial delay, then a fixed interval between attempts.
type Poller struct {
	InitialDelay time.Duration
	Interval     time.Duration
	MaxAttempts  int

	// WantReflectionID, when set, ignores analyses of other reflections.
	WantReflectionID uuid.UUID

	Log *logger.Logger
}

func NewPoller(log *logger.Logger) *Poller {
	return &Poller{
		InitialDelay: DefaultInitialDelay,
		Interval:     DefaultInterval,
		MaxAttempts:  DefaultMaxAttempts,
		Log:          log,
	}
}

// Wait polls until an analysis shows up or attempts are exhausted. Fetch
// errors use up an attempt and polling continues. The only error returned is
// ctx's.
func (p *Poller) Wait(ctx context.Context, fetcher LatestFetcher) (Result, error) {
	log := p.Log
	if log == nil {
		log = logger.NewNop()
	}
	maxAttempts := p.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}

	if err := httpx.Sleep(ctx, p.InitialDelay); err != nil {
		return Result{Status: StatusPending}, err
	}
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		analysis, err := fetcher.Latest(ctx)
		switch {
		case err != nil:
			if ctx.Err() != nil {
				return Result{Status: StatusPending, Attempts: attempt}, ctx.Err()
			}
			log.Warn("Polling for analysis failed", "attempt", attempt, "error", err)
		case p.matches(analysis):
			return Result{Status: StatusReady, Analysis: analysis, Attempts: attempt}, nil
		}
		if attempt == maxAttempts {
			break
		}
		if err := httpx.Sleep(ctx, p.Interval); err != nil {
			return Result{Status: StatusPending, Attempts: attempt}, err
		}
	}
	return Result{Status: StatusPending, Attempts: maxAttempts}, nil
}

func (p *Poller) matches(a *types.AnalysisView) bool {
	if a == nil {
		return false
	}
	return p.WantReflectionID == uuid.Nil || a.ReflectionID == p.WantReflectionID
}
