package llm

import (
	"context"
	"errors"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/yungbote/consciousness-backend/internal/observability"
	"github.com/yungbote/consciousness-backend/internal/platform/httpx"
	"github.com/yungbote/consciousness-backend/internal/platform/logger"
)

// retryAfterer is implemented by errors that carry a server-provided backoff hint.
type retryAfterer interface {
	RetryAfter() time.Duration
}

type retrier struct {
	log        *logger.Logger
	info       Info
	maxRetries int
	timeout    time.Duration
	baseDelay  time.Duration
	maxDelay   time.Duration
}

// do runs call until it succeeds, fails with a non-transient error, or the
// retry budget is spent. Each attempt gets its own timeout.
func (r *retrier) do(ctx context.Context, call func(ctx context.Context) (string, error)) (string, error) {
	ctx, span := observability.Tracer("llm").Start(ctx, "llm.generate")
	span.SetAttributes(
		attribute.String("llm.provider", r.info.Provider),
		attribute.String("llm.model", r.info.Model),
	)
	defer span.End()

	backoff := r.baseDelay
	if backoff <= 0 {
		backoff = time.Second
	}
	start := time.Now()

	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", r.fail(span, start, err)
		}

		attemptCtx, cancel := ctx, context.CancelFunc(func() {})
		if r.timeout > 0 {
			attemptCtx, cancel = context.WithTimeout(ctx, r.timeout)
		}
		text, err := call(attemptCtx)
		cancel()
		if err == nil {
			observability.Current().ObserveLLMRequest(r.info.Provider, r.info.Model, "200", time.Since(start))
			span.SetAttributes(attribute.Int("llm.attempts", attempt+1))
			return text, nil
		}

		if !httpx.IsRetryableError(err) || attempt >= r.maxRetries {
			return "", r.fail(span, start, err)
		}

		sleepFor := backoff
		var ra retryAfterer
		if errors.As(err, &ra) && ra.RetryAfter() > 0 {
			sleepFor = ra.RetryAfter()
		}
		if r.maxDelay > 0 && sleepFor > r.maxDelay {
			sleepFor = r.maxDelay
		}
		sleepFor = httpx.JitterSleep(sleepFor)

		r.log.Warn("model request retrying",
			"attempt", attempt+1,
			"max_retries", r.maxRetries,
			"sleep", sleepFor.String(),
			"error", err.Error(),
		)
		if err := httpx.Sleep(ctx, sleepFor); err != nil {
			return "", r.fail(span, start, err)
		}
		backoff *= 2
	}
}

func (r *retrier) fail(span trace.Span, start time.Time, err error) error {
	status := httpx.StatusOf(err)
	observability.Current().ObserveLLMRequest(r.info.Provider, r.info.Model, statusLabel(status, err), time.Since(start))
	span.RecordError(err)
	span.SetStatus(codes.Error, "generation failed")

	var me *ModelError
	if errors.As(err, &me) {
		return me
	}
	return &ModelError{Provider: r.info.Provider, Model: r.info.Model, Status: status, Err: err}
}

func statusLabel(status int, err error) string {
	if status != 0 {
		return strconv.Itoa(status)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}
	if errors.Is(err, context.Canceled) {
		return "canceled"
	}
	return "error"
}
