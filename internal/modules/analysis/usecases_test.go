package analysis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/consciousness-backend/internal/data/repos/memstore"
	types "github.com/yungbote/consciousness-backend/internal/domain"
	"github.com/yungbote/consciousness-backend/internal/domain/journal"
	"github.com/yungbote/consciousness-backend/internal/jobs/worker"
	"github.com/yungbote/consciousness-backend/internal/pkg/dbctx"
	"github.com/yungbote/consciousness-backend/internal/platform/llm"
	"github.com/yungbote/consciousness-backend/internal/platform/logger"
	"github.com/yungbote/consciousness-backend/internal/realtime"
	"github.com/yungbote/consciousness-backend/internal/realtime/bus"
)

type stubModel struct {
	reply string
	err   error
	calls int
}

func (m *stubModel) Generate(context.Context, string) (string, error) {
	m.calls++
	return m.reply, m.err
}

func (m *stubModel) Info() llm.Info { return llm.Info{Provider: "stub", Model: "stub-1"} }

func newReflection(t *testing.T, store *memstore.Store, userID uuid.UUID) *types.Reflection {
	t.Helper()
	r, err := store.Reflections().Create(dbctx.Context{Ctx: context.Background()}, &types.Reflection{
		UserID:               userID,
		ReflectionDate:       journal.DayOf(time.Now(), time.UTC),
		DaySummary:           "s",
		SocialMediaTime:      "s",
		TruthfulnessKindness: "s",
		ConsciousActions:     "s",
		OverthinkingStress:   "s",
		GratitudeExpression:  "s",
		ProudMoment:          "s",
	})
	require.NoError(t, err)
	return r
}

func TestGeneratePublishesAnalysisReady(t *testing.T) {
	store := memstore.New()
	b := bus.NewMemoryBus()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan realtime.SSEMessage, 1)
	require.NoError(t, b.StartForwarder(ctx, func(m realtime.SSEMessage) { got <- m }))

	uc := New(UsecasesDeps{
		Log:         logger.NewNop(),
		Model:       &stubModel{reply: "**ANALYSIS:** fine"},
		Profiles:    store.Profiles(),
		Reflections: store.Reflections(),
		Analyses:    store.Analyses(),
		Bus:         b,
	})

	userID := uuid.New()
	r := newReflection(t, store, userID)
	out, err := uc.Generate(ctx, GenerateInput{Reflection: r})
	require.NoError(t, err)

	msg := <-got
	assert.Equal(t, realtime.UserChannel(userID), msg.Channel)
	assert.Equal(t, realtime.SSEEventAnalysisReady, msg.Event)
	data, ok := msg.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, out.Analysis.ID.String(), data["analysisId"])
	assert.Equal(t, r.ID.String(), data["reflectionId"])
}

func TestTriggerRunsAnalysisOnPool(t *testing.T) {
	store := memstore.New()
	model := &stubModel{reply: "**ANALYSIS:** a **RECOMMENDATIONS:** r **MOTIVATIONAL MESSAGE:** m"}
	uc := New(UsecasesDeps{
		Model:       model,
		Profiles:    store.Profiles(),
		Reflections: store.Reflections(),
		Analyses:    store.Analyses(),
	})

	reg := worker.NewRegistry()
	require.NoError(t, reg.Register(NewHandler(uc)))
	pool := worker.NewPool(logger.NewNop(), reg, worker.Config{Concurrency: 1, QueueSize: 4})
	pool.Start(context.Background())

	userID := uuid.New()
	r := newReflection(t, store, userID)
	NewTrigger(logger.NewNop(), pool).TriggerAnalysis(context.Background(), r)

	require.NoError(t, pool.Close(context.Background()))
	latest, err := store.Analyses().GetLatestByUser(dbctx.Context{Ctx: context.Background()}, userID)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, r.ID, latest.ReflectionID)
	assert.Equal(t, 1, model.calls)
}

func TestTriggerSwallowsModelFailure(t *testing.T) {
	store := memstore.New()
	model := &stubModel{err: &llm.ModelError{Provider: "stub", Err: errors.New("down")}}
	uc := New(UsecasesDeps{
		Model:       model,
		Profiles:    store.Profiles(),
		Reflections: store.Reflections(),
		Analyses:    store.Analyses(),
	})
	reg := worker.NewRegistry()
	require.NoError(t, reg.Register(NewHandler(uc)))
	pool := worker.NewPool(logger.NewNop(), reg, worker.Config{Concurrency: 1, QueueSize: 1})
	pool.Start(context.Background())

	userID := uuid.New()
	NewTrigger(logger.NewNop(), pool).TriggerAnalysis(context.Background(), newReflection(t, store, userID))
	require.NoError(t, pool.Close(context.Background()))
	assert.Equal(t, 0, store.CountAnalyses(userID))
	assert.Equal(t, 1, model.calls)
}

func TestHandlerRejectsUnknownPayload(t *testing.T) {
	h := NewHandler(New(UsecasesDeps{}))
	assert.Equal(t, JobTypeGenerate, h.Type())
	assert.Error(t, h.Run(context.Background(), "nope"))
}

func TestOutcomeOf(t *testing.T) {
	assert.Equal(t, "model_error", outcomeOf(&llm.ModelError{Err: errors.New("x")}))
	assert.Equal(t, "error", outcomeOf(errors.New("x")))
}
