package services

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/consciousness-backend/internal/data/repos/memstore"
	types "github.com/yungbote/consciousness-backend/internal/domain"
	"github.com/yungbote/consciousness-backend/internal/pkg/dbctx"
	"github.com/yungbote/consciousness-backend/internal/platform/logger"
)

func seedAnalysis(t *testing.T, store *memstore.Store, r *types.Reflection, text string) *types.Analysis {
	t.Helper()
	a, err := store.Analyses().Create(dbctx.Context{Ctx: context.Background()}, &types.Analysis{
		UserID:              r.UserID,
		ReflectionID:        r.ID,
		AnalysisText:        text,
		Recommendations:     "Take a walk.",
		MotivationalMessage: "Keep going.",
	})
	require.NoError(t, err)
	return a
}

func TestAnalysisLatest(t *testing.T) {
	store := memstore.New()
	userID := uuid.New()
	ctx := asUser(userID)
	rs := newReflections(store, nil, time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC), nil)
	svc := NewAnalysisService(logger.NewNop(), store.Analyses(), store.Reflections())

	latest, err := svc.Latest(ctx)
	require.NoError(t, err)
	require.Nil(t, latest)

	first, err := rs.CreateReflection(ctx, validReflection())
	require.NoError(t, err)
	seedAnalysis(t, store, first, "first")

	rs.now = func() time.Time { return time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC) }
	in := validReflection()
	in.DaySummary = "A quieter day."
	second, err := rs.CreateReflection(ctx, in)
	require.NoError(t, err)
	seedAnalysis(t, store, second, "second")

	latest, err = svc.Latest(ctx)
	require.NoError(t, err)
	require.Equal(t, "second", latest.AnalysisText)
	require.Equal(t, "2026-03-02", latest.ReflectionDate)
	require.Equal(t, "A quieter day.", latest.DaySummary)

	list, err := svc.List(ctx, 0, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, "second", list[0].AnalysisText)
	require.Equal(t, "2026-03-01", list[1].ReflectionDate)

	none, err := svc.Latest(asUser(uuid.New()))
	require.NoError(t, err)
	require.Nil(t, none)
}

func TestAnalysisForReflection(t *testing.T) {
	store := memstore.New()
	ctx := asUser(uuid.New())
	rs := newReflections(store, nil, time.Now(), nil)
	svc := NewAnalysisService(logger.NewNop(), store.Analyses(), store.Reflections())

	r, err := rs.CreateReflection(ctx, validReflection())
	require.NoError(t, err)

	_, err = svc.ForReflection(ctx, r.ID)
	requireCode(t, err, http.StatusNotFound, "analysis_not_found")
	require.EqualError(t, err, "Analysis not found for this reflection")

	seeded := seedAnalysis(t, store, r, "text")
	got, err := svc.ForReflection(ctx, r.ID)
	require.NoError(t, err)
	require.Equal(t, seeded.ID, got.ID)

	_, err = svc.ForReflection(ctx, uuid.New())
	requireCode(t, err, http.StatusNotFound, "reflection_not_found")

	_, err = svc.ForReflection(asUser(uuid.New()), r.ID)
	requireCode(t, err, http.StatusNotFound, "reflection_not_found")
}
