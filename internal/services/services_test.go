package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/consciousness-backend/internal/data/repos/memstore"
	types "github.com/yungbote/consciousness-backend/internal/domain"
	"github.com/yungbote/consciousness-backend/internal/platform/apierr"
	"github.com/yungbote/consciousness-backend/internal/platform/ctxutil"
	"github.com/yungbote/consciousness-backend/internal/platform/logger"
)

const testSecret = "test-secret"

func asUser(userID uuid.UUID) context.Context {
	return ctxutil.WithRequestData(context.Background(), &ctxutil.RequestData{UserID: userID})
}

func requireCode(t *testing.T, err error, status int, code string) {
	t.Helper()
	require.Error(t, err)
	ae, ok := apierr.As(err)
	require.True(t, ok, "expected api error, got %v", err)
	require.Equal(t, status, ae.Status)
	require.Equal(t, code, ae.Code)
}

func newAuth(store *memstore.Store) *authService {
	return NewAuthService(nil, logger.NewNop(), store.Users(), store.Tokens(), testSecret, 15*time.Minute, 24*time.Hour).(*authService)
}

// recordingTrigger captures scheduled analyses instead of running them.
type recordingTrigger struct {
	got []*types.Reflection
}

func (r *recordingTrigger) TriggerAnalysis(_ context.Context, reflection *types.Reflection) {
	r.got = append(r.got, reflection)
}

func validReflection() ReflectionInput {
	return ReflectionInput{
		DaySummary:           "Worked on the garden and called my sister.",
		SocialMediaTime:      "About 40 minutes",
		TruthfulnessKindness: "Yes, I was patient in a difficult meeting.",
		ConsciousActions:     "Walked instead of driving.",
		OverthinkingStress:   "Some worry about a deadline.",
		GratitudeExpression:  "Thanked my neighbour for help.",
		ProudMoment:          "Finished the fence.",
	}
}

func validProfile() ProfileInput {
	return ProfileInput{
		SelfIntroduction: "Nurse in my thirties.",
		GoodQualities:    "Curious, patient",
		BadQualities:     "Procrastination",
		LifeGoals:        "Write a book",
		Challenges:       "Screen time",
	}
}
