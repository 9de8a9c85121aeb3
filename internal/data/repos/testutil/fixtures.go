package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/consciousness-backend/internal/domain"
	"github.com/yungbote/consciousness-backend/internal/domain/journal"
)

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, email string) *types.User {
	tb.Helper()
	u := &types.User{
		ID:       uuid.New(),
		Email:    email,
		Password: "pw",
		FullName: "Test User",
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedReflection(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID, day time.Time, summary string) *types.Reflection {
	tb.Helper()
	r := &types.Reflection{
		ID:                   uuid.New(),
		UserID:               userID,
		ReflectionDate:       journal.DayOf(day, time.UTC),
		DaySummary:           summary,
		SocialMediaTime:      "1h",
		TruthfulnessKindness: "yes",
		ConsciousActions:     "walked",
		OverthinkingStress:   "some",
		GratitudeExpression:  "thanked a friend",
		ProudMoment:          "finished a task",
	}
	if err := tx.WithContext(ctx).Create(r).Error; err != nil {
		tb.Fatalf("seed reflection: %v", err)
	}
	return r
}
