package journal

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/consciousness-backend/internal/data/repos/testutil"
	types "github.com/yungbote/consciousness-backend/internal/domain"
	jdomain "github.com/yungbote/consciousness-backend/internal/domain/journal"
	"github.com/yungbote/consciousness-backend/internal/pkg/dbctx"
)

func TestProfileRepoUpsert(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewProfileRepo(db, testutil.Logger(t))

	u := testutil.SeedUser(t, ctx, tx, "profilerepo@example.com")

	got, err := repo.GetByUserID(dbc, u.ID)
	if err != nil || got != nil {
		t.Fatalf("GetByUserID before upsert: got=%v err=%v", got, err)
	}

	first, err := repo.Upsert(dbc, &types.Profile{
		UserID:           u.ID,
		SelfIntroduction: "hi",
		GoodQualities:    "kind",
		BadQualities:     "impatient",
		LifeGoals:        "calm",
		Challenges:       "phone",
	})
	if err != nil {
		t.Fatalf("Upsert (insert): %v", err)
	}

	second, err := repo.Upsert(dbc, &types.Profile{
		UserID:           u.ID,
		SelfIntroduction: "hello again",
		GoodQualities:    "kind",
		BadQualities:     "impatient",
		LifeGoals:        "calm",
		Challenges:       "phone",
		AdditionalInfo:   "likes tea",
	})
	if err != nil {
		t.Fatalf("Upsert (update): %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("Upsert created a second row: %s vs %s", second.ID, first.ID)
	}
	if second.SelfIntroduction != "hello again" || second.AdditionalInfo != "likes tea" {
		t.Fatalf("Upsert did not overwrite fields: %+v", second)
	}
}

func TestReflectionRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewReflectionRepo(db, testutil.Logger(t))

	u := testutil.SeedUser(t, ctx, tx, "reflectionrepo@example.com")
	other := testutil.SeedUser(t, ctx, tx, "reflectionrepo-other@example.com")

	base := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 10; i++ {
		testutil.SeedReflection(t, ctx, tx, u.ID, base.AddDate(0, 0, -i), "day")
	}
	foreign := testutil.SeedReflection(t, ctx, tx, other.ID, base, "not yours")

	recent, err := repo.ListRecent(dbc, u.ID, 8)
	if err != nil {
		t.Fatalf("ListRecent: %v", err)
	}
	if len(recent) != 8 {
		t.Fatalf("ListRecent: expected 8, got %d", len(recent))
	}
	if recent[0].Day() != "2025-03-10" || recent[7].Day() != "2025-03-03" {
		t.Fatalf("ListRecent: unexpected order %s..%s", recent[0].Day(), recent[7].Day())
	}

	page, err := repo.ListByUser(dbc, u.ID, 5, 8)
	if err != nil || len(page) != 2 {
		t.Fatalf("ListByUser offset: err=%v len=%d", err, len(page))
	}

	today, err := repo.GetByUserAndDate(dbc, u.ID, jdomain.DayOf(base, time.UTC))
	if err != nil || today == nil || today.ID != recent[0].ID {
		t.Fatalf("GetByUserAndDate: err=%v got=%+v", err, today)
	}
	missing, err := repo.GetByUserAndDate(dbc, u.ID, jdomain.DayOf(base.AddDate(0, 0, 1), time.UTC))
	if err != nil || missing != nil {
		t.Fatalf("GetByUserAndDate (missing): err=%v got=%+v", err, missing)
	}

	if got, err := repo.GetByIDForUser(dbc, foreign.ID, u.ID); err != nil || got != nil {
		t.Fatalf("GetByIDForUser crossed users: err=%v got=%+v", err, got)
	}
	if got, err := repo.GetByIDForUser(dbc, foreign.ID, other.ID); err != nil || got == nil {
		t.Fatalf("GetByIDForUser owner: err=%v got=%+v", err, got)
	}

	tx.SavePoint("dup")
	_, err = repo.Create(dbc, &types.Reflection{
		UserID:         u.ID,
		ReflectionDate: jdomain.DayOf(base, time.UTC),
		DaySummary:     "second",
	})
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Fatalf("Create duplicate day: expected ErrDuplicatedKey, got %v", err)
	}
	tx.RollbackTo("dup")
}

func TestAnalysisRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewAnalysisRepo(db, testutil.Logger(t))

	u := testutil.SeedUser(t, ctx, tx, "analysisrepo@example.com")
	other := testutil.SeedUser(t, ctx, tx, "analysisrepo-other@example.com")
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	older := testutil.SeedReflection(t, ctx, tx, u.ID, day.AddDate(0, 0, -1), "yesterday")
	newer := testutil.SeedReflection(t, ctx, tx, u.ID, day, "today")

	if got, err := repo.GetLatestByUser(dbc, u.ID); err != nil || got != nil {
		t.Fatalf("GetLatestByUser empty: err=%v got=%+v", err, got)
	}

	mk := func(r *types.Reflection, created time.Time) *types.Analysis {
		return &types.Analysis{
			ID:                  uuid.New(),
			UserID:              u.ID,
			ReflectionID:        r.ID,
			AnalysisText:        "analysis " + r.DaySummary,
			Recommendations:     "rec",
			MotivationalMessage: "go",
			Meta:                datatypes.JSONMap{"parse_mode": jdomain.ParseModeStructured},
			CreatedAt:           created,
		}
	}
	now := time.Now().UTC()
	if _, err := repo.Create(dbc, mk(older, now.Add(-time.Minute))); err != nil {
		t.Fatalf("Create older: %v", err)
	}
	if _, err := repo.Create(dbc, mk(newer, now)); err != nil {
		t.Fatalf("Create newer: %v", err)
	}

	latest, err := repo.GetLatestByUser(dbc, u.ID)
	if err != nil || latest == nil {
		t.Fatalf("GetLatestByUser: err=%v", err)
	}
	if latest.ReflectionID != newer.ID || latest.Reflection == nil || latest.Reflection.DaySummary != "today" {
		t.Fatalf("GetLatestByUser: unexpected %+v", latest)
	}
	if latest.ParseMode() != jdomain.ParseModeStructured {
		t.Fatalf("meta not round-tripped: %v", latest.Meta)
	}

	byRef, err := repo.GetByReflectionForUser(dbc, older.ID, u.ID)
	if err != nil || byRef == nil || byRef.AnalysisText != "analysis yesterday" {
		t.Fatalf("GetByReflectionForUser: err=%v got=%+v", err, byRef)
	}
	if got, err := repo.GetByReflectionForUser(dbc, older.ID, other.ID); err != nil || got != nil {
		t.Fatalf("GetByReflectionForUser crossed users: err=%v got=%+v", err, got)
	}

	all, err := repo.ListByUser(dbc, u.ID, 10, 0)
	if err != nil || len(all) != 2 || all[0].ReflectionID != newer.ID {
		t.Fatalf("ListByUser: err=%v len=%d", err, len(all))
	}
}
