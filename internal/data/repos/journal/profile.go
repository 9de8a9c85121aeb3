package journal

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/consciousness-backend/internal/domain"
	"github.com/yungbote/consciousness-backend/internal/pkg/dbctx"
	"github.com/yungbote/consciousness-backend/internal/platform/logger"
)

type ProfileRepo interface {
	// GetByUserID returns (nil, nil) when the user has no profile yet.
	GetByUserID(dbc dbctx.Context, userID uuid.UUID) (*types.Profile, error)
	Upsert(dbc dbctx.Context, profile *types.Profile) (*types.Profile, error)
}

type profileRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProfileRepo(db *gorm.DB, baseLog *logger.Logger) ProfileRepo {
	repoLog := baseLog.With("repo", "ProfileRepo")
	return &profileRepo{db: db, log: repoLog}
}

func (pr *profileRepo) GetByUserID(dbc dbctx.Context, userID uuid.UUID) (*types.Profile, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = pr.db
	}

	var profile types.Profile
	err := transaction.WithContext(dbc.Ctx).
		Where("user_id = ?", userID).
		Take(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// Upsert inserts the profile or overwrites the editable fields of the
// existing row for the same user.
func (pr *profileRepo) Upsert(dbc dbctx.Context, profile *types.Profile) (*types.Profile, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = pr.db
	}

	if profile.ID == uuid.Nil {
		profile.ID = uuid.New()
	}
	profile.UpdatedAt = time.Now().UTC()

	if err := transaction.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"self_introduction",
				"good_qualities",
				"bad_qualities",
				"life_goals",
				"challenges",
				"additional_info",
				"updated_at",
			}),
		}).
		Create(profile).Error; err != nil {
		return nil, err
	}

	return pr.GetByUserID(dbc, profile.UserID)
}
