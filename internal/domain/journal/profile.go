package journal

import (
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/consciousness-backend/internal/domain/user"
)

// Profile is the static background a user gives about themselves. At most one
// row per user.
type Profile struct {
	ID               uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID           uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:uidx_user_profile_user" json:"userId"`
	User             *user.User `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"-"`
	SelfIntroduction string     `gorm:"type:text;not null;column:self_introduction" json:"selfIntroduction"`
	GoodQualities    string     `gorm:"type:text;not null;column:good_qualities" json:"goodQualities"`
	BadQualities     string     `gorm:"type:text;not null;column:bad_qualities" json:"badQualities"`
	LifeGoals        string     `gorm:"type:text;not null;column:life_goals" json:"lifeGoals"`
	Challenges       string     `gorm:"type:text;not null;column:challenges" json:"challenges"`
	AdditionalInfo   string     `gorm:"type:text;column:additional_info" json:"additionalInfo"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updatedAt"`
}

func (Profile) TableName() string { return "user_profile" }
