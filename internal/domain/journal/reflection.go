package journal

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/consciousness-backend/internal/domain/user"
)

// DateLayout is the calendar-day format used on the wire and in prompts.
const DateLayout = "2006-01-02"

// Reflection is one daily journal entry. Rows are never updated.
type Reflection struct {
	ID             uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID         uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:uidx_reflection_user_date,priority:1" json:"userId"`
	User           *user.User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"-"`
	ReflectionDate datatypes.Date `gorm:"type:date;not null;uniqueIndex:uidx_reflection_user_date,priority:2" json:"reflectionDate"`

	DaySummary           string `gorm:"type:text;not null;column:day_summary" json:"daySummary"`
	SocialMediaTime      string `gorm:"type:text;not null;column:social_media_time" json:"socialMediaTime"`
	TruthfulnessKindness string `gorm:"type:text;not null;column:truthfulness_kindness" json:"truthfulnessKindness"`
	ConsciousActions     string `gorm:"type:text;not null;column:conscious_actions" json:"consciousActions"`
	OverthinkingStress   string `gorm:"type:text;not null;column:overthinking_stress" json:"overthinkingStress"`
	GratitudeExpression  string `gorm:"type:text;not null;column:gratitude_expression" json:"gratitudeExpression"`
	ProudMoment          string `gorm:"type:text;not null;column:proud_moment" json:"proudMoment"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"createdAt"`
}

func (Reflection) TableName() string { return "daily_reflection" }

// Day renders the reflection date as YYYY-MM-DD.
func (r *Reflection) Day() string {
	if r == nil {
		return ""
	}
	return time.Time(r.ReflectionDate).Format(DateLayout)
}

func (r Reflection) MarshalJSON() ([]byte, error) {
	type plain Reflection
	return json.Marshal(struct {
		plain
		ReflectionDate string `json:"reflectionDate"`
	}{plain: plain(r), ReflectionDate: r.Day()})
}

// DayOf truncates t to its calendar day in loc, returned as midnight UTC so the
// stored date does not shift with the connection's time zone.
func DayOf(t time.Time, loc *time.Location) datatypes.Date {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := t.In(loc).Date()
	return datatypes.Date(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
}
