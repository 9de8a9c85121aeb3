package journal

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/consciousness-backend/internal/domain/user"
)

const (
	ParseModeStructured = "structured"
	ParseModePartial    = "partial"
	ParseModeFallback   = "fallback"
)

// Analysis is the generated feedback for exactly one reflection. Written once
// by the background analysis run and never edited.
type Analysis struct {
	ID           uuid.UUID   `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID       uuid.UUID   `gorm:"type:uuid;not null;index:idx_analysis_user_created,priority:1" json:"userId"`
	User         *user.User  `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"-"`
	ReflectionID uuid.UUID   `gorm:"type:uuid;not null;index" json:"reflectionId"`
	Reflection   *Reflection `gorm:"constraint:OnDelete:CASCADE;foreignKey:ReflectionID;references:ID" json:"-"`

	AnalysisText        string `gorm:"type:text;not null;column:analysis_text" json:"analysisText"`
	Recommendations     string `gorm:"type:text;not null;column:recommendations" json:"recommendations"`
	MotivationalMessage string `gorm:"type:text;not null;column:motivational_message" json:"motivationalMessage"`

	// provider, model and parse_mode of the run that produced the row
	Meta datatypes.JSONMap `gorm:"type:jsonb;column:meta" json:"meta,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:now();index:idx_analysis_user_created,priority:2,sort:desc" json:"createdAt"`
}

func (Analysis) TableName() string { return "ai_analysis" }

// ParseMode reports how the model output was split into sections.
func (a *Analysis) ParseMode() string {
	if a == nil || a.Meta == nil {
		return ""
	}
	if s, ok := a.Meta["parse_mode"].(string); ok {
		return s
	}
	return ""
}

// AnalysisView is an analysis together with the reflection it belongs to, as
// returned by the latest-analysis read.
type AnalysisView struct {
	Analysis
	ReflectionDate string `json:"reflectionDate"`
	DaySummary     string `json:"daySummary"`
}

func NewAnalysisView(a *Analysis) *AnalysisView {
	if a == nil {
		return nil
	}
	v := &AnalysisView{Analysis: *a}
	if a.Reflection != nil {
		v.ReflectionDate = a.Reflection.Day()
		v.DaySummary = a.Reflection.DaySummary
	}
	return v
}
