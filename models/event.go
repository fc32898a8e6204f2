package models

import (
	"time"
)

// EventType is the closed set of semantic events the tracker recognizes.
// Unrecognized values are still logged, with zero effect.
type EventType string

const (
	EventCompleteRiskAssessment EventType = "COMPLETE_RISK_ASSESSMENT"
	EventUseTool                EventType = "USE_TOOL"
	EventCreatePortfolio        EventType = "CREATE_PORTFOLIO"
	EventDailyLogin             EventType = "DAILY_LOGIN"
	EventCompleteEducation      EventType = "COMPLETE_EDUCATION"

	// Internal event types written by the engine itself.
	EventPointsAwarded EventType = "POINTS_AWARDED"
	EventBadgeUnlocked EventType = "BADGE_UNLOCKED"
)

// GamificationEvent is the append-only audit log. Rows are never updated or
// deleted; history and debugging only, never recomputation.
type GamificationEvent struct {
	ID             string    `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	ExternalUserID string    `gorm:"index;not null" json:"external_user_id"`
	EventType      EventType `gorm:"type:varchar(64);not null;index" json:"event_type"`
	EventData      string    `gorm:"type:jsonb" json:"event_data,omitempty"`
	PointsAwarded  int64     `gorm:"default:0" json:"points_awarded"`
	BadgeID        *string   `gorm:"index" json:"badge_id,omitempty"` // set for BADGE_UNLOCKED
	CreatedAt      time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}
