package models

import (
	"time"
)

// AchievementType names the counter an achievement tracks. The tracker maps
// each event's stat effect onto one of these.
type AchievementType string

const (
	AchievementTypeAssessments AchievementType = "assessments"
	AchievementTypeTools       AchievementType = "tools"
	AchievementTypePortfolios  AchievementType = "portfolios"
	AchievementTypeEducation   AchievementType = "education"
	AchievementTypeLoginStreak AchievementType = "login_streak"
)

// Achievement: catalog entry with a numeric target. Completion is rewarded with
// points and, optionally, a badge unlock.
type Achievement struct {
	ID              string          `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	Code            string          `gorm:"uniqueIndex;not null" json:"code"`
	Name            string          `gorm:"not null" json:"name"`
	Description     string          `json:"description"`
	Type            AchievementType `gorm:"type:varchar(32);not null;index" json:"type"`
	Target          int64           `gorm:"not null" json:"target"`
	RewardPoints    int64           `gorm:"default:0" json:"reward_points"`
	RewardBadgeCode string          `json:"reward_badge_code,omitempty"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

// UserAchievement: per-user progress toward an achievement. IsCompleted flips
// exactly once; progress never moves backwards.
type UserAchievement struct {
	ID             string     `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	ExternalUserID string     `gorm:"not null;index:idx_user_achievement,unique" json:"external_user_id"`
	AchievementID  string     `gorm:"not null;index:idx_user_achievement,unique" json:"achievement_id"`
	Progress       int64      `gorm:"default:0" json:"progress"`
	IsCompleted    bool       `gorm:"default:false" json:"is_completed"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`

	Achievement Achievement `gorm:"foreignKey:AchievementID" json:"achievement,omitempty"`

	Timestamps
}

// AchievementCatalog is the seed data.
var AchievementCatalog = []Achievement{
	{
		Name:         "Know Your Risk",
		Description:  "Complete 5 risk assessments",
		Type:         AchievementTypeAssessments,
		Target:       5,
		RewardPoints: 100,
	},
	{
		Name:            "Tool Explorer",
		Description:     "Use 5 different investment tools",
		Type:            AchievementTypeTools,
		Target:          5,
		RewardPoints:    75,
		RewardBadgeCode: "toolbelt",
	},
	{
		Name:            "Diversifier",
		Description:     "Create 3 portfolios",
		Type:            AchievementTypePortfolios,
		Target:          3,
		RewardPoints:    150,
		RewardBadgeCode: "portfolio-architect",
	},
	{
		Name:            "Curriculum Finisher",
		Description:     "Complete 10 education modules",
		Type:            AchievementTypeEducation,
		Target:          10,
		RewardPoints:    200,
		RewardBadgeCode: "dedicated-learner",
	},
	{
		Name:            "Seven in a Row",
		Description:     "Reach a 7-day login streak",
		Type:            AchievementTypeLoginStreak,
		Target:          7,
		RewardPoints:    50,
		RewardBadgeCode: "week-streak",
	},
	{
		Name:            "Thirty in a Row",
		Description:     "Reach a 30-day login streak",
		Type:            AchievementTypeLoginStreak,
		Target:          30,
		RewardPoints:    250,
		RewardBadgeCode: "iron-habit",
	},
}
