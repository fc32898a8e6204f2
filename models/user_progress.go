package models

import (
	"time"

	"gorm.io/gorm"
)

// UserProgress tracks gamified progression for each user (denormalized for performance)
type UserProgress struct {
	ID             string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	ExternalUserID string `gorm:"uniqueIndex;not null" json:"external_user_id"` // links to profile service

	// Core progression. TotalPoints is the single source of truth; Level and
	// ExperienceToNextLevel are recomputed from it on every write.
	TotalPoints           int64 `json:"total_points" gorm:"default:0"`
	Level                 int   `json:"level" gorm:"default:1"`
	ExperienceToNextLevel int64 `json:"experience_to_next_level" gorm:"default:100"`

	// Display alias expected by the frontend; always mirrors TotalPoints.
	ExperiencePoints int64 `json:"experience_points" gorm:"-"`

	// Streaks (calendar-day granularity, UTC)
	LoginStreak      int        `json:"login_streak" gorm:"default:0"`
	LastLoginDate    *time.Time `json:"last_login_date,omitempty"`
	LearningStreak   int        `json:"learning_streak" gorm:"default:0"`
	LastLearningDate *time.Time `json:"last_learning_date,omitempty"`

	// Milestones
	LastLevelUpAt *time.Time `json:"last_level_up_at,omitempty"`

	Timestamps
}

func (p *UserProgress) AfterFind(*gorm.DB) error {
	p.ExperiencePoints = p.TotalPoints
	return nil
}

// Timestamps adds GORM auto-times
type Timestamps struct {
	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}
