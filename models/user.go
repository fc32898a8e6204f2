package models

import (
	"time"

	"gorm.io/gorm"
)

// PlatformUser is a local snapshot of profile data needed for leaderboard
// display. Owned solely by the gamification service; populated by the sync
// worker from the platform's profile service. Authentication stays external.
type PlatformUser struct {
	ID                string  `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	ExternalUserID    string  `gorm:"uniqueIndex;not null" json:"external_user_id"` // profile service UUID
	Username          string  `gorm:"index;not null" json:"username"`
	Email             string  `json:"email,omitempty"`
	ProfilePictureURL *string `json:"profile_picture_url,omitempty"`
	FirstName         *string `json:"first_name,omitempty"`
	LastName          *string `json:"last_name,omitempty"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	LastSeen *time.Time     `json:"last_seen,omitempty"`
	IsBanned bool           `json:"is_banned" gorm:"default:false"` // excluded from leaderboards

	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
