package models

import (
	"time"

	"gorm.io/gorm"
)

type NotificationType string

const (
	NotificationLevelUp              NotificationType = "level_up"
	NotificationBadgeUnlocked        NotificationType = "badge_unlocked"
	NotificationAchievementCompleted NotificationType = "achievement_completed"
	NotificationStreakMilestone      NotificationType = "streak_milestone"
)

// NotificationStatus indicates the delivery status of the notification
type NotificationStatus string

const (
	NotificationStatusPublished NotificationStatus = "published"
	NotificationStatusArchived  NotificationStatus = "archived"
)

// GamificationNotification is the row the UI's SSE stream picks up. Inserted
// inside the engine's transactions so a rolled-back award never notifies.
type GamificationNotification struct {
	ID        string             `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	UserID    string             `gorm:"index" json:"user_id"` // external user id
	Type      NotificationType   `gorm:"type:varchar(32);not null" json:"type"`
	Title     string             `gorm:"not null" json:"title"`
	Message   string             `gorm:"type:text" json:"message"`
	Points    int64              `json:"points"`
	Level     int                `json:"level,omitempty"`
	BadgeID   *string            `json:"badge_id,omitempty"`
	Viewed    bool               `gorm:"default:false;index" json:"viewed"`
	Status    NotificationStatus `gorm:"not null;default:'published'" json:"status"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
	DeletedAt gorm.DeletedAt     `gorm:"index" json:"-"`
}
