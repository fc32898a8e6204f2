package models

import (
	"time"
)

type BadgeRarity string

const (
	BadgeRarityCommon    BadgeRarity = "common"
	BadgeRarityRare      BadgeRarity = "rare"
	BadgeRarityEpic      BadgeRarity = "epic"
	BadgeRarityLegendary BadgeRarity = "legendary"
)

// Badge: static catalog entry, seeded at startup and immutable afterwards
// except for the IsActive flag.
type Badge struct {
	ID          string      `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	Code        string      `gorm:"uniqueIndex;not null" json:"code"` // slug of Name, e.g. "first-assessment"
	Name        string      `gorm:"not null" json:"name"`
	Description string      `json:"description"`
	IconURL     string      `gorm:"type:text" json:"icon_url"` // R2/CDN URL
	Category    string      `gorm:"type:varchar(32)" json:"category"`
	Rarity      BadgeRarity `gorm:"type:varchar(16);default:'common'" json:"rarity"`
	Points      int64       `gorm:"default:0" json:"points"` // awarded on unlock
	IsActive    bool        `gorm:"default:true" json:"is_active"`
	CreatedAt   time.Time   `gorm:"autoCreateTime" json:"created_at"`
}

// UserBadge: unlocked instance. The (external_user_id, badge_id) pair is unique;
// a second unlock attempt is a no-op, never a double award.
type UserBadge struct {
	ID             string    `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	ExternalUserID string    `gorm:"not null;index:idx_user_badge,unique" json:"external_user_id"`
	BadgeID        string    `gorm:"not null;index:idx_user_badge,unique" json:"badge_id"`
	UnlockedAt     time.Time `gorm:"autoCreateTime" json:"unlocked_at"`

	Badge Badge `gorm:"foreignKey:BadgeID" json:"badge,omitempty"`
}

// BadgeCatalog is the seed data; codes are derived from names at seed time.
var BadgeCatalog = []Badge{
	{
		Name:        "Welcome Aboard",
		Description: "Joined the platform",
		Category:    "milestone",
		Rarity:      BadgeRarityCommon,
		Points:      10,
	},
	{
		Name:        "Risk Aware",
		Description: "Completed your first risk assessment",
		Category:    "assessment",
		Rarity:      BadgeRarityCommon,
		Points:      25,
	},
	{
		Name:        "Toolbelt",
		Description: "Used 5 different investment tools",
		Category:    "tools",
		Rarity:      BadgeRarityRare,
		Points:      50,
	},
	{
		Name:        "Portfolio Architect",
		Description: "Created 3 portfolios",
		Category:    "portfolio",
		Rarity:      BadgeRarityRare,
		Points:      75,
	},
	{
		Name:        "Dedicated Learner",
		Description: "Completed 10 education modules",
		Category:    "education",
		Rarity:      BadgeRarityEpic,
		Points:      100,
	},
	{
		Name:        "Week Streak",
		Description: "Logged in 7 days in a row",
		Category:    "streak",
		Rarity:      BadgeRarityRare,
		Points:      50,
	},
	{
		Name:        "Iron Habit",
		Description: "Logged in 30 days in a row",
		Category:    "streak",
		Rarity:      BadgeRarityLegendary,
		Points:      200,
	},
}
