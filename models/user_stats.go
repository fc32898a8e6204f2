package models

// StringSet is a jsonb-backed list with set semantics (dedup on insert).
type StringSet []string

// Contains reports whether v is already in the set.
func (s StringSet) Contains(v string) bool {
	for _, e := range s {
		if e == v {
			return true
		}
	}
	return false
}

// Add returns the set with v appended if absent.
func (s StringSet) Add(v string) StringSet {
	if s.Contains(v) {
		return s
	}
	return append(s, v)
}

// UserStats holds activity counters used for achievement progress and the
// "first use" tool bonus. One row per user, created alongside UserProgress.
type UserStats struct {
	ID             string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	ExternalUserID string `gorm:"uniqueIndex;not null" json:"external_user_id"`

	ToolsUsed     StringSet `gorm:"type:jsonb;serializer:json" json:"tools_used"`
	FavoriteTools StringSet `gorm:"type:jsonb;serializer:json" json:"favorite_tools"`

	AssessmentsCompleted      int64 `json:"assessments_completed" gorm:"default:0"`
	PortfoliosCreated         int64 `json:"portfolios_created" gorm:"default:0"`
	EducationModulesCompleted int64 `json:"education_modules_completed" gorm:"default:0"`
	TotalTimeSpent            int64 `json:"total_time_spent" gorm:"default:0"` // seconds

	Timestamps
}
