package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"investlearn-gamification/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// eventRule describes the full effect of one event type. Adding an event type
// is a new table row, not new control flow.
type eventRule struct {
	// points computes the award from the pre-mutation stats (e.g. first-use
	// tool bonus consults the toolsUsed set before it grows).
	points func(stats *models.UserStats, data map[string]any) int64
	// mutate applies the stat delta.
	mutate func(stats *models.UserStats, data map[string]any)
	// achievement reports which achievement counter this event advances and
	// its post-mutation value. Empty type = none.
	achievement func(stats *models.UserStats) (models.AchievementType, int64)
	// streak names the streak this event continues. Empty = none.
	streak StreakType
}

const (
	pointsRiskAssessment = 50
	pointsToolFirstUse   = 25
	pointsToolRepeat     = 10
	pointsPortfolio      = 75
	pointsDailyLogin     = 10
	pointsEducation      = 30
)

var eventRules = map[models.EventType]eventRule{
	models.EventCompleteRiskAssessment: {
		points: func(*models.UserStats, map[string]any) int64 { return pointsRiskAssessment },
		mutate: func(stats *models.UserStats, _ map[string]any) { stats.AssessmentsCompleted++ },
		achievement: func(stats *models.UserStats) (models.AchievementType, int64) {
			return models.AchievementTypeAssessments, stats.AssessmentsCompleted
		},
	},
	models.EventUseTool: {
		points: func(stats *models.UserStats, data map[string]any) int64 {
			if toolID := stringField(data, "toolId"); toolID != "" && !stats.ToolsUsed.Contains(toolID) {
				return pointsToolFirstUse
			}
			return pointsToolRepeat
		},
		mutate: func(stats *models.UserStats, data map[string]any) {
			if toolID := stringField(data, "toolId"); toolID != "" {
				stats.ToolsUsed = stats.ToolsUsed.Add(toolID)
				if fav, _ := data["favorite"].(bool); fav {
					stats.FavoriteTools = stats.FavoriteTools.Add(toolID)
				}
			}
		},
		achievement: func(stats *models.UserStats) (models.AchievementType, int64) {
			return models.AchievementTypeTools, int64(len(stats.ToolsUsed))
		},
	},
	models.EventCreatePortfolio: {
		points: func(*models.UserStats, map[string]any) int64 { return pointsPortfolio },
		mutate: func(stats *models.UserStats, _ map[string]any) { stats.PortfoliosCreated++ },
		achievement: func(stats *models.UserStats) (models.AchievementType, int64) {
			return models.AchievementTypePortfolios, stats.PortfoliosCreated
		},
	},
	models.EventDailyLogin: {
		points: func(*models.UserStats, map[string]any) int64 { return pointsDailyLogin },
		streak: StreakLogin,
	},
	models.EventCompleteEducation: {
		points: func(*models.UserStats, map[string]any) int64 { return pointsEducation },
		mutate: func(stats *models.UserStats, _ map[string]any) { stats.EducationModulesCompleted++ },
		achievement: func(stats *models.UserStats) (models.AchievementType, int64) {
			return models.AchievementTypeEducation, stats.EducationModulesCompleted
		},
		streak: StreakLearning,
	},
}

func stringField(data map[string]any, key string) string {
	if data == nil {
		return ""
	}
	s, _ := data[key].(string)
	return s
}

// TrackResult summarizes what one tracked event did.
type TrackResult struct {
	EventType     models.EventType `json:"event_type"`
	Recognized    bool             `json:"recognized"`
	PointsAwarded int64            `json:"points_awarded"`
	LeveledUp     bool             `json:"leveled_up"`
	NewLevel      int              `json:"new_level,omitempty"`
	StreakValue   int              `json:"streak_value,omitempty"`
}

// EventTrackerService is the orchestrator: one tracked event becomes stat
// deltas, streak continuation, point awards, achievement progress, and an
// audit row — all inside a single transaction.
type EventTrackerService struct {
	DB          *gorm.DB
	Progression *ProgressionService
	Streaks     *StreakService
	Badges      *BadgeService
}

func NewEventTrackerService(db *gorm.DB, progression *ProgressionService, streaks *StreakService, badges *BadgeService) *EventTrackerService {
	return &EventTrackerService{DB: db, Progression: progression, Streaks: streaks, Badges: badges}
}

// TrackEvent applies one semantic event for a user. Unrecognized event types
// are logged with zero effect. A mid-sequence failure rolls everything back,
// including the audit row.
func (s *EventTrackerService) TrackEvent(externalUserID string, eventType models.EventType, eventData map[string]any) (*TrackResult, error) {
	if eventType == "" {
		return nil, fmt.Errorf("%w: eventType is required", ErrValidation)
	}

	// First event for a brand-new user creates the rows; races resolve on the
	// unique index inside GetOrCreateProgress.
	if _, err := s.Progression.GetOrCreateProgress(externalUserID); err != nil {
		return nil, err
	}

	payload, err := json.Marshal(eventData)
	if err != nil {
		return nil, fmt.Errorf("%w: eventData not serializable: %v", ErrValidation, err)
	}

	result := &TrackResult{EventType: eventType}
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		rule, recognized := eventRules[eventType]
		result.Recognized = recognized
		if !recognized {
			log.Printf("⚠️ Unrecognized event type %q for user %s, recording with zero points", eventType, externalUserID)
		}

		if recognized {
			var stats models.UserStats
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				Where("external_user_id = ?", externalUserID).
				First(&stats).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("%w: stats record for %s", ErrNotFound, externalUserID)
				}
				return err
			}

			// (1) points from pre-mutation state
			points := rule.points(&stats, eventData)

			// (2) stat delta
			if rule.mutate != nil {
				rule.mutate(&stats, eventData)
			}
			if spent, ok := eventData["timeSpent"].(float64); ok && spent > 0 {
				stats.TotalTimeSpent += int64(spent)
			}
			if err := tx.Save(&stats).Error; err != nil {
				return err
			}

			// (3) streak continuation
			if rule.streak != "" {
				streakValue, err := s.Streaks.updateStreakTx(tx, externalUserID, rule.streak, time.Now())
				if err != nil {
					return err
				}
				result.StreakValue = streakValue
				if rule.streak == StreakLogin {
					if err := s.Badges.advanceAchievementsTx(tx, externalUserID, models.AchievementTypeLoginStreak, int64(streakValue)); err != nil {
						return err
					}
				}
			}

			// (4) award points
			if points > 0 {
				award, err := s.Progression.awardPointsTx(tx, externalUserID, points, eventReason(eventType))
				if err != nil {
					return err
				}
				result.PointsAwarded = points
				result.LeveledUp = award.LeveledUp
				result.NewLevel = award.NewLevel
			}

			// achievement progress from the post-mutation counter
			if rule.achievement != nil {
				achType, value := rule.achievement(&stats)
				if err := s.Badges.advanceAchievementsTx(tx, externalUserID, achType, value); err != nil {
					return err
				}
			}
		}

		// (5) audit row — written for unrecognized types too
		event := models.GamificationEvent{
			ExternalUserID: externalUserID,
			EventType:      eventType,
			EventData:      string(payload),
			PointsAwarded:  result.PointsAwarded,
		}
		return tx.Create(&event).Error
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func eventReason(t models.EventType) string {
	return "event:" + string(t)
}
