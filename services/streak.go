package services

import (
	"errors"
	"fmt"
	"time"

	"investlearn-gamification/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StreakType selects which consecutive-day counter to advance.
type StreakType string

const (
	StreakLogin    StreakType = "login"
	StreakLearning StreakType = "learning"
)

// Streak milestones worth telling the user about.
var streakMilestones = map[int]bool{7: true, 30: true, 100: true}

type StreakService struct {
	DB *gorm.DB
}

func NewStreakService(db *gorm.DB) *StreakService {
	return &StreakService{DB: db}
}

// dateOf truncates to a UTC calendar day. Streak comparisons are calendar-day
// based, not 24-hour windows.
func dateOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// nextStreak is the streak state machine: first activity starts at 1,
// consecutive days increment, the same day repeated is a no-op, and any gap
// resets to 1.
func nextStreak(current int, lastActivity *time.Time, now time.Time) int {
	if lastActivity == nil {
		return 1
	}
	today := dateOf(now)
	last := dateOf(*lastActivity)
	switch {
	case last.Equal(today):
		if current < 1 {
			return 1
		}
		return current
	case last.Equal(today.AddDate(0, 0, -1)):
		return current + 1
	default:
		return 1
	}
}

// UpdateStreak advances the given streak for a user and persists the new value
// with today's date. Idempotent for repeated same-day calls.
func (s *StreakService) UpdateStreak(externalUserID string, streakType StreakType) (int, error) {
	if streakType != StreakLogin && streakType != StreakLearning {
		return 0, fmt.Errorf("%w: unknown streak type %q", ErrValidation, streakType)
	}
	var newStreak int
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		newStreak, err = s.updateStreakTx(tx, externalUserID, streakType, time.Now())
		return err
	})
	if err != nil {
		return 0, err
	}
	return newStreak, nil
}

// updateStreakTx is the in-transaction variant used by the event tracker, so a
// failed event rolls back the streak change too.
func (s *StreakService) updateStreakTx(tx *gorm.DB, externalUserID string, streakType StreakType, now time.Time) (int, error) {
	var prog models.UserProgress
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("external_user_id = ?", externalUserID).
		First(&prog).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, fmt.Errorf("%w: progress record for %s", ErrNotFound, externalUserID)
		}
		return 0, err
	}

	now = now.UTC()
	var updated int
	switch streakType {
	case StreakLogin:
		updated = nextStreak(prog.LoginStreak, prog.LastLoginDate, now)
		prog.LoginStreak = updated
		prog.LastLoginDate = &now
	case StreakLearning:
		updated = nextStreak(prog.LearningStreak, prog.LastLearningDate, now)
		prog.LearningStreak = updated
		prog.LastLearningDate = &now
	}

	prog.ExperiencePoints = prog.TotalPoints
	if err := tx.Save(&prog).Error; err != nil {
		return 0, err
	}

	if streakMilestones[updated] {
		notif := models.GamificationNotification{
			UserID:  externalUserID,
			Type:    models.NotificationStreakMilestone,
			Title:   fmt.Sprintf("%d-day %s streak!", updated, streakType),
			Message: fmt.Sprintf("You've kept your %s streak alive for %d days in a row.", streakType, updated),
			Status:  models.NotificationStatusPublished,
		}
		if err := tx.Create(&notif).Error; err != nil {
			return 0, err
		}
	}

	return updated, nil
}
