package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"investlearn-gamification/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProgressionService struct {
	DB *gorm.DB
}

func NewProgressionService(db *gorm.DB) *ProgressionService {
	return &ProgressionService{DB: db}
}

// AwardResult reports the outcome of a point award.
type AwardResult struct {
	NewTotalPoints int64 `json:"new_total_points"`
	LeveledUp      bool  `json:"leveled_up"`
	NewLevel       int   `json:"new_level"`
}

// ProgressSummary is the aggregate returned by GET /user/progress.
type ProgressSummary struct {
	Progress     *models.UserProgress     `json:"progress"`
	Badges       []models.UserBadge       `json:"badges"`
	Achievements []models.UserAchievement `json:"achievements"`
	Stats        *models.UserStats        `json:"stats"`
}

// GetOrCreateProgress fetches a user's progress row, inserting zero-initialized
// UserProgress and UserStats rows on first access. Concurrent first callers are
// resolved by the unique index on external_user_id: the insert is ON CONFLICT
// DO NOTHING and the row is re-read afterwards, so two racing callers always
// converge on a single row.
func (s *ProgressionService) GetOrCreateProgress(externalUserID string) (*models.UserProgress, error) {
	var prog models.UserProgress
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		_, nextThreshold := LevelForPoints(0)
		fresh := models.UserProgress{
			ExternalUserID:        externalUserID,
			TotalPoints:           0,
			Level:                 1,
			ExperienceToNextLevel: nextThreshold,
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "external_user_id"}},
			DoNothing: true,
		}).Create(&fresh).Error; err != nil {
			return err
		}

		stats := models.UserStats{
			ExternalUserID: externalUserID,
			ToolsUsed:      models.StringSet{},
			FavoriteTools:  models.StringSet{},
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "external_user_id"}},
			DoNothing: true,
		}).Create(&stats).Error; err != nil {
			return err
		}

		return tx.Where("external_user_id = ?", externalUserID).First(&prog).Error
	})
	if err != nil {
		return nil, err
	}
	return &prog, nil
}

// AwardPoints atomically adds points, recomputes level from the threshold
// table, and logs the award. The progress row must already exist.
func (s *ProgressionService) AwardPoints(externalUserID string, points int64, reason string) (*AwardResult, error) {
	if points <= 0 {
		return nil, fmt.Errorf("%w: points must be positive", ErrValidation)
	}
	var result *AwardResult
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		result, err = s.awardPointsTx(tx, externalUserID, points, reason)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// awardPointsTx is the in-transaction award effect shared with the event
// tracker and badge unlock. The progress row is taken FOR UPDATE so concurrent
// awards for the same user serialize; different users never contend.
func (s *ProgressionService) awardPointsTx(tx *gorm.DB, externalUserID string, points int64, reason string) (*AwardResult, error) {
	var prog models.UserProgress
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("external_user_id = ?", externalUserID).
		First(&prog).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: progress record for %s", ErrNotFound, externalUserID)
		}
		return nil, err
	}

	oldLevel := prog.Level
	newTotal := prog.TotalPoints + points
	if newTotal < 0 {
		return nil, fmt.Errorf("%w: award of %d would drive total below zero", ErrInvariant, points)
	}

	newLevel, nextThreshold := LevelForPoints(newTotal)
	if newLevel < oldLevel {
		// Level is derived, never stored independently; a downward move on a
		// positive award means the stored row was already inconsistent.
		if points > 0 {
			return nil, fmt.Errorf("%w: level would drop from %d to %d on positive award", ErrInvariant, oldLevel, newLevel)
		}
	}

	prog.TotalPoints = newTotal
	prog.ExperiencePoints = newTotal
	prog.Level = newLevel
	prog.ExperienceToNextLevel = nextThreshold

	leveledUp := newLevel > oldLevel
	if leveledUp {
		now := time.Now().UTC()
		prog.LastLevelUpAt = &now
	}

	if err := tx.Save(&prog).Error; err != nil {
		return nil, err
	}

	event := models.GamificationEvent{
		ExternalUserID: externalUserID,
		EventType:      models.EventPointsAwarded,
		EventData:      fmt.Sprintf(`{"reason":%q,"points":%d}`, reason, points),
		PointsAwarded:  points,
	}
	if err := tx.Create(&event).Error; err != nil {
		return nil, err
	}

	if leveledUp {
		notif := models.GamificationNotification{
			UserID:  externalUserID,
			Type:    models.NotificationLevelUp,
			Title:   fmt.Sprintf("Level %d reached!", newLevel),
			Message: fmt.Sprintf("You've earned %d total points and reached level %d.", newTotal, newLevel),
			Points:  points,
			Level:   newLevel,
			Status:  models.NotificationStatusPublished,
		}
		if err := tx.Create(&notif).Error; err != nil {
			return nil, err
		}
		log.Printf("🎉 Level up: %s → L%d (total=%d, reason: %s)", externalUserID, newLevel, newTotal, reason)
	}

	return &AwardResult{
		NewTotalPoints: newTotal,
		LeveledUp:      leveledUp,
		NewLevel:       newLevel,
	}, nil
}

// GetProgressSummary assembles the aggregate for GET /user/progress, creating
// the progress and stats rows on first access.
func (s *ProgressionService) GetProgressSummary(externalUserID string) (*ProgressSummary, error) {
	prog, err := s.GetOrCreateProgress(externalUserID)
	if err != nil {
		return nil, err
	}

	var badges []models.UserBadge
	if err := s.DB.Preload("Badge").
		Where("external_user_id = ?", externalUserID).
		Order("unlocked_at DESC").
		Find(&badges).Error; err != nil {
		return nil, err
	}

	var achievements []models.UserAchievement
	if err := s.DB.Preload("Achievement").
		Where("external_user_id = ?", externalUserID).
		Find(&achievements).Error; err != nil {
		return nil, err
	}

	var stats models.UserStats
	if err := s.DB.Where("external_user_id = ?", externalUserID).First(&stats).Error; err != nil {
		return nil, err
	}

	return &ProgressSummary{
		Progress:     prog,
		Badges:       badges,
		Achievements: achievements,
		Stats:        &stats,
	}, nil
}

// GetEventHistory returns the audit log for a user, newest first.
func (s *ProgressionService) GetEventHistory(externalUserID string, page, size int) ([]models.GamificationEvent, int64, error) {
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 20
	}

	var total int64
	if err := s.DB.Model(&models.GamificationEvent{}).
		Where("external_user_id = ?", externalUserID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var events []models.GamificationEvent
	if err := s.DB.Where("external_user_id = ?", externalUserID).
		Order("created_at DESC").
		Limit(size).Offset((page - 1) * size).
		Find(&events).Error; err != nil {
		return nil, 0, err
	}
	return events, total, nil
}
