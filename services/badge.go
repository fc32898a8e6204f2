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

type BadgeService struct {
	DB          *gorm.DB
	Progression *ProgressionService
}

func NewBadgeService(db *gorm.DB, progression *ProgressionService) *BadgeService {
	return &BadgeService{DB: db, Progression: progression}
}

// UnlockBadge unlocks a badge for a user and awards its point value. Returns
// false (no error) when the badge is already unlocked; the second attempt
// never double-awards.
func (s *BadgeService) UnlockBadge(externalUserID, badgeID string) (bool, error) {
	var unlocked bool
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		unlocked, err = s.unlockBadgeTx(tx, externalUserID, badgeID)
		return err
	})
	if err != nil {
		return false, err
	}
	return unlocked, nil
}

func (s *BadgeService) unlockBadgeTx(tx *gorm.DB, externalUserID, badgeID string) (bool, error) {
	var badge models.Badge
	if err := tx.Where("id = ? AND is_active = ?", badgeID, true).First(&badge).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, fmt.Errorf("%w: badge %s", ErrNotFound, badgeID)
		}
		return false, err
	}

	// The unique (user, badge) index arbitrates concurrent unlocks: only the
	// insert that lands gets to award points.
	userBadge := models.UserBadge{
		ExternalUserID: externalUserID,
		BadgeID:        badge.ID,
		UnlockedAt:     time.Now().UTC(),
	}
	res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&userBadge)
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil // already unlocked
	}

	if badge.Points > 0 {
		if _, err := s.Progression.awardPointsTx(tx, externalUserID, badge.Points, "badge:"+badge.Code); err != nil {
			return false, err
		}
	}

	event := models.GamificationEvent{
		ExternalUserID: externalUserID,
		EventType:      models.EventBadgeUnlocked,
		EventData:      fmt.Sprintf(`{"badge_code":%q}`, badge.Code),
		PointsAwarded:  badge.Points,
		BadgeID:        &badge.ID,
	}
	if err := tx.Create(&event).Error; err != nil {
		return false, err
	}

	notif := models.GamificationNotification{
		UserID:  externalUserID,
		Type:    models.NotificationBadgeUnlocked,
		Title:   fmt.Sprintf("Badge unlocked: %s", badge.Name),
		Message: badge.Description,
		Points:  badge.Points,
		BadgeID: &badge.ID,
		Status:  models.NotificationStatusPublished,
	}
	if err := tx.Create(&notif).Error; err != nil {
		return false, err
	}

	log.Printf("🎖️ Badge unlocked: %s → %s (+%d pts)", badge.Code, externalUserID, badge.Points)
	return true, nil
}

// unlockBadgeByCodeTx resolves a catalog code and unlocks it. Used for
// achievement badge rewards.
func (s *BadgeService) unlockBadgeByCodeTx(tx *gorm.DB, externalUserID, code string) (bool, error) {
	var badge models.Badge
	if err := tx.Where("code = ? AND is_active = ?", code, true).First(&badge).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, fmt.Errorf("%w: badge code %s", ErrNotFound, code)
		}
		return false, err
	}
	return s.unlockBadgeTx(tx, externalUserID, badge.ID)
}

// advanceAchievementsTx moves every achievement of the given type toward its
// target. Progress is monotonic; completion flips exactly once and triggers
// the reward inside the caller's transaction.
func (s *BadgeService) advanceAchievementsTx(tx *gorm.DB, externalUserID string, achType models.AchievementType, value int64) error {
	var achievements []models.Achievement
	if err := tx.Where("type = ?", achType).Find(&achievements).Error; err != nil {
		return err
	}

	for _, ach := range achievements {
		ua := models.UserAchievement{
			ExternalUserID: externalUserID,
			AchievementID:  ach.ID,
		}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&ua).Error; err != nil {
			return err
		}
		if err := tx.Where("external_user_id = ? AND achievement_id = ?", externalUserID, ach.ID).
			First(&ua).Error; err != nil {
			return err
		}
		if ua.IsCompleted {
			continue
		}

		progress := value
		if progress > ach.Target {
			progress = ach.Target
		}
		if progress < ua.Progress {
			continue // never move backwards
		}
		ua.Progress = progress

		if ua.Progress >= ach.Target {
			now := time.Now().UTC()
			ua.IsCompleted = true
			ua.CompletedAt = &now
		}

		if err := tx.Save(&ua).Error; err != nil {
			return err
		}

		if !ua.IsCompleted {
			continue
		}

		if ach.RewardPoints > 0 {
			if _, err := s.Progression.awardPointsTx(tx, externalUserID, ach.RewardPoints, "achievement:"+ach.Code); err != nil {
				return err
			}
		}
		if ach.RewardBadgeCode != "" {
			if _, err := s.unlockBadgeByCodeTx(tx, externalUserID, ach.RewardBadgeCode); err != nil {
				return err
			}
		}

		notif := models.GamificationNotification{
			UserID:  externalUserID,
			Type:    models.NotificationAchievementCompleted,
			Title:   fmt.Sprintf("Achievement completed: %s", ach.Name),
			Message: ach.Description,
			Points:  ach.RewardPoints,
			Status:  models.NotificationStatusPublished,
		}
		if err := tx.Create(&notif).Error; err != nil {
			return err
		}
		log.Printf("🏆 Achievement completed: %s → %s", ach.Code, externalUserID)
	}

	return nil
}

// ListBadges returns the active badge catalog.
func (s *BadgeService) ListBadges() ([]models.Badge, error) {
	var badges []models.Badge
	err := s.DB.Where("is_active = ?", true).Order("created_at ASC").Find(&badges).Error
	return badges, err
}

// GetUserAchievements returns every catalog achievement with the user's
// progress merged in (zero progress for untouched ones).
func (s *BadgeService) GetUserAchievements(externalUserID string) ([]models.UserAchievement, error) {
	var achievements []models.Achievement
	if err := s.DB.Order("created_at ASC").Find(&achievements).Error; err != nil {
		return nil, err
	}

	var rows []models.UserAchievement
	if err := s.DB.Where("external_user_id = ?", externalUserID).Find(&rows).Error; err != nil {
		return nil, err
	}
	byAchievement := make(map[string]models.UserAchievement, len(rows))
	for _, r := range rows {
		byAchievement[r.AchievementID] = r
	}

	out := make([]models.UserAchievement, 0, len(achievements))
	for _, ach := range achievements {
		ua, ok := byAchievement[ach.ID]
		if !ok {
			ua = models.UserAchievement{
				ExternalUserID: externalUserID,
				AchievementID:  ach.ID,
			}
		}
		ua.Achievement = ach
		out = append(out, ua)
	}
	return out, nil
}
