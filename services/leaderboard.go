package services

import (
	"errors"
	"fmt"

	"investlearn-gamification/models"

	"gorm.io/gorm"
)

// LeaderboardEntry is one ranked row. Rank is a row number over the ordering
// (dense, 1-based, no gaps); ties share points but not rank.
type LeaderboardEntry struct {
	Rank              int     `json:"rank"`
	ExternalUserID    string  `json:"external_user_id"`
	Username          string  `json:"username,omitempty"`
	ProfilePictureURL *string `json:"profile_picture_url,omitempty"`
	TotalPoints       int64   `json:"total_points"`
	Level             int     `json:"level"`
	BadgesCount       int64   `json:"badges_count"`
}

const maxLeaderboardSize = 100

type LeaderboardService struct {
	DB *gorm.DB
}

func NewLeaderboardService(db *gorm.DB) *LeaderboardService {
	return &LeaderboardService{DB: db}
}

// GetLeaderboard returns the top users by total points, descending. The period
// parameter is accepted for forward compatibility but only all-time ranking is
// computed; no historical windowing exists yet.
func (s *LeaderboardService) GetLeaderboard(period string, limit int) ([]LeaderboardEntry, error) {
	if limit < 1 || limit > maxLeaderboardSize {
		limit = maxLeaderboardSize
	}
	_ = period // all_time only

	var entries []LeaderboardEntry
	err := s.DB.Raw(`
		SELECT
			ROW_NUMBER() OVER (ORDER BY up.total_points DESC, up.created_at ASC) AS rank,
			up.external_user_id,
			pu.username,
			pu.profile_picture_url,
			up.total_points,
			up.level,
			(SELECT COUNT(*) FROM user_badges ub WHERE ub.external_user_id = up.external_user_id) AS badges_count
		FROM user_progresses up
		LEFT JOIN platform_users pu
			ON pu.external_user_id = up.external_user_id AND pu.deleted_at IS NULL
		WHERE up.deleted_at IS NULL
			AND (pu.is_banned IS NOT TRUE)
		ORDER BY up.total_points DESC, up.created_at ASC
		LIMIT ?
	`, limit).Scan(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// GetUserRank returns a single user's all-time rank (competition style: one
// plus the number of users with strictly more points).
func (s *LeaderboardService) GetUserRank(externalUserID string) (int64, error) {
	var prog models.UserProgress
	if err := s.DB.Select("total_points").
		Where("external_user_id = ?", externalUserID).
		First(&prog).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, fmt.Errorf("%w: progress record for %s", ErrNotFound, externalUserID)
		}
		return 0, err
	}

	var rank int64
	err := s.DB.Raw(`
		SELECT COUNT(*) + 1
		FROM user_progresses
		WHERE deleted_at IS NULL AND total_points > ?
	`, prog.TotalPoints).Scan(&rank).Error
	if err != nil {
		return 0, err
	}
	return rank, nil
}
