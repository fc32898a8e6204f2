package services

import (
	"errors"
	"testing"

	"investlearn-gamification/models"

	"github.com/google/uuid"
)

func TestUnlockBadgeIdempotent(t *testing.T) {
	db := testDatabase(t)
	svc := newTestServices(db)
	userID := uuid.NewString()

	if _, err := svc.progression.GetOrCreateProgress(userID); err != nil {
		t.Fatalf("GetOrCreateProgress failed: %v", err)
	}

	var badge models.Badge
	if err := db.Where("code = ?", "welcome-aboard").First(&badge).Error; err != nil {
		t.Fatalf("catalog badge missing: %v", err)
	}

	unlocked, err := svc.badges.UnlockBadge(userID, badge.ID)
	if err != nil {
		t.Fatalf("UnlockBadge failed: %v", err)
	}
	if !unlocked {
		t.Fatal("first unlock returned false")
	}

	var prog models.UserProgress
	if err := db.Where("external_user_id = ?", userID).First(&prog).Error; err != nil {
		t.Fatalf("failed to load progress: %v", err)
	}
	if prog.TotalPoints != badge.Points {
		t.Fatalf("badge points not awarded: total=%d want %d", prog.TotalPoints, badge.Points)
	}

	// Second unlock: soft conflict, no extra points.
	unlocked, err = svc.badges.UnlockBadge(userID, badge.ID)
	if err != nil {
		t.Fatalf("second UnlockBadge failed: %v", err)
	}
	if unlocked {
		t.Fatal("second unlock returned true")
	}

	if err := db.Where("external_user_id = ?", userID).First(&prog).Error; err != nil {
		t.Fatalf("failed to reload progress: %v", err)
	}
	if prog.TotalPoints != badge.Points {
		t.Fatalf("double unlock changed points: total=%d want %d", prog.TotalPoints, badge.Points)
	}

	var count int64
	if err := db.Model(&models.UserBadge{}).
		Where("external_user_id = ? AND badge_id = ?", userID, badge.ID).
		Count(&count).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("user_badge rows = %d, want 1", count)
	}
}

func TestUnlockBadgeUnknownID(t *testing.T) {
	db := testDatabase(t)
	svc := newTestServices(db)
	userID := uuid.NewString()

	if _, err := svc.progression.GetOrCreateProgress(userID); err != nil {
		t.Fatalf("GetOrCreateProgress failed: %v", err)
	}

	_, err := svc.badges.UnlockBadge(userID, uuid.NewString())
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}

func TestGetUserAchievementsIncludesCatalog(t *testing.T) {
	db := testDatabase(t)
	svc := newTestServices(db)
	userID := uuid.NewString()

	achievements, err := svc.badges.GetUserAchievements(userID)
	if err != nil {
		t.Fatalf("GetUserAchievements failed: %v", err)
	}
	if len(achievements) != len(models.AchievementCatalog) {
		t.Fatalf("achievements = %d, want the full catalog (%d)", len(achievements), len(models.AchievementCatalog))
	}
	for _, ua := range achievements {
		if ua.Progress != 0 || ua.IsCompleted {
			t.Fatalf("fresh user has non-zero achievement state: %+v", ua)
		}
	}
}

func TestAchievementCompletionAwardsRewards(t *testing.T) {
	db := testDatabase(t)
	svc := newTestServices(db)
	userID := uuid.NewString()

	// Five distinct tool uses complete "Tool Explorer" (target 5), which
	// rewards 75 points and the Toolbelt badge.
	tools := []string{"screener", "profiler", "simulator", "planner", "comparer"}
	for _, tool := range tools {
		if _, err := svc.tracker.TrackEvent(userID, models.EventUseTool, map[string]any{"toolId": tool}); err != nil {
			t.Fatalf("TrackEvent failed: %v", err)
		}
	}

	var ua models.UserAchievement
	err := db.Joins("JOIN achievements ON achievements.id = user_achievements.achievement_id").
		Where("user_achievements.external_user_id = ? AND achievements.type = ?", userID, models.AchievementTypeTools).
		First(&ua).Error
	if err != nil {
		t.Fatalf("failed to load achievement: %v", err)
	}
	if !ua.IsCompleted || ua.CompletedAt == nil {
		t.Fatalf("tool achievement not completed: %+v", ua)
	}

	var toolbeltCount int64
	err = db.Model(&models.UserBadge{}).
		Joins("JOIN badges ON badges.id = user_badges.badge_id").
		Where("user_badges.external_user_id = ? AND badges.code = ?", userID, "toolbelt").
		Count(&toolbeltCount).Error
	if err != nil {
		t.Fatalf("failed to count badge: %v", err)
	}
	if toolbeltCount != 1 {
		t.Fatalf("toolbelt badge rows = %d, want 1", toolbeltCount)
	}
}
