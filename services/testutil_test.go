package services

import (
	"errors"
	"os"
	"sync"
	"testing"

	"investlearn-gamification/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

var errMissingDSN = errors.New("missing TEST_POSTGRES_DSN")

var (
	dbOnce sync.Once
	testDB *gorm.DB
	dbErr  error
)

// testDatabase opens (once) the Postgres pointed at by TEST_POSTGRES_DSN and
// migrates the full schema. Tests that need a database skip when the DSN is
// unset so the pure-logic tests still run everywhere.
func testDatabase(tb testing.TB) *gorm.DB {
	tb.Helper()

	dbOnce.Do(func() {
		dsn := os.Getenv("TEST_POSTGRES_DSN")
		if dsn == "" {
			dbErr = errMissingDSN
			return
		}

		var err error
		testDB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
			Logger: gormLogger.Default.LogMode(gormLogger.Silent),
		})
		if err != nil {
			dbErr = err
			return
		}

		if err := testDB.AutoMigrate(
			&models.UserProgress{},
			&models.UserStats{},
			&models.Badge{},
			&models.UserBadge{},
			&models.Achievement{},
			&models.UserAchievement{},
			&models.GamificationEvent{},
			&models.GamificationNotification{},
			&models.PlatformUser{},
		); err != nil {
			dbErr = err
			return
		}

		if err := SeedCatalog(testDB); err != nil {
			dbErr = err
			return
		}
	})

	if errors.Is(dbErr, errMissingDSN) {
		tb.Skip("set TEST_POSTGRES_DSN to run integration tests")
	}
	if dbErr != nil {
		tb.Fatalf("failed to init test db: %v", dbErr)
	}
	return testDB
}

// testServices wires the full service graph against the test database.
type testServices struct {
	progression *ProgressionService
	streaks     *StreakService
	badges      *BadgeService
	tracker     *EventTrackerService
	leaderboard *LeaderboardService
}

func newTestServices(db *gorm.DB) *testServices {
	progression := NewProgressionService(db)
	streaks := NewStreakService(db)
	badges := NewBadgeService(db, progression)
	return &testServices{
		progression: progression,
		streaks:     streaks,
		badges:      badges,
		tracker:     NewEventTrackerService(db, progression, streaks, badges),
		leaderboard: NewLeaderboardService(db),
	}
}
