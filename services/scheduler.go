// services/scheduler.go
package services

import (
	"log"
	"time"

	"investlearn-gamification/models"

	"github.com/go-co-op/gocron/v2"
)

// notificationRetention is how long delivered notifications stay published
// before the hourly sweep archives them.
const notificationRetention = 30 * 24 * time.Hour

// StartRetentionScheduler archives stale notifications on the hour so the SSE
// poll query stays small.
func (s *NotificationService) StartRetentionScheduler() {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	_, _ = sched.NewJob(
		gocron.DurationJob(1*time.Hour),
		gocron.NewTask(func() {
			cutoff := time.Now().Add(-notificationRetention)
			res := s.DB.Model(&models.GamificationNotification{}).
				Where("status = ? AND created_at < ?", models.NotificationStatusPublished, cutoff).
				Update("status", models.NotificationStatusArchived)
			if res.Error != nil {
				log.Printf("[Scheduler] notification archive error: %v", res.Error)
				return
			}
			if res.RowsAffected > 0 {
				log.Printf("✅ Archived %d stale notifications", res.RowsAffected)
			}
		}),
	)
}
