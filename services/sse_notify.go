package services

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"investlearn-gamification/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type NotificationService struct {
	DB *gorm.DB
}

func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{DB: db}
}

// StreamUserNotificationsSSE streams gamification notifications (level-ups,
// badge unlocks, streak milestones) for the authenticated user in real time.
func (s *NotificationService) StreamUserNotificationsSSE(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	// SSE headers
	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")
	c.Set("X-Accel-Buffering", "no") // nginx

	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()

		var lastMaxCreatedAt time.Time

		// Initialize cursor so only notifications created after connect are pushed
		var latest models.GamificationNotification
		if err := s.DB.
			Where("user_id = ?", userID).
			Order("created_at DESC").
			First(&latest).Error; err == nil {
			lastMaxCreatedAt = latest.CreatedAt
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("SSE init error for user %s: %v", userID, err)
		}

		// Initial keepalive (comment event)
		w.WriteString(":\n\n")
		w.Flush()

		for {
			select {
			case <-ticker.C:
				var pending []models.GamificationNotification

				err := s.DB.
					Where("user_id = ? AND status = ?", userID, models.NotificationStatusPublished).
					Where("created_at > ?", lastMaxCreatedAt).
					Order("created_at ASC").
					Find(&pending).Error

				if err != nil {
					log.Printf("SSE query error for user %s: %v", userID, err)
					continue
				}

				if len(pending) == 0 {
					continue
				}

				lastMaxCreatedAt = pending[len(pending)-1].CreatedAt

				for _, n := range pending {
					payload, _ := json.Marshal(n)
					fmt.Fprintf(w, "event: %s\ndata: %s\n\n", n.Type, payload)
				}

				if err := w.Flush(); err != nil {
					// Client disconnected
					return
				}

			case <-c.Context().Done():
				// Client closed connection
				return
			}
		}
	})

	return nil
}

// ListNotifications returns recent published notifications, unviewed first.
func (s *NotificationService) ListNotifications(userID string, limit int) ([]models.GamificationNotification, error) {
	if limit < 1 || limit > 100 {
		limit = 50
	}
	var notifs []models.GamificationNotification
	err := s.DB.
		Where("user_id = ? AND status = ?", userID, models.NotificationStatusPublished).
		Order("viewed ASC, created_at DESC").
		Limit(limit).
		Find(&notifs).Error
	return notifs, err
}

// MarkViewed flags a notification as seen by its owner.
func (s *NotificationService) MarkViewed(userID, notificationID string) error {
	res := s.DB.Model(&models.GamificationNotification{}).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Update("viewed", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: notification %s", ErrNotFound, notificationID)
	}
	return nil
}
