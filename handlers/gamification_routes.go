// handlers/gamification_routes.go
package handlers

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"investlearn-gamification/middleware"
	"investlearn-gamification/models"
	"investlearn-gamification/services"
	"investlearn-gamification/utils"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// eventLabel turns an event type constant into a display label, e.g.
// "COMPLETE_RISK_ASSESSMENT" -> "Complete Risk Assessment".
var titleCaser = cases.Title(language.English)

func eventLabel(t models.EventType) string {
	words := strings.ReplaceAll(strings.ToLower(string(t)), "_", " ")
	return titleCaser.String(words)
}

// serviceError maps service-layer sentinel errors to HTTP responses.
func serviceError(c *fiber.Ctx, err error, action string) error {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": action + " failed",
			"cause": err.Error(),
		})
	case errors.Is(err, services.ErrValidation):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": action + " failed",
			"cause": err.Error(),
		})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": action + " failed",
			"cause": err.Error(),
		})
	}
}

func SetupGamificationRoutes(
	app *fiber.App,
	tracker *services.EventTrackerService,
	progressionService *services.ProgressionService,
	badgeService *services.BadgeService,
	streakService *services.StreakService,
	notificationService *services.NotificationService,
	authClient *services.AuthServiceClient,
) {
	// 🔐 Secured routes — require user context (userID, roles)
	// The gateway forwards paths like /api/v1/gamification/s/user/progress -> /user/progress
	securedGroup := app.Group("/", middleware.UserContextMiddleware())

	securedGroup.Get("/user/progress", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		summary, err := progressionService.GetProgressSummary(userID)
		if err != nil {
			return serviceError(c, err, "fetch progress")
		}
		return c.JSON(summary)
	})

	securedGroup.Post("/user/track-event", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		type Req struct {
			EventType string         `json:"event_type"`
			EventData map[string]any `json:"event_data"`
		}
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid JSON",
				"cause": err.Error(),
			})
		}

		result, err := tracker.TrackEvent(userID, models.EventType(req.EventType), req.EventData)
		if err != nil {
			return serviceError(c, err, "track event")
		}

		// Clients render the refreshed aggregate straight from this response.
		summary, err := progressionService.GetProgressSummary(userID)
		if err != nil {
			return serviceError(c, err, "fetch progress")
		}

		return c.JSON(fiber.Map{
			"result":   result,
			"progress": summary,
		})
	})

	securedGroup.Post("/user/award-points", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		type Req struct {
			Points int64  `json:"points"`
			Reason string `json:"reason"`
		}
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid JSON",
				"cause": err.Error(),
			})
		}

		result, err := progressionService.AwardPoints(userID, req.Points, req.Reason)
		if err != nil {
			return serviceError(c, err, "award points")
		}
		return c.JSON(result)
	})

	securedGroup.Post("/user/unlock-badge", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		type Req struct {
			BadgeID string `json:"badge_id"`
		}
		var req Req
		if err := c.BodyParser(&req); err != nil || req.BadgeID == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "badge_id is required",
			})
		}

		unlocked, err := badgeService.UnlockBadge(userID, req.BadgeID)
		if err != nil {
			return serviceError(c, err, "unlock badge")
		}
		if !unlocked {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error":    "badge already unlocked",
				"badge_id": req.BadgeID,
			})
		}
		return c.JSON(fiber.Map{
			"message":  "badge unlocked",
			"badge_id": req.BadgeID,
		})
	})

	securedGroup.Put("/user/streak", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		type Req struct {
			StreakType string `json:"streak_type"`
		}
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid JSON",
				"cause": err.Error(),
			})
		}

		streak, err := streakService.UpdateStreak(userID, services.StreakType(req.StreakType))
		if err != nil {
			return serviceError(c, err, "update streak")
		}
		return c.JSON(fiber.Map{
			"streak_type": req.StreakType,
			"streak":      streak,
		})
	})

	securedGroup.Get("/user/achievements", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		achievements, err := badgeService.GetUserAchievements(userID)
		if err != nil {
			return serviceError(c, err, "fetch achievements")
		}
		return c.JSON(achievements)
	})

	securedGroup.Get("/user/badges", func(c *fiber.Ctx) error {
		badges, err := badgeService.ListBadges()
		if err != nil {
			return serviceError(c, err, "fetch badges")
		}
		return c.JSON(badges)
	})

	securedGroup.Get("/user/events", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		page, _ := strconv.Atoi(c.Query("page", "1"))
		size, _ := strconv.Atoi(c.Query("size", "20"))

		events, total, err := progressionService.GetEventHistory(userID, page, size)
		if err != nil {
			return serviceError(c, err, "fetch events")
		}

		response := make([]fiber.Map, 0, len(events))
		for _, ev := range events {
			response = append(response, fiber.Map{
				"id":             ev.ID,
				"event_type":     ev.EventType,
				"label":          eventLabel(ev.EventType),
				"event_data":     ev.EventData,
				"points_awarded": ev.PointsAwarded,
				"badge_id":       ev.BadgeID,
				"created_at":     ev.CreatedAt,
			})
		}
		return c.JSON(fiber.Map{
			"events": response,
			"total":  total,
			"page":   page,
			"size":   size,
		})
	})

	securedGroup.Get("/user/notifications", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		limit, _ := strconv.Atoi(c.Query("limit", "50"))

		notifications, err := notificationService.ListNotifications(userID, limit)
		if err != nil {
			return serviceError(c, err, "fetch notifications")
		}
		return c.JSON(notifications)
	})

	securedGroup.Post("/user/notifications/:id/viewed", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		if err := notificationService.MarkViewed(userID, c.Params("id")); err != nil {
			return serviceError(c, err, "mark notification viewed")
		}
		return c.JSON(fiber.Map{"message": "notification marked as viewed"})
	})

	// SSE cannot send custom headers from EventSource, so this route
	// authenticates via query params instead of the user-context headers.
	app.Get("/user/notifications/stream",
		middleware.SSEAuthMiddleware(authClient),
		notificationService.StreamUserNotificationsSSE)

	// Admin endpoints
	adminGroup := app.Group("/s/admin", middleware.UserContextMiddleware(), middleware.RequireRole("admin"))

	adminGroup.Post("/points/grant", func(c *fiber.Ctx) error {
		type Req struct {
			UserID string `json:"user_id" validate:"required,uuid"`
			Points int64  `json:"points" validate:"required,min=1"`
			Reason string `json:"reason" validate:"max=255"`
		}
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid JSON",
				"cause": err.Error(),
			})
		}
		if req.UserID == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "user_id is required",
			})
		}

		reason := req.Reason
		if reason == "" {
			reason = "admin:grant"
		}
		result, err := progressionService.AwardPoints(req.UserID, req.Points, reason)
		if err != nil {
			return serviceError(c, err, "grant points")
		}

		return c.JSON(fiber.Map{
			"message": "points granted successfully",
			"user_id": req.UserID,
			"points":  req.Points,
			"result":  result,
		})
	})

	adminGroup.Post("/badges/:id/icon", func(c *fiber.Ctx) error {
		badgeID := c.Params("id")

		fileHeader, err := c.FormFile("icon")
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "icon file is required",
				"cause": err.Error(),
			})
		}

		var badge models.Badge
		if err := badgeService.DB.Where("id = ?", badgeID).First(&badge).Error; err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "badge not found",
				"cause": err.Error(),
			})
		}

		key := fmt.Sprintf("badges/%s/icon", badge.Code)
		iconURL, err := utils.UploadIconToR2(fileHeader, key)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "icon upload failed",
				"cause": err.Error(),
			})
		}

		if err := badgeService.DB.Model(&badge).Update("icon_url", iconURL).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to save icon URL",
				"cause": err.Error(),
			})
		}

		return c.JSON(fiber.Map{
			"message":  "icon uploaded",
			"badge_id": badgeID,
			"icon_url": iconURL,
		})
	})
}
