// handlers/leaderboard.go
package handlers

import (
	"strconv"

	"investlearn-gamification/middleware"
	"investlearn-gamification/services"

	"github.com/gofiber/fiber/v2"
)

func SetupLeaderboardRoutes(app *fiber.App, leaderboardService *services.LeaderboardService) {
	securedGroup := app.Group("/", middleware.UserContextMiddleware())

	securedGroup.Get("/leaderboard", func(c *fiber.Ctx) error {
		period := c.Query("period", "all_time")
		limit, _ := strconv.Atoi(c.Query("limit", "10"))

		entries, err := leaderboardService.GetLeaderboard(period, limit)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to fetch leaderboard",
				"cause": err.Error(),
			})
		}
		return c.JSON(fiber.Map{
			"period":  period,
			"entries": entries,
		})
	})

	securedGroup.Get("/leaderboard/me", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		rank, err := leaderboardService.GetUserRank(userID)
		if err != nil {
			return serviceError(c, err, "fetch rank")
		}
		return c.JSON(fiber.Map{
			"external_user_id": userID,
			"rank":             rank,
		})
	})
}
