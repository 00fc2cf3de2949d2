// handlers/quest_routes.go
package handlers

import (
	"strconv"

	"calmquest-backend/models"
	"calmquest-backend/services"

	"github.com/gofiber/fiber/v2"
)

func SetupQuestRoutes(app *fiber.App) {
	// Catalog is static content; no user context needed.
	app.Get("/quests", func(c *fiber.Ctx) error {
		moodParam := c.Query("mood", "")
		count, _ := strconv.Atoi(c.Query("count", "3"))

		if moodParam == "" {
			return c.JSON(services.AllQuests())
		}

		mood := models.Mood(moodParam)
		if !mood.Valid() {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "unknown mood",
				"mood":  moodParam,
			})
		}
		return c.JSON(services.QuestsForMood(mood, count))
	})

	app.Get("/quests/:id", func(c *fiber.Ctx) error {
		quest, ok := services.QuestByID(c.Params("id"))
		if !ok {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "quest not found",
				"id":    c.Params("id"),
			})
		}
		return c.JSON(quest)
	})
}
