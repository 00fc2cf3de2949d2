// handlers/coach_routes.go
package handlers

import (
	"strconv"

	"calmquest-backend/middleware"
	"calmquest-backend/models"
	"calmquest-backend/services"
	"calmquest-backend/storage"

	"github.com/gofiber/fiber/v2"
)

func SetupCoachRoutes(app *fiber.App, coach *services.CoachClient, gateway storage.Gateway, authClient *services.AuthServiceClient) {
	coachGroup := app.Group("/coach", middleware.UserContextMiddleware(authClient))

	coachGroup.Post("/script", func(c *fiber.Ctx) error {
		type Req struct {
			Mood     models.Mood `json:"mood" validate:"required"`
			Duration int         `json:"duration" validate:"required,min=1"`
		}
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid JSON",
				"cause": err.Error(),
			})
		}
		if !req.Mood.Valid() || req.Duration <= 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "mood and positive duration required",
			})
		}

		script, err := coach.GenerateMeditationScript(c.Context(), req.Mood, req.Duration)
		if err != nil {
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
				"error": "script generation failed",
				"cause": err.Error(),
			})
		}
		return c.JSON(fiber.Map{
			"mood":     req.Mood,
			"duration": req.Duration,
			"script":   script,
		})
	})

	coachGroup.Post("/mood-analysis", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		history, err := gateway.ListMoodEntries(c.Context(), userID, 7)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to load mood history",
				"cause": err.Error(),
			})
		}
		if len(history) == 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "no mood history to analyze yet",
			})
		}

		analysis, err := coach.AnalyzeMoodPattern(c.Context(), history)
		if err != nil {
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
				"error": "mood analysis failed",
				"cause": err.Error(),
			})
		}
		return c.JSON(fiber.Map{
			"entries":  len(history),
			"analysis": analysis,
		})
	})

	moodGroup := app.Group("/user", middleware.UserContextMiddleware(authClient))
	moodGroup.Get("/mood/history", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		limit, _ := strconv.Atoi(c.Query("limit", "30"))

		entries, err := gateway.ListMoodEntries(c.Context(), userID, limit)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to load mood history",
				"cause": err.Error(),
			})
		}
		return c.JSON(entries)
	})
}
