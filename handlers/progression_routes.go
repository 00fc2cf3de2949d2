// handlers/progression_routes.go
package handlers

import (
	"errors"
	"path/filepath"
	"strconv"

	"calmquest-backend/middleware"
	"calmquest-backend/models"
	"calmquest-backend/services"
	"calmquest-backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func SetupProgressionRoutes(app *fiber.App, engines *services.EngineManager, leaderboard *services.LeaderboardService, authClient *services.AuthServiceClient) {
	// 🔐 Secured routes — require user context (userID, roles)
	securedGroup := app.Group("/user", middleware.UserContextMiddleware(authClient))

	securedGroup.Get("/progress", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		engine, err := engines.Engine(c.Context(), userID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to load progression",
				"cause": err.Error(),
			})
		}

		stats := engine.Stats()
		return c.JSON(fiber.Map{
			"xp":                       stats.XP,
			"level":                    stats.Level,
			"xp_for_next_level":        services.XPThresholdForLevel(stats.Level),
			"current_streak":           stats.CurrentStreak,
			"longest_streak":           stats.LongestStreak,
			"total_quests_completed":   stats.TotalQuestsCompleted,
			"total_meditation_minutes": stats.TotalMeditationMinutes,
			"last_check_in":            stats.LastCheckIn,
			"current_mood":             stats.CurrentMood,
		})
	})

	securedGroup.Post("/progress/sync", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		engine, err := engines.Engine(c.Context(), userID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to load progression",
				"cause": err.Error(),
			})
		}
		stats, err := engine.SyncFromRemote(c.Context())
		if err != nil {
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
				"error": "sync failed",
				"cause": err.Error(),
			})
		}
		return c.JSON(stats)
	})

	securedGroup.Post("/progress/checkin", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		engine, err := engines.Engine(c.Context(), userID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to load progression",
				"cause": err.Error(),
			})
		}
		stats, unlocked, err := engine.CheckStreak(c.Context())
		return mutationResponse(c, stats, unlocked, err)
	})

	securedGroup.Post("/xp/grant", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		type Req struct {
			Amount int `json:"amount" validate:"required,min=1"`
		}
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid JSON",
				"cause": err.Error(),
			})
		}

		engine, err := engines.Engine(c.Context(), userID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to load progression",
				"cause": err.Error(),
			})
		}
		stats, err := engine.GrantExperience(c.Context(), req.Amount)
		return mutationResponse(c, stats, nil, err)
	})

	securedGroup.Post("/quests/complete", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		type Req struct {
			QuestID    string `json:"quest_id" validate:"required"`
			QuestTitle string `json:"quest_title"`
			Duration   int    `json:"duration" validate:"required,min=1"`
		}
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid JSON",
				"cause": err.Error(),
			})
		}

		engine, err := engines.Engine(c.Context(), userID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to load progression",
				"cause": err.Error(),
			})
		}
		stats, unlocked, err := engine.CompleteQuest(c.Context(), req.QuestID, req.QuestTitle, req.Duration)
		return mutationResponse(c, stats, unlocked, err)
	})

	securedGroup.Get("/quests/completed", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		engine, err := engines.Engine(c.Context(), userID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to load progression",
				"cause": err.Error(),
			})
		}
		stats := engine.Stats()
		return c.JSON(fiber.Map{
			"completed_quests": stats.CompletedQuests,
			"total":            stats.TotalQuestsCompleted,
		})
	})

	securedGroup.Post("/mood", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		type Req struct {
			Mood models.Mood `json:"mood" validate:"required"`
		}
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid JSON",
				"cause": err.Error(),
			})
		}

		engine, err := engines.Engine(c.Context(), userID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to load progression",
				"cause": err.Error(),
			})
		}
		stats, err := engine.UpdateMood(c.Context(), req.Mood)
		return mutationResponse(c, stats, nil, err)
	})

	securedGroup.Get("/achievements", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		engine, err := engines.Engine(c.Context(), userID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to load progression",
				"cause": err.Error(),
			})
		}
		stats := engine.Stats()

		unlocked := 0
		for _, a := range stats.Achievements {
			if a.Unlocked {
				unlocked++
			}
		}
		return c.JSON(fiber.Map{
			"achievements": stats.Achievements,
			"unlocked":     unlocked,
			"total":        len(stats.Achievements),
		})
	})

	securedGroup.Post("/achievements/:id/unlock", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		achievementID := c.Params("id")

		engine, err := engines.Engine(c.Context(), userID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to load progression",
				"cause": err.Error(),
			})
		}
		stats, err := engine.UnlockAchievement(c.Context(), achievementID)
		if errors.Is(err, services.ErrUnknownAchievement) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "unknown achievement",
				"id":    achievementID,
			})
		}
		return mutationResponse(c, stats, nil, err)
	})

	// Upload a rendered share card for an unlocked achievement; returns the
	// public CDN URL.
	securedGroup.Post("/achievements/:id/share", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		achievementID := c.Params("id")

		engine, err := engines.Engine(c.Context(), userID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to load progression",
				"cause": err.Error(),
			})
		}
		stats := engine.Stats()
		ach := stats.Achievement(achievementID)
		if ach == nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "unknown achievement",
				"id":    achievementID,
			})
		}
		if !ach.Unlocked {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "achievement is not unlocked yet",
			})
		}

		fileHeader, err := c.FormFile("image")
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "missing share card image",
				"cause": err.Error(),
			})
		}

		key := "share-cards/" + uuid.NewString() + filepath.Ext(fileHeader.Filename)
		url, err := utils.UploadFileToR2(fileHeader, key)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "share card upload failed",
				"cause": err.Error(),
			})
		}
		return c.JSON(fiber.Map{
			"achievement_id": achievementID,
			"share_url":      url,
		})
	})

	securedGroup.Post("/progress/reset", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		engine, err := engines.Engine(c.Context(), userID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to load progression",
				"cause": err.Error(),
			})
		}
		stats, err := engine.ResetProgress(c.Context())
		if err != nil {
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
				"error": "reset failed",
				"cause": err.Error(),
			})
		}
		return c.JSON(stats)
	})

	// Public leaderboard — snapshot refreshed by the scheduler
	app.Get("/leaderboard", func(c *fiber.Ctx) error {
		limit, _ := strconv.Atoi(c.Query("limit", "10"))
		entries, err := leaderboard.Top(limit)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to get leaderboard",
				"cause": err.Error(),
			})
		}
		return c.JSON(entries)
	})

	securedGroup.Get("/leaderboard/around", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		entries, err := leaderboard.Around(userID)
		if err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "user not in current snapshot",
			})
		}
		return c.JSON(entries)
	})
}

// mutationResponse maps an engine mutation result onto the wire. Persistence
// trouble is not a failure: the update took effect in memory, so the caller
// gets the snapshot plus a sync_pending flag instead of an error status.
func mutationResponse(c *fiber.Ctx, stats *models.UserStats, newlyUnlocked []string, err error) error {
	switch {
	case err == nil:
		// fallthrough to success body
	case errors.Is(err, services.ErrInvalidAmount),
		errors.Is(err, services.ErrInvalidDuration),
		errors.Is(err, services.ErrInvalidMood):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	case errors.Is(err, services.ErrNotSynced):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "progression not synced yet, retry after sync",
		})
	case errors.Is(err, services.ErrNotAuthenticated):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "no authenticated user",
		})
	case errors.Is(err, services.ErrPersistenceUnavailable):
		return c.JSON(fiber.Map{
			"stats":          stats,
			"newly_unlocked": newlyUnlocked,
			"sync_pending":   true,
			"warning":        "progress saved locally; remote save pending",
		})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "operation failed",
			"cause": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"stats":          stats,
		"newly_unlocked": newlyUnlocked,
		"sync_pending":   false,
	})
}
