package storage

import (
	"context"
	"errors"
	"time"

	"calmquest-backend/models"
)

// ErrNotFound is returned when a row for the requested user does not exist.
var ErrNotFound = errors.New("storage: not found")

// Gateway abstracts the remote relational store behind the progression
// engine. Exactly one engine instance writes for a given user at a time, so
// implementations only need per-call safety, not cross-call coordination.
type Gateway interface {
	LoadProfile(ctx context.Context, userID string) (*models.UserProfile, error)
	SaveProfile(ctx context.Context, profile *models.UserProfile) error

	AppendCompletedQuest(ctx context.Context, quest *models.CompletedQuest) error
	// ListCompletedQuests returns the quest log oldest-first.
	ListCompletedQuests(ctx context.Context, userID string) ([]models.CompletedQuest, error)

	RecordAchievementUnlock(ctx context.Context, userID, achievementID string, unlockedAt time.Time) error
	ListAchievementUnlocks(ctx context.Context, userID string) ([]models.AchievementUnlock, error)

	AppendMoodEntry(ctx context.Context, userID string, mood models.Mood, at time.Time) error
	LatestMoodEntry(ctx context.Context, userID string) (*models.MoodEntry, error)
	// ListMoodEntries returns up to limit entries, newest first.
	ListMoodEntries(ctx context.Context, userID string, limit int) ([]models.MoodEntry, error)

	// ResetUser zeroes the profile row and deletes all quest, unlock and mood
	// rows for the user.
	ResetUser(ctx context.Context, userID string) error
}
