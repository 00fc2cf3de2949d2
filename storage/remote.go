package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"calmquest-backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RemoteGateway is the Postgres-backed Gateway.
type RemoteGateway struct {
	DB *gorm.DB
}

func NewRemoteGateway(db *gorm.DB) *RemoteGateway {
	return &RemoteGateway{DB: db}
}

func (g *RemoteGateway) LoadProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	var profile models.UserProfile
	err := g.DB.WithContext(ctx).Where("external_user_id = ?", userID).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load profile for %s: %w", userID, err)
	}
	return &profile, nil
}

// SaveProfile upserts by external user id. New users get a fresh row;
// existing rows are overwritten whole (last write wins).
func (g *RemoteGateway) SaveProfile(ctx context.Context, profile *models.UserProfile) error {
	return g.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.UserProfile
		err := tx.Where("external_user_id = ?", profile.ExternalUserID).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if profile.ID == "" {
				profile.ID = uuid.NewString()
			}
			return tx.Create(profile).Error
		}
		if err != nil {
			return err
		}
		profile.ID = existing.ID
		profile.CreatedAt = existing.CreatedAt
		return tx.Save(profile).Error
	})
}

func (g *RemoteGateway) AppendCompletedQuest(ctx context.Context, quest *models.CompletedQuest) error {
	if quest.ID == "" {
		quest.ID = uuid.NewString()
	}
	if err := g.DB.WithContext(ctx).Create(quest).Error; err != nil {
		return fmt.Errorf("append completed quest for %s: %w", quest.ExternalUserID, err)
	}
	return nil
}

func (g *RemoteGateway) ListCompletedQuests(ctx context.Context, userID string) ([]models.CompletedQuest, error) {
	var quests []models.CompletedQuest
	err := g.DB.WithContext(ctx).
		Where("external_user_id = ?", userID).
		Order("completed_at ASC").
		Find(&quests).Error
	if err != nil {
		return nil, fmt.Errorf("list completed quests for %s: %w", userID, err)
	}
	return quests, nil
}

// RecordAchievementUnlock is idempotent: re-recording an already unlocked
// achievement keeps the original row and timestamp.
func (g *RemoteGateway) RecordAchievementUnlock(ctx context.Context, userID, achievementID string, unlockedAt time.Time) error {
	return g.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.AchievementUnlock{}).
			Where("external_user_id = ? AND achievement_id = ?", userID, achievementID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}
		return tx.Create(&models.AchievementUnlock{
			ID:             uuid.NewString(),
			ExternalUserID: userID,
			AchievementID:  achievementID,
			UnlockedAt:     unlockedAt,
		}).Error
	})
}

func (g *RemoteGateway) ListAchievementUnlocks(ctx context.Context, userID string) ([]models.AchievementUnlock, error) {
	var unlocks []models.AchievementUnlock
	err := g.DB.WithContext(ctx).
		Where("external_user_id = ?", userID).
		Find(&unlocks).Error
	if err != nil {
		return nil, fmt.Errorf("list achievement unlocks for %s: %w", userID, err)
	}
	return unlocks, nil
}

func (g *RemoteGateway) AppendMoodEntry(ctx context.Context, userID string, mood models.Mood, at time.Time) error {
	entry := models.MoodEntry{
		ID:             uuid.NewString(),
		ExternalUserID: userID,
		Mood:           mood,
		Timestamp:      at,
	}
	if err := g.DB.WithContext(ctx).Create(&entry).Error; err != nil {
		return fmt.Errorf("append mood entry for %s: %w", userID, err)
	}
	return nil
}

func (g *RemoteGateway) LatestMoodEntry(ctx context.Context, userID string) (*models.MoodEntry, error) {
	var entry models.MoodEntry
	err := g.DB.WithContext(ctx).
		Where("external_user_id = ?", userID).
		Order("timestamp DESC").
		First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("latest mood entry for %s: %w", userID, err)
	}
	return &entry, nil
}

func (g *RemoteGateway) ListMoodEntries(ctx context.Context, userID string, limit int) ([]models.MoodEntry, error) {
	if limit < 1 || limit > 100 {
		limit = 30
	}
	var entries []models.MoodEntry
	err := g.DB.WithContext(ctx).
		Where("external_user_id = ?", userID).
		Order("timestamp DESC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("list mood entries for %s: %w", userID, err)
	}
	return entries, nil
}

func (g *RemoteGateway) ResetUser(ctx context.Context, userID string) error {
	return g.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var profile models.UserProfile
		err := tx.Where("external_user_id = ?", userID).First(&profile).Error
		if err == nil {
			profile.XP = 0
			profile.Level = 1
			profile.CurrentStreak = 0
			profile.LongestStreak = 0
			profile.TotalQuestsCompleted = 0
			profile.TotalMeditationMinutes = 0
			profile.LastCheckIn = nil
			if err := tx.Save(&profile).Error; err != nil {
				return err
			}
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if err := tx.Where("external_user_id = ?", userID).Delete(&models.CompletedQuest{}).Error; err != nil {
			return err
		}
		if err := tx.Where("external_user_id = ?", userID).Delete(&models.AchievementUnlock{}).Error; err != nil {
			return err
		}
		return tx.Where("external_user_id = ?", userID).Delete(&models.MoodEntry{}).Error
	})
}
