package services

import (
	"fmt"
	"time"

	"calmquest-backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// snapshot size; profiles below the cut simply don't rank
const leaderboardSize = 100

type LeaderboardService struct {
	DB *gorm.DB
}

func NewLeaderboardService(db *gorm.DB) *LeaderboardService {
	return &LeaderboardService{DB: db}
}

// RefreshSnapshot rebuilds the materialized ranking from the profile table.
// Runs in one transaction so readers never see a half-built board.
func (s *LeaderboardService) RefreshSnapshot() error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var profiles []models.UserProfile
		if err := tx.Order("xp DESC, updated_at ASC").
			Limit(leaderboardSize).
			Find(&profiles).Error; err != nil {
			return fmt.Errorf("load profiles for snapshot: %w", err)
		}

		if err := tx.Where("1 = 1").Delete(&models.LeaderboardEntry{}).Error; err != nil {
			return fmt.Errorf("clear old snapshot: %w", err)
		}

		now := time.Now()
		for i, p := range profiles {
			entry := models.LeaderboardEntry{
				ID:             uuid.NewString(),
				ExternalUserID: p.ExternalUserID,
				Rank:           i + 1,
				XP:             p.XP,
				Level:          p.Level,
				CurrentStreak:  p.CurrentStreak,
				SnapshotAt:     now,
			}
			if err := tx.Create(&entry).Error; err != nil {
				return fmt.Errorf("write snapshot entry: %w", err)
			}
		}
		return nil
	})
}

// Top returns the first limit entries of the current snapshot.
func (s *LeaderboardService) Top(limit int) ([]models.LeaderboardEntry, error) {
	if limit < 1 || limit > leaderboardSize {
		limit = 10
	}
	var entries []models.LeaderboardEntry
	err := s.DB.Order("rank ASC").Limit(limit).Find(&entries).Error
	return entries, err
}

// Around returns the snapshot window of entries ±5 ranks around the user.
func (s *LeaderboardService) Around(externalUserID string) ([]models.LeaderboardEntry, error) {
	var userEntry models.LeaderboardEntry
	if err := s.DB.Where("external_user_id = ?", externalUserID).
		First(&userEntry).Error; err != nil {
		return nil, err
	}

	lower := userEntry.Rank - 5
	if lower < 1 {
		lower = 1
	}
	upper := userEntry.Rank + 5

	var entries []models.LeaderboardEntry
	err := s.DB.Where("rank BETWEEN ? AND ?", lower, upper).
		Order("rank ASC").
		Find(&entries).Error
	return entries, err
}
