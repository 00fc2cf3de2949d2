package services

import (
	"testing"
	"time"

	"calmquest-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluateAchievementsThresholds(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(s *models.UserStats)
		wantIDs []string
	}{
		{
			name:    "fresh stats unlock nothing",
			mutate:  func(s *models.UserStats) {},
			wantIDs: nil,
		},
		{
			name:    "first quest",
			mutate:  func(s *models.UserStats) { s.TotalQuestsCompleted = 1 },
			wantIDs: []string{"first_quest"},
		},
		{
			name:    "quest milestones stack",
			mutate:  func(s *models.UserStats) { s.TotalQuestsCompleted = 25 },
			wantIDs: []string{"first_quest", "quests_10", "quests_25"},
		},
		{
			name:    "streak week",
			mutate:  func(s *models.UserStats) { s.CurrentStreak = 7 },
			wantIDs: []string{"streak_3", "streak_7"},
		},
		{
			name:    "level ten",
			mutate:  func(s *models.UserStats) { s.Level = 10 },
			wantIDs: []string{"level_5", "level_10"},
		},
		{
			name:    "meditation minutes",
			mutate:  func(s *models.UserStats) { s.TotalMeditationMinutes = 300 },
			wantIDs: []string{"meditation_60", "meditation_300"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stats := models.NewUserStats()
			tt.mutate(stats)
			assert.Equal(t, tt.wantIDs, EvaluateAchievements(stats))
		})
	}
}

func TestEvaluateAchievementsTimeOfDay(t *testing.T) {
	early := time.Date(2025, time.May, 4, 7, 30, 0, 0, time.UTC)
	late := time.Date(2025, time.May, 4, 22, 0, 0, 0, time.UTC)
	midday := time.Date(2025, time.May, 4, 12, 0, 0, 0, time.UTC)

	quest := func(at time.Time) models.CompletedQuest {
		return models.CompletedQuest{QuestID: "q", CompletedAt: at, Duration: 5, XPEarned: 60}
	}

	stats := models.NewUserStats()
	stats.TotalQuestsCompleted = 2 // keep first_quest out of the way
	ach := stats.Achievement("first_quest")
	ach.Unlocked = true

	stats.CompletedQuests = []models.CompletedQuest{quest(early)}
	assert.Contains(t, EvaluateAchievements(stats), "early_bird")
	assert.NotContains(t, EvaluateAchievements(stats), "night_owl")

	stats.CompletedQuests = append(stats.CompletedQuests, quest(late))
	assert.Contains(t, EvaluateAchievements(stats), "night_owl")

	// the rule looks at the latest quest only
	stats.CompletedQuests = append(stats.CompletedQuests, quest(midday))
	assert.NotContains(t, EvaluateAchievements(stats), "night_owl")
}

func TestEvaluateAchievementsMonotonic(t *testing.T) {
	stats := models.NewUserStats()
	stats.TotalQuestsCompleted = 1

	first := EvaluateAchievements(stats)
	require.Equal(t, []string{"first_quest"}, first)

	// idempotent until an unlock happens
	assert.Equal(t, first, EvaluateAchievements(stats))

	ach := stats.Achievement("first_quest")
	now := time.Now()
	ach.Unlocked = true
	ach.UnlockedAt = &now

	// never reported again, whatever the stats do
	stats.TotalQuestsCompleted = 100
	for _, id := range EvaluateAchievements(stats) {
		assert.NotEqual(t, "first_quest", id)
	}
}

func TestRuleSetMatchesDefinitionTable(t *testing.T) {
	require.Equal(t, len(models.AchievementDefs), len(AchievementRules))
	for i, rule := range AchievementRules {
		found := false
		for _, def := range models.AchievementDefs {
			if def.ID == rule.ID {
				found = true
				break
			}
		}
		assert.True(t, found, "rule %d (%s) has no definition", i, rule.ID)
	}
}
