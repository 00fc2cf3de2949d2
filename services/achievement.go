package services

import (
	"calmquest-backend/models"
)

// AchievementRule pairs a definition id with its unlock predicate. Rules are
// evaluated against the proposed post-mutation stats, so a quest completion
// and the achievements it triggers land in the same update.
type AchievementRule struct {
	ID        string
	Qualifies func(stats *models.UserStats) bool
}

// AchievementRules is ordered to match models.AchievementDefs. Threshold
// values are compatibility constants, not tunables.
var AchievementRules = []AchievementRule{
	{ID: "first_quest", Qualifies: questCount(1)},
	{ID: "streak_3", Qualifies: streakDays(3)},
	{ID: "streak_7", Qualifies: streakDays(7)},
	{ID: "streak_30", Qualifies: streakDays(30)},
	{ID: "level_5", Qualifies: levelReached(5)},
	{ID: "level_10", Qualifies: levelReached(10)},
	{ID: "level_20", Qualifies: levelReached(20)},
	{ID: "quests_10", Qualifies: questCount(10)},
	{ID: "quests_25", Qualifies: questCount(25)},
	{ID: "quests_50", Qualifies: questCount(50)},
	{ID: "meditation_60", Qualifies: meditationMinutes(60)},
	{ID: "meditation_300", Qualifies: meditationMinutes(300)},
	{ID: "meditation_1000", Qualifies: meditationMinutes(1000)},
	{ID: "early_bird", Qualifies: latestQuestHourBefore(8)},
	{ID: "night_owl", Qualifies: latestQuestHourAtOrAfter(22)},
}

// EvaluateAchievements returns the ids of every rule that qualifies and is
// still locked in stats. Idempotent; never returns an already-unlocked id,
// so unlocks stay monotonic.
func EvaluateAchievements(stats *models.UserStats) []string {
	var newlyUnlocked []string
	for _, rule := range AchievementRules {
		ach := stats.Achievement(rule.ID)
		if ach == nil || ach.Unlocked {
			continue
		}
		if rule.Qualifies(stats) {
			newlyUnlocked = append(newlyUnlocked, rule.ID)
		}
	}
	return newlyUnlocked
}

func questCount(n int) func(*models.UserStats) bool {
	return func(s *models.UserStats) bool { return s.TotalQuestsCompleted >= n }
}

func streakDays(n int) func(*models.UserStats) bool {
	return func(s *models.UserStats) bool { return s.CurrentStreak >= n }
}

func levelReached(n int) func(*models.UserStats) bool {
	return func(s *models.UserStats) bool { return s.Level >= n }
}

func meditationMinutes(n int) func(*models.UserStats) bool {
	return func(s *models.UserStats) bool { return s.TotalMeditationMinutes >= n }
}

func latestQuestHourBefore(hour int) func(*models.UserStats) bool {
	return func(s *models.UserStats) bool {
		q := s.LatestQuest()
		return q != nil && q.CompletedAt.Hour() < hour
	}
}

func latestQuestHourAtOrAfter(hour int) func(*models.UserStats) bool {
	return func(s *models.UserStats) bool {
		q := s.LatestQuest()
		return q != nil && q.CompletedAt.Hour() >= hour
	}
}
