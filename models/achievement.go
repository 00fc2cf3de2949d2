package models

import (
	"time"
)

// AchievementDef: static definition (id is stable across deployments)
type AchievementDef struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// Achievement is a definition plus the user's unlock state. Unlocked is a
// one-way transition; UnlockedAt is set exactly once.
type Achievement struct {
	AchievementDef
	Unlocked   bool       `json:"unlocked"`
	UnlockedAt *time.Time `json:"unlocked_at,omitempty"`
}

// AchievementUnlock: awarded instance row in the remote store
type AchievementUnlock struct {
	ID             string    `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	ExternalUserID string    `gorm:"index;not null" json:"external_user_id"`
	AchievementID  string    `gorm:"index;not null" json:"achievement_id"`
	UnlockedAt     time.Time `gorm:"autoCreateTime" json:"unlocked_at"`
}

// AchievementDefs is the full ordered definition table. Ids and thresholds
// are load-bearing: remote unlock rows reference them, so entries may be
// appended but never renamed or reordered.
var AchievementDefs = []AchievementDef{
	{ID: "first_quest", Name: "First Steps", Description: "Complete your first quest", Icon: "🌱"},
	{ID: "streak_3", Name: "3-Day Warrior", Description: "Maintain a 3-day streak", Icon: "🔥"},
	{ID: "streak_7", Name: "Week Champion", Description: "Maintain a 7-day streak", Icon: "⭐"},
	{ID: "streak_30", Name: "Month Master", Description: "Maintain a 30-day streak", Icon: "👑"},
	{ID: "level_5", Name: "Rising Star", Description: "Reach level 5", Icon: "✨"},
	{ID: "level_10", Name: "Zen Seeker", Description: "Reach level 10", Icon: "🧘"},
	{ID: "level_20", Name: "Mindful Master", Description: "Reach level 20", Icon: "🏆"},
	{ID: "quests_10", Name: "Quest Explorer", Description: "Complete 10 quests", Icon: "🗺️"},
	{ID: "quests_25", Name: "Quest Veteran", Description: "Complete 25 quests", Icon: "⚔️"},
	{ID: "quests_50", Name: "Quest Legend", Description: "Complete 50 quests", Icon: "🌟"},
	{ID: "meditation_60", Name: "Hour of Peace", Description: "Meditate for 60 minutes total", Icon: "🕐"},
	{ID: "meditation_300", Name: "Five Hour Focus", Description: "Meditate for 5 hours total", Icon: "⏰"},
	{ID: "meditation_1000", Name: "Thousand Minutes", Description: "Meditate for 1000 minutes total", Icon: "🎯"},
	{ID: "early_bird", Name: "Early Bird", Description: "Complete a quest before 8 AM", Icon: "🌅"},
	{ID: "night_owl", Name: "Night Owl", Description: "Complete a quest after 10 PM", Icon: "🌙"},
}

// InitializeAchievements returns the definition table with every entry locked.
func InitializeAchievements() []Achievement {
	out := make([]Achievement, len(AchievementDefs))
	for i, def := range AchievementDefs {
		out[i] = Achievement{AchievementDef: def}
	}
	return out
}
