package models

import (
	"time"

	"gorm.io/gorm"
)

// UserProfile is the remote profiles row (denormalized aggregate for performance)
type UserProfile struct {
	ID             string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	ExternalUserID string `gorm:"uniqueIndex;not null" json:"external_user_id"` // links to auth service

	// Core progression
	XP    int `json:"xp" gorm:"default:0"`
	Level int `json:"level" gorm:"default:1"` // always CalculateLevel(XP); never drifts

	// Streaks (calendar-day granularity)
	CurrentStreak int        `json:"current_streak" gorm:"default:0"`
	LongestStreak int        `json:"longest_streak" gorm:"default:0"`
	LastCheckIn   *time.Time `json:"last_check_in,omitempty"`

	// Activity counters
	TotalQuestsCompleted   int `json:"total_quests_completed" gorm:"default:0"`
	TotalMeditationMinutes int `json:"total_meditation_minutes" gorm:"default:0"`

	Timestamps
}

// CompletedQuest is one immutable entry in a user's quest log.
// Reused as both the remote row and the in-memory/cached log entry.
type CompletedQuest struct {
	ID             string    `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	ExternalUserID string    `gorm:"index;not null" json:"external_user_id"`
	QuestID        string    `gorm:"not null" json:"quest_id"`
	QuestTitle     string    `json:"quest_title"`
	Duration       int       `json:"duration"` // minutes
	XPEarned       int       `json:"xp_earned"`
	CompletedAt    time.Time `gorm:"index" json:"completed_at"`
}

// UserStats is the in-memory aggregate owned by the progression engine for
// the current session. Achievements always carry one entry per definition;
// CompletedQuests is append-only, newest last.
type UserStats struct {
	XP                     int              `json:"xp"`
	Level                  int              `json:"level"`
	CurrentStreak          int              `json:"current_streak"`
	LongestStreak          int              `json:"longest_streak"`
	TotalQuestsCompleted   int              `json:"total_quests_completed"`
	TotalMeditationMinutes int              `json:"total_meditation_minutes"`
	LastCheckIn            *time.Time       `json:"last_check_in,omitempty"`
	CurrentMood            Mood             `json:"current_mood,omitempty"`
	Achievements           []Achievement    `json:"achievements"`
	CompletedQuests        []CompletedQuest `json:"completed_quests"`
}

// NewUserStats returns the all-zero initial aggregate with every achievement
// present and locked.
func NewUserStats() *UserStats {
	return &UserStats{
		Level:           1,
		Achievements:    InitializeAchievements(),
		CompletedQuests: []CompletedQuest{},
	}
}

// LatestQuest returns the most recently appended quest log entry, or nil.
func (s *UserStats) LatestQuest() *CompletedQuest {
	if len(s.CompletedQuests) == 0 {
		return nil
	}
	return &s.CompletedQuests[len(s.CompletedQuests)-1]
}

// Achievement returns the entry for id, or nil if the id is unknown.
func (s *UserStats) Achievement(id string) *Achievement {
	for i := range s.Achievements {
		if s.Achievements[i].ID == id {
			return &s.Achievements[i]
		}
	}
	return nil
}

// Clone deep-copies the aggregate so callers get a snapshot that later
// mutations cannot touch.
func (s *UserStats) Clone() *UserStats {
	out := *s
	out.Achievements = make([]Achievement, len(s.Achievements))
	copy(out.Achievements, s.Achievements)
	out.CompletedQuests = make([]CompletedQuest, len(s.CompletedQuests))
	copy(out.CompletedQuests, s.CompletedQuests)
	return &out
}

// Timestamps adds GORM auto-times
type Timestamps struct {
	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}
