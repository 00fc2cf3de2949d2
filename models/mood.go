package models

import "time"

// Mood is the fixed check-in mood set.
type Mood string

const (
	MoodStressed  Mood = "stressed"
	MoodAnxious   Mood = "anxious"
	MoodCalm      Mood = "calm"
	MoodTired     Mood = "tired"
	MoodEnergetic Mood = "energetic"
	MoodNeutral   Mood = "neutral"
)

// AllMoods lists every valid mood (used for validation and quest filtering).
var AllMoods = []Mood{
	MoodStressed, MoodAnxious, MoodCalm, MoodTired, MoodEnergetic, MoodNeutral,
}

func (m Mood) Valid() bool {
	for _, v := range AllMoods {
		if m == v {
			return true
		}
	}
	return false
}

// MoodEntry is one mood check-in row in the remote store.
type MoodEntry struct {
	ID             string    `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	ExternalUserID string    `gorm:"index;not null" json:"external_user_id"`
	Mood           Mood      `gorm:"type:varchar(16);not null" json:"mood"`
	Timestamp      time.Time `gorm:"index;autoCreateTime" json:"timestamp"`
}
