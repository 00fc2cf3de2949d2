package models

import "time"

// LeaderboardEntry is a materialized ranking row, refreshed by the snapshot
// scheduler rather than computed per request.
type LeaderboardEntry struct {
	ID             string    `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	ExternalUserID string    `gorm:"uniqueIndex;not null" json:"external_user_id"`
	Rank           int       `gorm:"index" json:"rank"`
	XP             int       `json:"xp"`
	Level          int       `json:"level"`
	CurrentStreak  int       `json:"current_streak"`
	SnapshotAt     time.Time `json:"snapshot_at"`
}
