package storage

import (
	"context"
	"sync"
	"time"

	"calmquest-backend/models"

	"github.com/google/uuid"
)

// MemoryGateway is an in-process Gateway used by tests and local-only runs.
type MemoryGateway struct {
	mu       sync.Mutex
	profiles map[string]models.UserProfile
	quests   map[string][]models.CompletedQuest
	unlocks  map[string][]models.AchievementUnlock
	moods    map[string][]models.MoodEntry

	failErr error
}

func NewMemoryGateway() *MemoryGateway {
	return &MemoryGateway{
		profiles: make(map[string]models.UserProfile),
		quests:   make(map[string][]models.CompletedQuest),
		unlocks:  make(map[string][]models.AchievementUnlock),
		moods:    make(map[string][]models.MoodEntry),
	}
}

// FailWith makes every subsequent call return err until cleared with nil.
func (g *MemoryGateway) FailWith(err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.failErr = err
}

func (g *MemoryGateway) LoadProfile(_ context.Context, userID string) (*models.UserProfile, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failErr != nil {
		return nil, g.failErr
	}
	profile, ok := g.profiles[userID]
	if !ok {
		return nil, ErrNotFound
	}
	out := profile
	return &out, nil
}

func (g *MemoryGateway) SaveProfile(_ context.Context, profile *models.UserProfile) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failErr != nil {
		return g.failErr
	}
	stored := *profile
	if existing, ok := g.profiles[profile.ExternalUserID]; ok {
		stored.ID = existing.ID
		stored.CreatedAt = existing.CreatedAt
	} else {
		if stored.ID == "" {
			stored.ID = uuid.NewString()
		}
		stored.CreatedAt = time.Now()
	}
	stored.UpdatedAt = time.Now()
	g.profiles[profile.ExternalUserID] = stored
	return nil
}

func (g *MemoryGateway) AppendCompletedQuest(_ context.Context, quest *models.CompletedQuest) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failErr != nil {
		return g.failErr
	}
	stored := *quest
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	g.quests[quest.ExternalUserID] = append(g.quests[quest.ExternalUserID], stored)
	return nil
}

func (g *MemoryGateway) ListCompletedQuests(_ context.Context, userID string) ([]models.CompletedQuest, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failErr != nil {
		return nil, g.failErr
	}
	out := make([]models.CompletedQuest, len(g.quests[userID]))
	copy(out, g.quests[userID])
	return out, nil
}

func (g *MemoryGateway) RecordAchievementUnlock(_ context.Context, userID, achievementID string, unlockedAt time.Time) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failErr != nil {
		return g.failErr
	}
	for _, u := range g.unlocks[userID] {
		if u.AchievementID == achievementID {
			return nil
		}
	}
	g.unlocks[userID] = append(g.unlocks[userID], models.AchievementUnlock{
		ID:             uuid.NewString(),
		ExternalUserID: userID,
		AchievementID:  achievementID,
		UnlockedAt:     unlockedAt,
	})
	return nil
}

func (g *MemoryGateway) ListAchievementUnlocks(_ context.Context, userID string) ([]models.AchievementUnlock, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failErr != nil {
		return nil, g.failErr
	}
	out := make([]models.AchievementUnlock, len(g.unlocks[userID]))
	copy(out, g.unlocks[userID])
	return out, nil
}

func (g *MemoryGateway) AppendMoodEntry(_ context.Context, userID string, mood models.Mood, at time.Time) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failErr != nil {
		return g.failErr
	}
	g.moods[userID] = append(g.moods[userID], models.MoodEntry{
		ID:             uuid.NewString(),
		ExternalUserID: userID,
		Mood:           mood,
		Timestamp:      at,
	})
	return nil
}

func (g *MemoryGateway) LatestMoodEntry(_ context.Context, userID string) (*models.MoodEntry, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failErr != nil {
		return nil, g.failErr
	}
	entries := g.moods[userID]
	if len(entries) == 0 {
		return nil, ErrNotFound
	}
	latest := entries[0]
	for _, e := range entries[1:] {
		if e.Timestamp.After(latest.Timestamp) {
			latest = e
		}
	}
	return &latest, nil
}

func (g *MemoryGateway) ListMoodEntries(_ context.Context, userID string, limit int) ([]models.MoodEntry, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failErr != nil {
		return nil, g.failErr
	}
	entries := make([]models.MoodEntry, len(g.moods[userID]))
	copy(entries, g.moods[userID])
	// newest first
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

func (g *MemoryGateway) ResetUser(_ context.Context, userID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failErr != nil {
		return g.failErr
	}
	if profile, ok := g.profiles[userID]; ok {
		profile.XP = 0
		profile.Level = 1
		profile.CurrentStreak = 0
		profile.LongestStreak = 0
		profile.TotalQuestsCompleted = 0
		profile.TotalMeditationMinutes = 0
		profile.LastCheckIn = nil
		g.profiles[userID] = profile
	}
	delete(g.quests, userID)
	delete(g.unlocks, userID)
	delete(g.moods, userID)
	return nil
}
