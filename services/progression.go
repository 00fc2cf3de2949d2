package services

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"calmquest-backend/models"
	"calmquest-backend/storage"

	"github.com/google/uuid"
)

// RewardFormula maps a quest duration in minutes to XP earned. Two formulas
// shipped historically; which one runs is deployment configuration.
type RewardFormula func(durationMinutes int) int

// BaseLinearReward: base 50 XP + 2 XP per minute.
func BaseLinearReward(durationMinutes int) int {
	return 50 + 2*durationMinutes
}

// PerMinuteReward: flat 10 XP per minute.
func PerMinuteReward(durationMinutes int) int {
	return 10 * durationMinutes
}

// RewardFormulaByName resolves the QUEST_XP_FORMULA setting. Unknown names
// fall back to the base-linear formula.
func RewardFormulaByName(name string) RewardFormula {
	if name == "per-minute" {
		return PerMinuteReward
	}
	return BaseLinearReward
}

// ProgressionEngine owns one user's UserStats aggregate for the session and
// is the only writer to it. A single mutex serializes mutations together
// with their persistence calls, so remote writes for the aggregate land in
// mutation order and no caller observes partial state.
//
// Mutations are optimistic: the in-memory update always sticks and is
// returned to the caller. A failed remote write comes back wrapped in
// ErrPersistenceUnavailable alongside the updated snapshot, after the write
// has been journaled in the local cache for the flush worker.
type ProgressionEngine struct {
	mu      sync.Mutex
	userID  string
	gateway storage.Gateway
	cache   *storage.LocalCache // optional offline mirror, nil disables
	reward  RewardFormula
	now     func() time.Time

	stats  *models.UserStats
	synced bool
}

// NewProgressionEngine binds an engine to an authenticated user. An empty
// user id is refused: there is no guest aggregate to fall back to.
func NewProgressionEngine(userID string, gateway storage.Gateway, cache *storage.LocalCache, reward RewardFormula) (*ProgressionEngine, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	if reward == nil {
		reward = BaseLinearReward
	}
	return &ProgressionEngine{
		userID:  userID,
		gateway: gateway,
		cache:   cache,
		reward:  reward,
		now:     time.Now,
		stats:   models.NewUserStats(),
	}, nil
}

// SetClock overrides the engine's time source. Test hook.
func (e *ProgressionEngine) SetClock(now func() time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.now = now
}

// UserID returns the bound user.
func (e *ProgressionEngine) UserID() string {
	return e.userID
}

// Stats returns a snapshot of the current aggregate.
func (e *ProgressionEngine) Stats() *models.UserStats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stats.Clone()
}

// Synced reports whether the initial remote sync has completed.
func (e *ProgressionEngine) Synced() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.synced
}

// SyncFromRemote rebuilds the aggregate from the remote store and must
// complete once before any mutation is accepted. Unlock rows are merged
// against the full definition table, so definitions added after the user's
// last session show up locked instead of missing. A first-ever session gets
// a fresh all-zero profile row.
func (e *ProgressionEngine) SyncFromRemote(ctx context.Context) (*models.UserStats, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	profile, err := e.gateway.LoadProfile(ctx, e.userID)
	if err == storage.ErrNotFound {
		profile = &models.UserProfile{ExternalUserID: e.userID, Level: 1}
		if saveErr := e.gateway.SaveProfile(ctx, profile); saveErr != nil {
			return nil, fmt.Errorf("create initial profile: %w", saveErr)
		}
	} else if err != nil {
		return nil, fmt.Errorf("sync profile: %w", err)
	}

	quests, err := e.gateway.ListCompletedQuests(ctx, e.userID)
	if err != nil {
		return nil, fmt.Errorf("sync quest log: %w", err)
	}

	unlocks, err := e.gateway.ListAchievementUnlocks(ctx, e.userID)
	if err != nil {
		return nil, fmt.Errorf("sync achievement unlocks: %w", err)
	}

	stats := models.NewUserStats()
	stats.XP = profile.XP
	stats.Level = CalculateLevel(profile.XP)
	stats.CurrentStreak = profile.CurrentStreak
	stats.LongestStreak = profile.LongestStreak
	stats.TotalQuestsCompleted = profile.TotalQuestsCompleted
	stats.TotalMeditationMinutes = profile.TotalMeditationMinutes
	stats.LastCheckIn = profile.LastCheckIn
	stats.CompletedQuests = quests

	for _, unlock := range unlocks {
		if ach := stats.Achievement(unlock.AchievementID); ach != nil {
			unlockedAt := unlock.UnlockedAt
			ach.Unlocked = true
			ach.UnlockedAt = &unlockedAt
		}
	}

	mood, err := e.gateway.LatestMoodEntry(ctx, e.userID)
	if err == nil {
		stats.CurrentMood = mood.Mood
		if stats.LastCheckIn == nil || mood.Timestamp.After(*stats.LastCheckIn) {
			ts := mood.Timestamp
			stats.LastCheckIn = &ts
		}
	} else if err != storage.ErrNotFound {
		return nil, fmt.Errorf("sync mood: %w", err)
	}

	e.stats = stats
	e.synced = true
	e.mirrorToCache()

	log.Printf("🔄 Synced progression for %s: XP=%d, Lvl=%d, quests=%d", e.userID, stats.XP, stats.Level, stats.TotalQuestsCompleted)
	return e.stats.Clone(), nil
}

// GrantExperience adds XP and recomputes the level.
func (e *ProgressionEngine) GrantExperience(ctx context.Context, amount int) (*models.UserStats, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.synced {
		return nil, ErrNotSynced
	}

	e.stats.XP += amount
	e.stats.Level = CalculateLevel(e.stats.XP)
	e.mirrorToCache()

	err := e.persistProfile(ctx)
	log.Printf("🎮 XP granted: %s +%d → XP=%d, Lvl=%d", e.userID, amount, e.stats.XP, e.stats.Level)
	return e.stats.Clone(), err
}

// CompleteQuest applies the central multi-step transaction: XP, counters,
// quest log, streak and achievement unlocks move together under one lock, so
// the returned snapshot is consistent across all five effects.
func (e *ProgressionEngine) CompleteQuest(ctx context.Context, questID, questTitle string, durationMinutes int) (*models.UserStats, []string, error) {
	if durationMinutes <= 0 {
		return nil, nil, ErrInvalidDuration
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.synced {
		return nil, nil, ErrNotSynced
	}

	now := e.now()
	xpEarned := e.reward(durationMinutes)

	record := models.CompletedQuest{
		ID:             uuid.NewString(),
		ExternalUserID: e.userID,
		QuestID:        questID,
		QuestTitle:     questTitle,
		Duration:       durationMinutes,
		XPEarned:       xpEarned,
		CompletedAt:    now,
	}

	e.stats.XP += xpEarned
	e.stats.Level = CalculateLevel(e.stats.XP)
	e.stats.TotalQuestsCompleted++
	e.stats.TotalMeditationMinutes += durationMinutes
	e.stats.CompletedQuests = append(e.stats.CompletedQuests, record)

	e.stats.CurrentStreak, e.stats.LongestStreak = EvaluateStreak(
		e.stats.LastCheckIn, e.stats.CurrentStreak, e.stats.LongestStreak, now)
	checkIn := now
	e.stats.LastCheckIn = &checkIn

	newlyUnlocked := e.unlockQualifying(now)
	e.mirrorToCache()

	var persistErr error
	if err := e.persistProfile(ctx); err != nil {
		persistErr = err
	}
	if err := e.gateway.AppendCompletedQuest(ctx, &record); err != nil {
		e.queuePendingWrite(storage.PendingQuest, record)
		persistErr = fmt.Errorf("%w: %v", ErrPersistenceUnavailable, err)
	}
	persistErr = e.persistUnlocks(ctx, newlyUnlocked, now, persistErr)

	log.Printf("🧘 Quest completed: %s → %q +%dXP, streak=%d, unlocked=%v",
		e.userID, questTitle, xpEarned, e.stats.CurrentStreak, newlyUnlocked)
	return e.stats.Clone(), newlyUnlocked, persistErr
}

// CheckStreak evaluates streak continuity for a plain check-in (no quest).
// Same-day calls are no-ops apart from refreshing lastCheckIn.
func (e *ProgressionEngine) CheckStreak(ctx context.Context) (*models.UserStats, []string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.synced {
		return nil, nil, ErrNotSynced
	}

	now := e.now()
	e.stats.CurrentStreak, e.stats.LongestStreak = EvaluateStreak(
		e.stats.LastCheckIn, e.stats.CurrentStreak, e.stats.LongestStreak, now)
	checkIn := now
	e.stats.LastCheckIn = &checkIn

	newlyUnlocked := e.unlockQualifying(now)
	e.mirrorToCache()

	var persistErr error
	if err := e.persistProfile(ctx); err != nil {
		persistErr = err
	}
	persistErr = e.persistUnlocks(ctx, newlyUnlocked, now, persistErr)
	return e.stats.Clone(), newlyUnlocked, persistErr
}

// UpdateMood records a mood check-in.
func (e *ProgressionEngine) UpdateMood(ctx context.Context, mood models.Mood) (*models.UserStats, error) {
	if !mood.Valid() {
		return nil, ErrInvalidMood
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.synced {
		return nil, ErrNotSynced
	}

	now := e.now()
	e.stats.CurrentMood = mood
	e.stats.LastCheckIn = &now
	e.mirrorToCache()

	var persistErr error
	if err := e.gateway.AppendMoodEntry(ctx, e.userID, mood, now); err != nil {
		e.queuePendingWrite(storage.PendingMood, models.MoodEntry{
			ExternalUserID: e.userID, Mood: mood, Timestamp: now,
		})
		persistErr = fmt.Errorf("%w: %v", ErrPersistenceUnavailable, err)
	}
	if err := e.persistProfile(ctx); err != nil {
		persistErr = err
	}
	return e.stats.Clone(), persistErr
}

// UnlockAchievement force-unlocks by id. Idempotent; the first unlock wins
// and keeps its timestamp.
func (e *ProgressionEngine) UnlockAchievement(ctx context.Context, id string) (*models.UserStats, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.synced {
		return nil, ErrNotSynced
	}

	ach := e.stats.Achievement(id)
	if ach == nil {
		return nil, ErrUnknownAchievement
	}
	if ach.Unlocked {
		return e.stats.Clone(), nil
	}

	now := e.now()
	ach.Unlocked = true
	ach.UnlockedAt = &now
	e.mirrorToCache()

	var persistErr error
	if err := e.gateway.RecordAchievementUnlock(ctx, e.userID, id, now); err != nil {
		e.queuePendingWrite(storage.PendingUnlock, models.AchievementUnlock{
			ExternalUserID: e.userID, AchievementID: id, UnlockedAt: now,
		})
		persistErr = fmt.Errorf("%w: %v", ErrPersistenceUnavailable, err)
	}
	log.Printf("🎖️ Achievement unlocked: %s → %s", id, e.userID)
	return e.stats.Clone(), persistErr
}

// ResetProgress replaces the aggregate with the initial state and clears the
// user's remote rows. Unlike other mutations this one is not optimistic: a
// failed remote reset keeps the current aggregate and the caller retries.
func (e *ProgressionEngine) ResetProgress(ctx context.Context) (*models.UserStats, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.synced {
		return nil, ErrNotSynced
	}

	if err := e.gateway.ResetUser(ctx, e.userID); err != nil {
		return nil, fmt.Errorf("reset remote rows: %w", err)
	}

	e.stats = models.NewUserStats()
	if e.cache != nil {
		if err := e.cache.RemoveStats(e.userID); err != nil {
			log.Printf("⚠️ Local cache clear failed for %s: %v", e.userID, err)
		}
		// Journaled pre-reset writes must die with the reset, or the flush
		// worker replays them into the freshly cleared remote rows.
		if err := e.cache.PurgePendingWrites(e.userID); err != nil {
			log.Printf("⚠️ Pending write purge failed for %s: %v", e.userID, err)
		}
	}
	log.Printf("🗑️ Progress reset for %s", e.userID)
	return e.stats.Clone(), nil
}

// unlockQualifying runs the rule set against the current stats and flips the
// newly qualifying entries. Caller holds the lock.
func (e *ProgressionEngine) unlockQualifying(now time.Time) []string {
	newlyUnlocked := EvaluateAchievements(e.stats)
	for _, id := range newlyUnlocked {
		ach := e.stats.Achievement(id)
		unlockedAt := now
		ach.Unlocked = true
		ach.UnlockedAt = &unlockedAt
	}
	return newlyUnlocked
}

func (e *ProgressionEngine) persistUnlocks(ctx context.Context, ids []string, now time.Time, prevErr error) error {
	persistErr := prevErr
	for _, id := range ids {
		if err := e.gateway.RecordAchievementUnlock(ctx, e.userID, id, now); err != nil {
			e.queuePendingWrite(storage.PendingUnlock, models.AchievementUnlock{
				ExternalUserID: e.userID, AchievementID: id, UnlockedAt: now,
			})
			persistErr = fmt.Errorf("%w: %v", ErrPersistenceUnavailable, err)
		}
	}
	return persistErr
}

// persistProfile writes the denormalized profile row. Failures are journaled
// and reported as ErrPersistenceUnavailable.
func (e *ProgressionEngine) persistProfile(ctx context.Context) error {
	profile := e.profileRow()
	if err := e.gateway.SaveProfile(ctx, profile); err != nil {
		e.queuePendingWrite(storage.PendingProfile, profile)
		return fmt.Errorf("%w: %v", ErrPersistenceUnavailable, err)
	}
	return nil
}

func (e *ProgressionEngine) profileRow() *models.UserProfile {
	return &models.UserProfile{
		ExternalUserID:         e.userID,
		XP:                     e.stats.XP,
		Level:                  e.stats.Level,
		CurrentStreak:          e.stats.CurrentStreak,
		LongestStreak:          e.stats.LongestStreak,
		TotalQuestsCompleted:   e.stats.TotalQuestsCompleted,
		TotalMeditationMinutes: e.stats.TotalMeditationMinutes,
		LastCheckIn:            e.stats.LastCheckIn,
	}
}

// mirrorToCache keeps the local offline copy current. Cache failures (quota,
// locked file) only log; the in-memory aggregate stays authoritative.
func (e *ProgressionEngine) mirrorToCache() {
	if e.cache == nil {
		return
	}
	if err := e.cache.SaveStats(e.userID, e.stats); err != nil {
		log.Printf("⚠️ Local cache write failed for %s: %v", e.userID, err)
	}
}

func (e *ProgressionEngine) queuePendingWrite(kind string, payload any) {
	if e.cache == nil {
		return
	}
	if err := e.cache.QueuePendingWrite(e.userID, kind, payload); err != nil {
		log.Printf("⚠️ Failed to journal pending %s write for %s: %v", kind, e.userID, err)
	}
}
