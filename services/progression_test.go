package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"calmquest-backend/models"
	"calmquest-backend/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Midday so time-of-day achievements stay out of the way unless a test wants them.
var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func newTestEngine(t *testing.T, gw storage.Gateway, cache *storage.LocalCache) *ProgressionEngine {
	t.Helper()
	engine, err := NewProgressionEngine("u1", gw, cache, BaseLinearReward)
	require.NoError(t, err)
	engine.SetClock(func() time.Time { return testNow })
	return engine
}

func TestNewProgressionEngineRequiresUser(t *testing.T) {
	_, err := NewProgressionEngine("", storage.NewMemoryGateway(), nil, nil)
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestMutationsRejectedBeforeSync(t *testing.T) {
	engine := newTestEngine(t, storage.NewMemoryGateway(), nil)
	ctx := context.Background()

	_, err := engine.GrantExperience(ctx, 10)
	assert.ErrorIs(t, err, ErrNotSynced)
	_, _, err = engine.CompleteQuest(ctx, "q1", "Quest", 5)
	assert.ErrorIs(t, err, ErrNotSynced)
	_, _, err = engine.CheckStreak(ctx)
	assert.ErrorIs(t, err, ErrNotSynced)
	_, err = engine.UpdateMood(ctx, models.MoodCalm)
	assert.ErrorIs(t, err, ErrNotSynced)
	_, err = engine.UnlockAchievement(ctx, "first_quest")
	assert.ErrorIs(t, err, ErrNotSynced)
	_, err = engine.ResetProgress(ctx)
	assert.ErrorIs(t, err, ErrNotSynced)
}

func TestSyncCreatesInitialProfile(t *testing.T) {
	gw := storage.NewMemoryGateway()
	engine := newTestEngine(t, gw, nil)

	stats, err := engine.SyncFromRemote(context.Background())
	require.NoError(t, err)
	assert.True(t, engine.Synced())
	assert.Equal(t, 0, stats.XP)
	assert.Equal(t, 1, stats.Level)
	assert.Len(t, stats.Achievements, len(models.AchievementDefs))

	profile, err := gw.LoadProfile(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, profile.Level)
}

func TestCompleteQuestFreshUser(t *testing.T) {
	gw := storage.NewMemoryGateway()
	engine := newTestEngine(t, gw, nil)
	ctx := context.Background()
	_, err := engine.SyncFromRemote(ctx)
	require.NoError(t, err)

	stats, unlocked, err := engine.CompleteQuest(ctx, "box-breathing-challenge", "Box Breathing Challenge", 10)
	require.NoError(t, err)

	assert.Equal(t, 70, stats.XP) // 50 base + 2 per minute
	assert.Equal(t, 1, stats.Level)
	assert.Equal(t, 1, stats.TotalQuestsCompleted)
	assert.Equal(t, 10, stats.TotalMeditationMinutes)
	assert.Equal(t, 1, stats.CurrentStreak)
	assert.Equal(t, 1, stats.LongestStreak)
	require.NotNil(t, stats.LastCheckIn)
	assert.True(t, stats.LastCheckIn.Equal(testNow))
	assert.Equal(t, []string{"first_quest"}, unlocked)
	require.NotNil(t, stats.Achievement("first_quest"))
	assert.True(t, stats.Achievement("first_quest").Unlocked)

	quests, err := gw.ListCompletedQuests(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, quests, 1)
	assert.Equal(t, "box-breathing-challenge", quests[0].QuestID)
	assert.Equal(t, 70, quests[0].XPEarned)

	unlocks, err := gw.ListAchievementUnlocks(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, unlocks, 1)
	assert.Equal(t, "first_quest", unlocks[0].AchievementID)
}

func TestCompleteQuestPerMinuteFormula(t *testing.T) {
	gw := storage.NewMemoryGateway()
	engine, err := NewProgressionEngine("u1", gw, nil, RewardFormulaByName("per-minute"))
	require.NoError(t, err)
	engine.SetClock(func() time.Time { return testNow })
	ctx := context.Background()
	_, err = engine.SyncFromRemote(ctx)
	require.NoError(t, err)

	stats, _, err := engine.CompleteQuest(ctx, "q1", "Quest", 12)
	require.NoError(t, err)
	assert.Equal(t, 120, stats.XP)
}

func TestCompleteQuestMilestoneUnlocksAtomically(t *testing.T) {
	gw := storage.NewMemoryGateway()
	ctx := context.Background()
	require.NoError(t, gw.SaveProfile(ctx, &models.UserProfile{
		ExternalUserID:         "u1",
		XP:                     3000,
		Level:                  6,
		TotalQuestsCompleted:   49,
		TotalMeditationMinutes: 490,
	}))
	for _, id := range []string{"first_quest", "quests_10", "quests_25", "level_5", "meditation_60", "meditation_300"} {
		require.NoError(t, gw.RecordAchievementUnlock(ctx, "u1", id, testNow.Add(-24*time.Hour)))
	}

	engine := newTestEngine(t, gw, nil)
	_, err := engine.SyncFromRemote(ctx)
	require.NoError(t, err)

	stats, unlocked, err := engine.CompleteQuest(ctx, "q1", "Quest", 10)
	require.NoError(t, err)

	assert.Equal(t, 50, stats.TotalQuestsCompleted)
	assert.Equal(t, []string{"quests_50"}, unlocked)
	assert.True(t, stats.Achievement("quests_50").Unlocked, "snapshot must carry the unlock it reported")
	assert.True(t, stats.Achievement("quests_25").Unlocked, "synced unlocks survive the mutation")
}

func TestCheckStreakConsecutiveDayUnlock(t *testing.T) {
	gw := storage.NewMemoryGateway()
	ctx := context.Background()
	yesterday := testNow.Add(-24 * time.Hour)
	require.NoError(t, gw.SaveProfile(ctx, &models.UserProfile{
		ExternalUserID: "u1",
		CurrentStreak:  6,
		LongestStreak:  6,
		LastCheckIn:    &yesterday,
	}))
	require.NoError(t, gw.RecordAchievementUnlock(ctx, "u1", "streak_3", yesterday))

	engine := newTestEngine(t, gw, nil)
	_, err := engine.SyncFromRemote(ctx)
	require.NoError(t, err)

	stats, unlocked, err := engine.CheckStreak(ctx)
	require.NoError(t, err)
	assert.Equal(t, 7, stats.CurrentStreak)
	assert.Equal(t, 7, stats.LongestStreak)
	assert.Equal(t, []string{"streak_7"}, unlocked)
}

func TestCheckStreakSameDayNoOp(t *testing.T) {
	gw := storage.NewMemoryGateway()
	engine := newTestEngine(t, gw, nil)
	ctx := context.Background()
	_, err := engine.SyncFromRemote(ctx)
	require.NoError(t, err)

	first, _, err := engine.CheckStreak(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, first.CurrentStreak)

	again, unlocked, err := engine.CheckStreak(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, again.CurrentStreak)
	assert.Equal(t, 1, again.LongestStreak)
	assert.Empty(t, unlocked)
}

func TestGrantExperienceRecomputesLevel(t *testing.T) {
	gw := storage.NewMemoryGateway()
	engine := newTestEngine(t, gw, nil)
	ctx := context.Background()
	_, err := engine.SyncFromRemote(ctx)
	require.NoError(t, err)

	_, err = engine.GrantExperience(ctx, 0)
	assert.ErrorIs(t, err, ErrInvalidAmount)
	_, err = engine.GrantExperience(ctx, -5)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	stats, err := engine.GrantExperience(ctx, 2500)
	require.NoError(t, err)
	assert.Equal(t, 2500, stats.XP)
	assert.Equal(t, 6, stats.Level)

	profile, err := gw.LoadProfile(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 2500, profile.XP)
	assert.Equal(t, 6, profile.Level)
}

func TestCompleteQuestInvalidDuration(t *testing.T) {
	engine := newTestEngine(t, storage.NewMemoryGateway(), nil)
	ctx := context.Background()
	_, err := engine.SyncFromRemote(ctx)
	require.NoError(t, err)

	_, _, err = engine.CompleteQuest(ctx, "q1", "Quest", 0)
	assert.ErrorIs(t, err, ErrInvalidDuration)
}

func TestUpdateMood(t *testing.T) {
	gw := storage.NewMemoryGateway()
	engine := newTestEngine(t, gw, nil)
	ctx := context.Background()
	_, err := engine.SyncFromRemote(ctx)
	require.NoError(t, err)

	_, err = engine.UpdateMood(ctx, models.Mood("angry"))
	assert.ErrorIs(t, err, ErrInvalidMood)

	stats, err := engine.UpdateMood(ctx, models.MoodAnxious)
	require.NoError(t, err)
	assert.Equal(t, models.MoodAnxious, stats.CurrentMood)

	// the mood survives a fresh session
	other := newTestEngine(t, gw, nil)
	resynced, err := other.SyncFromRemote(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.MoodAnxious, resynced.CurrentMood)
}

func TestUnlockAchievementIdempotent(t *testing.T) {
	gw := storage.NewMemoryGateway()
	engine := newTestEngine(t, gw, nil)
	ctx := context.Background()
	_, err := engine.SyncFromRemote(ctx)
	require.NoError(t, err)

	_, err = engine.UnlockAchievement(ctx, "bogus_id")
	assert.ErrorIs(t, err, ErrUnknownAchievement)

	first, err := engine.UnlockAchievement(ctx, "early_bird")
	require.NoError(t, err)
	firstAt := first.Achievement("early_bird").UnlockedAt
	require.NotNil(t, firstAt)

	engine.SetClock(func() time.Time { return testNow.Add(time.Hour) })
	second, err := engine.UnlockAchievement(ctx, "early_bird")
	require.NoError(t, err)
	assert.True(t, second.Achievement("early_bird").UnlockedAt.Equal(*firstAt), "first unlock keeps its timestamp")

	unlocks, err := gw.ListAchievementUnlocks(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, unlocks, 1)
}

func TestSyncIgnoresUnknownUnlockRows(t *testing.T) {
	gw := storage.NewMemoryGateway()
	ctx := context.Background()
	require.NoError(t, gw.SaveProfile(ctx, &models.UserProfile{ExternalUserID: "u1", Level: 1}))
	require.NoError(t, gw.RecordAchievementUnlock(ctx, "u1", "retired_badge", testNow))
	require.NoError(t, gw.RecordAchievementUnlock(ctx, "u1", "first_quest", testNow))

	engine := newTestEngine(t, gw, nil)
	stats, err := engine.SyncFromRemote(ctx)
	require.NoError(t, err)

	assert.Nil(t, stats.Achievement("retired_badge"))
	assert.True(t, stats.Achievement("first_quest").Unlocked)
	for _, ach := range stats.Achievements {
		if ach.ID != "first_quest" {
			assert.False(t, ach.Unlocked, "%s should start locked", ach.ID)
		}
	}
}

func TestCompleteQuestPersistenceFailureIsOptimistic(t *testing.T) {
	gw := storage.NewMemoryGateway()
	cache, err := storage.NewLocalCache(":memory:")
	require.NoError(t, err)
	defer cache.Close()

	engine := newTestEngine(t, gw, cache)
	ctx := context.Background()
	_, err = engine.SyncFromRemote(ctx)
	require.NoError(t, err)

	gw.FailWith(errors.New("connection refused"))

	stats, unlocked, err := engine.CompleteQuest(ctx, "q1", "Quest", 10)
	require.ErrorIs(t, err, ErrPersistenceUnavailable)
	assert.Equal(t, 70, stats.XP, "the in-memory update sticks")
	assert.Equal(t, []string{"first_quest"}, unlocked)

	cached, err := cache.LoadStats("u1")
	require.NoError(t, err)
	assert.Equal(t, 70, cached.XP)

	writes, err := cache.ListPendingWrites(10)
	require.NoError(t, err)
	require.Len(t, writes, 3)
	assert.Equal(t, storage.PendingProfile, writes[0].Kind)
	assert.Equal(t, storage.PendingQuest, writes[1].Kind)
	assert.Equal(t, storage.PendingUnlock, writes[2].Kind)
}

func TestResetProgressPurgesPendingWrites(t *testing.T) {
	gw := storage.NewMemoryGateway()
	cache, err := storage.NewLocalCache(":memory:")
	require.NoError(t, err)
	defer cache.Close()

	engine := newTestEngine(t, gw, cache)
	ctx := context.Background()
	_, err = engine.SyncFromRemote(ctx)
	require.NoError(t, err)

	gw.FailWith(errors.New("connection refused"))
	_, _, err = engine.CompleteQuest(ctx, "q1", "Quest One", 10)
	require.ErrorIs(t, err, ErrPersistenceUnavailable)

	writes, err := cache.ListPendingWrites(10)
	require.NoError(t, err)
	require.NotEmpty(t, writes)

	gw.FailWith(nil)
	_, err = engine.ResetProgress(ctx)
	require.NoError(t, err)

	writes, err = cache.ListPendingWrites(10)
	require.NoError(t, err)
	assert.Empty(t, writes, "reset leaves nothing for the flush worker to replay")

	resynced, err := newTestEngine(t, gw, nil).SyncFromRemote(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, resynced.TotalQuestsCompleted)
	assert.Empty(t, resynced.CompletedQuests)
}

func TestResetProgressRequiresRemote(t *testing.T) {
	gw := storage.NewMemoryGateway()
	engine := newTestEngine(t, gw, nil)
	ctx := context.Background()
	_, err := engine.SyncFromRemote(ctx)
	require.NoError(t, err)
	_, _, err = engine.CompleteQuest(ctx, "q1", "Quest", 10)
	require.NoError(t, err)

	gw.FailWith(errors.New("connection refused"))
	_, err = engine.ResetProgress(ctx)
	require.Error(t, err)
	assert.Equal(t, 70, engine.Stats().XP, "failed reset keeps the aggregate")

	gw.FailWith(nil)
	stats, err := engine.ResetProgress(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.XP)
	assert.Equal(t, 0, stats.TotalQuestsCompleted)

	resynced, err := newTestEngine(t, gw, nil).SyncFromRemote(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, resynced.XP)
	assert.Empty(t, resynced.CompletedQuests)
}
