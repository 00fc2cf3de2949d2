package workers

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

func newFlushFixture(t *testing.T) (*PendingWriteFlushWorker, *storage.LocalCache, *storage.MemoryGateway) {
	t.Helper()
	cache, err := storage.NewLocalCache(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { cache.Close() })
	gw := storage.NewMemoryGateway()
	return NewPendingWriteFlushWorker(cache, gw), cache, gw
}

func TestFlushBatchReplaysInOrder(t *testing.T) {
	worker, cache, gw := newFlushFixture(t)
	ctx := context.Background()
	at := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	require.NoError(t, cache.QueuePendingWrite("u1", storage.PendingProfile, models.UserProfile{
		ExternalUserID: "u1", XP: 70, Level: 1, TotalQuestsCompleted: 1,
	}))
	require.NoError(t, cache.QueuePendingWrite("u1", storage.PendingQuest, models.CompletedQuest{
		ID: "cq1", ExternalUserID: "u1", QuestID: "q1", QuestTitle: "Quest", Duration: 10, XPEarned: 70, CompletedAt: at,
	}))
	require.NoError(t, cache.QueuePendingWrite("u1", storage.PendingUnlock, models.AchievementUnlock{
		ExternalUserID: "u1", AchievementID: "first_quest", UnlockedAt: at,
	}))
	require.NoError(t, cache.QueuePendingWrite("u1", storage.PendingMood, models.MoodEntry{
		ExternalUserID: "u1", Mood: models.MoodCalm, Timestamp: at,
	}))

	worker.flushBatch(ctx)

	profile, err := gw.LoadProfile(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 70, profile.XP)

	quests, err := gw.ListCompletedQuests(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, quests, 1)
	assert.Equal(t, "q1", quests[0].QuestID)

	unlocks, err := gw.ListAchievementUnlocks(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, unlocks, 1)
	assert.Equal(t, "first_quest", unlocks[0].AchievementID)

	mood, err := gw.LatestMoodEntry(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, models.MoodCalm, mood.Mood)

	writes, err := cache.ListPendingWrites(10)
	require.NoError(t, err)
	assert.Empty(t, writes, "replayed writes leave the journal")
}

func TestFlushBatchDiscardsStaleProfile(t *testing.T) {
	worker, cache, gw := newFlushFixture(t)
	ctx := context.Background()

	// Snapshot journaled during an outage, then the store recovers and a
	// newer write lands directly. The stale snapshot must not roll it back.
	require.NoError(t, cache.QueuePendingWrite("u1", storage.PendingProfile, models.UserProfile{
		ExternalUserID: "u1", XP: 70, Level: 1, TotalQuestsCompleted: 1,
	}))
	time.Sleep(10 * time.Millisecond)
	require.NoError(t, gw.SaveProfile(ctx, &models.UserProfile{
		ExternalUserID: "u1", XP: 140, Level: 2, TotalQuestsCompleted: 2,
	}))

	worker.flushBatch(ctx)

	profile, err := gw.LoadProfile(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 140, profile.XP, "newer remote write wins the conflict")
	assert.Equal(t, 2, profile.TotalQuestsCompleted)

	writes, err := cache.ListPendingWrites(10)
	require.NoError(t, err)
	assert.Empty(t, writes, "the discarded write still leaves the journal")
}

func TestFlushBatchReplaysProfileOverOlderRemote(t *testing.T) {
	worker, cache, gw := newFlushFixture(t)
	ctx := context.Background()

	require.NoError(t, gw.SaveProfile(ctx, &models.UserProfile{
		ExternalUserID: "u1", XP: 70, Level: 1, TotalQuestsCompleted: 1,
	}))
	time.Sleep(10 * time.Millisecond)
	require.NoError(t, cache.QueuePendingWrite("u1", storage.PendingProfile, models.UserProfile{
		ExternalUserID: "u1", XP: 90, Level: 1, TotalQuestsCompleted: 2,
	}))

	worker.flushBatch(ctx)

	profile, err := gw.LoadProfile(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 90, profile.XP, "journal entry newer than the remote row replays")
}

func TestFlushBatchKeepsFailedWrites(t *testing.T) {
	worker, cache, gw := newFlushFixture(t)
	ctx := context.Background()

	require.NoError(t, cache.QueuePendingWrite("u1", storage.PendingProfile, models.UserProfile{
		ExternalUserID: "u1", XP: 70,
	}))

	gw.FailWith(errors.New("connection refused"))
	worker.flushBatch(ctx)

	writes, err := cache.ListPendingWrites(10)
	require.NoError(t, err)
	require.Len(t, writes, 1, "failed write stays queued")
	assert.Equal(t, 1, writes[0].Attempts)

	gw.FailWith(nil)
	worker.flushBatch(ctx)

	writes, err = cache.ListPendingWrites(10)
	require.NoError(t, err)
	assert.Empty(t, writes)
	profile, err := gw.LoadProfile(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 70, profile.XP)
}

func TestFlushBatchDropsAfterMaxAttempts(t *testing.T) {
	worker, cache, gw := newFlushFixture(t)
	ctx := context.Background()

	require.NoError(t, cache.QueuePendingWrite("u1", storage.PendingProfile, models.UserProfile{
		ExternalUserID: "u1", XP: 70,
	}))

	gw.FailWith(errors.New("connection refused"))
	for i := 0; i < worker.maxAttempts; i++ {
		worker.flushBatch(ctx)
	}

	writes, err := cache.ListPendingWrites(10)
	require.NoError(t, err)
	assert.Empty(t, writes, "write dropped after bounded attempts")
}

func TestFlushBatchDropsUnknownKind(t *testing.T) {
	worker, cache, _ := newFlushFixture(t)
	ctx := context.Background()

	require.NoError(t, cache.QueuePendingWrite("u1", "legacy_kind", map[string]string{"x": "y"}))
	worker.flushBatch(ctx)

	writes, err := cache.ListPendingWrites(10)
	require.NoError(t, err)
	assert.Empty(t, writes, "unknown kinds are discarded, not retried forever")
}

func TestWorkerStopsOnContextCancel(t *testing.T) {
	worker, _, _ := newFlushFixture(t)
	worker.interval = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		worker.run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop on cancel")
	}
}
