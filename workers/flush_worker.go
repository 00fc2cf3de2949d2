// workers/flush_worker.go
package workers

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"calmquest-backend/models"
	"calmquest-backend/storage"
)

// PendingWriteFlushWorker drains the local cache's journal of failed remote
// writes back into the gateway. Writes replay oldest-first, preserving the
// order mutations happened in; a write that keeps failing past maxAttempts
// is dropped with a log line so the loss is auditable.
type PendingWriteFlushWorker struct {
	cache       *storage.LocalCache
	gateway     storage.Gateway
	interval    time.Duration
	batchSize   int
	maxAttempts int
}

func NewPendingWriteFlushWorker(cache *storage.LocalCache, gateway storage.Gateway) *PendingWriteFlushWorker {
	return &PendingWriteFlushWorker{
		cache:       cache,
		gateway:     gateway,
		interval:    30 * time.Second,
		batchSize:   50,
		maxAttempts: 5,
	}
}

func (w *PendingWriteFlushWorker) Start(ctx context.Context) {
	log.Println("🔁 Starting Pending Write Flush Worker (local journal → remote store)…")
	go w.run(ctx)
}

func (w *PendingWriteFlushWorker) run(ctx context.Context) {
	// Drain anything journaled by a previous run first
	w.flushBatch(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.flushBatch(ctx)
		case <-ctx.Done():
			log.Println("⏹️ Pending Write Flush Worker stopped")
			return
		}
	}
}

func (w *PendingWriteFlushWorker) flushBatch(ctx context.Context) {
	writes, err := w.cache.ListPendingWrites(w.batchSize)
	if err != nil {
		log.Printf("❌ [FLUSH] Failed to list pending writes: %v", err)
		return
	}
	if len(writes) == 0 {
		return
	}
	log.Printf("[FLUSH] 📡 Replaying %d pending write(s)", len(writes))

	for _, pw := range writes {
		if err := w.replay(ctx, pw); err != nil {
			if pw.Attempts+1 >= w.maxAttempts {
				// Discarding after bounded attempts; log the payload so the
				// lost write can be reconstructed by hand if it matters.
				log.Printf("🗑️ [FLUSH] Dropping write %d (%s, user %s) after %d attempts: %v | payload: %s",
					pw.ID, pw.Kind, pw.UserID, pw.Attempts+1, err, pw.Payload)
				if delErr := w.cache.DeletePendingWrite(pw.ID); delErr != nil {
					log.Printf("❌ [FLUSH] Failed to drop write %d: %v", pw.ID, delErr)
				}
				continue
			}
			if bumpErr := w.cache.BumpPendingWriteAttempts(pw.ID); bumpErr != nil {
				log.Printf("❌ [FLUSH] Failed to bump attempts on write %d: %v", pw.ID, bumpErr)
			}
			continue
		}
		if err := w.cache.DeletePendingWrite(pw.ID); err != nil {
			log.Printf("❌ [FLUSH] Replayed write %d but failed to dequeue it: %v", pw.ID, err)
		}
	}
}

func (w *PendingWriteFlushWorker) replay(ctx context.Context, pw storage.PendingWrite) error {
	switch pw.Kind {
	case storage.PendingProfile:
		var profile models.UserProfile
		if err := json.Unmarshal([]byte(pw.Payload), &profile); err != nil {
			return err
		}
		// A profile journaled during an outage is a point-in-time snapshot; a
		// successful write may have landed since. Replaying the snapshot over
		// it would roll counters backwards, so the stale side loses.
		current, err := w.gateway.LoadProfile(ctx, profile.ExternalUserID)
		if err == nil && current.UpdatedAt.After(pw.QueuedAt) {
			log.Printf("⚠️ [FLUSH] Sync conflict: remote profile for %s is newer than journaled write %d, discarding | payload: %s",
				profile.ExternalUserID, pw.ID, pw.Payload)
			return nil
		}
		if err != nil && err != storage.ErrNotFound {
			return err
		}
		return w.gateway.SaveProfile(ctx, &profile)
	case storage.PendingQuest:
		var quest models.CompletedQuest
		if err := json.Unmarshal([]byte(pw.Payload), &quest); err != nil {
			return err
		}
		return w.gateway.AppendCompletedQuest(ctx, &quest)
	case storage.PendingUnlock:
		var unlock models.AchievementUnlock
		if err := json.Unmarshal([]byte(pw.Payload), &unlock); err != nil {
			return err
		}
		return w.gateway.RecordAchievementUnlock(ctx, unlock.ExternalUserID, unlock.AchievementID, unlock.UnlockedAt)
	case storage.PendingMood:
		var entry models.MoodEntry
		if err := json.Unmarshal([]byte(pw.Payload), &entry); err != nil {
			return err
		}
		return w.gateway.AppendMoodEntry(ctx, entry.ExternalUserID, entry.Mood, entry.Timestamp)
	default:
		log.Printf("⚠️ [FLUSH] Unknown pending write kind %q (id %d), dropping", pw.Kind, pw.ID)
		return nil
	}
}
