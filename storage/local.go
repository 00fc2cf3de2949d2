package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"calmquest-backend/models"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

const localSchema = `
CREATE TABLE IF NOT EXISTS cache_entries (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS pending_writes (
	id        INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id   TEXT NOT NULL,
	kind      TEXT NOT NULL,
	payload   TEXT NOT NULL,
	attempts  INTEGER NOT NULL DEFAULT 0,
	queued_at TIMESTAMP NOT NULL
);
`

// Pending write kinds, matched by the flush worker.
const (
	PendingProfile = "profile"
	PendingQuest   = "completed_quest"
	PendingUnlock  = "achievement_unlock"
	PendingMood    = "mood_entry"
)

// PendingWrite is a remote write that failed and was journaled for retry.
type PendingWrite struct {
	ID       int64     `db:"id"`
	UserID   string    `db:"user_id"`
	Kind     string    `db:"kind"`
	Payload  string    `db:"payload"`
	Attempts int       `db:"attempts"`
	QueuedAt time.Time `db:"queued_at"`
}

// LocalCache is the durable key-value mirror of the session aggregate plus
// the journal of remote writes awaiting retry. It is best-effort: callers
// log cache failures and continue, the in-memory aggregate stays
// authoritative for the session.
type LocalCache struct {
	db *sqlx.DB
}

// NewLocalCache opens (or creates) the sqlite file at path. ":memory:" works
// for tests.
func NewLocalCache(path string) (*LocalCache, error) {
	db, err := sqlx.Connect("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open local cache %s: %w", path, err)
	}
	if _, err := db.Exec(localSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init local cache schema: %w", err)
	}
	return &LocalCache{db: db}, nil
}

func (c *LocalCache) Close() error {
	return c.db.Close()
}

func (c *LocalCache) Get(key string) (string, error) {
	var value string
	err := c.db.Get(&value, `SELECT value FROM cache_entries WHERE key = ?`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("cache get %s: %w", key, err)
	}
	return value, nil
}

func (c *LocalCache) Set(key, value string) error {
	_, err := c.db.Exec(`
		INSERT INTO cache_entries (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return nil
}

func (c *LocalCache) Remove(key string) error {
	if _, err := c.db.Exec(`DELETE FROM cache_entries WHERE key = ?`, key); err != nil {
		return fmt.Errorf("cache remove %s: %w", key, err)
	}
	return nil
}

func (c *LocalCache) ClearAll() error {
	if _, err := c.db.Exec(`DELETE FROM cache_entries`); err != nil {
		return fmt.Errorf("cache clear: %w", err)
	}
	return nil
}

func statsKey(userID string) string {
	return "calmquest_user_stats:" + userID
}

// SaveStats mirrors the aggregate as a JSON blob. Timestamps round-trip via
// RFC 3339 so dates survive exactly.
func (c *LocalCache) SaveStats(userID string, stats *models.UserStats) error {
	blob, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("marshal stats for %s: %w", userID, err)
	}
	return c.Set(statsKey(userID), string(blob))
}

func (c *LocalCache) LoadStats(userID string) (*models.UserStats, error) {
	blob, err := c.Get(statsKey(userID))
	if err != nil {
		return nil, err
	}
	var stats models.UserStats
	if err := json.Unmarshal([]byte(blob), &stats); err != nil {
		return nil, fmt.Errorf("unmarshal cached stats for %s: %w", userID, err)
	}
	return &stats, nil
}

func (c *LocalCache) RemoveStats(userID string) error {
	return c.Remove(statsKey(userID))
}

// QueuePendingWrite journals a failed remote write for the flush worker.
func (c *LocalCache) QueuePendingWrite(userID, kind string, payload any) error {
	blob, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal pending %s write: %w", kind, err)
	}
	_, err = c.db.Exec(`
		INSERT INTO pending_writes (user_id, kind, payload, queued_at) VALUES (?, ?, ?, ?)`,
		userID, kind, string(blob), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("queue pending %s write: %w", kind, err)
	}
	return nil
}

// ListPendingWrites returns journaled writes oldest-first so replay preserves
// the original mutation order.
func (c *LocalCache) ListPendingWrites(limit int) ([]PendingWrite, error) {
	var writes []PendingWrite
	err := c.db.Select(&writes, `
		SELECT id, user_id, kind, payload, attempts, queued_at
		FROM pending_writes ORDER BY id ASC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list pending writes: %w", err)
	}
	return writes, nil
}

func (c *LocalCache) DeletePendingWrite(id int64) error {
	if _, err := c.db.Exec(`DELETE FROM pending_writes WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete pending write %d: %w", id, err)
	}
	return nil
}

// PurgePendingWrites drops every journaled write for the user. Called on
// progress reset so a later flush cannot resurrect pre-reset rows.
func (c *LocalCache) PurgePendingWrites(userID string) error {
	if _, err := c.db.Exec(`DELETE FROM pending_writes WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("purge pending writes for %s: %w", userID, err)
	}
	return nil
}

func (c *LocalCache) BumpPendingWriteAttempts(id int64) error {
	if _, err := c.db.Exec(`UPDATE pending_writes SET attempts = attempts + 1 WHERE id = ?`, id); err != nil {
		return fmt.Errorf("bump pending write %d: %w", id, err)
	}
	return nil
}
