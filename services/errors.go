package services

import "errors"

var (
	// ErrInvalidAmount rejects non-positive XP grants before any mutation.
	ErrInvalidAmount = errors.New("xp amount must be positive")

	// ErrInvalidDuration rejects non-positive quest durations.
	ErrInvalidDuration = errors.New("quest duration must be positive")

	// ErrInvalidMood rejects moods outside the fixed set.
	ErrInvalidMood = errors.New("unknown mood")

	// ErrUnknownAchievement rejects unlock requests for ids not in the
	// definition table.
	ErrUnknownAchievement = errors.New("unknown achievement id")

	// ErrNotAuthenticated: mutating operations require an engine bound to a
	// real user session. There is no guest aggregate.
	ErrNotAuthenticated = errors.New("no authenticated user bound to engine")

	// ErrNotSynced: mutations before the initial remote sync are rejected so
	// they cannot silently overwrite remote state with a blank aggregate.
	ErrNotSynced = errors.New("engine has not synced from remote yet")

	// ErrPersistenceUnavailable marks a mutation that was applied in memory
	// but could not be written remotely. The write is journaled for retry;
	// callers should surface a not-saved warning, not discard the result.
	ErrPersistenceUnavailable = errors.New("remote persistence unavailable")
)
