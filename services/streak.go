package services

import "time"

// EvaluateStreak computes the new streak given the previous check-in and the
// moment of the current action. Diffing is on calendar days in the action's
// local timezone:
//
//	no previous check-in → 1
//	same day             → unchanged (repeat actions are idempotent)
//	next day             → streak + 1
//	gap of 2+ days       → reset to 1
//	negative diff        → treated as same-day; clock skew never shrinks a streak
//
// Returned longest is max(longest, new streak), so longest >= current always
// holds after evaluation. The caller updates lastCheckIn on every invocation.
func EvaluateStreak(lastCheckIn *time.Time, currentStreak, longestStreak int, now time.Time) (int, int) {
	newStreak := currentStreak
	switch {
	case lastCheckIn == nil:
		newStreak = 1
	default:
		diff := dayNumber(now) - dayNumber(*lastCheckIn)
		switch {
		case diff == 1:
			newStreak = currentStreak + 1
		case diff > 1:
			newStreak = 1
		}
		// diff <= 0: unchanged
	}
	if newStreak > longestStreak {
		longestStreak = newStreak
	}
	return newStreak, longestStreak
}

// dayNumber truncates to the calendar day in t's location, counted from the
// Unix epoch. Comparing day numbers avoids DST-length-day arithmetic.
func dayNumber(t time.Time) int {
	y, m, d := t.Date()
	return int(time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400)
}
