package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d, hour int) time.Time {
	return time.Date(y, m, d, hour, 0, 0, 0, time.UTC)
}

func TestEvaluateStreak(t *testing.T) {
	now := date(2025, time.March, 10, 14)
	yesterday := date(2025, time.March, 9, 20)
	threeDaysAgo := date(2025, time.March, 7, 8)
	tomorrow := date(2025, time.March, 11, 2)

	tests := []struct {
		name        string
		lastCheckIn *time.Time
		current     int
		longest     int
		wantStreak  int
		wantLongest int
	}{
		{"first ever check-in", nil, 0, 0, 1, 1},
		{"same day is unchanged", &now, 4, 6, 4, 6},
		{"consecutive day increments", &yesterday, 6, 6, 7, 7},
		{"gap resets to one", &threeDaysAgo, 5, 9, 1, 9},
		{"longest follows a new record", &yesterday, 9, 9, 10, 10},
		{"clock skew never shrinks", &tomorrow, 3, 5, 3, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			streak, longest := EvaluateStreak(tt.lastCheckIn, tt.current, tt.longest, now)
			assert.Equal(t, tt.wantStreak, streak)
			assert.Equal(t, tt.wantLongest, longest)
		})
	}
}

func TestEvaluateStreakSameDayIdempotent(t *testing.T) {
	morning := date(2025, time.June, 1, 8)
	evening := date(2025, time.June, 1, 22)

	streak, longest := EvaluateStreak(nil, 0, 0, morning)
	assert.Equal(t, 1, streak)

	// second action the same calendar day
	streak2, longest2 := EvaluateStreak(&morning, streak, longest, evening)
	assert.Equal(t, streak, streak2)
	assert.Equal(t, longest, longest2)
}

func TestEvaluateStreakLongestInvariant(t *testing.T) {
	// arbitrary walk of check-in days; longest >= current must hold after
	// every step
	days := []int{1, 2, 3, 7, 8, 9, 10, 10, 15, 16}
	var last *time.Time
	current, longest := 0, 0
	for _, d := range days {
		now := date(2025, time.January, d, 12)
		current, longest = EvaluateStreak(last, current, longest, now)
		assert.GreaterOrEqual(t, longest, current, "after day %d", d)
		ts := now
		last = &ts
	}
	assert.Equal(t, 2, current)  // 15,16
	assert.Equal(t, 4, longest)  // 7,8,9,10
}
