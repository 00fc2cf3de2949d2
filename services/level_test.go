package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateLevel(t *testing.T) {
	tests := []struct {
		name  string
		xp    int
		level int
	}{
		{"zero xp is level one", 0, 1},
		{"partial first level", 70, 1},
		{"just below level two", 99, 1},
		{"exactly level two", 100, 2},
		{"mid curve", 250, 2},
		{"level three boundary", 400, 3},
		{"deep curve", 10000, 11},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.level, CalculateLevel(tt.xp))
		})
	}
}

func TestCalculateLevelMonotonic(t *testing.T) {
	prev := CalculateLevel(0)
	for xp := 1; xp <= 50000; xp += 7 {
		level := CalculateLevel(xp)
		require.GreaterOrEqual(t, level, prev, "level dropped at xp=%d", xp)
		prev = level
	}
}

func TestXPThresholdRoundTrip(t *testing.T) {
	for level := 1; level <= 100; level++ {
		threshold := XPThresholdForLevel(level)
		require.Equal(t, level, CalculateLevel(threshold-1),
			"one xp below threshold should still be level %d", level)
		require.Equal(t, level+1, CalculateLevel(threshold),
			"threshold xp should begin level %d", level+1)
	}
}

func TestXPThresholdClampsInvalidLevel(t *testing.T) {
	assert.Equal(t, XPThresholdForLevel(1), XPThresholdForLevel(0))
	assert.Equal(t, XPThresholdForLevel(1), XPThresholdForLevel(-3))
}
