package services

import "math"

// Level curve: level = floor(sqrt(xp/100)) + 1. The inverse threshold is the
// total XP at which the next level begins, so for every level L:
//
//	CalculateLevel(XPThresholdForLevel(L) - 1) == L
//	CalculateLevel(XPThresholdForLevel(L))     == L + 1
const xpPerLevelUnit = 100

// CalculateLevel maps total XP to a level >= 1. Monotonic non-decreasing.
func CalculateLevel(xp int) int {
	if xp < 0 {
		xp = 0
	}
	return int(math.Sqrt(float64(xp)/xpPerLevelUnit)) + 1
}

// XPThresholdForLevel returns the cumulative XP required to finish the given
// level, i.e. the XP at which level+1 starts.
func XPThresholdForLevel(level int) int {
	if level < 1 {
		level = 1
	}
	return level * level * xpPerLevelUnit
}
