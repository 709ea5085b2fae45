package engine

// MaxLevel is the highest level a hero can reach.
const MaxLevel = 8

// RequiredExp returns the experience needed to go from level to level+1:
// ceil(100 * 1.2^(level-1)), computed as ceil(100 * 12^(level-1) / 10^(level-1))
// so no floating point rounding can move a threshold. Levels outside
// [1, MaxLevel] are clamped.
func RequiredExp(level int) int64 {
	if level < 1 {
		level = 1
	}
	if level > MaxLevel {
		level = MaxLevel
	}
	num, den := int64(100), int64(1)
	for i := 1; i < level; i++ {
		num *= 12
		den *= 10
	}
	return (num + den - 1) / den
}

// ApplyExperience adds delta to a hero's progress and returns the new level and
// experience within that level.
//
// Positive deltas roll over as many thresholds as they cover and stop at
// MaxLevel, where any remainder is discarded. Stored experience already past
// the threshold carries into the next level. Negative deltas only reduce the
// experience within the current level, flooring at zero; levels are never lost.
func ApplyExperience(level int, experience, delta int64) (int, int64) {
	if level < 1 {
		level = 1
	}
	if experience < 0 {
		experience = 0
	}

	if delta < 0 {
		experience += delta
		if experience < 0 {
			experience = 0
		}
		return level, experience
	}
	if level >= MaxLevel {
		return level, experience
	}

	for level < MaxLevel {
		need := RequiredExp(level) - experience
		if delta < need {
			return level, experience + delta
		}
		delta -= need
		level++
		experience = 0
	}
	return level, experience
}
