// Package coins holds the coin-economy policy: pure arithmetic,
// no side effects. Inputs are validated by callers.
package coins

import (
	"math"

	"github.com/limbo/focusbear/pkg/entity"
)

const (
	// CoinsPerMinute is the base earn rate for sessions and tasks.
	CoinsPerMinute = 2
	// LatePenalty is deducted when a task or assignment is completed
	// after its due date.
	LatePenalty = 3
	// DefaultHabitCoins is the per-completion reward when a habit
	// doesn't override it.
	DefaultHabitCoins = 5
)

// SessionCoins returns the coins a session of the given length and
// class earns. The amount is fixed when the session starts.
func SessionCoins(durationMinutes int, class entity.SessionClass) int {
	base := float64(durationMinutes * CoinsPerMinute)
	multiplier := 1.0
	switch class {
	case entity.SessionPower:
		multiplier = 2.0
	case entity.SessionDeep:
		multiplier = 1.5
	}
	return int(math.Floor(base * multiplier))
}

// TaskCoins returns the reward for a task or assignment, fixed at
// creation from the time estimate and never recomputed.
func TaskCoins(estimatedMinutes int) int {
	return estimatedMinutes * CoinsPerMinute
}
