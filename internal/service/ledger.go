package service

import (
	"time"

	"github.com/limbo/focusbear/pkg/entity"
)

// Ledger mutation helpers. Pure: they rewrite the stats struct in place
// and leave persistence to the caller's transaction.

// ApplySessionCompletion credits a completed session. On the first
// activity of a calendar day the daily counters restart from this
// session; otherwise they accumulate. CurrentStreak increments on every
// session within the same day (see the ledger tests).
func ApplySessionCompletion(stats *entity.FocusStats, session *entity.FocusSession, today time.Time) {
	if !sameDay(stats.LastActivityDate, today) {
		stats.DailyCoins = session.CoinsEarned
		stats.TodaySessions = 1
		stats.CurrentStreak = 1
		stats.DailyScreenTimeSaved = session.DurationMinutes
	} else {
		stats.DailyCoins += session.CoinsEarned
		stats.TodaySessions++
		stats.CurrentStreak++
		stats.DailyScreenTimeSaved += session.DurationMinutes
	}
	stats.WeeklyCoins += session.CoinsEarned
	stats.MonthlyCoins += session.CoinsEarned
	stats.TotalSessions++
	stats.LastActivityDate = today
}

// ApplyCredit is the coin-only rollover path used by task, assignment
// and habit completions. Session counters stay untouched.
func ApplyCredit(stats *entity.FocusStats, coins int, today time.Time) {
	if !sameDay(stats.LastActivityDate, today) {
		stats.DailyCoins = coins
	} else {
		stats.DailyCoins += coins
	}
	stats.WeeklyCoins += coins
	stats.MonthlyCoins += coins
	stats.LastActivityDate = today
}

// ApplyPenalty deducts coins. Totals are allowed to go negative, no
// floor is enforced.
func ApplyPenalty(stats *entity.FocusStats, amount int, today time.Time) {
	stats.DailyCoins -= amount
	stats.WeeklyCoins -= amount
	stats.MonthlyCoins -= amount
	stats.LastActivityDate = today
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
