package entity

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID
	Name         string
	PasswordHash string
}

type SessionClass string

const (
	SessionQuick SessionClass = "quick"
	SessionDeep  SessionClass = "deep"
	SessionPower SessionClass = "power"
)

// FocusSession is one timed study interval. CoinsEarned is fixed at
// creation and never recomputed.
type FocusSession struct {
	ID              uuid.UUID    `json:"id"`
	UserID          uuid.UUID    `json:"uid"`
	DurationMinutes int          `json:"duration_minutes"`
	Class           SessionClass `json:"session_class"`
	StartTime       time.Time    `json:"start_time"`
	EndTime         time.Time    `json:"end_time"`
	Completed       bool         `json:"completed"`
	CoinsEarned     int          `json:"coins_earned"`
}

// FocusStats is the per-user running ledger, one row per user.
// Coin counters may go negative through penalties.
type FocusStats struct {
	UserID               uuid.UUID `json:"uid"`
	DailyCoins           int       `json:"daily_coins"`
	WeeklyCoins          int       `json:"weekly_coins"`
	MonthlyCoins         int       `json:"monthly_coins"`
	CurrentStreak        int       `json:"current_streak"`
	TotalSessions        int       `json:"total_sessions"`
	TodaySessions        int       `json:"today_sessions"`
	DailyScreenTimeSaved int       `json:"daily_screen_time_saved"`
	LastActivityDate     time.Time `json:"last_activity_date"`
	BreakGlassUsed       int       `json:"break_glass_used"`
	BreakGlassResetDate  time.Time `json:"break_glass_reset_date"`
}

type WhitelistType string

const (
	WhitelistURL WhitelistType = "url"
	WhitelistApp WhitelistType = "app"
)

type WhitelistItem struct {
	ID          uuid.UUID     `json:"id"`
	UserID      uuid.UUID     `json:"uid"`
	ItemType    WhitelistType `json:"item_type"`
	Value       string        `json:"value"`
	Description string        `json:"description"`
	Category    string        `json:"category"`
	CreatedAt   time.Time     `json:"created_at"`
}

type Task struct {
	ID               uuid.UUID  `json:"id"`
	UserID           uuid.UUID  `json:"uid"`
	Title            string     `json:"title"`
	Description      string     `json:"desc"`
	DueDate          *time.Time `json:"due_date,omitempty"`
	ScheduledTime    *time.Time `json:"scheduled_time,omitempty"`
	EstimatedMinutes int        `json:"estimated_minutes"`
	Priority         string     `json:"priority"`
	Status           string     `json:"status"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`
	CoinsEarned      int        `json:"coins_earned"`
	ReminderEnabled  bool       `json:"reminder_enabled"`
	CreatedAt        time.Time  `json:"created_at"`
}

type Assignment struct {
	ID               uuid.UUID  `json:"id"`
	UserID           uuid.UUID  `json:"uid"`
	Title            string     `json:"title"`
	Description      string     `json:"desc"`
	Subject          string     `json:"subject"`
	DueDate          *time.Time `json:"due_date,omitempty"`
	EstimatedMinutes int        `json:"estimated_minutes"`
	Priority         string     `json:"priority"`
	Status           string     `json:"status"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`
	CoinsEarned      int        `json:"coins_earned"`
	CreatedAt        time.Time  `json:"created_at"`
}

type Habit struct {
	ID                 uuid.UUID `json:"id"`
	UserID             uuid.UUID `json:"uid"`
	Title              string    `json:"title"`
	Description        string    `json:"desc"`
	Frequency          string    `json:"frequency"`
	CurrentStreak      int       `json:"current_streak"`
	BestStreak         int       `json:"best_streak"`
	LastCompletedDate  time.Time `json:"last_completed_date"`
	TotalCompletions   int       `json:"total_completions"`
	CoinsPerCompletion int       `json:"coins_per_completion"`
	CreatedAt          time.Time `json:"created_at"`
}

type Course struct {
	ID               uuid.UUID `json:"id"`
	UserID           uuid.UUID `json:"uid"`
	Title            string    `json:"title"`
	Description      string    `json:"desc"`
	Instructor       string    `json:"instructor"`
	Schedule         string    `json:"schedule"`
	Progress         int       `json:"progress"`
	TotalLessons     int       `json:"total_lessons"`
	CompletedLessons int       `json:"completed_lessons"`
	Status           string    `json:"status"`
	CreatedAt        time.Time `json:"created_at"`
}
