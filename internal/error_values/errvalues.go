package errorvalues

import "errors"

var (
	ErrUserExists       = errors.New("such user already exists")
	ErrUserNotFound     = errors.New("user doesn't exists")
	ErrOwnerNotFound    = errors.New("owner doesn't exists")
	ErrWrongCredentials = errors.New("wrong name or password")
	ErrInvalidToken     = errors.New("invalid token")
	ErrWrongOwner       = errors.New("resource has different owner")

	ErrSessionAlreadyActive = errors.New("focus session already active")
	ErrSessionNotActive     = errors.New("focus session is not active")
	ErrSessionNotFound      = errors.New("focus session doesn't exists")
	ErrNoBreaksRemaining    = errors.New("no emergency breaks remaining this month")
	ErrNotWhitelisted       = errors.New("resource is not whitelisted for focus mode")

	ErrStatsNotFound         = errors.New("focus stats doesn't exists")
	ErrWhitelistItemNotFound = errors.New("whitelist item doesn't exists")
	ErrWhitelistItemExists   = errors.New("whitelist item already exists")

	ErrTaskNotFound       = errors.New("task doesn't exists")
	ErrAssignmentNotFound = errors.New("assignment doesn't exists")
	ErrHabitNotFound      = errors.New("habit doesn't exists")
	ErrUserHasHabit       = errors.New("user already has such habit")
	ErrCourseNotFound     = errors.New("course doesn't exists")
	ErrAlreadyCompleted   = errors.New("already completed")
	ErrHabitDoneToday     = errors.New("habit already completed today")
)
