package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/limbo/focusbear/pkg/entity"
)

type RegisterRequest struct {
	Name     string `validate:"required,alphanum_underscore,min=3,max=100"`
	Password string `validate:"required,min=8,max=72"`
}

type PaginationOpts struct {
	Limit  int
	Offset int
}

type StartSessionRequest struct {
	DurationMinutes int    `validate:"required,gt=0"`
	Class           string `validate:"required,oneof=quick deep power"`
}

type AddWhitelistRequest struct {
	Value       string `validate:"required,whitelist_value,min=1,max=200"`
	Description string `validate:"max=200"`
	Category    string `validate:"omitempty,oneof=educational library emergency"`
}

type CreateTaskRequest struct {
	Title            string `validate:"required,min=1,max=200"`
	Description      string `validate:"max=2000"`
	DueDate          *time.Time
	ScheduledTime    *time.Time
	EstimatedMinutes int    `validate:"gte=0"`
	Priority         string `validate:"omitempty,oneof=low medium high"`
	ReminderEnabled  bool
}

type CreateAssignmentRequest struct {
	Title            string `validate:"required,min=1,max=200"`
	Description      string `validate:"max=2000"`
	Subject          string `validate:"max=100"`
	DueDate          *time.Time
	EstimatedMinutes int    `validate:"gte=0"`
	Priority         string `validate:"omitempty,oneof=low medium high"`
}

type CreateHabitRequest struct {
	Title              string `validate:"required,min=1,max=200"`
	Description        string `validate:"max=2000"`
	Frequency          string `validate:"omitempty,oneof=daily weekly"`
	CoinsPerCompletion int    `validate:"gte=0"`
}

type CreateCourseRequest struct {
	Title        string `validate:"required,min=1,max=200"`
	Description  string `validate:"max=2000"`
	Instructor   string `validate:"max=100"`
	Schedule     string `validate:"max=200"`
	TotalLessons int    `validate:"gte=0"`
}

type UpdateCourseProgressRequest struct {
	CompletedLessons int    `validate:"gte=0"`
	Status           string `validate:"omitempty,oneof=active paused completed"`
}

type UserServiceI interface {
	// Validates user's credentials, creates new row in database. Returns user's data with ID
	Register(ctx context.Context, req *RegisterRequest) (*entity.User, error)
	// Compares given credentials. If ok, give back user's data with ID.
	Login(ctx context.Context, name, password string) (*entity.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	GetByName(ctx context.Context, name string) (*entity.User, error)
	DeleteAccount(ctx context.Context, id uuid.UUID, password string) error
}

type FocusServiceI interface {
	// Opens a new focus session. Fails with ErrSessionAlreadyActive while
	// one is still running
	StartSession(ctx context.Context, uid uuid.UUID, req *StartSessionRequest) (*entity.FocusSession, error)
	// Returns the running session and its remaining time, (nil, 0) when idle
	ActiveSession(ctx context.Context, uid uuid.UUID) (*entity.FocusSession, time.Duration, error)
	// Credits the session's coins to the ledger, exactly once
	CompleteSession(ctx context.Context, uid, sessionID uuid.UUID) (*entity.FocusSession, *entity.FocusStats, error)
	// Break-glass abort: consumes monthly quota and discards the running
	// session without credit
	BreakSession(ctx context.Context, uid uuid.UUID) error
	// Returns the user's ledger, creating a fresh one on first touch
	GetStats(ctx context.Context, uid uuid.UUID) (*entity.FocusStats, error)
	// Allow-list gate for opening external resources during a session
	GuardOpen(ctx context.Context, uid uuid.UUID, url string) error
	AddWhitelistItem(ctx context.Context, uid uuid.UUID, req *AddWhitelistRequest) (*entity.WhitelistItem, error)
	RemoveWhitelistItem(ctx context.Context, uid, itemID uuid.UUID) error
	GetWhitelist(ctx context.Context, uid uuid.UUID) ([]entity.WhitelistItem, error)
}

type TasksServiceI interface {
	CreateTask(ctx context.Context, uid uuid.UUID, req *CreateTaskRequest) (*entity.Task, error)
	GetUserTasks(ctx context.Context, uid uuid.UUID, pagination PaginationOpts) ([]*entity.Task, error)
	GetTask(ctx context.Context, taskID, userID uuid.UUID) (*entity.Task, error)
	// Marks the task done and credits its coins, minus the late penalty
	// when past due
	CompleteTask(ctx context.Context, taskID, userID uuid.UUID) (*entity.Task, error)
	DeleteTask(ctx context.Context, taskID, userID uuid.UUID) error
}

type AssignmentsServiceI interface {
	CreateAssignment(ctx context.Context, uid uuid.UUID, req *CreateAssignmentRequest) (*entity.Assignment, error)
	GetUserAssignments(ctx context.Context, uid uuid.UUID, pagination PaginationOpts) ([]*entity.Assignment, error)
	GetAssignment(ctx context.Context, assignmentID, userID uuid.UUID) (*entity.Assignment, error)
	CompleteAssignment(ctx context.Context, assignmentID, userID uuid.UUID) (*entity.Assignment, error)
	DeleteAssignment(ctx context.Context, assignmentID, userID uuid.UUID) error
}

type HabitsServiceI interface {
	CreateHabit(ctx context.Context, uid uuid.UUID, req *CreateHabitRequest) (*entity.Habit, error)
	GetUserHabits(ctx context.Context, uid uuid.UUID, pagination PaginationOpts) ([]*entity.Habit, error)
	GetHabit(ctx context.Context, habitID, userID uuid.UUID) (*entity.Habit, error)
	// Once per calendar day: bumps the habit's streak and credits its
	// per-completion coins
	CompleteHabit(ctx context.Context, habitID, userID uuid.UUID) (*entity.Habit, error)
	DeleteHabit(ctx context.Context, habitID, userID uuid.UUID) error
}

type CoursesServiceI interface {
	CreateCourse(ctx context.Context, uid uuid.UUID, req *CreateCourseRequest) (*entity.Course, error)
	GetUserCourses(ctx context.Context, uid uuid.UUID, pagination PaginationOpts) ([]*entity.Course, error)
	GetCourse(ctx context.Context, courseID, userID uuid.UUID) (*entity.Course, error)
	UpdateCourseProgress(ctx context.Context, courseID, userID uuid.UUID, req *UpdateCourseProgressRequest) (*entity.Course, error)
	DeleteCourse(ctx context.Context, courseID, userID uuid.UUID) error
}
