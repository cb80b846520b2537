package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/limbo/focusbear/pkg/entity"
)

type UsersRepositoryI interface {
	// Creates new user in database
	Create(ctx context.Context, user *entity.User) error
	// Looks up user by name. Can be used for login
	FindByName(ctx context.Context, name string) (*entity.User, error)
	// Looks up user by uid. Can be used for authorization middleware
	FindByID(ctx context.Context, uid uuid.UUID) (*entity.User, error)
	// Updates user's info
	Update(ctx context.Context, user *entity.User) error
	// Deletes user
	Delete(ctx context.Context, uid uuid.UUID) error
}

type SessionsRepositoryI interface {
	// Inserts new focus session (id is assigned by the caller)
	Create(ctx context.Context, session *entity.FocusSession) error
	// Searches session with given id
	GetByID(ctx context.Context, id uuid.UUID) (*entity.FocusSession, error)
	// Returns the user's uncompleted session, or nil when there is none
	GetActive(ctx context.Context, uid uuid.UUID) (*entity.FocusSession, error)
	// Marks session completed and writes the updated stats row in one
	// transaction. Fails with ErrSessionNotActive when the session is
	// already completed, crediting nothing
	Complete(ctx context.Context, sessionID uuid.UUID, stats *entity.FocusStats) error
	// Discards a running session and writes the consumed break-glass
	// quota in one transaction (break-glass abort path)
	Abort(ctx context.Context, sessionID uuid.UUID, stats *entity.FocusStats) error
}

type StatsRepositoryI interface {
	// Returns the user's ledger row
	Get(ctx context.Context, uid uuid.UUID) (*entity.FocusStats, error)
	// Inserts a fresh ledger row for the user
	Create(ctx context.Context, stats *entity.FocusStats) error
	// Rewrites the user's ledger row
	Update(ctx context.Context, stats *entity.FocusStats) error
}

type WhitelistRepositoryI interface {
	// Inserts allow-list item, returns assigned id
	Create(ctx context.Context, item *entity.WhitelistItem) (uuid.UUID, error)
	// Searches item with given id
	GetByID(ctx context.Context, id uuid.UUID) (*entity.WhitelistItem, error)
	// Lists all allow-list items of the user
	GetByUserID(ctx context.Context, uid uuid.UUID) ([]entity.WhitelistItem, error)
	// Deletes item with id
	Delete(ctx context.Context, id uuid.UUID) error
}

type TasksRepositoryI interface {
	Create(ctx context.Context, task *entity.Task) (uuid.UUID, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Task, error)
	// Lists tasks owned by user with uid. Requires pagination params provided
	GetByUserID(ctx context.Context, uid uuid.UUID, limit, offset int) ([]*entity.Task, error)
	// Marks task completed and writes the updated stats row in one transaction
	Complete(ctx context.Context, task *entity.Task, stats *entity.FocusStats) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type AssignmentsRepositoryI interface {
	Create(ctx context.Context, assignment *entity.Assignment) (uuid.UUID, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Assignment, error)
	GetByUserID(ctx context.Context, uid uuid.UUID, limit, offset int) ([]*entity.Assignment, error)
	// Marks assignment completed and writes the updated stats row in one transaction
	Complete(ctx context.Context, assignment *entity.Assignment, stats *entity.FocusStats) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type HabitsRepositoryI interface {
	Create(ctx context.Context, habit *entity.Habit) (uuid.UUID, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Habit, error)
	GetByUserID(ctx context.Context, uid uuid.UUID, limit, offset int) ([]*entity.Habit, error)
	// Writes the habit's streak counters and the updated stats row in one transaction
	Complete(ctx context.Context, habit *entity.Habit, stats *entity.FocusStats) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type CoursesRepositoryI interface {
	Create(ctx context.Context, course *entity.Course) (uuid.UUID, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Course, error)
	GetByUserID(ctx context.Context, uid uuid.UUID, limit, offset int) ([]*entity.Course, error)
	// Updates lesson progress and status
	UpdateProgress(ctx context.Context, course *entity.Course) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type DBConfig interface {
	ConnString() string
}

type PgConnection interface {
	Ping(ctx context.Context) error
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Begin(ctx context.Context) (pgx.Tx, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PGCfg struct {
	Address  string
	Username string
	Password string
	DB       string
}

func (pgcfg *PGCfg) ConnString() string {
	return fmt.Sprintf("postgresql://%s:%s@%s/%s", pgcfg.Username, pgcfg.Password, pgcfg.Address, pgcfg.DB)
}
