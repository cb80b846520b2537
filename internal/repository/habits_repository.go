package repository

import (
	"context"
	"errors"
	"log"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	errorvalues "github.com/limbo/focusbear/internal/error_values"
	"github.com/limbo/focusbear/pkg/cleanup"
	"github.com/limbo/focusbear/pkg/entity"
)

type HabitsRepository struct {
	conn PgConnection
}

func NewHabitsRepo(cfg DBConfig) *HabitsRepository {
	pool, err := pgxpool.New(context.Background(), cfg.ConnString())
	if err != nil {
		log.Fatal("creating connection for habitsRepo error: " + err.Error())
	}
	err = pool.Ping(context.Background())
	if err != nil {
		log.Fatal("error while pinging connection for habitsRepo: " + err.Error())
	}
	cleanup.Register(&cleanup.Job{
		Name: "closing pgxpool",
		F: func() error {
			pool.Close()
			return nil
		},
	})
	return &HabitsRepository{
		conn: pool,
	}
}

func NewHabitsRepoWithConn(conn PgConnection) *HabitsRepository {
	err := conn.Ping(context.Background())
	if err != nil {
		log.Fatal("error while pinging connection for habitsRepo: " + err.Error())
	}
	return &HabitsRepository{
		conn: conn,
	}
}

func (hr *HabitsRepository) Create(ctx context.Context, habit *entity.Habit) (uuid.UUID, error) {
	var id uuid.UUID
	row := hr.conn.QueryRow(ctx, `INSERT INTO habits (user_id, title, description, frequency, coins_per_completion) VALUES ($1, $2, $3, $4, $5) RETURNING id;`,
		habit.UserID,
		habit.Title,
		habit.Description,
		habit.Frequency,
		habit.CoinsPerCompletion,
	)
	if err := row.Scan(&id); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			// Unique violation
			case "23505":
				return uuid.UUID{}, errorvalues.ErrUserHasHabit
			// FK violation
			case "23503":
				return uuid.UUID{}, errorvalues.ErrOwnerNotFound
			}
		}
		return uuid.UUID{}, errors.New("creating habit error: " + err.Error())
	}
	return id, nil
}

func (hr *HabitsRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Habit, error) {
	var habit entity.Habit
	habit.ID = id
	row := hr.conn.QueryRow(ctx, `SELECT user_id, title, description, frequency, current_streak, best_streak, last_completed_date, total_completions, coins_per_completion, created_at FROM habits WHERE id = $1;`, id)
	err := row.Scan(
		&habit.UserID,
		&habit.Title,
		&habit.Description,
		&habit.Frequency,
		&habit.CurrentStreak,
		&habit.BestStreak,
		&habit.LastCompletedDate,
		&habit.TotalCompletions,
		&habit.CoinsPerCompletion,
		&habit.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errorvalues.ErrHabitNotFound
		}
		return nil, errors.New("getting habit by id error: " + err.Error())
	}
	return &habit, nil
}

func (hr *HabitsRepository) GetByUserID(ctx context.Context, uid uuid.UUID, limit, offset int) ([]*entity.Habit, error) {
	rows, err := hr.conn.Query(ctx, `SELECT id, user_id, title, description, frequency, current_streak, best_streak, last_completed_date, total_completions, coins_per_completion, created_at FROM habits WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3;`, uid, limit, offset)
	if err != nil {
		return nil, errors.New("getting habits by uid error: " + err.Error())
	}
	defer rows.Close()
	habits := make([]*entity.Habit, 0)
	for rows.Next() {
		h := entity.Habit{}
		err = rows.Scan(&h.ID, &h.UserID, &h.Title, &h.Description, &h.Frequency, &h.CurrentStreak, &h.BestStreak, &h.LastCompletedDate, &h.TotalCompletions, &h.CoinsPerCompletion, &h.CreatedAt)
		if err != nil {
			return nil, errors.New("habit row parsing error: " + err.Error())
		}
		habits = append(habits, &h)
	}
	if rows.Err() != nil {
		return nil, errors.New("unexpected habit rows error: " + rows.Err().Error())
	}
	return habits, nil
}

// Complete writes the habit's streak counters and the ledger row in one
// transaction. The caller fills the habit with the already-bumped values.
func (hr *HabitsRepository) Complete(ctx context.Context, habit *entity.Habit, stats *entity.FocusStats) error {
	tx, err := hr.conn.Begin(ctx)
	if err != nil {
		return errors.New("beginning habit completion tx error: " + err.Error())
	}
	defer tx.Rollback(ctx)
	ct, err := tx.Exec(ctx, `UPDATE habits SET current_streak = $1, best_streak = $2, last_completed_date = $3, total_completions = $4 WHERE id = $5;`,
		habit.CurrentStreak,
		habit.BestStreak,
		habit.LastCompletedDate,
		habit.TotalCompletions,
		habit.ID,
	)
	if err != nil {
		return errors.New("completing habit error: " + err.Error())
	}
	if ct.RowsAffected() == 0 {
		return errorvalues.ErrHabitNotFound
	}
	if err = execStatsUpdate(ctx, tx, stats); err != nil {
		return err
	}
	if err = tx.Commit(ctx); err != nil {
		return errors.New("committing habit completion tx error: " + err.Error())
	}
	return nil
}

func (hr *HabitsRepository) Delete(ctx context.Context, id uuid.UUID) error {
	ct, err := hr.conn.Exec(ctx, `DELETE FROM habits WHERE id = $1;`, id)
	if err != nil {
		return errors.New("deleting habit error: " + err.Error())
	}
	if ct.RowsAffected() == 0 {
		return errorvalues.ErrHabitNotFound
	}
	return nil
}
