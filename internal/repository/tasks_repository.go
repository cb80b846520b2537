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

type TasksRepository struct {
	conn PgConnection
}

func NewTasksRepo(cfg DBConfig) *TasksRepository {
	pool, err := pgxpool.New(context.Background(), cfg.ConnString())
	if err != nil {
		log.Fatal("creating connection for tasksRepo error: " + err.Error())
	}
	err = pool.Ping(context.Background())
	if err != nil {
		log.Fatal("error while pinging connection for tasksRepo: " + err.Error())
	}
	cleanup.Register(&cleanup.Job{
		Name: "closing pgxpool",
		F: func() error {
			pool.Close()
			return nil
		},
	})
	return &TasksRepository{
		conn: pool,
	}
}

func NewTasksRepoWithConn(conn PgConnection) *TasksRepository {
	err := conn.Ping(context.Background())
	if err != nil {
		log.Fatal("error while pinging connection for tasksRepo: " + err.Error())
	}
	return &TasksRepository{
		conn: conn,
	}
}

func (tr *TasksRepository) Create(ctx context.Context, task *entity.Task) (uuid.UUID, error) {
	var id uuid.UUID
	row := tr.conn.QueryRow(ctx, `INSERT INTO tasks (user_id, title, description, due_date, scheduled_time, estimated_minutes, priority, coins_earned, reminder_enabled) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id;`,
		task.UserID,
		task.Title,
		task.Description,
		task.DueDate,
		task.ScheduledTime,
		task.EstimatedMinutes,
		task.Priority,
		task.CoinsEarned,
		task.ReminderEnabled,
	)
	if err := row.Scan(&id); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			// FK violation
			case "23503":
				return uuid.UUID{}, errorvalues.ErrOwnerNotFound
			}
		}
		return uuid.UUID{}, errors.New("creating task error: " + err.Error())
	}
	return id, nil
}

func (tr *TasksRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Task, error) {
	var task entity.Task
	task.ID = id
	row := tr.conn.QueryRow(ctx, `SELECT user_id, title, description, due_date, scheduled_time, estimated_minutes, priority, status, completed_at, coins_earned, reminder_enabled, created_at FROM tasks WHERE id = $1;`, id)
	err := row.Scan(
		&task.UserID,
		&task.Title,
		&task.Description,
		&task.DueDate,
		&task.ScheduledTime,
		&task.EstimatedMinutes,
		&task.Priority,
		&task.Status,
		&task.CompletedAt,
		&task.CoinsEarned,
		&task.ReminderEnabled,
		&task.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errorvalues.ErrTaskNotFound
		}
		return nil, errors.New("getting task by id error: " + err.Error())
	}
	return &task, nil
}

func (tr *TasksRepository) GetByUserID(ctx context.Context, uid uuid.UUID, limit, offset int) ([]*entity.Task, error) {
	rows, err := tr.conn.Query(ctx, `SELECT id, user_id, title, description, due_date, scheduled_time, estimated_minutes, priority, status, completed_at, coins_earned, reminder_enabled, created_at FROM tasks WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3;`, uid, limit, offset)
	if err != nil {
		return nil, errors.New("getting tasks by uid error: " + err.Error())
	}
	defer rows.Close()
	tasks := make([]*entity.Task, 0)
	for rows.Next() {
		t := entity.Task{}
		err = rows.Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &t.DueDate, &t.ScheduledTime, &t.EstimatedMinutes, &t.Priority, &t.Status, &t.CompletedAt, &t.CoinsEarned, &t.ReminderEnabled, &t.CreatedAt)
		if err != nil {
			return nil, errors.New("task row parsing error: " + err.Error())
		}
		tasks = append(tasks, &t)
	}
	if rows.Err() != nil {
		return nil, errors.New("unexpected task rows error: " + rows.Err().Error())
	}
	return tasks, nil
}

// Complete marks the task done and rewrites the ledger row in one
// transaction. Status and CompletedAt are taken from the task argument.
func (tr *TasksRepository) Complete(ctx context.Context, task *entity.Task, stats *entity.FocusStats) error {
	tx, err := tr.conn.Begin(ctx)
	if err != nil {
		return errors.New("beginning task completion tx error: " + err.Error())
	}
	defer tx.Rollback(ctx)
	ct, err := tx.Exec(ctx, `UPDATE tasks SET status = 'completed', completed_at = $1 WHERE id = $2 AND status != 'completed';`, task.CompletedAt, task.ID)
	if err != nil {
		return errors.New("completing task error: " + err.Error())
	}
	if ct.RowsAffected() == 0 {
		return errorvalues.ErrAlreadyCompleted
	}
	if err = execStatsUpdate(ctx, tx, stats); err != nil {
		return err
	}
	if err = tx.Commit(ctx); err != nil {
		return errors.New("committing task completion tx error: " + err.Error())
	}
	return nil
}

func (tr *TasksRepository) Delete(ctx context.Context, id uuid.UUID) error {
	ct, err := tr.conn.Exec(ctx, `DELETE FROM tasks WHERE id = $1;`, id)
	if err != nil {
		return errors.New("deleting task error: " + err.Error())
	}
	if ct.RowsAffected() == 0 {
		return errorvalues.ErrTaskNotFound
	}
	return nil
}
