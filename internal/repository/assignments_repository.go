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

type AssignmentsRepository struct {
	conn PgConnection
}

func NewAssignmentsRepo(cfg DBConfig) *AssignmentsRepository {
	pool, err := pgxpool.New(context.Background(), cfg.ConnString())
	if err != nil {
		log.Fatal("creating connection for assignmentsRepo error: " + err.Error())
	}
	err = pool.Ping(context.Background())
	if err != nil {
		log.Fatal("error while pinging connection for assignmentsRepo: " + err.Error())
	}
	cleanup.Register(&cleanup.Job{
		Name: "closing pgxpool",
		F: func() error {
			pool.Close()
			return nil
		},
	})
	return &AssignmentsRepository{
		conn: pool,
	}
}

func NewAssignmentsRepoWithConn(conn PgConnection) *AssignmentsRepository {
	err := conn.Ping(context.Background())
	if err != nil {
		log.Fatal("error while pinging connection for assignmentsRepo: " + err.Error())
	}
	return &AssignmentsRepository{
		conn: conn,
	}
}

func (ar *AssignmentsRepository) Create(ctx context.Context, assignment *entity.Assignment) (uuid.UUID, error) {
	var id uuid.UUID
	row := ar.conn.QueryRow(ctx, `INSERT INTO assignments (user_id, title, description, subject, due_date, estimated_minutes, priority, coins_earned) VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id;`,
		assignment.UserID,
		assignment.Title,
		assignment.Description,
		assignment.Subject,
		assignment.DueDate,
		assignment.EstimatedMinutes,
		assignment.Priority,
		assignment.CoinsEarned,
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
		return uuid.UUID{}, errors.New("creating assignment error: " + err.Error())
	}
	return id, nil
}

func (ar *AssignmentsRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Assignment, error) {
	var assignment entity.Assignment
	assignment.ID = id
	row := ar.conn.QueryRow(ctx, `SELECT user_id, title, description, subject, due_date, estimated_minutes, priority, status, completed_at, coins_earned, created_at FROM assignments WHERE id = $1;`, id)
	err := row.Scan(
		&assignment.UserID,
		&assignment.Title,
		&assignment.Description,
		&assignment.Subject,
		&assignment.DueDate,
		&assignment.EstimatedMinutes,
		&assignment.Priority,
		&assignment.Status,
		&assignment.CompletedAt,
		&assignment.CoinsEarned,
		&assignment.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errorvalues.ErrAssignmentNotFound
		}
		return nil, errors.New("getting assignment by id error: " + err.Error())
	}
	return &assignment, nil
}

func (ar *AssignmentsRepository) GetByUserID(ctx context.Context, uid uuid.UUID, limit, offset int) ([]*entity.Assignment, error) {
	rows, err := ar.conn.Query(ctx, `SELECT id, user_id, title, description, subject, due_date, estimated_minutes, priority, status, completed_at, coins_earned, created_at FROM assignments WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3;`, uid, limit, offset)
	if err != nil {
		return nil, errors.New("getting assignments by uid error: " + err.Error())
	}
	defer rows.Close()
	assignments := make([]*entity.Assignment, 0)
	for rows.Next() {
		a := entity.Assignment{}
		err = rows.Scan(&a.ID, &a.UserID, &a.Title, &a.Description, &a.Subject, &a.DueDate, &a.EstimatedMinutes, &a.Priority, &a.Status, &a.CompletedAt, &a.CoinsEarned, &a.CreatedAt)
		if err != nil {
			return nil, errors.New("assignment row parsing error: " + err.Error())
		}
		assignments = append(assignments, &a)
	}
	if rows.Err() != nil {
		return nil, errors.New("unexpected assignment rows error: " + rows.Err().Error())
	}
	return assignments, nil
}

func (ar *AssignmentsRepository) Complete(ctx context.Context, assignment *entity.Assignment, stats *entity.FocusStats) error {
	tx, err := ar.conn.Begin(ctx)
	if err != nil {
		return errors.New("beginning assignment completion tx error: " + err.Error())
	}
	defer tx.Rollback(ctx)
	ct, err := tx.Exec(ctx, `UPDATE assignments SET status = 'completed', completed_at = $1 WHERE id = $2 AND status != 'completed';`, assignment.CompletedAt, assignment.ID)
	if err != nil {
		return errors.New("completing assignment error: " + err.Error())
	}
	if ct.RowsAffected() == 0 {
		return errorvalues.ErrAlreadyCompleted
	}
	if err = execStatsUpdate(ctx, tx, stats); err != nil {
		return err
	}
	if err = tx.Commit(ctx); err != nil {
		return errors.New("committing assignment completion tx error: " + err.Error())
	}
	return nil
}

func (ar *AssignmentsRepository) Delete(ctx context.Context, id uuid.UUID) error {
	ct, err := ar.conn.Exec(ctx, `DELETE FROM assignments WHERE id = $1;`, id)
	if err != nil {
		return errors.New("deleting assignment error: " + err.Error())
	}
	if ct.RowsAffected() == 0 {
		return errorvalues.ErrAssignmentNotFound
	}
	return nil
}
