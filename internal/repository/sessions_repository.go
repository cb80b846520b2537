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

type SessionsRepository struct {
	conn PgConnection
}

func NewSessionsRepo(cfg DBConfig) *SessionsRepository {
	pool, err := pgxpool.New(context.Background(), cfg.ConnString())
	if err != nil {
		log.Fatal("creating connection for sessionsRepo error: " + err.Error())
	}
	err = pool.Ping(context.Background())
	if err != nil {
		log.Fatal("error while pinging connection for sessionsRepo: " + err.Error())
	}
	cleanup.Register(&cleanup.Job{
		Name: "closing pgxpool",
		F: func() error {
			pool.Close()
			return nil
		},
	})
	return &SessionsRepository{
		conn: pool,
	}
}

func NewSessionsRepoWithConn(conn PgConnection) *SessionsRepository {
	err := conn.Ping(context.Background())
	if err != nil {
		log.Fatal("error while pinging connection for sessionsRepo: " + err.Error())
	}
	return &SessionsRepository{
		conn: conn,
	}
}

func (sr *SessionsRepository) Create(ctx context.Context, session *entity.FocusSession) error {
	_, err := sr.conn.Exec(ctx, `INSERT INTO focus_sessions (id, user_id, duration_minutes, session_class, start_time, end_time, completed, coins_earned) VALUES ($1, $2, $3, $4, $5, $6, $7, $8);`,
		session.ID,
		session.UserID,
		session.DurationMinutes,
		session.Class,
		session.StartTime,
		session.EndTime,
		session.Completed,
		session.CoinsEarned,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			// FK violation
			case "23503":
				return errorvalues.ErrOwnerNotFound
			}
		}
		return errors.New("creating focus session error: " + err.Error())
	}
	return nil
}

func (sr *SessionsRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.FocusSession, error) {
	var session entity.FocusSession
	session.ID = id
	row := sr.conn.QueryRow(ctx, `SELECT user_id, duration_minutes, session_class, start_time, end_time, completed, coins_earned FROM focus_sessions WHERE id = $1;`, id)
	err := row.Scan(
		&session.UserID,
		&session.DurationMinutes,
		&session.Class,
		&session.StartTime,
		&session.EndTime,
		&session.Completed,
		&session.CoinsEarned,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errorvalues.ErrSessionNotFound
		}
		return nil, errors.New("getting focus session by id error: " + err.Error())
	}
	return &session, nil
}

// GetActive returns the user's uncompleted session. (nil, nil) means the
// user is idle.
func (sr *SessionsRepository) GetActive(ctx context.Context, uid uuid.UUID) (*entity.FocusSession, error) {
	var session entity.FocusSession
	session.UserID = uid
	row := sr.conn.QueryRow(ctx, `SELECT id, duration_minutes, session_class, start_time, end_time, completed, coins_earned FROM focus_sessions WHERE user_id = $1 AND completed = FALSE;`, uid)
	err := row.Scan(
		&session.ID,
		&session.DurationMinutes,
		&session.Class,
		&session.StartTime,
		&session.EndTime,
		&session.Completed,
		&session.CoinsEarned,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.New("getting active focus session error: " + err.Error())
	}
	return &session, nil
}

// Complete flips the completed flag and rewrites the ledger row in one
// transaction, so a session is never credited partially or twice.
func (sr *SessionsRepository) Complete(ctx context.Context, sessionID uuid.UUID, stats *entity.FocusStats) error {
	tx, err := sr.conn.Begin(ctx)
	if err != nil {
		return errors.New("beginning session completion tx error: " + err.Error())
	}
	defer tx.Rollback(ctx)
	ct, err := tx.Exec(ctx, `UPDATE focus_sessions SET completed = TRUE WHERE id = $1 AND completed = FALSE;`, sessionID)
	if err != nil {
		return errors.New("completing focus session error: " + err.Error())
	}
	if ct.RowsAffected() == 0 {
		return errorvalues.ErrSessionNotActive
	}
	if err = execStatsUpdate(ctx, tx, stats); err != nil {
		return err
	}
	if err = tx.Commit(ctx); err != nil {
		return errors.New("committing session completion tx error: " + err.Error())
	}
	return nil
}

// Abort discards a running session and writes the consumed break-glass
// quota in one transaction, so a failed discard never costs a break.
func (sr *SessionsRepository) Abort(ctx context.Context, sessionID uuid.UUID, stats *entity.FocusStats) error {
	tx, err := sr.conn.Begin(ctx)
	if err != nil {
		return errors.New("beginning session abort tx error: " + err.Error())
	}
	defer tx.Rollback(ctx)
	ct, err := tx.Exec(ctx, `DELETE FROM focus_sessions WHERE id = $1 AND completed = FALSE;`, sessionID)
	if err != nil {
		return errors.New("deleting focus session error: " + err.Error())
	}
	if ct.RowsAffected() == 0 {
		return errorvalues.ErrSessionNotFound
	}
	if err = execStatsUpdate(ctx, tx, stats); err != nil {
		return err
	}
	if err = tx.Commit(ctx); err != nil {
		return errors.New("committing session abort tx error: " + err.Error())
	}
	return nil
}
