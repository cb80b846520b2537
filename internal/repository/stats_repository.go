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

// statsUpdateQuery rewrites the whole ledger row. It is shared with the
// transactional completion paths of the sessions, tasks, assignments and
// habits repositories so every credit goes through the same statement.
const statsUpdateQuery = `UPDATE focus_stats SET daily_coins = $1, weekly_coins = $2, monthly_coins = $3, current_streak = $4, total_sessions = $5, today_sessions = $6, daily_screen_time_saved = $7, last_activity_date = $8, break_glass_used = $9, break_glass_reset_date = $10 WHERE user_id = $11;`

type pgExecutor interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

func execStatsUpdate(ctx context.Context, conn pgExecutor, stats *entity.FocusStats) error {
	ct, err := conn.Exec(ctx, statsUpdateQuery,
		stats.DailyCoins,
		stats.WeeklyCoins,
		stats.MonthlyCoins,
		stats.CurrentStreak,
		stats.TotalSessions,
		stats.TodaySessions,
		stats.DailyScreenTimeSaved,
		stats.LastActivityDate,
		stats.BreakGlassUsed,
		stats.BreakGlassResetDate,
		stats.UserID,
	)
	if err != nil {
		return errors.New("updating focus stats error: " + err.Error())
	}
	if ct.RowsAffected() == 0 {
		return errorvalues.ErrStatsNotFound
	}
	return nil
}

type StatsRepository struct {
	conn PgConnection
}

func NewStatsRepo(cfg DBConfig) *StatsRepository {
	pool, err := pgxpool.New(context.Background(), cfg.ConnString())
	if err != nil {
		log.Fatal("creating connection for statsRepo error: " + err.Error())
	}
	err = pool.Ping(context.Background())
	if err != nil {
		log.Fatal("error while pinging connection for statsRepo: " + err.Error())
	}
	cleanup.Register(&cleanup.Job{
		Name: "closing pgxpool",
		F: func() error {
			pool.Close()
			return nil
		},
	})
	return &StatsRepository{
		conn: pool,
	}
}

func NewStatsRepoWithConn(conn PgConnection) *StatsRepository {
	err := conn.Ping(context.Background())
	if err != nil {
		log.Fatal("error while pinging connection for statsRepo: " + err.Error())
	}
	return &StatsRepository{
		conn: conn,
	}
}

func (sr *StatsRepository) Get(ctx context.Context, uid uuid.UUID) (*entity.FocusStats, error) {
	var stats entity.FocusStats
	stats.UserID = uid
	row := sr.conn.QueryRow(ctx, `SELECT daily_coins, weekly_coins, monthly_coins, current_streak, total_sessions, today_sessions, daily_screen_time_saved, last_activity_date, break_glass_used, break_glass_reset_date FROM focus_stats WHERE user_id = $1;`, uid)
	err := row.Scan(
		&stats.DailyCoins,
		&stats.WeeklyCoins,
		&stats.MonthlyCoins,
		&stats.CurrentStreak,
		&stats.TotalSessions,
		&stats.TodaySessions,
		&stats.DailyScreenTimeSaved,
		&stats.LastActivityDate,
		&stats.BreakGlassUsed,
		&stats.BreakGlassResetDate,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errorvalues.ErrStatsNotFound
		}
		return nil, errors.New("getting focus stats error: " + err.Error())
	}
	return &stats, nil
}

func (sr *StatsRepository) Create(ctx context.Context, stats *entity.FocusStats) error {
	_, err := sr.conn.Exec(ctx, `INSERT INTO focus_stats (user_id, break_glass_reset_date) VALUES ($1, $2);`,
		stats.UserID,
		stats.BreakGlassResetDate,
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
		return errors.New("creating focus stats error: " + err.Error())
	}
	return nil
}

func (sr *StatsRepository) Update(ctx context.Context, stats *entity.FocusStats) error {
	return execStatsUpdate(ctx, sr.conn, stats)
}
