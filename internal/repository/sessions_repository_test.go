package repository_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	errorvalues "github.com/limbo/focusbear/internal/error_values"
	"github.com/limbo/focusbear/internal/repository"
	"github.com/limbo/focusbear/pkg/entity"
	"github.com/pashagolub/pgxmock/v2"
	"github.com/stretchr/testify/assert"
)

var (
	userID = uuid.New()
)

var statsUpdateQueryPattern = regexp.QuoteMeta(`UPDATE focus_stats SET daily_coins = $1, weekly_coins = $2, monthly_coins = $3, current_streak = $4, total_sessions = $5, today_sessions = $6, daily_screen_time_saved = $7, last_activity_date = $8, break_glass_used = $9, break_glass_reset_date = $10 WHERE user_id = $11;`)

func statsUpdateArgs(stats *entity.FocusStats) []any {
	return []any{
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
	}
}

func TestCreateSession(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatal(err)
	}
	repo := repository.NewSessionsRepoWithConn(mock)
	now := time.Now()
	session := entity.FocusSession{
		ID:              uuid.New(),
		UserID:          userID,
		DurationMinutes: 25,
		Class:           entity.SessionQuick,
		StartTime:       now,
		EndTime:         now.Add(25 * time.Minute),
		CoinsEarned:     50,
	}
	ctx := context.Background()
	query := regexp.QuoteMeta(`INSERT INTO focus_sessions (id, user_id, duration_minutes, session_class, start_time, end_time, completed, coins_earned) VALUES ($1, $2, $3, $4, $5, $6, $7, $8);`)
	t.Run("successfully created", func(t *testing.T) {
		mock.ExpectExec(query).
			WithArgs(session.ID, session.UserID, session.DurationMinutes, session.Class, session.StartTime, session.EndTime, session.Completed, session.CoinsEarned).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		err := repo.Create(ctx, &session)
		assert.NoError(t, err)
	})
	t.Run("FK violation", func(t *testing.T) {
		mock.ExpectExec(query).
			WithArgs(session.ID, session.UserID, session.DurationMinutes, session.Class, session.StartTime, session.EndTime, session.Completed, session.CoinsEarned).
			WillReturnError(&pgconn.PgError{Code: "23503"})
		err := repo.Create(ctx, &session)
		assert.ErrorIs(t, err, errorvalues.ErrOwnerNotFound)
	})
	t.Run("db error", func(t *testing.T) {
		mock.ExpectExec(query).
			WithArgs(session.ID, session.UserID, session.DurationMinutes, session.Class, session.StartTime, session.EndTime, session.Completed, session.CoinsEarned).
			WillReturnError(errors.New("db error"))
		err := repo.Create(ctx, &session)
		assert.Error(t, err)
	})
}

func TestGetSessionByID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatal(err)
	}
	repo := repository.NewSessionsRepoWithConn(mock)
	now := time.Now()
	session := entity.FocusSession{
		ID:              uuid.New(),
		UserID:          userID,
		DurationMinutes: 45,
		Class:           entity.SessionDeep,
		StartTime:       now,
		EndTime:         now.Add(45 * time.Minute),
		CoinsEarned:     135,
	}
	query := regexp.QuoteMeta(`SELECT user_id, duration_minutes, session_class, start_time, end_time, completed, coins_earned FROM focus_sessions WHERE id = $1;`)
	ctx := context.Background()
	t.Run("success", func(t *testing.T) {
		mock.ExpectQuery(query).
			WithArgs(session.ID).
			WillReturnRows(pgxmock.NewRows([]string{"user_id", "duration_minutes", "session_class", "start_time", "end_time", "completed", "coins_earned"}).
				AddRow(session.UserID, session.DurationMinutes, session.Class, session.StartTime, session.EndTime, session.Completed, session.CoinsEarned),
			)
		result, err := repo.GetByID(ctx, session.ID)
		assert.NoError(t, err)
		assert.Equal(t, session, *result)
	})
	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery(query).
			WithArgs(session.ID).
			WillReturnError(pgx.ErrNoRows)
		_, err := repo.GetByID(ctx, session.ID)
		assert.ErrorIs(t, err, errorvalues.ErrSessionNotFound)
	})
	t.Run("db error", func(t *testing.T) {
		mock.ExpectQuery(query).
			WithArgs(session.ID).
			WillReturnError(errors.New("db error"))
		_, err := repo.GetByID(ctx, session.ID)
		assert.Error(t, err)
	})
}

func TestGetActiveSession(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatal(err)
	}
	repo := repository.NewSessionsRepoWithConn(mock)
	now := time.Now()
	session := entity.FocusSession{
		ID:              uuid.New(),
		UserID:          userID,
		DurationMinutes: 90,
		Class:           entity.SessionPower,
		StartTime:       now,
		EndTime:         now.Add(90 * time.Minute),
		CoinsEarned:     360,
	}
	query := regexp.QuoteMeta(`SELECT id, duration_minutes, session_class, start_time, end_time, completed, coins_earned FROM focus_sessions WHERE user_id = $1 AND completed = FALSE;`)
	ctx := context.Background()
	t.Run("active session exists", func(t *testing.T) {
		mock.ExpectQuery(query).
			WithArgs(userID).
			WillReturnRows(pgxmock.NewRows([]string{"id", "duration_minutes", "session_class", "start_time", "end_time", "completed", "coins_earned"}).
				AddRow(session.ID, session.DurationMinutes, session.Class, session.StartTime, session.EndTime, session.Completed, session.CoinsEarned),
			)
		result, err := repo.GetActive(ctx, userID)
		assert.NoError(t, err)
		assert.Equal(t, session, *result)
	})
	t.Run("no active session", func(t *testing.T) {
		mock.ExpectQuery(query).
			WithArgs(userID).
			WillReturnError(pgx.ErrNoRows)
		result, err := repo.GetActive(ctx, userID)
		assert.NoError(t, err)
		assert.Nil(t, result)
	})
	t.Run("db error", func(t *testing.T) {
		mock.ExpectQuery(query).
			WithArgs(userID).
			WillReturnError(errors.New("db error"))
		_, err := repo.GetActive(ctx, userID)
		assert.Error(t, err)
	})
}

func TestCompleteSession(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatal(err)
	}
	repo := repository.NewSessionsRepoWithConn(mock)
	sessionID := uuid.New()
	stats := &entity.FocusStats{
		UserID:              userID,
		DailyCoins:          50,
		WeeklyCoins:         50,
		MonthlyCoins:        50,
		CurrentStreak:       1,
		TotalSessions:       1,
		TodaySessions:       1,
		LastActivityDate:    time.Now(),
		BreakGlassResetDate: time.Now(),
	}
	completeQuery := regexp.QuoteMeta(`UPDATE focus_sessions SET completed = TRUE WHERE id = $1 AND completed = FALSE;`)
	ctx := context.Background()
	t.Run("success", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec(completeQuery).
			WithArgs(sessionID).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))
		mock.ExpectExec(statsUpdateQueryPattern).
			WithArgs(statsUpdateArgs(stats)...).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))
		mock.ExpectCommit()
		err := repo.Complete(ctx, sessionID, stats)
		assert.NoError(t, err)
	})
	t.Run("already completed", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec(completeQuery).
			WithArgs(sessionID).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))
		mock.ExpectRollback()
		err := repo.Complete(ctx, sessionID, stats)
		assert.ErrorIs(t, err, errorvalues.ErrSessionNotActive)
	})
	t.Run("missing stats row rolls back", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec(completeQuery).
			WithArgs(sessionID).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))
		mock.ExpectExec(statsUpdateQueryPattern).
			WithArgs(statsUpdateArgs(stats)...).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))
		mock.ExpectRollback()
		err := repo.Complete(ctx, sessionID, stats)
		assert.ErrorIs(t, err, errorvalues.ErrStatsNotFound)
	})
	t.Run("db error", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec(completeQuery).
			WithArgs(sessionID).
			WillReturnError(errors.New("db error"))
		mock.ExpectRollback()
		err := repo.Complete(ctx, sessionID, stats)
		assert.Error(t, err)
	})
}

func TestAbortSession(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatal(err)
	}
	repo := repository.NewSessionsRepoWithConn(mock)
	abortQuery := regexp.QuoteMeta(`DELETE FROM focus_sessions WHERE id = $1 AND completed = FALSE;`)
	ctx := context.Background()
	id := uuid.New()
	stats := &entity.FocusStats{
		UserID:              userID,
		BreakGlassUsed:      1,
		BreakGlassResetDate: time.Now(),
		LastActivityDate:    time.Now(),
	}
	t.Run("success", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec(abortQuery).
			WithArgs(id).
			WillReturnResult(pgxmock.NewResult("DELETE", 1))
		mock.ExpectExec(statsUpdateQueryPattern).
			WithArgs(statsUpdateArgs(stats)...).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))
		mock.ExpectCommit()
		err := repo.Abort(ctx, id, stats)
		assert.NoError(t, err)
	})
	t.Run("no running session rolls back", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec(abortQuery).
			WithArgs(id).
			WillReturnResult(pgxmock.NewResult("DELETE", 0))
		mock.ExpectRollback()
		err := repo.Abort(ctx, id, stats)
		assert.ErrorIs(t, err, errorvalues.ErrSessionNotFound)
	})
	t.Run("stats failure rolls back the delete", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec(abortQuery).
			WithArgs(id).
			WillReturnResult(pgxmock.NewResult("DELETE", 1))
		mock.ExpectExec(statsUpdateQueryPattern).
			WithArgs(statsUpdateArgs(stats)...).
			WillReturnError(errors.New("db error"))
		mock.ExpectRollback()
		err := repo.Abort(ctx, id, stats)
		assert.Error(t, err)
	})
}
