package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	errorvalues "github.com/limbo/focusbear/internal/error_values"
	"github.com/limbo/focusbear/internal/service"
	"github.com/limbo/focusbear/pkg/clock"
	"github.com/limbo/focusbear/pkg/entity"
	"github.com/stretchr/testify/assert"
)

func TestMain(m *testing.M) {
	service.InitValidator()
	m.Run()
}

// In-memory fakes. The focus engine's interesting behavior spans several
// calls (start, complete, break), so stateful fakes fit better than
// single-shot error stubs.

type statsRepoFake struct {
	rows    map[uuid.UUID]*entity.FocusStats
	failure error
}

func newStatsRepoFake() *statsRepoFake {
	return &statsRepoFake{rows: make(map[uuid.UUID]*entity.FocusStats)}
}

func (f *statsRepoFake) Get(ctx context.Context, uid uuid.UUID) (*entity.FocusStats, error) {
	if f.failure != nil {
		return nil, f.failure
	}
	stats, ok := f.rows[uid]
	if !ok {
		return nil, errorvalues.ErrStatsNotFound
	}
	copied := *stats
	return &copied, nil
}

func (f *statsRepoFake) Create(ctx context.Context, stats *entity.FocusStats) error {
	if f.failure != nil {
		return f.failure
	}
	copied := *stats
	f.rows[stats.UserID] = &copied
	return nil
}

func (f *statsRepoFake) Update(ctx context.Context, stats *entity.FocusStats) error {
	if f.failure != nil {
		return f.failure
	}
	if _, ok := f.rows[stats.UserID]; !ok {
		return errorvalues.ErrStatsNotFound
	}
	copied := *stats
	f.rows[stats.UserID] = &copied
	return nil
}

type sessionsRepoFake struct {
	sessions     map[uuid.UUID]*entity.FocusSession
	stats        *statsRepoFake
	failure      error
	abortFailure error
}

func newSessionsRepoFake(stats *statsRepoFake) *sessionsRepoFake {
	return &sessionsRepoFake{
		sessions: make(map[uuid.UUID]*entity.FocusSession),
		stats:    stats,
	}
}

func (f *sessionsRepoFake) Create(ctx context.Context, session *entity.FocusSession) error {
	if f.failure != nil {
		return f.failure
	}
	copied := *session
	f.sessions[session.ID] = &copied
	return nil
}

func (f *sessionsRepoFake) GetByID(ctx context.Context, id uuid.UUID) (*entity.FocusSession, error) {
	if f.failure != nil {
		return nil, f.failure
	}
	session, ok := f.sessions[id]
	if !ok {
		return nil, errorvalues.ErrSessionNotFound
	}
	copied := *session
	return &copied, nil
}

func (f *sessionsRepoFake) GetActive(ctx context.Context, uid uuid.UUID) (*entity.FocusSession, error) {
	if f.failure != nil {
		return nil, f.failure
	}
	for _, session := range f.sessions {
		if session.UserID == uid && !session.Completed {
			copied := *session
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *sessionsRepoFake) Complete(ctx context.Context, sessionID uuid.UUID, stats *entity.FocusStats) error {
	if f.failure != nil {
		return f.failure
	}
	session, ok := f.sessions[sessionID]
	if !ok || session.Completed {
		return errorvalues.ErrSessionNotActive
	}
	if err := f.stats.Update(ctx, stats); err != nil {
		return err
	}
	session.Completed = true
	return nil
}

// Abort mirrors the repository transaction: on any failure neither the
// session nor the stats row changes.
func (f *sessionsRepoFake) Abort(ctx context.Context, sessionID uuid.UUID, stats *entity.FocusStats) error {
	if f.failure != nil {
		return f.failure
	}
	if f.abortFailure != nil {
		return f.abortFailure
	}
	session, ok := f.sessions[sessionID]
	if !ok || session.Completed {
		return errorvalues.ErrSessionNotFound
	}
	if err := f.stats.Update(ctx, stats); err != nil {
		return err
	}
	delete(f.sessions, sessionID)
	return nil
}

type whitelistRepoFake struct {
	items []entity.WhitelistItem
}

func (f *whitelistRepoFake) Create(ctx context.Context, item *entity.WhitelistItem) (uuid.UUID, error) {
	for _, existing := range f.items {
		if existing.UserID == item.UserID && existing.Value == item.Value {
			return uuid.UUID{}, errorvalues.ErrWhitelistItemExists
		}
	}
	copied := *item
	copied.ID = uuid.New()
	f.items = append(f.items, copied)
	return copied.ID, nil
}

func (f *whitelistRepoFake) GetByID(ctx context.Context, id uuid.UUID) (*entity.WhitelistItem, error) {
	for _, item := range f.items {
		if item.ID == id {
			return &item, nil
		}
	}
	return nil, errorvalues.ErrWhitelistItemNotFound
}

func (f *whitelistRepoFake) GetByUserID(ctx context.Context, uid uuid.UUID) ([]entity.WhitelistItem, error) {
	items := make([]entity.WhitelistItem, 0)
	for _, item := range f.items {
		if item.UserID == uid {
			items = append(items, item)
		}
	}
	return items, nil
}

func (f *whitelistRepoFake) Delete(ctx context.Context, id uuid.UUID) error {
	for i, item := range f.items {
		if item.ID == id {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return nil
		}
	}
	return errorvalues.ErrWhitelistItemNotFound
}

type focusFixture struct {
	svc       *service.FocusService
	sessions  *sessionsRepoFake
	stats     *statsRepoFake
	whitelist *whitelistRepoFake
	clk       *clock.Frozen
	events    *service.FanoutPublisher
	published []service.EventKind
}

func newFocusFixture(t *testing.T) *focusFixture {
	t.Helper()
	fx := &focusFixture{
		stats:     newStatsRepoFake(),
		whitelist: &whitelistRepoFake{},
		clk:       clock.NewFrozen(time.Date(2024, time.March, 12, 9, 0, 0, 0, time.UTC)),
		events:    service.NewFanoutPublisher(),
	}
	fx.sessions = newSessionsRepoFake(fx.stats)
	fx.events.Subscribe(func(e service.Event) {
		fx.published = append(fx.published, e.Kind)
	})
	fx.svc = service.NewFocusService(fx.sessions, fx.stats, fx.whitelist, fx.clk, fx.events, service.NewUserLocks())
	return fx
}

func TestStartSession(t *testing.T) {
	ctx := context.Background()
	uid := uuid.New()
	t.Run("success", func(t *testing.T) {
		fx := newFocusFixture(t)
		session, err := fx.svc.StartSession(ctx, uid, &service.StartSessionRequest{
			DurationMinutes: 45,
			Class:           "deep",
		})
		assert.NoError(t, err)
		assert.Equal(t, uid, session.UserID)
		assert.Equal(t, entity.SessionDeep, session.Class)
		assert.Equal(t, 135, session.CoinsEarned)
		assert.Equal(t, fx.clk.Now(), session.StartTime)
		assert.Equal(t, fx.clk.Now().Add(45*time.Minute), session.EndTime)
		assert.False(t, session.Completed)
		assert.Equal(t, []service.EventKind{service.EventSessionStarted}, fx.published)
	})
	t.Run("second start rejected while one runs", func(t *testing.T) {
		fx := newFocusFixture(t)
		_, err := fx.svc.StartSession(ctx, uid, &service.StartSessionRequest{DurationMinutes: 25, Class: "quick"})
		assert.NoError(t, err)
		_, err = fx.svc.StartSession(ctx, uid, &service.StartSessionRequest{DurationMinutes: 90, Class: "power"})
		assert.ErrorIs(t, err, errorvalues.ErrSessionAlreadyActive)
	})
	t.Run("another user is not blocked", func(t *testing.T) {
		fx := newFocusFixture(t)
		_, err := fx.svc.StartSession(ctx, uid, &service.StartSessionRequest{DurationMinutes: 25, Class: "quick"})
		assert.NoError(t, err)
		_, err = fx.svc.StartSession(ctx, uuid.New(), &service.StartSessionRequest{DurationMinutes: 25, Class: "quick"})
		assert.NoError(t, err)
	})
	t.Run("invalid duration", func(t *testing.T) {
		fx := newFocusFixture(t)
		_, err := fx.svc.StartSession(ctx, uid, &service.StartSessionRequest{DurationMinutes: 0, Class: "quick"})
		assert.Error(t, err)
	})
	t.Run("unknown class", func(t *testing.T) {
		fx := newFocusFixture(t)
		_, err := fx.svc.StartSession(ctx, uid, &service.StartSessionRequest{DurationMinutes: 25, Class: "nap"})
		assert.Error(t, err)
	})
}

func TestActiveSessionCountdown(t *testing.T) {
	ctx := context.Background()
	uid := uuid.New()
	fx := newFocusFixture(t)
	t.Run("no session", func(t *testing.T) {
		session, remaining, err := fx.svc.ActiveSession(ctx, uid)
		assert.NoError(t, err)
		assert.Nil(t, session)
		assert.Equal(t, time.Duration(0), remaining)
	})
	started, err := fx.svc.StartSession(ctx, uid, &service.StartSessionRequest{DurationMinutes: 25, Class: "quick"})
	assert.NoError(t, err)
	t.Run("remaining shrinks with the clock", func(t *testing.T) {
		fx.clk.Advance(10 * time.Minute)
		session, remaining, err := fx.svc.ActiveSession(ctx, uid)
		assert.NoError(t, err)
		assert.Equal(t, started.ID, session.ID)
		assert.Equal(t, 15*time.Minute, remaining)
	})
	t.Run("remaining clamps at zero past the end", func(t *testing.T) {
		fx.clk.Advance(time.Hour)
		session, remaining, err := fx.svc.ActiveSession(ctx, uid)
		assert.NoError(t, err)
		assert.NotNil(t, session)
		assert.Equal(t, time.Duration(0), remaining)
	})
}

func TestCompleteSession(t *testing.T) {
	ctx := context.Background()
	uid := uuid.New()
	t.Run("credits exactly once", func(t *testing.T) {
		fx := newFocusFixture(t)
		started, err := fx.svc.StartSession(ctx, uid, &service.StartSessionRequest{DurationMinutes: 45, Class: "deep"})
		assert.NoError(t, err)
		fx.clk.Advance(45 * time.Minute)
		session, stats, err := fx.svc.CompleteSession(ctx, uid, started.ID)
		assert.NoError(t, err)
		assert.True(t, session.Completed)
		assert.Equal(t, 135, stats.DailyCoins)
		assert.Equal(t, 135, stats.WeeklyCoins)
		assert.Equal(t, 135, stats.MonthlyCoins)
		assert.Equal(t, 1, stats.TodaySessions)
		assert.Equal(t, 1, stats.TotalSessions)
		assert.Equal(t, 45, stats.DailyScreenTimeSaved)

		_, _, err = fx.svc.CompleteSession(ctx, uid, started.ID)
		assert.ErrorIs(t, err, errorvalues.ErrSessionNotActive)
		persisted, err := fx.svc.GetStats(ctx, uid)
		assert.NoError(t, err)
		assert.Equal(t, 135, persisted.DailyCoins)
		assert.Equal(t, []service.EventKind{service.EventSessionStarted, service.EventSessionCompleted}, fx.published)
	})
	t.Run("wrong owner reported as foreign", func(t *testing.T) {
		fx := newFocusFixture(t)
		started, err := fx.svc.StartSession(ctx, uid, &service.StartSessionRequest{DurationMinutes: 25, Class: "quick"})
		assert.NoError(t, err)
		_, _, err = fx.svc.CompleteSession(ctx, uuid.New(), started.ID)
		assert.ErrorIs(t, err, errorvalues.ErrWrongOwner)
	})
	t.Run("unknown session", func(t *testing.T) {
		fx := newFocusFixture(t)
		_, _, err := fx.svc.CompleteSession(ctx, uid, uuid.New())
		assert.ErrorIs(t, err, errorvalues.ErrSessionNotFound)
	})
	t.Run("two sessions in one day stack counters", func(t *testing.T) {
		fx := newFocusFixture(t)
		first, _ := fx.svc.StartSession(ctx, uid, &service.StartSessionRequest{DurationMinutes: 45, Class: "deep"})
		fx.clk.Advance(45 * time.Minute)
		_, _, err := fx.svc.CompleteSession(ctx, uid, first.ID)
		assert.NoError(t, err)
		second, _ := fx.svc.StartSession(ctx, uid, &service.StartSessionRequest{DurationMinutes: 25, Class: "quick"})
		fx.clk.Advance(25 * time.Minute)
		_, stats, err := fx.svc.CompleteSession(ctx, uid, second.ID)
		assert.NoError(t, err)
		assert.Equal(t, 135+50, stats.DailyCoins)
		assert.Equal(t, 2, stats.TodaySessions)
		assert.Equal(t, 2, stats.TotalSessions)
		assert.Equal(t, 70, stats.DailyScreenTimeSaved)
	})
	t.Run("next-day session restarts daily counters", func(t *testing.T) {
		fx := newFocusFixture(t)
		first, _ := fx.svc.StartSession(ctx, uid, &service.StartSessionRequest{DurationMinutes: 25, Class: "quick"})
		fx.clk.Advance(25 * time.Minute)
		_, _, err := fx.svc.CompleteSession(ctx, uid, first.ID)
		assert.NoError(t, err)
		fx.clk.Advance(24 * time.Hour)
		second, _ := fx.svc.StartSession(ctx, uid, &service.StartSessionRequest{DurationMinutes: 25, Class: "quick"})
		fx.clk.Advance(25 * time.Minute)
		_, stats, err := fx.svc.CompleteSession(ctx, uid, second.ID)
		assert.NoError(t, err)
		assert.Equal(t, 50, stats.DailyCoins)
		assert.Equal(t, 1, stats.TodaySessions)
		assert.Equal(t, 100, stats.WeeklyCoins)
		assert.Equal(t, 2, stats.TotalSessions)
	})
}

func TestBreakSession(t *testing.T) {
	ctx := context.Background()
	uid := uuid.New()
	start := func(fx *focusFixture) *entity.FocusSession {
		session, err := fx.svc.StartSession(ctx, uid, &service.StartSessionRequest{DurationMinutes: 45, Class: "deep"})
		assert.NoError(t, err)
		return session
	}
	t.Run("no active session", func(t *testing.T) {
		fx := newFocusFixture(t)
		err := fx.svc.BreakSession(ctx, uid)
		assert.ErrorIs(t, err, errorvalues.ErrSessionNotActive)
	})
	t.Run("aborted session credits nothing", func(t *testing.T) {
		fx := newFocusFixture(t)
		start(fx)
		err := fx.svc.BreakSession(ctx, uid)
		assert.NoError(t, err)
		stats, err := fx.svc.GetStats(ctx, uid)
		assert.NoError(t, err)
		assert.Equal(t, 0, stats.DailyCoins)
		assert.Equal(t, 0, stats.TotalSessions)
		assert.Equal(t, 1, stats.BreakGlassUsed)
		active, _, err := fx.svc.ActiveSession(ctx, uid)
		assert.NoError(t, err)
		assert.Nil(t, active)
		assert.Contains(t, fx.published, service.EventSessionAborted)
	})
	t.Run("third break of the month denied without mutation", func(t *testing.T) {
		fx := newFocusFixture(t)
		start(fx)
		assert.NoError(t, fx.svc.BreakSession(ctx, uid))
		start(fx)
		assert.NoError(t, fx.svc.BreakSession(ctx, uid))
		running := start(fx)
		err := fx.svc.BreakSession(ctx, uid)
		assert.ErrorIs(t, err, errorvalues.ErrNoBreaksRemaining)
		stats, err := fx.svc.GetStats(ctx, uid)
		assert.NoError(t, err)
		assert.Equal(t, 2, stats.BreakGlassUsed)
		// denied break leaves the session running
		active, _, err := fx.svc.ActiveSession(ctx, uid)
		assert.NoError(t, err)
		assert.Equal(t, running.ID, active.ID)
	})
	t.Run("quota resets on calendar month boundary", func(t *testing.T) {
		fx := newFocusFixture(t)
		start(fx)
		assert.NoError(t, fx.svc.BreakSession(ctx, uid))
		start(fx)
		assert.NoError(t, fx.svc.BreakSession(ctx, uid))
		// March 31st late evening: still the same month, still denied
		fx.clk.Set(time.Date(2024, time.March, 31, 23, 0, 0, 0, time.UTC))
		start(fx)
		assert.ErrorIs(t, fx.svc.BreakSession(ctx, uid), errorvalues.ErrNoBreaksRemaining)
		// April 1st: fresh quota
		fx.clk.Set(time.Date(2024, time.April, 1, 0, 30, 0, 0, time.UTC))
		assert.NoError(t, fx.svc.BreakSession(ctx, uid))
		stats, err := fx.svc.GetStats(ctx, uid)
		assert.NoError(t, err)
		assert.Equal(t, 1, stats.BreakGlassUsed)
	})
	t.Run("same month a year later gets fresh quota", func(t *testing.T) {
		fx := newFocusFixture(t)
		start(fx)
		assert.NoError(t, fx.svc.BreakSession(ctx, uid))
		start(fx)
		assert.NoError(t, fx.svc.BreakSession(ctx, uid))
		fx.clk.Set(time.Date(2025, time.March, 12, 9, 0, 0, 0, time.UTC))
		start(fx)
		assert.NoError(t, fx.svc.BreakSession(ctx, uid))
		stats, err := fx.svc.GetStats(ctx, uid)
		assert.NoError(t, err)
		assert.Equal(t, 1, stats.BreakGlassUsed)
	})
	t.Run("failed abort consumes no quota", func(t *testing.T) {
		fx := newFocusFixture(t)
		running := start(fx)
		fx.sessions.abortFailure = errors.New("store unavailable")
		err := fx.svc.BreakSession(ctx, uid)
		assert.Error(t, err)
		fx.sessions.abortFailure = nil
		stats, err := fx.svc.GetStats(ctx, uid)
		assert.NoError(t, err)
		assert.Equal(t, 0, stats.BreakGlassUsed)
		active, _, err := fx.svc.ActiveSession(ctx, uid)
		assert.NoError(t, err)
		assert.Equal(t, running.ID, active.ID)
	})
}

func TestGuardOpen(t *testing.T) {
	ctx := context.Background()
	uid := uuid.New()
	fx := newFocusFixture(t)
	_, err := fx.svc.AddWhitelistItem(ctx, uid, &service.AddWhitelistRequest{
		Value:       "Docs.Google.com",
		Description: "lecture notes",
	})
	assert.NoError(t, err)
	t.Run("everything allowed while idle", func(t *testing.T) {
		assert.NoError(t, fx.svc.GuardOpen(ctx, uid, "https://youtube.com/watch"))
	})
	_, err = fx.svc.StartSession(ctx, uid, &service.StartSessionRequest{DurationMinutes: 45, Class: "deep"})
	assert.NoError(t, err)
	t.Run("whitelisted url passes, matching is case-insensitive", func(t *testing.T) {
		assert.NoError(t, fx.svc.GuardOpen(ctx, uid, "https://docs.google.com/document/d/abc"))
		assert.NoError(t, fx.svc.GuardOpen(ctx, uid, "HTTPS://DOCS.GOOGLE.COM/"))
	})
	t.Run("everything else blocked during the session", func(t *testing.T) {
		err := fx.svc.GuardOpen(ctx, uid, "https://youtube.com/watch")
		assert.ErrorIs(t, err, errorvalues.ErrNotWhitelisted)
	})
	t.Run("blocked again after removal", func(t *testing.T) {
		items, err := fx.svc.GetWhitelist(ctx, uid)
		assert.NoError(t, err)
		assert.Equal(t, 1, len(items))
		assert.NoError(t, fx.svc.RemoveWhitelistItem(ctx, uid, items[0].ID))
		err = fx.svc.GuardOpen(ctx, uid, "https://docs.google.com/")
		assert.ErrorIs(t, err, errorvalues.ErrNotWhitelisted)
	})
}

func TestWhitelistOwnership(t *testing.T) {
	ctx := context.Background()
	uid := uuid.New()
	fx := newFocusFixture(t)
	item, err := fx.svc.AddWhitelistItem(ctx, uid, &service.AddWhitelistRequest{Value: "wikipedia.org"})
	assert.NoError(t, err)
	t.Run("duplicate value rejected", func(t *testing.T) {
		_, err := fx.svc.AddWhitelistItem(ctx, uid, &service.AddWhitelistRequest{Value: "wikipedia.org"})
		assert.ErrorIs(t, err, errorvalues.ErrWhitelistItemExists)
	})
	t.Run("foreign item can't be removed", func(t *testing.T) {
		err := fx.svc.RemoveWhitelistItem(ctx, uuid.New(), item.ID)
		assert.ErrorIs(t, err, errorvalues.ErrWrongOwner)
	})
}

func TestGetStatsBootstrapsLedger(t *testing.T) {
	ctx := context.Background()
	uid := uuid.New()
	fx := newFocusFixture(t)
	stats, err := fx.svc.GetStats(ctx, uid)
	assert.NoError(t, err)
	assert.Equal(t, uid, stats.UserID)
	assert.Equal(t, 0, stats.DailyCoins)
	assert.Equal(t, fx.clk.Now(), stats.BreakGlassResetDate)
}

func TestFocusServiceRepoErrors(t *testing.T) {
	ctx := context.Background()
	uid := uuid.New()
	fx := newFocusFixture(t)
	fx.sessions.failure = errors.New("db error")
	_, err := fx.svc.StartSession(ctx, uid, &service.StartSessionRequest{DurationMinutes: 25, Class: "quick"})
	assert.Error(t, err)
	assert.NotErrorIs(t, err, errorvalues.ErrSessionAlreadyActive)
	_, _, err = fx.svc.ActiveSession(ctx, uid)
	assert.Error(t, err)
	err = fx.svc.BreakSession(ctx, uid)
	assert.Error(t, err)
}
