package service

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/limbo/focusbear/internal/coins"
	errorvalues "github.com/limbo/focusbear/internal/error_values"
	"github.com/limbo/focusbear/internal/repository"
	"github.com/limbo/focusbear/pkg/clock"
	"github.com/limbo/focusbear/pkg/entity"
)

// monthlyBreakLimit caps break-glass aborts per calendar month.
const monthlyBreakLimit = 2

// FocusService owns the focus-session lifecycle: at most one active
// session per user, coins credited exactly once on completion, and the
// break-glass escape hatch. All collaborators are injected.
type FocusService struct {
	sessions  repository.SessionsRepositoryI
	stats     repository.StatsRepositoryI
	whitelist repository.WhitelistRepositoryI
	clk       clock.Clock
	events    EventPublisherI
	locks     *UserLocks
}

func NewFocusService(
	sessions repository.SessionsRepositoryI,
	stats repository.StatsRepositoryI,
	whitelist repository.WhitelistRepositoryI,
	clk clock.Clock,
	events EventPublisherI,
	locks *UserLocks,
) *FocusService {
	if sessions == nil || stats == nil || whitelist == nil {
		log.Fatal("on focus service provided nil repos")
	}
	if clk == nil {
		clk = clock.Real{}
	}
	if events == nil {
		events = NewFanoutPublisher()
	}
	if locks == nil {
		locks = NewUserLocks()
	}
	return &FocusService{
		sessions:  sessions,
		stats:     stats,
		whitelist: whitelist,
		clk:       clk,
		events:    events,
		locks:     locks,
	}
}

// SessionRemaining recomputes remaining time from the session's own
// timestamps, so a countdown survives restarts and never drifts.
func SessionRemaining(session *entity.FocusSession, now time.Time) time.Duration {
	if session == nil {
		return 0
	}
	remaining := session.EndTime.Sub(now)
	if remaining < 0 {
		return 0
	}
	return remaining
}

func (fs *FocusService) StartSession(ctx context.Context, uid uuid.UUID, req *StartSessionRequest) (*entity.FocusSession, error) {
	err := validate.Struct(*req)
	if err != nil {
		if validationError, ok := err.(validator.ValidationErrors); ok {
			err = errors.New("validation error: ")
			for _, fieldErr := range validationError {
				err = errors.Join(err, fieldErr)
			}
			return nil, err
		}
		return nil, errors.New("validation unexpected error: " + err.Error())
	}
	unlock := fs.locks.Lock(uid)
	defer unlock()
	active, err := fs.sessions.GetActive(ctx, uid)
	if err != nil {
		return nil, errors.New("sessions repository error: " + err.Error())
	}
	if active != nil {
		return nil, errorvalues.ErrSessionAlreadyActive
	}
	now := fs.clk.Now()
	session := &entity.FocusSession{
		ID:              uuid.New(),
		UserID:          uid,
		DurationMinutes: req.DurationMinutes,
		Class:           entity.SessionClass(req.Class),
		StartTime:       now,
		EndTime:         now.Add(time.Duration(req.DurationMinutes) * time.Minute),
		CoinsEarned:     coins.SessionCoins(req.DurationMinutes, entity.SessionClass(req.Class)),
	}
	if err = fs.sessions.Create(ctx, session); err != nil {
		if errors.Is(err, errorvalues.ErrOwnerNotFound) {
			return nil, errorvalues.ErrUserNotFound
		}
		return nil, errors.New("sessions repository error: " + err.Error())
	}
	fs.events.Publish(Event{Kind: EventSessionStarted, Session: session})
	return session, nil
}

func (fs *FocusService) ActiveSession(ctx context.Context, uid uuid.UUID) (*entity.FocusSession, time.Duration, error) {
	session, err := fs.sessions.GetActive(ctx, uid)
	if err != nil {
		return nil, 0, errors.New("sessions repository error: " + err.Error())
	}
	if session == nil {
		return nil, 0, nil
	}
	return session, SessionRemaining(session, fs.clk.Now()), nil
}

// CompleteSession credits the session exactly once: the completed flag
// flips and the ledger row is rewritten inside one repository
// transaction, so a failed ledger write never reports success.
func (fs *FocusService) CompleteSession(ctx context.Context, uid, sessionID uuid.UUID) (*entity.FocusSession, *entity.FocusStats, error) {
	unlock := fs.locks.Lock(uid)
	defer unlock()
	session, err := fs.sessions.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, errorvalues.ErrSessionNotFound) {
			return nil, nil, err
		}
		return nil, nil, errors.New("sessions repository error: " + err.Error())
	}
	if session.UserID != uid {
		return nil, nil, errorvalues.ErrWrongOwner
	}
	if session.Completed {
		return nil, nil, errorvalues.ErrSessionNotActive
	}
	stats, err := fs.ensureStats(ctx, uid)
	if err != nil {
		return nil, nil, err
	}
	updated := *stats
	ApplySessionCompletion(&updated, session, fs.clk.Now())
	if err = fs.sessions.Complete(ctx, session.ID, &updated); err != nil {
		if errors.Is(err, errorvalues.ErrSessionNotActive) {
			return nil, nil, err
		}
		return nil, nil, errors.New("sessions repository error: " + err.Error())
	}
	session.Completed = true
	fs.events.Publish(Event{Kind: EventSessionCompleted, Session: session})
	return session, &updated, nil
}

// BreakSession is the break-glass path: the quota check consumes one
// use on grant, and the active session is discarded without credit in
// the same transaction as the quota write. A denied check leaves
// everything untouched and the session running.
func (fs *FocusService) BreakSession(ctx context.Context, uid uuid.UUID) error {
	unlock := fs.locks.Lock(uid)
	defer unlock()
	active, err := fs.sessions.GetActive(ctx, uid)
	if err != nil {
		return errors.New("sessions repository error: " + err.Error())
	}
	if active == nil {
		return errorvalues.ErrSessionNotActive
	}
	stats, err := fs.ensureStats(ctx, uid)
	if err != nil {
		return err
	}
	now := fs.clk.Now()
	used := stats.BreakGlassUsed
	resetDate := stats.BreakGlassResetDate
	// Calendar-month boundary, not a rolling window
	if resetDate.Year() != now.Year() || resetDate.Month() != now.Month() {
		used = 0
		resetDate = now
	}
	if used >= monthlyBreakLimit {
		return errorvalues.ErrNoBreaksRemaining
	}
	stats.BreakGlassUsed = used + 1
	stats.BreakGlassResetDate = resetDate
	if err = fs.sessions.Abort(ctx, active.ID, stats); err != nil {
		return errors.New("sessions repository error: " + err.Error())
	}
	fs.events.Publish(Event{Kind: EventSessionAborted, Session: active})
	return nil
}

func (fs *FocusService) GetStats(ctx context.Context, uid uuid.UUID) (*entity.FocusStats, error) {
	unlock := fs.locks.Lock(uid)
	defer unlock()
	return fs.ensureStats(ctx, uid)
}

// GuardOpen allows everything while no session runs; during a session
// only allow-listed urls pass.
func (fs *FocusService) GuardOpen(ctx context.Context, uid uuid.UUID, url string) error {
	active, err := fs.sessions.GetActive(ctx, uid)
	if err != nil {
		return errors.New("sessions repository error: " + err.Error())
	}
	if active == nil {
		return nil
	}
	items, err := fs.whitelist.GetByUserID(ctx, uid)
	if err != nil {
		return errors.New("whitelist repository error: " + err.Error())
	}
	if isWhitelisted(items, url) {
		return nil
	}
	return errorvalues.ErrNotWhitelisted
}

func isWhitelisted(items []entity.WhitelistItem, url string) bool {
	lowered := strings.ToLower(url)
	for _, item := range items {
		if item.ItemType != entity.WhitelistURL {
			continue
		}
		if strings.Contains(lowered, strings.ToLower(item.Value)) {
			return true
		}
	}
	return false
}

func (fs *FocusService) AddWhitelistItem(ctx context.Context, uid uuid.UUID, req *AddWhitelistRequest) (*entity.WhitelistItem, error) {
	err := validate.Struct(*req)
	if err != nil {
		if validationError, ok := err.(validator.ValidationErrors); ok {
			err = errors.New("validation error: ")
			for _, fieldErr := range validationError {
				err = errors.Join(err, fieldErr)
			}
			return nil, err
		}
		return nil, errors.New("validation unexpected error: " + err.Error())
	}
	category := req.Category
	if category == "" {
		category = "educational"
	}
	item := entity.WhitelistItem{
		UserID:      uid,
		ItemType:    entity.WhitelistURL,
		Value:       req.Value,
		Description: req.Description,
		Category:    category,
	}
	id, err := fs.whitelist.Create(ctx, &item)
	if err != nil {
		switch {
		case errors.Is(err, errorvalues.ErrWhitelistItemExists):
			return nil, err
		case errors.Is(err, errorvalues.ErrOwnerNotFound):
			return nil, errorvalues.ErrUserNotFound
		}
		return nil, errors.New("whitelist repository error: " + err.Error())
	}
	item.ID = id
	return &item, nil
}

func (fs *FocusService) RemoveWhitelistItem(ctx context.Context, uid, itemID uuid.UUID) error {
	item, err := fs.whitelist.GetByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, errorvalues.ErrWhitelistItemNotFound) {
			return err
		}
		return errors.New("whitelist repository error: " + err.Error())
	}
	if item.UserID != uid {
		return errorvalues.ErrWrongOwner
	}
	if err = fs.whitelist.Delete(ctx, itemID); err != nil {
		if errors.Is(err, errorvalues.ErrWhitelistItemNotFound) {
			return err
		}
		return errors.New("whitelist repository error: " + err.Error())
	}
	return nil
}

func (fs *FocusService) GetWhitelist(ctx context.Context, uid uuid.UUID) ([]entity.WhitelistItem, error) {
	items, err := fs.whitelist.GetByUserID(ctx, uid)
	if err != nil {
		return nil, errors.New("whitelist repository error: " + err.Error())
	}
	return items, nil
}

// ensureStats lazily creates the user's ledger row on first touch.
func (fs *FocusService) ensureStats(ctx context.Context, uid uuid.UUID) (*entity.FocusStats, error) {
	return ensureStats(ctx, fs.stats, fs.clk, uid)
}

func ensureStats(ctx context.Context, repo repository.StatsRepositoryI, clk clock.Clock, uid uuid.UUID) (*entity.FocusStats, error) {
	stats, err := repo.Get(ctx, uid)
	if err == nil {
		return stats, nil
	}
	if !errors.Is(err, errorvalues.ErrStatsNotFound) {
		return nil, errors.New("stats repository error: " + err.Error())
	}
	stats = &entity.FocusStats{
		UserID:              uid,
		BreakGlassResetDate: clk.Now(),
	}
	if err = repo.Create(ctx, stats); err != nil {
		if errors.Is(err, errorvalues.ErrOwnerNotFound) {
			return nil, errorvalues.ErrUserNotFound
		}
		return nil, errors.New("stats repository error: " + err.Error())
	}
	return stats, nil
}
