package service

import (
	"context"
	"errors"
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/limbo/focusbear/internal/coins"
	errorvalues "github.com/limbo/focusbear/internal/error_values"
	"github.com/limbo/focusbear/internal/repository"
	"github.com/limbo/focusbear/pkg/clock"
	"github.com/limbo/focusbear/pkg/entity"
)

type HabitsService struct {
	repo  repository.HabitsRepositoryI
	stats repository.StatsRepositoryI
	clk   clock.Clock
	locks *UserLocks
}

func NewHabitsService(habitsRepo repository.HabitsRepositoryI, statsRepo repository.StatsRepositoryI, clk clock.Clock, locks *UserLocks) *HabitsService {
	if habitsRepo == nil || statsRepo == nil {
		log.Fatal("on habits service provided nil repos")
	}
	if clk == nil {
		clk = clock.Real{}
	}
	if locks == nil {
		locks = NewUserLocks()
	}
	return &HabitsService{
		repo:  habitsRepo,
		stats: statsRepo,
		clk:   clk,
		locks: locks,
	}
}

func (hs *HabitsService) CreateHabit(ctx context.Context, uid uuid.UUID, req *CreateHabitRequest) (*entity.Habit, error) {
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
	frequency := req.Frequency
	if frequency == "" {
		frequency = "daily"
	}
	perCompletion := req.CoinsPerCompletion
	if perCompletion <= 0 {
		perCompletion = coins.DefaultHabitCoins
	}
	habit := entity.Habit{
		UserID:             uid,
		Title:              req.Title,
		Description:        req.Description,
		Frequency:          frequency,
		CoinsPerCompletion: perCompletion,
	}
	id, err := hs.repo.Create(ctx, &habit)
	if err != nil {
		switch {
		case errors.Is(err, errorvalues.ErrOwnerNotFound):
			return nil, errorvalues.ErrUserNotFound
		case errors.Is(err, errorvalues.ErrUserHasHabit):
			return nil, errorvalues.ErrUserHasHabit
		}
		return nil, errors.New("habits repository error: " + err.Error())
	}
	created, err := hs.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, errorvalues.ErrHabitNotFound) {
			return nil, err
		}
		return nil, errors.New("habits repository error: " + err.Error())
	}
	return created, nil
}

func (hs *HabitsService) GetUserHabits(ctx context.Context, uid uuid.UUID, pagination PaginationOpts) ([]*entity.Habit, error) {
	habits, err := hs.repo.GetByUserID(ctx, uid, pagination.Limit, pagination.Offset)
	if err != nil {
		return nil, errors.New("habits repository error: " + err.Error())
	}
	return habits, nil
}

func (hs *HabitsService) GetHabit(ctx context.Context, habitID, userID uuid.UUID) (*entity.Habit, error) {
	habit, err := hs.repo.GetByID(ctx, habitID)
	if err != nil {
		if errors.Is(err, errorvalues.ErrHabitNotFound) {
			return nil, err
		}
		return nil, errors.New("habits repository error: " + err.Error())
	}
	if habit.UserID != userID {
		return nil, errorvalues.ErrWrongOwner
	}
	return habit, nil
}

// CompleteHabit rewards a habit once per calendar day: streak counters
// bump on the habit row and its per-completion coins go through the
// shared ledger rollover, both in one repository transaction.
func (hs *HabitsService) CompleteHabit(ctx context.Context, habitID, userID uuid.UUID) (*entity.Habit, error) {
	unlock := hs.locks.Lock(userID)
	defer unlock()
	habit, err := hs.repo.GetByID(ctx, habitID)
	if err != nil {
		if errors.Is(err, errorvalues.ErrHabitNotFound) {
			return nil, err
		}
		return nil, errors.New("habits repository error: " + err.Error())
	}
	if habit.UserID != userID {
		return nil, errorvalues.ErrWrongOwner
	}
	now := hs.clk.Now()
	if sameDay(habit.LastCompletedDate, now) {
		return nil, errorvalues.ErrHabitDoneToday
	}
	stats, err := ensureStats(ctx, hs.stats, hs.clk, userID)
	if err != nil {
		return nil, err
	}
	habit.CurrentStreak++
	if habit.CurrentStreak > habit.BestStreak {
		habit.BestStreak = habit.CurrentStreak
	}
	habit.LastCompletedDate = now
	habit.TotalCompletions++
	updated := *stats
	ApplyCredit(&updated, habit.CoinsPerCompletion, now)
	if err = hs.repo.Complete(ctx, habit, &updated); err != nil {
		if errors.Is(err, errorvalues.ErrHabitNotFound) {
			return nil, err
		}
		return nil, errors.New("habits repository error: " + err.Error())
	}
	return habit, nil
}

func (hs *HabitsService) DeleteHabit(ctx context.Context, habitID, userID uuid.UUID) error {
	habit, err := hs.repo.GetByID(ctx, habitID)
	if err != nil {
		if errors.Is(err, errorvalues.ErrHabitNotFound) {
			return err
		}
		return errors.New("habits repository error: " + err.Error())
	}
	if habit.UserID != userID {
		return errorvalues.ErrWrongOwner
	}
	err = hs.repo.Delete(ctx, habitID)
	if err != nil {
		if errors.Is(err, errorvalues.ErrHabitNotFound) {
			return err
		}
		return errors.New("habits repository error: " + err.Error())
	}
	return nil
}
