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

const defaultTaskEstimateMinutes = 30

type TasksService struct {
	repo  repository.TasksRepositoryI
	stats repository.StatsRepositoryI
	clk   clock.Clock
	locks *UserLocks
}

func NewTasksService(tasksRepo repository.TasksRepositoryI, statsRepo repository.StatsRepositoryI, clk clock.Clock, locks *UserLocks) *TasksService {
	if tasksRepo == nil || statsRepo == nil {
		log.Fatal("on tasks service provided nil repos")
	}
	if clk == nil {
		clk = clock.Real{}
	}
	if locks == nil {
		locks = NewUserLocks()
	}
	return &TasksService{
		repo:  tasksRepo,
		stats: statsRepo,
		clk:   clk,
		locks: locks,
	}
}

func (ts *TasksService) CreateTask(ctx context.Context, uid uuid.UUID, req *CreateTaskRequest) (*entity.Task, error) {
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
	est := req.EstimatedMinutes
	if est <= 0 {
		est = defaultTaskEstimateMinutes
	}
	priority := req.Priority
	if priority == "" {
		priority = "medium"
	}
	task := entity.Task{
		UserID:           uid,
		Title:            req.Title,
		Description:      req.Description,
		DueDate:          req.DueDate,
		ScheduledTime:    req.ScheduledTime,
		EstimatedMinutes: est,
		Priority:         priority,
		// Reward is fixed now, the estimate may change later
		CoinsEarned:     coins.TaskCoins(est),
		ReminderEnabled: req.ReminderEnabled,
	}
	id, err := ts.repo.Create(ctx, &task)
	if err != nil {
		if errors.Is(err, errorvalues.ErrOwnerNotFound) {
			return nil, errorvalues.ErrUserNotFound
		}
		return nil, errors.New("tasks repository error: " + err.Error())
	}
	created, err := ts.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, errorvalues.ErrTaskNotFound) {
			return nil, err
		}
		return nil, errors.New("tasks repository error: " + err.Error())
	}
	return created, nil
}

func (ts *TasksService) GetUserTasks(ctx context.Context, uid uuid.UUID, pagination PaginationOpts) ([]*entity.Task, error) {
	tasks, err := ts.repo.GetByUserID(ctx, uid, pagination.Limit, pagination.Offset)
	if err != nil {
		return nil, errors.New("tasks repository error: " + err.Error())
	}
	return tasks, nil
}

func (ts *TasksService) GetTask(ctx context.Context, taskID, userID uuid.UUID) (*entity.Task, error) {
	task, err := ts.repo.GetByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, errorvalues.ErrTaskNotFound) {
			return nil, err
		}
		return nil, errors.New("tasks repository error: " + err.Error())
	}
	if task.UserID != userID {
		return nil, errorvalues.ErrWrongOwner
	}
	return task, nil
}

// CompleteTask credits the task's fixed reward through the shared
// ledger rollover, deducting the late penalty when past due. Task row
// and ledger row change in one repository transaction.
func (ts *TasksService) CompleteTask(ctx context.Context, taskID, userID uuid.UUID) (*entity.Task, error) {
	unlock := ts.locks.Lock(userID)
	defer unlock()
	task, err := ts.repo.GetByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, errorvalues.ErrTaskNotFound) {
			return nil, err
		}
		return nil, errors.New("tasks repository error: " + err.Error())
	}
	if task.UserID != userID {
		return nil, errorvalues.ErrWrongOwner
	}
	if task.Status == "completed" {
		return nil, errorvalues.ErrAlreadyCompleted
	}
	stats, err := ensureStats(ctx, ts.stats, ts.clk, userID)
	if err != nil {
		return nil, err
	}
	now := ts.clk.Now()
	updated := *stats
	ApplyCredit(&updated, task.CoinsEarned, now)
	if task.DueDate != nil && now.After(*task.DueDate) {
		ApplyPenalty(&updated, coins.LatePenalty, now)
	}
	task.Status = "completed"
	task.CompletedAt = &now
	if err = ts.repo.Complete(ctx, task, &updated); err != nil {
		if errors.Is(err, errorvalues.ErrAlreadyCompleted) {
			return nil, err
		}
		return nil, errors.New("tasks repository error: " + err.Error())
	}
	return task, nil
}

func (ts *TasksService) DeleteTask(ctx context.Context, taskID, userID uuid.UUID) error {
	task, err := ts.repo.GetByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, errorvalues.ErrTaskNotFound) {
			return err
		}
		return errors.New("tasks repository error: " + err.Error())
	}
	if task.UserID != userID {
		return errorvalues.ErrWrongOwner
	}
	err = ts.repo.Delete(ctx, taskID)
	if err != nil {
		if errors.Is(err, errorvalues.ErrTaskNotFound) {
			return err
		}
		return errors.New("tasks repository error: " + err.Error())
	}
	return nil
}
