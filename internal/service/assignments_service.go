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

const defaultAssignmentEstimateMinutes = 60

type AssignmentsService struct {
	repo  repository.AssignmentsRepositoryI
	stats repository.StatsRepositoryI
	clk   clock.Clock
	locks *UserLocks
}

func NewAssignmentsService(assignmentsRepo repository.AssignmentsRepositoryI, statsRepo repository.StatsRepositoryI, clk clock.Clock, locks *UserLocks) *AssignmentsService {
	if assignmentsRepo == nil || statsRepo == nil {
		log.Fatal("on assignments service provided nil repos")
	}
	if clk == nil {
		clk = clock.Real{}
	}
	if locks == nil {
		locks = NewUserLocks()
	}
	return &AssignmentsService{
		repo:  assignmentsRepo,
		stats: statsRepo,
		clk:   clk,
		locks: locks,
	}
}

func (as *AssignmentsService) CreateAssignment(ctx context.Context, uid uuid.UUID, req *CreateAssignmentRequest) (*entity.Assignment, error) {
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
		est = defaultAssignmentEstimateMinutes
	}
	priority := req.Priority
	if priority == "" {
		priority = "medium"
	}
	assignment := entity.Assignment{
		UserID:           uid,
		Title:            req.Title,
		Description:      req.Description,
		Subject:          req.Subject,
		DueDate:          req.DueDate,
		EstimatedMinutes: est,
		Priority:         priority,
		CoinsEarned:      coins.TaskCoins(est),
	}
	id, err := as.repo.Create(ctx, &assignment)
	if err != nil {
		if errors.Is(err, errorvalues.ErrOwnerNotFound) {
			return nil, errorvalues.ErrUserNotFound
		}
		return nil, errors.New("assignments repository error: " + err.Error())
	}
	created, err := as.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, errorvalues.ErrAssignmentNotFound) {
			return nil, err
		}
		return nil, errors.New("assignments repository error: " + err.Error())
	}
	return created, nil
}

func (as *AssignmentsService) GetUserAssignments(ctx context.Context, uid uuid.UUID, pagination PaginationOpts) ([]*entity.Assignment, error) {
	assignments, err := as.repo.GetByUserID(ctx, uid, pagination.Limit, pagination.Offset)
	if err != nil {
		return nil, errors.New("assignments repository error: " + err.Error())
	}
	return assignments, nil
}

func (as *AssignmentsService) GetAssignment(ctx context.Context, assignmentID, userID uuid.UUID) (*entity.Assignment, error) {
	assignment, err := as.repo.GetByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, errorvalues.ErrAssignmentNotFound) {
			return nil, err
		}
		return nil, errors.New("assignments repository error: " + err.Error())
	}
	if assignment.UserID != userID {
		return nil, errorvalues.ErrWrongOwner
	}
	return assignment, nil
}

func (as *AssignmentsService) CompleteAssignment(ctx context.Context, assignmentID, userID uuid.UUID) (*entity.Assignment, error) {
	unlock := as.locks.Lock(userID)
	defer unlock()
	assignment, err := as.repo.GetByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, errorvalues.ErrAssignmentNotFound) {
			return nil, err
		}
		return nil, errors.New("assignments repository error: " + err.Error())
	}
	if assignment.UserID != userID {
		return nil, errorvalues.ErrWrongOwner
	}
	if assignment.Status == "completed" {
		return nil, errorvalues.ErrAlreadyCompleted
	}
	stats, err := ensureStats(ctx, as.stats, as.clk, userID)
	if err != nil {
		return nil, err
	}
	now := as.clk.Now()
	updated := *stats
	ApplyCredit(&updated, assignment.CoinsEarned, now)
	if assignment.DueDate != nil && now.After(*assignment.DueDate) {
		ApplyPenalty(&updated, coins.LatePenalty, now)
	}
	assignment.Status = "completed"
	assignment.CompletedAt = &now
	if err = as.repo.Complete(ctx, assignment, &updated); err != nil {
		if errors.Is(err, errorvalues.ErrAlreadyCompleted) {
			return nil, err
		}
		return nil, errors.New("assignments repository error: " + err.Error())
	}
	return assignment, nil
}

func (as *AssignmentsService) DeleteAssignment(ctx context.Context, assignmentID, userID uuid.UUID) error {
	assignment, err := as.repo.GetByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, errorvalues.ErrAssignmentNotFound) {
			return err
		}
		return errors.New("assignments repository error: " + err.Error())
	}
	if assignment.UserID != userID {
		return errorvalues.ErrWrongOwner
	}
	err = as.repo.Delete(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, errorvalues.ErrAssignmentNotFound) {
			return err
		}
		return errors.New("assignments repository error: " + err.Error())
	}
	return nil
}
