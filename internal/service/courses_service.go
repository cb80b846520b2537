package service

import (
	"context"
	"errors"
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	errorvalues "github.com/limbo/focusbear/internal/error_values"
	"github.com/limbo/focusbear/internal/repository"
	"github.com/limbo/focusbear/pkg/entity"
)

type CoursesService struct {
	repo repository.CoursesRepositoryI
}

func NewCoursesService(coursesRepo repository.CoursesRepositoryI) *CoursesService {
	if coursesRepo == nil {
		log.Fatal("on courses service provided nil repo")
	}
	return &CoursesService{
		repo: coursesRepo,
	}
}

func (cs *CoursesService) CreateCourse(ctx context.Context, uid uuid.UUID, req *CreateCourseRequest) (*entity.Course, error) {
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
	course := entity.Course{
		UserID:       uid,
		Title:        req.Title,
		Description:  req.Description,
		Instructor:   req.Instructor,
		Schedule:     req.Schedule,
		TotalLessons: req.TotalLessons,
	}
	id, err := cs.repo.Create(ctx, &course)
	if err != nil {
		if errors.Is(err, errorvalues.ErrOwnerNotFound) {
			return nil, errorvalues.ErrUserNotFound
		}
		return nil, errors.New("courses repository error: " + err.Error())
	}
	created, err := cs.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, errorvalues.ErrCourseNotFound) {
			return nil, err
		}
		return nil, errors.New("courses repository error: " + err.Error())
	}
	return created, nil
}

func (cs *CoursesService) GetUserCourses(ctx context.Context, uid uuid.UUID, pagination PaginationOpts) ([]*entity.Course, error) {
	courses, err := cs.repo.GetByUserID(ctx, uid, pagination.Limit, pagination.Offset)
	if err != nil {
		return nil, errors.New("courses repository error: " + err.Error())
	}
	return courses, nil
}

func (cs *CoursesService) GetCourse(ctx context.Context, courseID, userID uuid.UUID) (*entity.Course, error) {
	course, err := cs.repo.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, errorvalues.ErrCourseNotFound) {
			return nil, err
		}
		return nil, errors.New("courses repository error: " + err.Error())
	}
	if course.UserID != userID {
		return nil, errorvalues.ErrWrongOwner
	}
	return course, nil
}

func (cs *CoursesService) UpdateCourseProgress(ctx context.Context, courseID, userID uuid.UUID, req *UpdateCourseProgressRequest) (*entity.Course, error) {
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
	course, err := cs.repo.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, errorvalues.ErrCourseNotFound) {
			return nil, err
		}
		return nil, errors.New("courses repository error: " + err.Error())
	}
	if course.UserID != userID {
		return nil, errorvalues.ErrWrongOwner
	}
	course.CompletedLessons = req.CompletedLessons
	if course.TotalLessons > 0 {
		if course.CompletedLessons > course.TotalLessons {
			course.CompletedLessons = course.TotalLessons
		}
		course.Progress = course.CompletedLessons * 100 / course.TotalLessons
	}
	if req.Status != "" {
		course.Status = req.Status
	} else if course.TotalLessons > 0 && course.CompletedLessons == course.TotalLessons {
		course.Status = "completed"
	}
	if err = cs.repo.UpdateProgress(ctx, course); err != nil {
		if errors.Is(err, errorvalues.ErrCourseNotFound) {
			return nil, err
		}
		return nil, errors.New("courses repository error: " + err.Error())
	}
	return course, nil
}

func (cs *CoursesService) DeleteCourse(ctx context.Context, courseID, userID uuid.UUID) error {
	course, err := cs.repo.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, errorvalues.ErrCourseNotFound) {
			return err
		}
		return errors.New("courses repository error: " + err.Error())
	}
	if course.UserID != userID {
		return errorvalues.ErrWrongOwner
	}
	err = cs.repo.Delete(ctx, courseID)
	if err != nil {
		if errors.Is(err, errorvalues.ErrCourseNotFound) {
			return err
		}
		return errors.New("courses repository error: " + err.Error())
	}
	return nil
}
