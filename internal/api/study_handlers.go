package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	errorvalues "github.com/limbo/focusbear/internal/error_values"
	"github.com/limbo/focusbear/internal/service"
	"github.com/limbo/focusbear/pkg/httputil"
)

type CreateTaskRequest struct {
	Title            string     `json:"title"`
	Description      string     `json:"desc"`
	DueDate          *time.Time `json:"due_date"`
	ScheduledTime    *time.Time `json:"scheduled_time"`
	EstimatedMinutes int        `json:"estimated_minutes"`
	Priority         string     `json:"priority"`
	ReminderEnabled  bool       `json:"reminder_enabled"`
}

type CreateAssignmentRequest struct {
	Title            string     `json:"title"`
	Description      string     `json:"desc"`
	Subject          string     `json:"subject"`
	DueDate          *time.Time `json:"due_date"`
	EstimatedMinutes int        `json:"estimated_minutes"`
	Priority         string     `json:"priority"`
}

type CreateHabitRequest struct {
	Title              string `json:"title"`
	Description        string `json:"desc"`
	Frequency          string `json:"frequency"`
	CoinsPerCompletion int    `json:"coins_per_completion"`
}

type CreateCourseRequest struct {
	Title        string `json:"title"`
	Description  string `json:"desc"`
	Instructor   string `json:"instructor"`
	Schedule     string `json:"schedule"`
	TotalLessons int    `json:"total_lessons"`
}

type UpdateCourseRequest struct {
	CompletedLessons int    `json:"completed_lessons"`
	Status           string `json:"status"`
}

type listResponse struct {
	UserID string `json:"uid"`
	Page   int    `json:"page"`
	Limit  int    `json:"limit"`
	Items  any    `json:"items"`
}

// TASKS

func (s *Server) CreateTask(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, err := GetUIDFromContext(r)
	if err != nil {
		logger.Error("create task error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	var req CreateTaskRequest
	defer r.Body.Close()
	err = sonic.ConfigDefault.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		logger.Error("create task error: invalid request body")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	task, err := s.tasksService.CreateTask(ctx, uid, &service.CreateTaskRequest{
		Title:            req.Title,
		Description:      req.Description,
		DueDate:          req.DueDate,
		ScheduledTime:    req.ScheduledTime,
		EstimatedMinutes: req.EstimatedMinutes,
		Priority:         req.Priority,
		ReminderEnabled:  req.ReminderEnabled,
	})
	if err != nil {
		if errors.Is(err, errorvalues.ErrUserNotFound) {
			logger.Error("create task error: unexist user")
			httputil.WriteErrorResponse(w, http.StatusNotFound, "couldn't create task: user doesn't exists", nil)
			return
		}
		logger.Error("create task error: service error", slog.String("error", err.Error()))
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "couldn't create task", nil)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusCreated, task)
	logger.Info("task created")
}

func (s *Server) GetTasks(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, err := GetUIDFromContext(r)
	if err != nil {
		logger.Error("get tasks error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	limit, page := paginationFromQuery(r)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*15)
	defer cancel()
	tasks, err := s.tasksService.GetUserTasks(ctx, uid, service.PaginationOpts{
		Limit:  limit,
		Offset: (page - 1) * limit,
	})
	if err != nil {
		logger.Error("getting tasks list error", slog.String("error", err.Error()))
		httputil.WriteErrorResponse(w, http.StatusInternalServerError, "error while getting tasks list", nil)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, listResponse{
		UserID: uid.String(),
		Page:   page,
		Limit:  limit,
		Items:  tasks,
	})
}

func (s *Server) CompleteTask(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, err := GetUIDFromContext(r)
	if err != nil {
		logger.Error("complete task error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		logger.Error("complete task error: invalid id in path value")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid task id in path value", nil)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	task, err := s.tasksService.CompleteTask(ctx, id, uid)
	if err != nil {
		s.writeCompletionError(w, logger, err, "task")
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, task)
	logger.Info("task completed", slog.Int("coins_earned", task.CoinsEarned))
}

func (s *Server) DeleteTask(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, err := GetUIDFromContext(r)
	if err != nil {
		logger.Error("task deletion error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		logger.Error("task deletion error: invalid id in path value")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid task id in path value", nil)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	err = s.tasksService.DeleteTask(ctx, id, uid)
	if err != nil {
		s.writeDeletionError(w, logger, err, "task")
		return
	}
}

// ASSIGNMENTS

func (s *Server) CreateAssignment(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, err := GetUIDFromContext(r)
	if err != nil {
		logger.Error("create assignment error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	var req CreateAssignmentRequest
	defer r.Body.Close()
	err = sonic.ConfigDefault.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		logger.Error("create assignment error: invalid request body")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	assignment, err := s.assignmentsService.CreateAssignment(ctx, uid, &service.CreateAssignmentRequest{
		Title:            req.Title,
		Description:      req.Description,
		Subject:          req.Subject,
		DueDate:          req.DueDate,
		EstimatedMinutes: req.EstimatedMinutes,
		Priority:         req.Priority,
	})
	if err != nil {
		if errors.Is(err, errorvalues.ErrUserNotFound) {
			logger.Error("create assignment error: unexist user")
			httputil.WriteErrorResponse(w, http.StatusNotFound, "couldn't create assignment: user doesn't exists", nil)
			return
		}
		logger.Error("create assignment error: service error", slog.String("error", err.Error()))
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "couldn't create assignment", nil)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusCreated, assignment)
	logger.Info("assignment created")
}

func (s *Server) GetAssignments(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, err := GetUIDFromContext(r)
	if err != nil {
		logger.Error("get assignments error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	limit, page := paginationFromQuery(r)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*15)
	defer cancel()
	assignments, err := s.assignmentsService.GetUserAssignments(ctx, uid, service.PaginationOpts{
		Limit:  limit,
		Offset: (page - 1) * limit,
	})
	if err != nil {
		logger.Error("getting assignments list error", slog.String("error", err.Error()))
		httputil.WriteErrorResponse(w, http.StatusInternalServerError, "error while getting assignments list", nil)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, listResponse{
		UserID: uid.String(),
		Page:   page,
		Limit:  limit,
		Items:  assignments,
	})
}

func (s *Server) CompleteAssignment(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, err := GetUIDFromContext(r)
	if err != nil {
		logger.Error("complete assignment error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		logger.Error("complete assignment error: invalid id in path value")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid assignment id in path value", nil)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	assignment, err := s.assignmentsService.CompleteAssignment(ctx, id, uid)
	if err != nil {
		s.writeCompletionError(w, logger, err, "assignment")
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, assignment)
	logger.Info("assignment completed", slog.Int("coins_earned", assignment.CoinsEarned))
}

func (s *Server) DeleteAssignment(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, err := GetUIDFromContext(r)
	if err != nil {
		logger.Error("assignment deletion error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		logger.Error("assignment deletion error: invalid id in path value")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid assignment id in path value", nil)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	err = s.assignmentsService.DeleteAssignment(ctx, id, uid)
	if err != nil {
		s.writeDeletionError(w, logger, err, "assignment")
		return
	}
}

// HABITS

func (s *Server) CreateHabit(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, err := GetUIDFromContext(r)
	if err != nil {
		logger.Error("create habit error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	var req CreateHabitRequest
	defer r.Body.Close()
	err = sonic.ConfigDefault.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		logger.Error("create habit error: invalid request body")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	habit, err := s.habitsService.CreateHabit(ctx, uid, &service.CreateHabitRequest{
		Title:              req.Title,
		Description:        req.Description,
		Frequency:          req.Frequency,
		CoinsPerCompletion: req.CoinsPerCompletion,
	})
	if err != nil {
		switch {
		case errors.Is(err, errorvalues.ErrUserHasHabit):
			logger.Error("create habit error: attempt to create existed habit")
			httputil.WriteErrorResponse(w, http.StatusConflict, "habit already exists", nil)
		case errors.Is(err, errorvalues.ErrUserNotFound):
			logger.Error("create habit error: unexist user")
			httputil.WriteErrorResponse(w, http.StatusNotFound, "couldn't create habit: user doesn't exists", nil)
		default:
			logger.Error("create habit error: service error", slog.String("error", err.Error()))
			httputil.WriteErrorResponse(w, http.StatusBadRequest, "couldn't create habit", nil)
		}
		return
	}
	httputil.WriteJSONResponse(w, http.StatusCreated, habit)
	logger.Info("habit created")
}

func (s *Server) GetHabits(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, err := GetUIDFromContext(r)
	if err != nil {
		logger.Error("get habits error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	limit, page := paginationFromQuery(r)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*15)
	defer cancel()
	habits, err := s.habitsService.GetUserHabits(ctx, uid, service.PaginationOpts{
		Limit:  limit,
		Offset: (page - 1) * limit,
	})
	if err != nil {
		logger.Error("getting habits list error", slog.String("error", err.Error()))
		httputil.WriteErrorResponse(w, http.StatusInternalServerError, "error while getting habits list", nil)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, listResponse{
		UserID: uid.String(),
		Page:   page,
		Limit:  limit,
		Items:  habits,
	})
}

func (s *Server) CompleteHabit(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, err := GetUIDFromContext(r)
	if err != nil {
		logger.Error("complete habit error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		logger.Error("complete habit error: invalid id in path value")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid habit id in path value", nil)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	habit, err := s.habitsService.CompleteHabit(ctx, id, uid)
	if err != nil {
		switch {
		case errors.Is(err, errorvalues.ErrHabitNotFound):
			logger.Error("complete habit error: unexist habit")
			httputil.WriteErrorResponse(w, http.StatusNotFound, "habit doesn't exist", nil)
		case errors.Is(err, errorvalues.ErrWrongOwner):
			logger.Error("complete habit error: habit has different owner")
			httputil.WriteErrorResponse(w, http.StatusNotFound, "habit doesn't exist", nil)
		case errors.Is(err, errorvalues.ErrHabitDoneToday):
			logger.Error("complete habit error: already completed today")
			httputil.WriteErrorResponse(w, http.StatusConflict, "habit already completed today", nil)
		default:
			logger.Error("complete habit error: service error", slog.String("error", err.Error()))
			httputil.WriteErrorResponse(w, http.StatusInternalServerError, "internal error while completing habit", nil)
		}
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, habit)
	logger.Info("habit completed", slog.Int("streak", habit.CurrentStreak))
}

func (s *Server) DeleteHabit(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, err := GetUIDFromContext(r)
	if err != nil {
		logger.Error("habit deletion error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		logger.Error("habit deletion error: invalid id in path value")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid habit id in path value", nil)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	err = s.habitsService.DeleteHabit(ctx, id, uid)
	if err != nil {
		s.writeDeletionError(w, logger, err, "habit")
		return
	}
}

// COURSES

func (s *Server) CreateCourse(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, err := GetUIDFromContext(r)
	if err != nil {
		logger.Error("create course error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	var req CreateCourseRequest
	defer r.Body.Close()
	err = sonic.ConfigDefault.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		logger.Error("create course error: invalid request body")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	course, err := s.coursesService.CreateCourse(ctx, uid, &service.CreateCourseRequest{
		Title:        req.Title,
		Description:  req.Description,
		Instructor:   req.Instructor,
		Schedule:     req.Schedule,
		TotalLessons: req.TotalLessons,
	})
	if err != nil {
		if errors.Is(err, errorvalues.ErrUserNotFound) {
			logger.Error("create course error: unexist user")
			httputil.WriteErrorResponse(w, http.StatusNotFound, "couldn't create course: user doesn't exists", nil)
			return
		}
		logger.Error("create course error: service error", slog.String("error", err.Error()))
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "couldn't create course", nil)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusCreated, course)
	logger.Info("course created")
}

func (s *Server) GetCourses(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, err := GetUIDFromContext(r)
	if err != nil {
		logger.Error("get courses error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	limit, page := paginationFromQuery(r)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*15)
	defer cancel()
	courses, err := s.coursesService.GetUserCourses(ctx, uid, service.PaginationOpts{
		Limit:  limit,
		Offset: (page - 1) * limit,
	})
	if err != nil {
		logger.Error("getting courses list error", slog.String("error", err.Error()))
		httputil.WriteErrorResponse(w, http.StatusInternalServerError, "error while getting courses list", nil)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, listResponse{
		UserID: uid.String(),
		Page:   page,
		Limit:  limit,
		Items:  courses,
	})
}

func (s *Server) UpdateCourseProgress(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, err := GetUIDFromContext(r)
	if err != nil {
		logger.Error("update course error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		logger.Error("update course error: invalid id in path value")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid course id in path value", nil)
		return
	}
	var req UpdateCourseRequest
	defer r.Body.Close()
	err = sonic.ConfigDefault.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		logger.Error("update course error: invalid request body")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	course, err := s.coursesService.UpdateCourseProgress(ctx, id, uid, &service.UpdateCourseProgressRequest{
		CompletedLessons: req.CompletedLessons,
		Status:           req.Status,
	})
	if err != nil {
		switch {
		case errors.Is(err, errorvalues.ErrCourseNotFound):
			logger.Error("update course error: unexist course")
			httputil.WriteErrorResponse(w, http.StatusNotFound, "course doesn't exist", nil)
		case errors.Is(err, errorvalues.ErrWrongOwner):
			logger.Error("update course error: course has different owner")
			httputil.WriteErrorResponse(w, http.StatusNotFound, "course doesn't exist", nil)
		default:
			logger.Error("update course error: service error", slog.String("error", err.Error()))
			httputil.WriteErrorResponse(w, http.StatusBadRequest, "couldn't update course", nil)
		}
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, course)
	logger.Info("course progress updated")
}

func (s *Server) DeleteCourse(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, err := GetUIDFromContext(r)
	if err != nil {
		logger.Error("course deletion error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		logger.Error("course deletion error: invalid id in path value")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid course id in path value", nil)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	err = s.coursesService.DeleteCourse(ctx, id, uid)
	if err != nil {
		s.writeDeletionError(w, logger, err, "course")
		return
	}
}

// Shared error mapping for completion and deletion endpoints. Wrong
// owner is reported as not-found so resource ids can't be probed.
func (s *Server) writeCompletionError(w http.ResponseWriter, logger *slog.Logger, err error, kind string) {
	switch {
	case errors.Is(err, errorvalues.ErrTaskNotFound),
		errors.Is(err, errorvalues.ErrAssignmentNotFound),
		errors.Is(err, errorvalues.ErrWrongOwner):
		logger.Error("complete " + kind + " error: unexist " + kind)
		httputil.WriteErrorResponse(w, http.StatusNotFound, kind+" doesn't exist", nil)
	case errors.Is(err, errorvalues.ErrAlreadyCompleted):
		logger.Error("complete " + kind + " error: already completed")
		httputil.WriteErrorResponse(w, http.StatusConflict, kind+" already completed", nil)
	default:
		logger.Error("complete "+kind+" error: service error", slog.String("error", err.Error()))
		httputil.WriteErrorResponse(w, http.StatusInternalServerError, "internal error while completing "+kind, nil)
	}
}

func (s *Server) writeDeletionError(w http.ResponseWriter, logger *slog.Logger, err error, kind string) {
	switch {
	case errors.Is(err, errorvalues.ErrTaskNotFound),
		errors.Is(err, errorvalues.ErrAssignmentNotFound),
		errors.Is(err, errorvalues.ErrHabitNotFound),
		errors.Is(err, errorvalues.ErrCourseNotFound),
		errors.Is(err, errorvalues.ErrWrongOwner):
		logger.Error(kind + " deletion error: unexist " + kind)
		httputil.WriteErrorResponse(w, http.StatusNotFound, kind+" doesn't exist", nil)
	default:
		logger.Error(kind+" deletion error: service error", slog.String("error", err.Error()))
		httputil.WriteErrorResponse(w, http.StatusInternalServerError, "internal error while deleting "+kind, nil)
	}
}
