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
	"github.com/limbo/focusbear/pkg/entity"
	"github.com/limbo/focusbear/pkg/httputil"
)

type StartSessionRequest struct {
	DurationMinutes int    `json:"duration_minutes"`
	SessionClass    string `json:"session_class"`
}

type ActiveSessionResponse struct {
	Active           bool                 `json:"active"`
	Session          *entity.FocusSession `json:"session,omitempty"`
	RemainingSeconds int                  `json:"remaining_seconds"`
}

type CompleteSessionResponse struct {
	Session *entity.FocusSession `json:"session"`
	Stats   *entity.FocusStats   `json:"stats"`
}

type GuardOpenRequest struct {
	URL string `json:"url"`
}

type AddWhitelistRequest struct {
	Value       string `json:"value"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

func (s *Server) StartSession(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, err := GetUIDFromContext(r)
	if err != nil {
		logger.Error("start session error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	var req StartSessionRequest
	defer r.Body.Close()
	err = sonic.ConfigDefault.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		logger.Error("start session error: invalid request body")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	session, err := s.focusService.StartSession(ctx, uid, &service.StartSessionRequest{
		DurationMinutes: req.DurationMinutes,
		Class:           req.SessionClass,
	})
	if err != nil {
		switch {
		case errors.Is(err, errorvalues.ErrSessionAlreadyActive):
			logger.Error("start session error: session already active")
			httputil.WriteErrorResponse(w, http.StatusConflict, "focus session already active", nil)
		case errors.Is(err, errorvalues.ErrUserNotFound):
			logger.Error("start session error: unexist user")
			httputil.WriteErrorResponse(w, http.StatusNotFound, "user doesn't exists", nil)
		default:
			logger.Error("start session error: service error", slog.String("error", err.Error()))
			httputil.WriteErrorResponse(w, http.StatusBadRequest, "couldn't start session", nil)
		}
		return
	}
	httputil.WriteJSONResponse(w, http.StatusCreated, session)
	logger.Info("focus session started", slog.String("session_id", session.ID.String()))
}

func (s *Server) GetActiveSession(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, err := GetUIDFromContext(r)
	if err != nil {
		logger.Error("get active session error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	session, remaining, err := s.focusService.ActiveSession(ctx, uid)
	if err != nil {
		logger.Error("get active session error", slog.String("error", err.Error()))
		httputil.WriteErrorResponse(w, http.StatusInternalServerError, "error while getting active session", nil)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, ActiveSessionResponse{
		Active:           session != nil,
		Session:          session,
		RemainingSeconds: int(remaining.Seconds()),
	})
}

func (s *Server) CompleteSession(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, err := GetUIDFromContext(r)
	if err != nil {
		logger.Error("complete session error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		logger.Error("complete session error: invalid id in path value")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid session id in path value", nil)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	session, stats, err := s.focusService.CompleteSession(ctx, uid, id)
	if err != nil {
		switch {
		case errors.Is(err, errorvalues.ErrSessionNotFound):
			logger.Error("complete session error: unexist session")
			httputil.WriteErrorResponse(w, http.StatusNotFound, "session doesn't exist", nil)
		case errors.Is(err, errorvalues.ErrWrongOwner):
			logger.Error("complete session error: session has different owner")
			httputil.WriteErrorResponse(w, http.StatusNotFound, "session doesn't exist", nil)
		case errors.Is(err, errorvalues.ErrSessionNotActive):
			logger.Error("complete session error: session already completed")
			httputil.WriteErrorResponse(w, http.StatusConflict, "session is not active", nil)
		default:
			logger.Error("complete session error: service error", slog.String("error", err.Error()))
			httputil.WriteErrorResponse(w, http.StatusInternalServerError, "internal error while completing session", nil)
		}
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, CompleteSessionResponse{
		Session: session,
		Stats:   stats,
	})
	logger.Info("focus session completed", slog.Int("coins_earned", session.CoinsEarned))
}

func (s *Server) BreakSession(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, err := GetUIDFromContext(r)
	if err != nil {
		logger.Error("break session error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	err = s.focusService.BreakSession(ctx, uid)
	if err != nil {
		switch {
		case errors.Is(err, errorvalues.ErrSessionNotActive):
			logger.Error("break session error: no active session")
			httputil.WriteErrorResponse(w, http.StatusConflict, "no active session to break", nil)
		case errors.Is(err, errorvalues.ErrNoBreaksRemaining):
			logger.Error("break session error: quota exhausted")
			httputil.WriteErrorResponse(w, http.StatusTooManyRequests, "no emergency breaks remaining this month", nil)
		default:
			logger.Error("break session error: service error", slog.String("error", err.Error()))
			httputil.WriteErrorResponse(w, http.StatusInternalServerError, "internal error while breaking session", nil)
		}
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, map[string]any{"broken": true})
	logger.Info("focus session aborted via break-glass")
}

func (s *Server) GetStats(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, err := GetUIDFromContext(r)
	if err != nil {
		logger.Error("get stats error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	stats, err := s.focusService.GetStats(ctx, uid)
	if err != nil {
		logger.Error("get stats error", slog.String("error", err.Error()))
		httputil.WriteErrorResponse(w, http.StatusInternalServerError, "error while getting focus stats", nil)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, stats)
}

func (s *Server) GuardOpen(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, err := GetUIDFromContext(r)
	if err != nil {
		logger.Error("guard open error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	var req GuardOpenRequest
	defer r.Body.Close()
	err = sonic.ConfigDefault.NewDecoder(r.Body).Decode(&req)
	if err != nil || req.URL == "" {
		logger.Error("guard open error: invalid request body")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	err = s.focusService.GuardOpen(ctx, uid, req.URL)
	if err != nil {
		if errors.Is(err, errorvalues.ErrNotWhitelisted) {
			logger.Error("guard open error: url not whitelisted")
			httputil.WriteErrorResponse(w, http.StatusForbidden, "resource is not whitelisted for focus mode", nil)
			return
		}
		logger.Error("guard open error: service error", slog.String("error", err.Error()))
		httputil.WriteErrorResponse(w, http.StatusInternalServerError, "internal error while checking whitelist", nil)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, map[string]any{"allowed": true})
}

func (s *Server) GetWhitelist(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, err := GetUIDFromContext(r)
	if err != nil {
		logger.Error("get whitelist error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	items, err := s.focusService.GetWhitelist(ctx, uid)
	if err != nil {
		logger.Error("get whitelist error", slog.String("error", err.Error()))
		httputil.WriteErrorResponse(w, http.StatusInternalServerError, "error while getting whitelist", nil)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, map[string]any{
		"uid":   uid.String(),
		"items": items,
	})
}

func (s *Server) AddWhitelistItem(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, err := GetUIDFromContext(r)
	if err != nil {
		logger.Error("add whitelist item error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	var req AddWhitelistRequest
	defer r.Body.Close()
	err = sonic.ConfigDefault.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		logger.Error("add whitelist item error: invalid request body")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	item, err := s.focusService.AddWhitelistItem(ctx, uid, &service.AddWhitelistRequest{
		Value:       req.Value,
		Description: req.Description,
		Category:    req.Category,
	})
	if err != nil {
		switch {
		case errors.Is(err, errorvalues.ErrWhitelistItemExists):
			logger.Error("add whitelist item error: duplicate value")
			httputil.WriteErrorResponse(w, http.StatusConflict, "whitelist item already exists", nil)
		case errors.Is(err, errorvalues.ErrUserNotFound):
			logger.Error("add whitelist item error: unexist user")
			httputil.WriteErrorResponse(w, http.StatusNotFound, "user doesn't exists", nil)
		default:
			logger.Error("add whitelist item error: service error", slog.String("error", err.Error()))
			httputil.WriteErrorResponse(w, http.StatusBadRequest, "couldn't add whitelist item", nil)
		}
		return
	}
	httputil.WriteJSONResponse(w, http.StatusCreated, item)
	logger.Info("whitelist item added")
}

func (s *Server) RemoveWhitelistItem(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, err := GetUIDFromContext(r)
	if err != nil {
		logger.Error("remove whitelist item error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		logger.Error("remove whitelist item error: invalid id in path value")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid item id in path value", nil)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	err = s.focusService.RemoveWhitelistItem(ctx, uid, id)
	if err != nil {
		switch {
		case errors.Is(err, errorvalues.ErrWhitelistItemNotFound):
			logger.Error("remove whitelist item error: unexist item")
			httputil.WriteErrorResponse(w, http.StatusNotFound, "whitelist item doesn't exist", nil)
		case errors.Is(err, errorvalues.ErrWrongOwner):
			logger.Error("remove whitelist item error: item has different owner")
			httputil.WriteErrorResponse(w, http.StatusNotFound, "whitelist item doesn't exist", nil)
		default:
			logger.Error("remove whitelist item error: service error", slog.String("error", err.Error()))
			httputil.WriteErrorResponse(w, http.StatusInternalServerError, "internal error while removing whitelist item", nil)
		}
		return
	}
}
