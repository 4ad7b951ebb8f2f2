package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/talentlens/talentlens-backend/internal/middleware"
	"github.com/talentlens/talentlens-backend/internal/model"
	"github.com/talentlens/talentlens-backend/internal/response"
	"github.com/talentlens/talentlens-backend/internal/service"
	"github.com/talentlens/talentlens-backend/internal/validator"
)

// SessionHandler handles the test session lifecycle endpoints.
type SessionHandler struct {
	sessionService *service.SessionService
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(sessionService *service.SessionService) *SessionHandler {
	return &SessionHandler{sessionService: sessionService}
}

// StartSession godoc
// POST /api/v1/assessment/templates/:template_id/sessions
// Starts a new in-progress session for the authenticated user. At most one
// in-progress session per (user, template) pair; a second attempt returns
// 409 with the existing session's id.
func (h *SessionHandler) StartSession(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	templateID, err := uuid.Parse(c.Param("template_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	view, err := h.sessionService.StartSession(c.Request.Context(), templateID, claims.UserID)
	if err != nil {
		var dup *service.DuplicateSessionError
		var notFound *service.NotFoundError
		switch {
		case errors.As(err, &dup):
			response.FailWithFields(c, http.StatusConflict, response.ErrDuplicateSession, map[string]string{
				"existing_session_id": dup.ExistingSessionID.String(),
			})
		case errors.As(err, &notFound):
			response.Fail(c, http.StatusNotFound, response.ErrTemplateNotAvailable)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"session": view})
}

// RecordAnswer godoc
// POST /api/v1/assessment/sessions/:session_id/answers
// Records (or overwrites) an answer for a question assigned to the session.
func (h *SessionHandler) RecordAnswer(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	sessionID, err := uuid.Parse(c.Param("session_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.RecordAnswerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	questionID, err := uuid.Parse(req.QuestionID)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	progress, err := h.sessionService.RecordAnswer(c.Request.Context(), claims.UserID, sessionID, questionID, req.Response)
	if err != nil {
		h.failSessionError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"progress": progress})
}

// CompleteSession godoc
// POST /api/v1/assessment/sessions/:session_id/complete
// Scores the session and transitions it to COMPLETED.
func (h *SessionHandler) CompleteSession(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	sessionID, err := uuid.Parse(c.Param("session_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	view, err := h.sessionService.CompleteSession(c.Request.Context(), claims.UserID, sessionID)
	if err != nil {
		h.failSessionError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"session": view})
}

// GetSession godoc
// GET /api/v1/assessment/sessions/:session_id
// Returns the session view with a live answered count.
func (h *SessionHandler) GetSession(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	sessionID, err := uuid.Parse(c.Param("session_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	view, err := h.sessionService.GetSession(c.Request.Context(), claims.UserID, sessionID)
	if err != nil {
		h.failSessionError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"session": view})
}

// failSessionError maps session domain errors onto HTTP error responses.
func (h *SessionHandler) failSessionError(c *gin.Context, err error) {
	var notFound *service.NotFoundError
	var invalidState *service.InvalidStateError
	var notInSession *service.NotInSessionError
	switch {
	case errors.As(err, &notFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.As(err, &invalidState):
		response.Fail(c, http.StatusConflict, response.ErrSessionNotInProgress)
	case errors.As(err, &notInSession):
		response.Fail(c, http.StatusBadRequest, response.ErrQuestionNotInSession)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
