package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/quizora/quizora-backend/internal/middleware"
	"github.com/quizora/quizora-backend/internal/model"
	"github.com/quizora/quizora-backend/internal/response"
	"github.com/quizora/quizora-backend/internal/service"
	"github.com/quizora/quizora-backend/internal/validator"
)

// SessionHandler handles the per-client quiz-session collection.
type SessionHandler struct {
	sessions   *service.SessionService
	generation *service.GenerationService
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(sessions *service.SessionService, generation *service.GenerationService) *SessionHandler {
	return &SessionHandler{sessions: sessions, generation: generation}
}

// List godoc
// GET /api/v1/sessions?filter=recent|completed|incomplete&limit=N
// Lists the client's sessions. Without a filter, returns the full collection
// in insertion order (most recent first).
func (h *SessionHandler) List(c *gin.Context) {
	clientID := middleware.GetClientID(c)
	ctx := c.Request.Context()

	var (
		sessions []model.QuizSession
		err      error
	)
	switch c.Query("filter") {
	case "recent":
		limit, _ := strconv.Atoi(c.Query("limit"))
		sessions, err = h.sessions.GetRecentSessions(ctx, clientID, limit)
	case "completed":
		sessions, err = h.sessions.GetCompletedSessions(ctx, clientID)
	case "incomplete":
		sessions, err = h.sessions.GetIncompleteSessions(ctx, clientID)
	case "":
		sessions, err = h.sessions.ListSessions(ctx, clientID)
	default:
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation,
			map[string]string{"filter": "must be one of: recent, completed, incomplete"})
		return
	}
	if err != nil {
		response.Fail(c, http.StatusServiceUnavailable, response.ErrUnavailable)
		return
	}
	if sessions == nil {
		sessions = []model.QuizSession{}
	}
	response.Success(c, http.StatusOK, sessions)
}

// Current godoc
// GET /api/v1/sessions/current
// Returns the current session, or null data when none is selected.
func (h *SessionHandler) Current(c *gin.Context) {
	session, err := h.sessions.CurrentSession(c.Request.Context(), middleware.GetClientID(c))
	if err != nil {
		response.Fail(c, http.StatusServiceUnavailable, response.ErrUnavailable)
		return
	}
	response.Success(c, http.StatusOK, session)
}

// Get godoc
// GET /api/v1/sessions/:session_id
// Returns the session and refreshes its recency. A hydration failure is 503,
// never 404: a stale link must not read as deleted while the store is down.
func (h *SessionHandler) Get(c *gin.Context) {
	session, err := h.sessions.GetSessionByID(c.Request.Context(), middleware.GetClientID(c), c.Param("session_id"))
	if err != nil {
		response.Fail(c, http.StatusServiceUnavailable, response.ErrUnavailable)
		return
	}
	if session == nil {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}
	response.Success(c, http.StatusOK, session)
}

// Select godoc
// POST /api/v1/sessions/:session_id/select
// Makes the session current and returns it.
func (h *SessionHandler) Select(c *gin.Context) {
	session, err := h.sessions.SelectSession(c.Request.Context(), middleware.GetClientID(c), c.Param("session_id"))
	if err != nil {
		response.Fail(c, http.StatusServiceUnavailable, response.ErrUnavailable)
		return
	}
	if session == nil {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}
	response.Success(c, http.StatusOK, session)
}

// answerRequest is the body for recording an answer.
type answerRequest struct {
	QuestionID string `json:"question_id" binding:"required"`
	Value      string `json:"value"`
}

// Answer godoc
// POST /api/v1/sessions/answer
// Records an answer against the current session. With no current session
// this is accepted and dropped; answers only ever target the current one.
func (h *SessionHandler) Answer(c *gin.Context) {
	var req answerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.sessions.RecordAnswer(c.Request.Context(), middleware.GetClientID(c), req.QuestionID, req.Value); err != nil {
		response.Fail(c, http.StatusServiceUnavailable, response.ErrUnavailable)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"status": "recorded"})
}

// Complete godoc
// POST /api/v1/sessions/:session_id/complete
// Marks the session completed. Idempotent; unknown IDs are accepted.
func (h *SessionHandler) Complete(c *gin.Context) {
	if err := h.sessions.MarkCompleted(c.Request.Context(), middleware.GetClientID(c), c.Param("session_id")); err != nil {
		response.Fail(c, http.StatusServiceUnavailable, response.ErrUnavailable)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"status": "completed"})
}

// Reset godoc
// POST /api/v1/sessions/:session_id/reset
// Clears answers, completion and any attached analysis. Idempotent.
func (h *SessionHandler) Reset(c *gin.Context) {
	if err := h.sessions.ResetSession(c.Request.Context(), middleware.GetClientID(c), c.Param("session_id")); err != nil {
		response.Fail(c, http.StatusServiceUnavailable, response.ErrUnavailable)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"status": "reset"})
}

// Delete godoc
// DELETE /api/v1/sessions/:session_id
// Removes the session. Unknown IDs are accepted (the delete already holds).
func (h *SessionHandler) Delete(c *gin.Context) {
	if err := h.sessions.DeleteSession(c.Request.Context(), middleware.GetClientID(c), c.Param("session_id")); err != nil {
		response.Fail(c, http.StatusServiceUnavailable, response.ErrUnavailable)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"status": "deleted"})
}

// Analyze godoc
// POST /api/v1/sessions/:session_id/analyze
// Runs gated AI analysis over the session's written answers and attaches the
// result, which also completes the session.
func (h *SessionHandler) Analyze(c *gin.Context) {
	analysis, f := h.generation.AnalyzeSession(c.Request.Context(), middleware.GetClientID(c), c.Param("session_id"))
	if f != nil {
		failWithFault(c, f)
		return
	}
	response.Success(c, http.StatusOK, analysis)
}
