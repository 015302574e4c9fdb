package handler

import (
	"crypto/subtle"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/quizora/quizora-backend/internal/config"
	"github.com/quizora/quizora-backend/internal/middleware"
	"github.com/quizora/quizora-backend/internal/response"
	"github.com/quizora/quizora-backend/internal/service"
	"github.com/quizora/quizora-backend/internal/validator"
)

// CreditHandler handles the generation quota and override credential.
type CreditHandler struct {
	credits *service.CreditService
	cfg     *config.Config
}

// NewCreditHandler creates a new CreditHandler.
func NewCreditHandler(credits *service.CreditService, cfg *config.Config) *CreditHandler {
	return &CreditHandler{credits: credits, cfg: cfg}
}

// State godoc
// GET /api/v1/credits
// Returns the client's remaining credits and whether an override is active.
// The plaintext credential is never returned.
func (h *CreditHandler) State(c *gin.Context) {
	state, err := h.credits.State(c.Request.Context(), middleware.GetClientID(c))
	if err != nil {
		response.Fail(c, http.StatusServiceUnavailable, response.ErrUnavailable)
		return
	}
	response.Success(c, http.StatusOK, state)
}

// overrideRequest is the body for setting an override credential.
type overrideRequest struct {
	Credential string `json:"credential" binding:"required"`
}

// SetOverride godoc
// PUT /api/v1/credits/override
// Stores the client's own API key. While set, generations bypass the quota.
func (h *CreditHandler) SetOverride(c *gin.Context) {
	var req overrideRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	err := h.credits.SetOverrideCredential(c.Request.Context(), middleware.GetClientID(c), req.Credential)
	if err != nil {
		if errors.Is(err, service.ErrEmptyCredential) {
			response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation,
				map[string]string{"credential": "must not be blank"})
			return
		}
		response.Fail(c, http.StatusServiceUnavailable, response.ErrUnavailable)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"using_override": true})
}

// ClearOverride godoc
// DELETE /api/v1/credits/override
// Removes the override credential. Already-consumed credits stay consumed.
func (h *CreditHandler) ClearOverride(c *gin.Context) {
	if err := h.credits.ClearOverrideCredential(c.Request.Context(), middleware.GetClientID(c)); err != nil {
		response.Fail(c, http.StatusServiceUnavailable, response.ErrUnavailable)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"using_override": false})
}

// Reset godoc
// POST /api/v1/credits/reset
// Restores the initial allotment. Disabled in production; elsewhere it
// requires the ops secret in X-Ops-Secret.
func (h *CreditHandler) Reset(c *gin.Context) {
	if h.cfg.IsProduction() {
		response.Fail(c, http.StatusForbidden, response.ErrForbidden)
		return
	}
	if h.cfg.OpsSecret == "" ||
		subtle.ConstantTimeCompare([]byte(c.GetHeader("X-Ops-Secret")), []byte(h.cfg.OpsSecret)) != 1 {
		response.Fail(c, http.StatusForbidden, response.ErrForbidden)
		return
	}

	if err := h.credits.ResetCredits(c.Request.Context(), middleware.GetClientID(c)); err != nil {
		response.Fail(c, http.StatusServiceUnavailable, response.ErrUnavailable)
		return
	}

	state, err := h.credits.State(c.Request.Context(), middleware.GetClientID(c))
	if err != nil {
		response.Fail(c, http.StatusServiceUnavailable, response.ErrUnavailable)
		return
	}
	response.Success(c, http.StatusOK, state)
}
