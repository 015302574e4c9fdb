package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/quizora/quizora-backend/internal/middleware"
	"github.com/quizora/quizora-backend/internal/response"
	"github.com/quizora/quizora-backend/internal/service"
)

// ClientHandler handles anonymous client registration.
type ClientHandler struct {
	clients *service.ClientService
}

// NewClientHandler creates a new ClientHandler.
func NewClientHandler(clients *service.ClientService) *ClientHandler {
	return &ClientHandler{clients: clients}
}

// Register godoc
// POST /api/v1/client/register
// Mints a new anonymous client identity and its token. No credentials: one
// device, one client.
func (h *ClientHandler) Register(c *gin.Context) {
	reg, err := h.clients.Register()
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusCreated, reg)
}

// Renew godoc
// POST /api/v1/client/renew
// Issues a fresh token for the authenticated client, keeping its sessions
// and credits.
func (h *ClientHandler) Renew(c *gin.Context) {
	reg, err := h.clients.Renew(middleware.GetClientID(c))
	if err != nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenInvalid)
		return
	}
	response.Success(c, http.StatusOK, reg)
}
