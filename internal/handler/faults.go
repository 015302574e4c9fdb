package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/quizora/quizora-backend/internal/fault"
	"github.com/quizora/quizora-backend/internal/response"
)

// failWithFault renders a gate fault as an HTTP error. Validation faults
// carry their field map; every kind keeps its own message so the UI can show
// something more specific than the code's default.
func failWithFault(c *gin.Context, f *fault.Fault) {
	status, code := response.FaultStatus(f.Kind)
	if len(f.Fields) > 0 {
		response.FailWithFields(c, status, code, f.Fields)
		return
	}
	response.FailWithMessage(c, status, code, f.Message)
}
