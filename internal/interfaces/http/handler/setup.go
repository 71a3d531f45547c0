package handler

import (
	"net/http"

	"github.com/exportdesk/backend/internal/application/setup"
	"github.com/exportdesk/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// SetupHandler exposes the idempotent database setup
type SetupHandler struct {
	BaseHandler
	setupService *setup.Service
}

// NewSetupHandler creates a new SetupHandler
func NewSetupHandler(setupService *setup.Service) *SetupHandler {
	return &SetupHandler{setupService: setupService}
}

// Run godoc
// @Summary      Bring the database schema up to date
// @Description  Creates missing tables, columns and indexes, then seeds missing email
// @Description  templates. Safe to repeat: a second run skips every step.
// @Tags         setup
// @Produce      json
// @Success      200 {object} dto.Response{data=setup.Report}
// @Failure      500 {object} dto.Response{data=setup.Report,error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /db-setup [post]
func (h *SetupHandler) Run(c *gin.Context) {
	report := h.setupService.Run(c.Request.Context())
	if !report.OK() {
		resp := dto.NewErrorResponseWithRequestID(dto.ErrCodeInternal, "One or more setup steps failed", getRequestID(c))
		resp.Data = report
		c.JSON(http.StatusInternalServerError, resp)
		return
	}
	h.Success(c, report)
}
