package handler

import (
	syncapp "github.com/exportdesk/backend/internal/application/sync"
	"github.com/exportdesk/backend/internal/domain/commerce"
	"github.com/gin-gonic/gin"
)

// SyncHandler triggers store syncs and lists past runs
type SyncHandler struct {
	BaseHandler
	syncService *syncapp.SyncService
}

// NewSyncHandler creates a new SyncHandler
func NewSyncHandler(syncService *syncapp.SyncService) *SyncHandler {
	return &SyncHandler{syncService: syncService}
}

// Run godoc
// @Summary      Run a store sync
// @Description  Pulls orders or products from the commerce store. Without since or full the
// @Description  run continues from the last successful one. A failed run still returns its summary.
// @Tags         sync
// @Accept       json
// @Produce      json
// @Param        request body syncapp.SyncRequest false "Resource, since and full"
// @Success      200 {object} dto.Response{data=commerce.SyncSummary}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      502 {object} dto.Response{data=commerce.SyncSummary,error=dto.ErrorInfo}
// @Failure      503 {object} dto.Response{data=commerce.SyncSummary,error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /sync [post]
func (h *SyncHandler) Run(c *gin.Context) {
	var req syncapp.SyncRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.ValidationError(c, err)
			return
		}
	}
	req.Trigger = commerce.TriggerAPI

	summary, err := h.syncService.Run(c.Request.Context(), req)
	if err != nil {
		if summary != nil {
			h.HandleErrorWithData(c, err, summary)
			return
		}
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}

// ListRuns godoc
// @Summary      Recent sync runs
// @Tags         sync
// @Produce      json
// @Param        resource query string false "Resource" Enums(orders, products)
// @Param        limit query int false "Maximum runs" default(20) maximum(100)
// @Success      200 {object} dto.Response{data=[]syncapp.SyncRunResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /sync/runs [get]
func (h *SyncHandler) ListRuns(c *gin.Context) {
	var filter syncapp.RunListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.ValidationError(c, err)
		return
	}
	runs, err := h.syncService.ListRuns(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, runs)
}
