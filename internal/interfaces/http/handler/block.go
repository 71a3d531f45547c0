package handler

import (
	blockapp "github.com/exportdesk/backend/internal/application/block"
	"github.com/gin-gonic/gin"
)

// BlockHandler serves shipping blocks
type BlockHandler struct {
	BaseHandler
	blockService *blockapp.BlockService
}

// NewBlockHandler creates a new BlockHandler
func NewBlockHandler(blockService *blockapp.BlockService) *BlockHandler {
	return &BlockHandler{blockService: blockService}
}

// List godoc
// @Summary      List blocks
// @Tags         blocks
// @Produce      json
// @Param        search query string false "Search by name"
// @Param        status query string false "Block status" Enums(planning, confirmed, shipped, closed)
// @Param        page query int false "Page number" default(1)
// @Param        pageSize query int false "Page size" default(20) maximum(100)
// @Param        orderBy query string false "Sort field" default(target_ship_month)
// @Param        order query string false "Sort direction" Enums(asc, desc) default(asc)
// @Success      200 {object} dto.Response{data=[]blockapp.BlockResponse,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /blocks [get]
func (h *BlockHandler) List(c *gin.Context) {
	var filter blockapp.ListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.ValidationError(c, err)
		return
	}
	page, pageSize := pageDefaults(&filter.Page, &filter.PageSize)

	blocks, total, err := h.blockService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, blocks, total, page, pageSize)
}

// Get godoc
// @Summary      Get a block
// @Tags         blocks
// @Produce      json
// @Param        id path string true "Block ID" format(uuid)
// @Success      200 {object} dto.Response{data=blockapp.BlockResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /blocks/{id} [get]
func (h *BlockHandler) Get(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	b, err := h.blockService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, b)
}

// Create godoc
// @Summary      Create a block
// @Tags         blocks
// @Accept       json
// @Produce      json
// @Param        request body blockapp.CreateBlockRequest true "Block"
// @Success      201 {object} dto.Response{data=blockapp.BlockResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /blocks [post]
func (h *BlockHandler) Create(c *gin.Context) {
	var req blockapp.CreateBlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}
	b, err := h.blockService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, b)
}

// Update godoc
// @Summary      Update a block
// @Tags         blocks
// @Accept       json
// @Produce      json
// @Param        id path string true "Block ID" format(uuid)
// @Param        request body blockapp.UpdateBlockRequest true "Changed fields"
// @Success      200 {object} dto.Response{data=blockapp.BlockResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /blocks/{id} [patch]
func (h *BlockHandler) Update(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req blockapp.UpdateBlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}
	b, err := h.blockService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, b)
}

// Delete godoc
// @Summary      Delete a block
// @Description  Rejected with 409 while orders are still linked to the block
// @Tags         blocks
// @Param        id path string true "Block ID" format(uuid)
// @Success      204
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /blocks/{id} [delete]
func (h *BlockHandler) Delete(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	if err := h.blockService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
