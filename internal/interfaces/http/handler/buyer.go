package handler

import (
	buyerapp "github.com/exportdesk/backend/internal/application/buyer"
	"github.com/gin-gonic/gin"
)

// BuyerHandler serves the buyer directory
type BuyerHandler struct {
	BaseHandler
	buyerService *buyerapp.BuyerService
}

// NewBuyerHandler creates a new BuyerHandler
func NewBuyerHandler(buyerService *buyerapp.BuyerService) *BuyerHandler {
	return &BuyerHandler{buyerService: buyerService}
}

// List godoc
// @Summary      List buyers
// @Tags         buyers
// @Produce      json
// @Param        search query string false "Search name, email or company"
// @Param        page query int false "Page number" default(1)
// @Param        pageSize query int false "Page size" default(20) maximum(100)
// @Param        orderBy query string false "Sort field" default(name)
// @Param        order query string false "Sort direction" Enums(asc, desc) default(asc)
// @Success      200 {object} dto.Response{data=[]buyerapp.BuyerResponse,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /buyers [get]
func (h *BuyerHandler) List(c *gin.Context) {
	var filter buyerapp.ListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.ValidationError(c, err)
		return
	}
	page, pageSize := pageDefaults(&filter.Page, &filter.PageSize)

	buyers, total, err := h.buyerService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, buyers, total, page, pageSize)
}

// Get godoc
// @Summary      Get a buyer
// @Tags         buyers
// @Produce      json
// @Param        id path string true "Buyer ID" format(uuid)
// @Success      200 {object} dto.Response{data=buyerapp.BuyerResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /buyers/{id} [get]
func (h *BuyerHandler) Get(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	b, err := h.buyerService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, b)
}

// Create godoc
// @Summary      Create a buyer
// @Tags         buyers
// @Accept       json
// @Produce      json
// @Param        request body buyerapp.CreateBuyerRequest true "Buyer"
// @Success      201 {object} dto.Response{data=buyerapp.BuyerResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /buyers [post]
func (h *BuyerHandler) Create(c *gin.Context) {
	var req buyerapp.CreateBuyerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}
	b, err := h.buyerService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, b)
}

// Update godoc
// @Summary      Update a buyer
// @Tags         buyers
// @Accept       json
// @Produce      json
// @Param        id path string true "Buyer ID" format(uuid)
// @Param        request body buyerapp.UpdateBuyerRequest true "Changed fields"
// @Success      200 {object} dto.Response{data=buyerapp.BuyerResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /buyers/{id} [patch]
func (h *BuyerHandler) Update(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req buyerapp.UpdateBuyerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}
	b, err := h.buyerService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, b)
}

// Delete godoc
// @Summary      Delete a buyer
// @Description  Rejected with 409 while orders are still linked to the buyer
// @Tags         buyers
// @Param        id path string true "Buyer ID" format(uuid)
// @Success      204
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /buyers/{id} [delete]
func (h *BuyerHandler) Delete(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	if err := h.buyerService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
