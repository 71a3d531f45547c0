package handler

import (
	notificationapp "github.com/exportdesk/backend/internal/application/notification"
	"github.com/gin-gonic/gin"
)

// EmailTemplateHandler manages the templates used for buyer emails
type EmailTemplateHandler struct {
	BaseHandler
	notificationService *notificationapp.NotificationService
}

// NewEmailTemplateHandler creates a new EmailTemplateHandler
func NewEmailTemplateHandler(notificationService *notificationapp.NotificationService) *EmailTemplateHandler {
	return &EmailTemplateHandler{notificationService: notificationService}
}

// List godoc
// @Summary      List email templates
// @Tags         email-templates
// @Produce      json
// @Success      200 {object} dto.Response{data=[]notificationapp.TemplateResponse}
// @Security     BearerAuth
// @Router       /email-templates [get]
func (h *EmailTemplateHandler) List(c *gin.Context) {
	templates, err := h.notificationService.ListTemplates(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, templates)
}

// Get godoc
// @Summary      Get an email template
// @Tags         email-templates
// @Produce      json
// @Param        key path string true "Template key" example(payment_received)
// @Success      200 {object} dto.Response{data=notificationapp.TemplateResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /email-templates/{key} [get]
func (h *EmailTemplateHandler) Get(c *gin.Context) {
	t, err := h.notificationService.GetTemplate(c.Request.Context(), c.Param("key"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, t)
}

// Upsert godoc
// @Summary      Create or replace an email template
// @Description  Answers 201 when the key is new and 200 when an existing template was replaced
// @Tags         email-templates
// @Accept       json
// @Produce      json
// @Param        key path string true "Template key" example(payment_received)
// @Param        request body notificationapp.UpsertTemplateRequest true "Subject and body"
// @Success      200 {object} dto.Response{data=notificationapp.TemplateResponse}
// @Success      201 {object} dto.Response{data=notificationapp.TemplateResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /email-templates/{key} [put]
func (h *EmailTemplateHandler) Upsert(c *gin.Context) {
	var req notificationapp.UpsertTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}
	t, created, err := h.notificationService.UpsertTemplate(c.Request.Context(), c.Param("key"), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if created {
		h.Created(c, t)
		return
	}
	h.Success(c, t)
}
