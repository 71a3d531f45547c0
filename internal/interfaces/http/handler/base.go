package handler

import (
	"errors"
	"net/http"

	notificationapp "github.com/exportdesk/backend/internal/application/notification"
	"github.com/exportdesk/backend/internal/domain/catalog"
	"github.com/exportdesk/backend/internal/domain/commerce"
	"github.com/exportdesk/backend/internal/domain/shared"
	"github.com/exportdesk/backend/internal/infrastructure/logger"
	"github.com/exportdesk/backend/internal/infrastructure/mail"
	"github.com/exportdesk/backend/internal/interfaces/http/dto"
	"github.com/exportdesk/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

func getRequestID(c *gin.Context) string {
	if id := c.GetString(middleware.RequestIDKey); id != "" {
		return id
	}
	return c.GetHeader(middleware.RequestIDHeader)
}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMeta sends a success response with pagination meta
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data any, total int64, page, pageSize int) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, total, page, pageSize))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// NoContent sends a 204 no content response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error sends an error response with the given status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, getRequestID(c)))
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// ValidationError answers a failed bind. Validator errors are listed per field.
func (h *BaseHandler) ValidationError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, middleware.FormatValidationErrors(err, getRequestID(c)))
}

// ParseID reads a uuid path parameter. On failure the 400 is already written.
func (h *BaseHandler) ParseID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		h.BadRequest(c, "Invalid "+name+" format")
		return uuid.Nil, false
	}
	return id, true
}

// HandleError converts an error returned by the application layer into a response.
// Unknown errors answer 500 with a generic message and go to the request log.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	status, code, message := h.resolveError(c, err)
	h.Error(c, status, code, message)
}

// HandleErrorWithData writes the error envelope and still carries data,
// for operations that fail after producing a partial result.
func (h *BaseHandler) HandleErrorWithData(c *gin.Context, err error, data any) {
	status, code, message := h.resolveError(c, err)
	resp := dto.NewErrorResponseWithRequestID(code, message, getRequestID(c))
	resp.Data = data
	c.JSON(status, resp)
}

func (h *BaseHandler) resolveError(c *gin.Context, err error) (int, string, string) {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		return dto.GetHTTPStatus(domainErr.Code), domainErr.Code, domainErr.Message
	}

	switch {
	case errors.Is(err, commerce.ErrMissingCredentials):
		return http.StatusServiceUnavailable, dto.ErrCodeUnavailable, "Commerce store credentials are not configured"
	case errors.Is(err, mail.ErrMailNotConfigured):
		return http.StatusServiceUnavailable, dto.ErrCodeUnavailable, "Outgoing mail is not configured"
	case errors.Is(err, catalog.ErrStorageNotConfigured):
		return http.StatusServiceUnavailable, dto.ErrCodeUnavailable, "Object storage is not configured"
	case isUpstream(err):
		h.logError(c, err)
		return http.StatusBadGateway, dto.ErrCodeUpstream, err.Error()
	}

	h.logError(c, err)
	return http.StatusInternalServerError, dto.ErrCodeInternal, "An unexpected error occurred"
}

func (h *BaseHandler) logError(c *gin.Context, err error) {
	_ = c.Error(err)
	logger.FromContext(c.Request.Context(), zap.L()).Error("Request failed", zap.Error(err))
}

func isUpstream(err error) bool {
	return errors.Is(err, commerce.ErrRateLimited) ||
		errors.Is(err, commerce.ErrRequestFailed) ||
		errors.Is(err, commerce.ErrInvalidResponse) ||
		errors.Is(err, commerce.ErrUnauthorized) ||
		errors.Is(err, notificationapp.ErrSendFailed)
}
