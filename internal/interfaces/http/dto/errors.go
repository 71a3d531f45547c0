package dto

import (
	"net/http"
	"strings"
)

// Transport error codes. Domain errors keep their own codes
// (NOT_FOUND, HAS_LINKED_ORDERS, ...) in responses.
const (
	ErrCodeInternal        = "ERR_INTERNAL"
	ErrCodeValidation      = "ERR_VALIDATION"
	ErrCodeBadRequest      = "ERR_BAD_REQUEST"
	ErrCodeUnauthorized    = "ERR_UNAUTHORIZED"
	ErrCodeTokenExpired    = "ERR_TOKEN_EXPIRED"
	ErrCodeRateLimited     = "ERR_RATE_LIMITED"
	ErrCodeRequestTooLarge = "ERR_REQUEST_TOO_LARGE"
	ErrCodeTimeout         = "ERR_TIMEOUT"
	ErrCodeUnavailable     = "ERR_SERVICE_UNAVAILABLE"
	ErrCodeUpstream        = "ERR_UPSTREAM"
)

var statusByCode = map[string]int{
	ErrCodeInternal:        http.StatusInternalServerError,
	ErrCodeValidation:      http.StatusBadRequest,
	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeUnauthorized:    http.StatusUnauthorized,
	ErrCodeTokenExpired:    http.StatusUnauthorized,
	ErrCodeRateLimited:     http.StatusTooManyRequests,
	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,
	ErrCodeTimeout:         http.StatusGatewayTimeout,
	ErrCodeUnavailable:     http.StatusServiceUnavailable,
	ErrCodeUpstream:        http.StatusBadGateway,

	"NOT_FOUND":              http.StatusNotFound,
	"ALREADY_EXISTS":         http.StatusConflict,
	"HAS_LINKED_ORDERS":      http.StatusConflict,
	"CONFLICT":               http.StatusConflict,
	"CONCURRENCY_CONFLICT":   http.StatusConflict,
	"OVERPAYMENT":            http.StatusUnprocessableEntity,
	"INSTALLMENTS_EXHAUSTED": http.StatusUnprocessableEntity,
	"DEPOSIT_REQUIRED":       http.StatusUnprocessableEntity,
	"INVALID_STATE":          http.StatusUnprocessableEntity,
	"INVALID_STATUS":         http.StatusUnprocessableEntity,
	"IMAGE_TOO_LARGE":        http.StatusRequestEntityTooLarge,
	"INVALID_CONTENT_TYPE":   http.StatusUnsupportedMediaType,
}

// GetHTTPStatus maps an error code to its HTTP status.
// Unlisted INVALID_* codes are input errors; anything else is a 500.
func GetHTTPStatus(code string) int {
	if status, ok := statusByCode[code]; ok {
		return status
	}
	if strings.HasPrefix(code, "INVALID_") {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
