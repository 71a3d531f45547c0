package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	notificationapp "github.com/exportdesk/backend/internal/application/notification"
	"github.com/exportdesk/backend/internal/domain/catalog"
	"github.com/exportdesk/backend/internal/domain/commerce"
	"github.com/exportdesk/backend/internal/domain/shared"
	"github.com/exportdesk/backend/internal/infrastructure/mail"
	"github.com/exportdesk/backend/internal/interfaces/http/dto"
	"github.com/exportdesk/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestContext(method, target string) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, target, nil)
	return c, w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestGetRequestID(t *testing.T) {
	t.Run("context wins over header", func(t *testing.T) {
		c, _ := newTestContext(http.MethodGet, "/")
		c.Set(middleware.RequestIDKey, "ctx-id")
		c.Request.Header.Set(middleware.RequestIDHeader, "header-id")
		assert.Equal(t, "ctx-id", getRequestID(c))
	})
	t.Run("falls back to header", func(t *testing.T) {
		c, _ := newTestContext(http.MethodGet, "/")
		c.Request.Header.Set(middleware.RequestIDHeader, "header-id")
		assert.Equal(t, "header-id", getRequestID(c))
	})
	t.Run("empty when absent", func(t *testing.T) {
		c, _ := newTestContext(http.MethodGet, "/")
		assert.Empty(t, getRequestID(c))
	})
}

func TestHandleError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantCode    string
		wantMessage string
		wantLogged  bool
	}{
		{
			name:        "not found",
			err:         shared.NewDomainError("NOT_FOUND", "Order not found"),
			wantStatus:  http.StatusNotFound,
			wantCode:    "NOT_FOUND",
			wantMessage: "Order not found",
		},
		{
			name:        "linked orders",
			err:         fmt.Errorf("delete block: %w", shared.NewDomainError("HAS_LINKED_ORDERS", "Block has 2 orders")),
			wantStatus:  http.StatusConflict,
			wantCode:    "HAS_LINKED_ORDERS",
			wantMessage: "Block has 2 orders",
		},
		{
			name:        "overpayment",
			err:         shared.NewDomainError("OVERPAYMENT", "Amount exceeds balance"),
			wantStatus:  http.StatusUnprocessableEntity,
			wantCode:    "OVERPAYMENT",
			wantMessage: "Amount exceeds balance",
		},
		{
			name:        "invalid prefix",
			err:         shared.NewDomainError("INVALID_AMOUNT", "Amount must be positive"),
			wantStatus:  http.StatusBadRequest,
			wantCode:    "INVALID_AMOUNT",
			wantMessage: "Amount must be positive",
		},
		{
			name:       "missing store credentials",
			err:        fmt.Errorf("sync: %w", commerce.ErrMissingCredentials),
			wantStatus: http.StatusServiceUnavailable,
			wantCode:   dto.ErrCodeUnavailable,
		},
		{
			name:       "mail not configured",
			err:        mail.ErrMailNotConfigured,
			wantStatus: http.StatusServiceUnavailable,
			wantCode:   dto.ErrCodeUnavailable,
		},
		{
			name:       "storage not configured",
			err:        catalog.ErrStorageNotConfigured,
			wantStatus: http.StatusServiceUnavailable,
			wantCode:   dto.ErrCodeUnavailable,
		},
		{
			name:       "store rate limited",
			err:        fmt.Errorf("fetch products: %w", commerce.ErrRateLimited),
			wantStatus: http.StatusBadGateway,
			wantCode:   dto.ErrCodeUpstream,
			wantLogged: true,
		},
		{
			name:       "mail delivery failed",
			err:        fmt.Errorf("%w: connection refused", notificationapp.ErrSendFailed),
			wantStatus: http.StatusBadGateway,
			wantCode:   dto.ErrCodeUpstream,
			wantLogged: true,
		},
		{
			name:        "unknown error hides details",
			err:         errors.New("pq: relation does not exist"),
			wantStatus:  http.StatusInternalServerError,
			wantCode:    dto.ErrCodeInternal,
			wantMessage: "An unexpected error occurred",
			wantLogged:  true,
		},
	}

	h := &BaseHandler{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := newTestContext(http.MethodGet, "/")
			c.Set(middleware.RequestIDKey, "req-1")

			h.HandleError(c, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			resp := decode(t, w)
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
			assert.Equal(t, "req-1", resp.Error.RequestID)
			if tt.wantMessage != "" {
				assert.Equal(t, tt.wantMessage, resp.Error.Message)
			}
			assert.Equal(t, tt.wantLogged, len(c.Errors) > 0)
		})
	}
}

func TestHandleError_NilWritesNothing(t *testing.T) {
	c, w := newTestContext(http.MethodGet, "/")
	(&BaseHandler{}).HandleError(c, nil)
	assert.False(t, c.Writer.Written())
	assert.Empty(t, w.Body.String())
}

func TestHandleErrorWithData(t *testing.T) {
	c, w := newTestContext(http.MethodPost, "/")
	summary := map[string]int{"created": 3, "failed": 1}

	(&BaseHandler{}).HandleErrorWithData(c, fmt.Errorf("page 2: %w", commerce.ErrRequestFailed), summary)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	resp := decode(t, w)
	assert.Equal(t, dto.ErrCodeUpstream, resp.Error.Code)
	assert.Equal(t, map[string]any{"created": float64(3), "failed": float64(1)}, resp.Data)
}

func TestParseID(t *testing.T) {
	id := uuid.New()

	t.Run("valid", func(t *testing.T) {
		c, w := newTestContext(http.MethodGet, "/")
		c.Params = gin.Params{{Key: "id", Value: id.String()}}
		got, ok := (&BaseHandler{}).ParseID(c, "id")
		assert.True(t, ok)
		assert.Equal(t, id, got)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("invalid writes 400", func(t *testing.T) {
		c, w := newTestContext(http.MethodGet, "/")
		c.Params = gin.Params{{Key: "id", Value: "42"}}
		_, ok := (&BaseHandler{}).ParseID(c, "id")
		assert.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrCodeBadRequest, decode(t, w).Error.Code)
	})
}

func TestSuccessWithMeta(t *testing.T) {
	c, w := newTestContext(http.MethodGet, "/")
	(&BaseHandler{}).SuccessWithMeta(c, []string{"a", "b"}, 41, 2, 20)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	assert.True(t, resp.Success)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, dto.Meta{Total: 41, Page: 2, PageSize: 20, TotalPages: 3}, *resp.Meta)
}
