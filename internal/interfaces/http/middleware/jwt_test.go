package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/exportdesk/backend/internal/infrastructure/auth"
	"github.com/exportdesk/backend/internal/infrastructure/config"
	"github.com/exportdesk/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthEngine(t *testing.T) (*gin.Engine, *auth.Verifier) {
	t.Helper()
	v, err := auth.NewVerifier(config.AuthConfig{Enabled: true, JWTSecret: "middleware-test-secret-0123456789"})
	require.NoError(t, err)

	r := gin.New()
	r.Use(RequestID(), JWTAuthMiddleware(DefaultJWTConfig(v)))
	r.GET("/api/orders", func(c *gin.Context) {
		c.String(http.StatusOK, GetJWTSubject(c))
	})
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/swagger/*any", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r, v
}

func TestJWTAuthMiddleware(t *testing.T) {
	r, v := newAuthEngine(t)

	valid, _, err := v.Issue("user-42", "ops@example.com", "authenticated", time.Hour)
	require.NoError(t, err)
	expired, _, err := v.Issue("user-42", "ops@example.com", "authenticated", -time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name       string
		path       string
		header     string
		wantStatus int
		wantCode   string
		wantBody   string
	}{
		{name: "valid token", path: "/api/orders", header: "Bearer " + valid, wantStatus: http.StatusOK, wantBody: "user-42"},
		{name: "missing header", path: "/api/orders", wantStatus: http.StatusUnauthorized, wantCode: dto.ErrCodeUnauthorized},
		{name: "wrong scheme", path: "/api/orders", header: "Basic abc", wantStatus: http.StatusUnauthorized, wantCode: dto.ErrCodeUnauthorized},
		{name: "garbage token", path: "/api/orders", header: "Bearer not-a-jwt", wantStatus: http.StatusUnauthorized, wantCode: dto.ErrCodeUnauthorized},
		{name: "expired token", path: "/api/orders", header: "Bearer " + expired, wantStatus: http.StatusUnauthorized, wantCode: dto.ErrCodeTokenExpired},
		{name: "health is open", path: "/health", wantStatus: http.StatusOK},
		{name: "swagger is open", path: "/swagger/index.html", wantStatus: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set(AuthHeaderKey, tt.header)
			}
			w := serve(r, req)

			require.Equal(t, tt.wantStatus, w.Code)
			if tt.wantCode != "" {
				var resp dto.Response
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
				assert.Equal(t, tt.wantCode, resp.Error.Code)
				assert.NotEmpty(t, resp.Error.RequestID)
			}
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, w.Body.String())
			}
		})
	}
}
