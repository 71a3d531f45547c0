package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestBodyLimit(t *testing.T) {
	r := gin.New()
	r.Use(BodyLimit(10, 100))
	r.POST("/upload", func(c *gin.Context) {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.Status(http.StatusRequestEntityTooLarge)
			return
		}
		c.String(http.StatusOK, "%d", len(body))
	})

	tests := []struct {
		name        string
		contentType string
		body        string
		wantStatus  int
	}{
		{"json within limit", "application/json", `{"a":1}`, http.StatusOK},
		{"json over limit", "application/json", strings.Repeat("x", 11), http.StatusRequestEntityTooLarge},
		{"multipart uses upload limit", "multipart/form-data; boundary=x", strings.Repeat("x", 50), http.StatusOK},
		{"multipart over upload limit", "multipart/form-data; boundary=x", strings.Repeat("x", 101), http.StatusRequestEntityTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", tt.contentType)
			w := serve(r, req)
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestBodyLimit_ChunkedBody(t *testing.T) {
	r := gin.New()
	r.Use(BodyLimit(10, 0))
	r.POST("/upload", func(c *gin.Context) {
		_, err := io.ReadAll(c.Request.Body)
		assert.Error(t, err)
		c.Status(http.StatusRequestEntityTooLarge)
	})

	req := httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader(strings.Repeat("x", 20)))
	req.ContentLength = -1
	w := serve(r, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}
