package middleware

import (
	"net/http"
	"net/http/httptest"
	"runtime/pprof"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestResourceFromRoute(t *testing.T) {
	tests := map[string]string{
		"/api/orders":               "orders",
		"/api/orders/:id/payments":  "orders",
		"/api/email-templates/:key": "email-templates",
		"/api/db-setup":             "db-setup",
		"/health":                   "health",
		"":                          "",
	}
	for route, want := range tests {
		assert.Equal(t, want, resourceFromRoute(route), route)
	}
}

func TestProfiling_LabelsRequestContext(t *testing.T) {
	var got string
	r := gin.New()
	r.Use(Profiling(true))
	r.GET("/api/blocks/:id", func(c *gin.Context) {
		got, _ = pprof.Label(c.Request.Context(), "resource")
		c.Status(http.StatusOK)
	})

	serve(r, httptest.NewRequest(http.MethodGet, "/api/blocks/1", nil))
	assert.Equal(t, "blocks", got)
}

func TestProfiling_DisabledAddsNoLabels(t *testing.T) {
	var ok bool
	r := gin.New()
	r.Use(Profiling(false))
	r.GET("/api/blocks", func(c *gin.Context) {
		_, ok = pprof.Label(c.Request.Context(), "resource")
	})

	serve(r, httptest.NewRequest(http.MethodGet, "/api/blocks", nil))
	assert.False(t, ok)
}
