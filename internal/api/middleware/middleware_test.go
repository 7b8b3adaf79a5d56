package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func adminRouter(token string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.DELETE("/admin", AdminAuth(token), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return router
}

func doAdmin(router *gin.Engine, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodDelete, "/admin", nil)
	if header != "" {
		req.Header.Set("X-Admin-Token", header)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAdminAuthAcceptsConfiguredToken(t *testing.T) {
	router := adminRouter("s3cret")
	assert.Equal(t, http.StatusOK, doAdmin(router, "s3cret").Code)
}

func TestAdminAuthRejectsWrongToken(t *testing.T) {
	router := adminRouter("s3cret")
	assert.Equal(t, http.StatusUnauthorized, doAdmin(router, "wrong").Code)
	assert.Equal(t, http.StatusUnauthorized, doAdmin(router, "").Code)
}

func TestAdminAuthDisabledWithoutToken(t *testing.T) {
	router := adminRouter("")
	assert.Equal(t, http.StatusForbidden, doAdmin(router, "anything").Code)
}

func TestRequestIDIsEchoedAndGenerated(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestID())
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}
