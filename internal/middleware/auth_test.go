package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-events-admin/internal/session"
)

func newAuthRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	manager := session.NewManager(session.NewMemoryStore(), session.Config{CookieName: "sid", Secret: "s3cret", TTL: time.Hour}, nil)

	r := gin.New()
	r.Use(manager.Middleware())
	r.POST("/login", func(c *gin.Context) {
		_ = manager.Establish(c, "alice")
		c.Status(http.StatusNoContent)
	})
	r.GET("/adminpage", RequireAuth(manager), func(c *gin.Context) {
		c.String(http.StatusOK, CurrentUsername(c))
	})
	return r
}

func TestRequireAuthRedirectsAnonymous(t *testing.T) {
	r := newAuthRouter()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/adminpage", nil))

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, LoginPath, w.Header().Get("Location"))
	assert.NotContains(t, w.Body.String(), "alice")
}

func TestRequireAuthSetsUsername(t *testing.T) {
	r := newAuthRouter()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login", nil))
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)

	req := httptest.NewRequest(http.MethodGet, "/adminpage", nil)
	req.AddCookie(cookies[len(cookies)-1])
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "alice", w.Body.String())
}

func TestRequireAuthRejectsTamperedCookie(t *testing.T) {
	r := newAuthRouter()

	req := httptest.NewRequest(http.MethodGet, "/adminpage", nil)
	req.AddCookie(&http.Cookie{Name: "sid", Value: "forged"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusFound, w.Code)
}
