package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-events-admin/internal/session"
	"github.com/noah-isme/sma-events-admin/pkg/logger"
)

// ContextUsernameKey is the gin context key storing the logged-in organizer.
const ContextUsernameKey = logger.UsernameKey

// LoginPath is where unauthenticated page requests are sent.
const LoginPath = "/login"

// RequireAuth protects organizer pages. Requests without a logged-in session
// are redirected to the login page.
func RequireAuth(manager *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := manager.From(c)
		if !sess.Authenticated() {
			c.Header("Cache-Control", "no-store")
			c.Redirect(http.StatusFound, LoginPath)
			c.Abort()
			return
		}
		c.Set(ContextUsernameKey, sess.Data.Username)
		c.Next()
	}
}

// CurrentUsername returns the organizer set by RequireAuth.
func CurrentUsername(c *gin.Context) string {
	return c.GetString(ContextUsernameKey)
}
