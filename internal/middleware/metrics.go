package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
)

// UnmatchedRoute labels requests that hit no registered route so stray
// URLs cannot grow the metric label set.
const UnmatchedRoute = "unmatched"

// HTTPObserver receives one observation per finished request.
type HTTPObserver interface {
	ObserveHTTPRequest(method, path string, status int, duration time.Duration)
}

// Metrics reports every request to observer keyed by route pattern.
func Metrics(observer HTTPObserver) gin.HandlerFunc {
	return func(c *gin.Context) {
		if observer == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = UnmatchedRoute
		}
		observer.ObserveHTTPRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}
