package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-events-admin/internal/models"
)

const auditEntryKey = "auditEntry"

// AuditRecorder receives audit entries for persistence.
type AuditRecorder interface {
	Record(ctx context.Context, entry models.AuditLog)
}

// MarkAudit attaches an entry to the request. It is recorded once the
// handler finishes with a non-error status.
func MarkAudit(c *gin.Context, entry models.AuditLog) {
	c.Set(auditEntryKey, entry)
}

// Audit records the entry marked by the handler after successful requests.
func Audit(recorder AuditRecorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if recorder == nil || c.Writer.Status() >= 400 {
			return
		}
		value, ok := c.Get(auditEntryKey)
		if !ok {
			return
		}
		entry, ok := value.(models.AuditLog)
		if !ok {
			return
		}

		if entry.Actor == "" {
			entry.Actor = CurrentUsername(c)
		}
		entry.IPAddress = c.ClientIP()
		entry.UserAgent = c.GetHeader("User-Agent")

		recorder.Record(c.Request.Context(), entry)
	}
}
