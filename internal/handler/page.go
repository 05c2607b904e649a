package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-events-admin/internal/session"
	"github.com/noah-isme/sma-events-admin/pkg/response"
)

// pages renders page payloads with the session's pending flash messages
// attached under meta.messages.
type pages struct {
	sessions *session.Manager
	logger   *zap.Logger
}

func newPages(sessions *session.Manager, logger *zap.Logger) pages {
	if logger == nil {
		logger = zap.NewNop()
	}
	return pages{sessions: sessions, logger: logger}
}

func (p pages) render(c *gin.Context, status int, data interface{}) {
	response.JSON(c, status, data, p.meta(c))
}

func (p pages) renderError(c *gin.Context, err error) {
	response.Error(c, err, p.meta(c))
}

func (p pages) meta(c *gin.Context) map[string]interface{} {
	meta := map[string]interface{}{}
	if messages := p.sessions.PopMessages(c); len(messages) > 0 {
		meta["messages"] = messages
	}
	return meta
}

func (p pages) flash(c *gin.Context, level, text string) {
	if err := p.sessions.AddMessage(c, level, text); err != nil {
		p.logger.Warn("failed to store flash message", zap.Error(err))
	}
}

// redirect answers a completed form submission.
func (p pages) redirect(c *gin.Context, location string) {
	response.Redirect(c, http.StatusSeeOther, location)
}
