package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/sma-events-admin/pkg/errors"
)

// eventIDParam reads the :event_id path segment. Unparseable ids are
// reported as missing events.
func eventIDParam(c *gin.Context) (int64, error) {
	return parseEventID(c.Param("event_id"))
}

func parseEventID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, appErrors.Clone(appErrors.ErrNotFound, "event not found")
	}
	return id, nil
}

func int64String(v int64) string {
	return strconv.FormatInt(v, 10)
}
