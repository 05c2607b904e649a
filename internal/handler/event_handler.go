package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-events-admin/internal/middleware"
	"github.com/noah-isme/sma-events-admin/internal/models"
	"github.com/noah-isme/sma-events-admin/internal/session"
	appErrors "github.com/noah-isme/sma-events-admin/pkg/errors"
)

// EventHandler serves the create and edit event forms.
type EventHandler struct {
	pages
	events eventService
}

func NewEventHandler(events eventService, sessions *session.Manager, logger *zap.Logger) *EventHandler {
	return &EventHandler{pages: newPages(sessions, logger), events: events}
}

func (h *EventHandler) CreatePage(c *gin.Context) {
	h.render(c, http.StatusOK, gin.H{
		"class_list": models.ClassList,
		"username":   middleware.CurrentUsername(c),
	})
}

// Create godoc
// @Summary Create an event
// @Tags Events
// @Accept x-www-form-urlencoded
// @Produce json
// @Param event formData string true "Title"
// @Param start_date formData string true "YYYY-MM-DD"
// @Param end_date formData string true "YYYY-MM-DD"
// @Param type formData string false "Event type (default Program)"
// @Param start_time formData string false "HH:MM"
// @Param end_time formData string false "HH:MM"
// @Param available formData int false "Available seats"
// @Param Money formData int false "Price"
// @Param venue formData string false "Venue (default TBD)"
// @Param for_class formData []string false "Target classes" collectionFormat(multi)
// @Param description formData string false "Description"
// @Success 303 "Redirect to /adminpage"
// @Failure 400 {object} response.Envelope
// @Router /createEvent [post]
func (h *EventHandler) Create(c *gin.Context) {
	var req models.EventRequest
	if err := c.ShouldBind(&req); err != nil {
		h.renderError(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid event form"))
		return
	}

	event, err := h.events.Create(c.Request.Context(), middleware.CurrentUsername(c), req)
	if err != nil {
		h.renderError(c, err)
		return
	}

	middleware.MarkAudit(c, models.AuditLog{
		Action:     models.AuditActionCreate,
		Resource:   models.AuditResourceEvent,
		ResourceID: int64String(event.ID),
		Detail:     event.Title,
	})
	h.redirect(c, adminPagePath)
}

// EditPage returns the owned event for prefilling the edit form.
func (h *EventHandler) EditPage(c *gin.Context) {
	id, err := eventIDParam(c)
	if err != nil {
		h.renderError(c, err)
		return
	}
	event, err := h.events.Get(c.Request.Context(), middleware.CurrentUsername(c), id)
	if err != nil {
		h.renderError(c, err)
		return
	}
	h.render(c, http.StatusOK, gin.H{
		"event":      event,
		"class_list": models.ClassList,
		"username":   middleware.CurrentUsername(c),
	})
}

// Edit godoc
// @Summary Update an event
// @Description Accepts the same fields as createEvent
// @Tags Events
// @Accept x-www-form-urlencoded
// @Param event_id path int true "Event ID"
// @Success 303 "Redirect to /adminpage"
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /editEvent/{event_id} [post]
func (h *EventHandler) Edit(c *gin.Context) {
	id, err := eventIDParam(c)
	if err != nil {
		h.renderError(c, err)
		return
	}
	var req models.EventRequest
	if err := c.ShouldBind(&req); err != nil {
		h.renderError(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid event form"))
		return
	}

	if _, err := h.events.Update(c.Request.Context(), middleware.CurrentUsername(c), id, req); err != nil {
		h.renderError(c, err)
		return
	}

	middleware.MarkAudit(c, models.AuditLog{
		Action:     models.AuditActionUpdate,
		Resource:   models.AuditResourceEvent,
		ResourceID: int64String(id),
	})
	h.redirect(c, adminPagePath)
}
