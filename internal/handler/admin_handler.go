package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-events-admin/internal/middleware"
	"github.com/noah-isme/sma-events-admin/internal/models"
	"github.com/noah-isme/sma-events-admin/internal/service"
	"github.com/noah-isme/sma-events-admin/internal/session"
	appErrors "github.com/noah-isme/sma-events-admin/pkg/errors"
)

const adminPagePath = "/adminpage"

// multipartSlack leaves room for the multipart envelope around excel_file.
const multipartSlack = 64 << 10

type eventService interface {
	List(ctx context.Context, username string, filter models.EventFilter) ([]models.EventWithCount, error)
	Get(ctx context.Context, username string, id int64) (*models.Event, error)
	Create(ctx context.Context, username string, req models.EventRequest) (*models.Event, error)
	Update(ctx context.Context, username string, id int64, req models.EventRequest) (*models.Event, error)
	Delete(ctx context.Context, username string, id int64) error
}

type importService interface {
	Import(ctx context.Context, filename string, r io.Reader) (*models.ImportResult, error)
}

type exportService interface {
	ExportEvents(ctx context.Context, username string, filter models.EventFilter, format string) (*service.ExportFile, error)
}

type bookingService interface {
	Book(ctx context.Context, username string, eventID int64, req models.BookingRequest) (*models.Booking, error)
}

// AdminHandler serves the organizer dashboard.
type AdminHandler struct {
	pages
	events    eventService
	imports   importService
	exports   exportService
	bookings  bookingService
	maxUpload int64
}

// NewAdminHandler wires the dashboard. maxUpload caps excel_file uploads in
// bytes; zero disables the check.
func NewAdminHandler(events eventService, imports importService, exports exportService, bookings bookingService, sessions *session.Manager, maxUpload int64, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		pages:     newPages(sessions, logger),
		events:    events,
		imports:   imports,
		exports:   exports,
		bookings:  bookings,
		maxUpload: maxUpload,
	}
}

// Dashboard godoc
// @Summary List the organizer's events
// @Description Events with their booking counts, optionally filtered by class
// @Tags Admin
// @Produce json
// @Param for_class query string false "Case-insensitive class substring"
// @Param academic query string false "Academic year (not supported)"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /adminpage [get]
func (h *AdminHandler) Dashboard(c *gin.Context) {
	username := middleware.CurrentUsername(c)

	var filter models.EventFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.renderError(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid filters"))
		return
	}

	events, err := h.events.List(c.Request.Context(), username, filter)
	if err != nil {
		h.renderError(c, err)
		return
	}

	h.render(c, http.StatusOK, gin.H{
		"items":          events,
		"class_list":     models.ClassList,
		"query_class":    filter.ForClass,
		"query_academic": filter.AcademicYear,
		"username":       username,
	})
}

// Action godoc
// @Summary Dashboard actions
// @Description Delete an owned event with Delete_Event, or upload a student sheet as excel_file
// @Tags Admin
// @Accept multipart/form-data
// @Param Delete_Event formData int false "Event to delete"
// @Param excel_file formData file false "Student sheet (.xlsx or .csv)"
// @Success 303 "Redirect to /adminpage"
// @Failure 404 {object} response.Envelope
// @Router /adminpage [post]
func (h *AdminHandler) Action(c *gin.Context) {
	if !h.limitBody(c) {
		h.uploadFailed(c, h.tooLarge())
		return
	}
	if raw := c.PostForm("Delete_Event"); raw != "" {
		h.deleteEvent(c, raw)
		return
	}
	file, err := c.FormFile("excel_file")
	if err == nil {
		h.importStudents(c, file)
		return
	}
	var maxBytes *http.MaxBytesError
	if errors.As(err, &maxBytes) {
		h.uploadFailed(c, h.tooLarge())
		return
	}
	h.renderError(c, appErrors.Clone(appErrors.ErrValidation, "expected Delete_Event or excel_file"))
}

// limitBody caps the request body before gin parses the form. It reports
// false when the declared length is already over the cap.
func (h *AdminHandler) limitBody(c *gin.Context) bool {
	if h.maxUpload <= 0 {
		return true
	}
	limit := h.maxUpload + multipartSlack
	if c.Request.ContentLength > limit {
		return false
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
	return true
}

func (h *AdminHandler) tooLarge() error {
	return appErrors.Clone(appErrors.ErrImportFailed, fmt.Sprintf("file exceeds %d bytes", h.maxUpload))
}

func (h *AdminHandler) uploadFailed(c *gin.Context, err error) {
	h.flash(c, session.LevelError, "Error uploading file: "+appErrors.FromError(err).Message)
	h.redirect(c, adminPagePath)
}

func (h *AdminHandler) deleteEvent(c *gin.Context, raw string) {
	id, err := parseEventID(raw)
	if err != nil {
		h.renderError(c, err)
		return
	}
	if err := h.events.Delete(c.Request.Context(), middleware.CurrentUsername(c), id); err != nil {
		h.renderError(c, err)
		return
	}
	middleware.MarkAudit(c, models.AuditLog{
		Action:     models.AuditActionDelete,
		Resource:   models.AuditResourceEvent,
		ResourceID: int64String(id),
	})
	h.redirect(c, adminPagePath)
}

// importStudents always returns to the dashboard; the outcome is reported
// as a flash message. Rows stored before a failing row are still audited.
func (h *AdminHandler) importStudents(c *gin.Context, header *multipart.FileHeader) {
	result, err := h.runImport(c, header)
	if err != nil {
		if result != nil && result.Imported > 0 {
			middleware.MarkAudit(c, models.AuditLog{
				Action:   models.AuditActionImport,
				Resource: models.AuditResourceStudent,
				Detail:   fmt.Sprintf("imported %d students from %s before: %s", result.Imported, header.Filename, appErrors.FromError(err).Message),
			})
		}
		h.uploadFailed(c, err)
		return
	}

	middleware.MarkAudit(c, models.AuditLog{
		Action:   models.AuditActionImport,
		Resource: models.AuditResourceStudent,
		Detail:   fmt.Sprintf("imported %d students from %s", result.Imported, header.Filename),
	})
	h.flash(c, session.LevelSuccess, "Excel file uploaded successfully!")
	h.redirect(c, adminPagePath)
}

func (h *AdminHandler) runImport(c *gin.Context, header *multipart.FileHeader) (*models.ImportResult, error) {
	if h.maxUpload > 0 && header.Size > h.maxUpload {
		return nil, h.tooLarge()
	}
	file, err := header.Open()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrImportFailed.Code, appErrors.ErrImportFailed.Status, "could not read upload")
	}
	defer file.Close() //nolint:errcheck

	return h.imports.Import(c.Request.Context(), header.Filename, file)
}

// Export godoc
// @Summary Download the event listing
// @Tags Admin
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv (default) or pdf"
// @Param for_class query string false "Case-insensitive class substring"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /adminpage/export [get]
func (h *AdminHandler) Export(c *gin.Context) {
	var filter models.EventFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.renderError(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid filters"))
		return
	}

	file, err := h.exports.ExportEvents(c.Request.Context(), middleware.CurrentUsername(c), filter, c.Query("format"))
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, file.ContentType, file.Body)
}

// Book godoc
// @Summary Book a student onto an event
// @Tags Admin
// @Accept x-www-form-urlencoded
// @Accept json
// @Produce json
// @Param event_id path int true "Event ID"
// @Param student_id formData int true "Student primary key"
// @Success 201 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /adminpage/events/{event_id}/bookings [post]
func (h *AdminHandler) Book(c *gin.Context) {
	eventID, err := eventIDParam(c)
	if err != nil {
		h.renderError(c, err)
		return
	}
	var req models.BookingRequest
	if err := c.ShouldBind(&req); err != nil {
		h.renderError(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "student_id must be a number"))
		return
	}

	booking, err := h.bookings.Book(c.Request.Context(), middleware.CurrentUsername(c), eventID, req)
	if err != nil {
		h.renderError(c, err)
		return
	}

	middleware.MarkAudit(c, models.AuditLog{
		Action:     models.AuditActionBook,
		Resource:   models.AuditResourceBooking,
		ResourceID: int64String(booking.ID),
		Detail:     fmt.Sprintf("student %d on event %d", booking.StudentID, booking.EventID),
	})
	h.render(c, http.StatusCreated, booking)
}
