package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-events-admin/internal/middleware"
	"github.com/noah-isme/sma-events-admin/internal/models"
	"github.com/noah-isme/sma-events-admin/internal/session"
	appErrors "github.com/noah-isme/sma-events-admin/pkg/errors"
)

type studentService interface {
	Register(ctx context.Context, req models.StudentRegisterRequest) (*models.Student, error)
}

// StudentHandler serves public student self-registration.
type StudentHandler struct {
	pages
	students studentService
}

func NewStudentHandler(students studentService, sessions *session.Manager, logger *zap.Logger) *StudentHandler {
	return &StudentHandler{pages: newPages(sessions, logger), students: students}
}

func (h *StudentHandler) RegisterPage(c *gin.Context) {
	h.render(c, http.StatusOK, gin.H{"page": "student_register"})
}

// Register godoc
// @Summary Student self-registration
// @Tags Students
// @Accept x-www-form-urlencoded
// @Produce json
// @Param first_name formData string true "First name"
// @Param last_name formData string true "Last name"
// @Param dob formData string true "Date of birth (YYYY-MM-DD)"
// @Param student_id formData string true "Student ID"
// @Param password formData string true "Password"
// @Param email formData string true "Email"
// @Param class_level formData int false "Class level"
// @Success 303 "Redirect to /adminpage"
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /student_register [post]
func (h *StudentHandler) Register(c *gin.Context) {
	var req models.StudentRegisterRequest
	if err := c.ShouldBind(&req); err != nil {
		h.renderError(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid registration form"))
		return
	}

	student, err := h.students.Register(c.Request.Context(), req)
	if err != nil {
		h.flash(c, session.LevelError, appErrors.FromError(err).Message)
		h.renderError(c, err)
		return
	}

	middleware.MarkAudit(c, models.AuditLog{
		Actor:      student.StudentID,
		Action:     models.AuditActionRegister,
		Resource:   models.AuditResourceStudent,
		ResourceID: int64String(student.ID),
	})
	h.flash(c, session.LevelSuccess, "Student registered successfully!")
	h.redirect(c, adminPagePath)
}
