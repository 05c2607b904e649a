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
	"github.com/noah-isme/sma-events-admin/pkg/response"
)

type authService interface {
	Signup(ctx context.Context, req models.SignupRequest) (*models.Organizer, error)
	Login(ctx context.Context, req models.LoginRequest) (*models.Organizer, error)
}

// AuthHandler serves the landing page and the organizer account flows.
type AuthHandler struct {
	pages
	service authService
}

// NewAuthHandler creates a new handler.
func NewAuthHandler(svc authService, sessions *session.Manager, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{pages: newPages(sessions, logger), service: svc}
}

// Home godoc
// @Summary Landing page
// @Tags Pages
// @Produce json
// @Success 200 {object} response.Envelope
// @Router / [get]
func (h *AuthHandler) Home(c *gin.Context) {
	sess := h.sessions.From(c)
	h.render(c, http.StatusOK, gin.H{
		"logged_in": sess.Authenticated(),
		"username":  sess.Data.Username,
	})
}

func (h *AuthHandler) SignupPage(c *gin.Context) {
	h.render(c, http.StatusOK, gin.H{"page": "signup"})
}

// Signup godoc
// @Summary Register organizer
// @Tags Authentication
// @Accept x-www-form-urlencoded
// @Produce json
// @Param username formData string true "Username"
// @Param organization formData string false "Organization"
// @Param email formData string true "Email"
// @Param password formData string true "Password"
// @Success 303 "Redirect to /login"
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /signup [post]
func (h *AuthHandler) Signup(c *gin.Context) {
	var req models.SignupRequest
	if err := c.ShouldBind(&req); err != nil {
		h.failForm(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid signup form"))
		return
	}

	organizer, err := h.service.Signup(c.Request.Context(), req)
	if err != nil {
		h.failForm(c, err)
		return
	}

	middleware.MarkAudit(c, models.AuditLog{
		Actor:      organizer.Username,
		Action:     models.AuditActionSignup,
		Resource:   models.AuditResourceOrganizer,
		ResourceID: int64String(organizer.ID),
	})
	h.flash(c, session.LevelSuccess, "Your account has been registered!")
	h.redirect(c, "/login")
}

func (h *AuthHandler) failForm(c *gin.Context, err error) {
	h.flash(c, session.LevelError, "An error occurred: "+appErrors.FromError(err).Message)
	h.renderError(c, err)
}

// LoginPage shows the login form, or sends logged in organizers home.
func (h *AuthHandler) LoginPage(c *gin.Context) {
	if h.sessions.From(c).Authenticated() {
		response.Redirect(c, http.StatusFound, "/")
		return
	}
	h.render(c, http.StatusOK, gin.H{"page": "login"})
}

// Login godoc
// @Summary Organizer login
// @Description Establishes a session cookie on success
// @Tags Authentication
// @Accept x-www-form-urlencoded
// @Produce json
// @Param username formData string true "Username"
// @Param password formData string true "Password"
// @Success 303 "Redirect to /"
// @Failure 401 {object} response.Envelope
// @Router /login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	if h.sessions.From(c).Authenticated() {
		response.Redirect(c, http.StatusFound, "/")
		return
	}

	var req models.LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		h.renderError(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid login form"))
		return
	}

	organizer, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		h.flash(c, session.LevelError, appErrors.FromError(err).Message)
		h.renderError(c, err)
		return
	}

	if err := h.sessions.Establish(c, organizer.Username); err != nil {
		h.logger.Error("failed to establish session", zap.String("username", organizer.Username), zap.Error(err))
		h.renderError(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to start session"))
		return
	}

	middleware.MarkAudit(c, models.AuditLog{
		Actor:    organizer.Username,
		Action:   models.AuditActionLogin,
		Resource: models.AuditResourceOrganizer,
	})
	h.flash(c, session.LevelSuccess, "Login Successful")
	h.redirect(c, "/")
}

// Logout godoc
// @Summary Organizer logout
// @Tags Authentication
// @Success 303 "Redirect to /"
// @Router /logout [get]
func (h *AuthHandler) Logout(c *gin.Context) {
	username := h.sessions.From(c).Data.Username
	if err := h.sessions.Clear(c); err != nil {
		h.logger.Warn("failed to clear session", zap.Error(err))
	}
	if username != "" {
		middleware.MarkAudit(c, models.AuditLog{
			Actor:    username,
			Action:   models.AuditActionLogout,
			Resource: models.AuditResourceOrganizer,
		})
	}
	h.flash(c, session.LevelInfo, "You have been logged out.")
	h.redirect(c, "/")
}
