package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-events-admin/internal/models"
	"github.com/noah-isme/sma-events-admin/internal/repository"
	appErrors "github.com/noah-isme/sma-events-admin/pkg/errors"
)

type organizerRepository interface {
	FindByUsername(ctx context.Context, username string) (*models.Organizer, error)
	Create(ctx context.Context, organizer *models.Organizer) error
}

type passwordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) bool
}

// AuthService handles organizer signup and login. Session handling lives
// in the HTTP layer.
type AuthService struct {
	repo        organizerRepository
	credentials passwordHasher
	validator   *validator.Validate
	logger      *zap.Logger
	metrics     *MetricsService
	now         func() time.Time
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(repo organizerRepository, credentials passwordHasher, validate *validator.Validate, logger *zap.Logger, metrics *MetricsService) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = NewValidator()
	}
	if credentials == nil {
		credentials = NewCredentialService(0)
	}
	return &AuthService{repo: repo, credentials: credentials, validator: validate, logger: logger, metrics: metrics, now: time.Now}
}

// Signup creates an organizer account.
func (s *AuthService) Signup(ctx context.Context, req models.SignupRequest) (*models.Organizer, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, validationMessage(err, "invalid signup form"))
	}

	if _, err := s.repo.FindByUsername(ctx, req.Username); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "username already exists")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check username")
	}

	hash, err := s.credentials.Hash(req.Password)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "password cannot be used")
	}

	organizer := &models.Organizer{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		CreatedAt:    s.now().UTC(),
	}
	if org := strings.TrimSpace(req.Organization); org != "" {
		organizer.Organization = &org
	}

	if err := s.repo.Create(ctx, organizer); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "username already exists")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create organizer")
	}
	s.logger.Info("organizer registered", zap.String("username", organizer.Username))
	return organizer, nil
}

// Login checks the organizer's password. Unknown users and wrong passwords
// are reported with distinct messages.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.Organizer, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, validationMessage(err, "invalid login form"))
	}

	organizer, err := s.repo.FindByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.metrics.RecordLogin(false)
			return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "User does not exist.")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch organizer")
	}

	if !s.credentials.Verify(req.Password, organizer.PasswordHash) {
		s.metrics.RecordLogin(false)
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "Invalid Password!")
	}

	s.metrics.RecordLogin(true)
	return organizer, nil
}

// resolveOrganizerID maps the session username to the organizer id. A
// session pointing at a vanished account is treated as unauthenticated.
func resolveOrganizerID(ctx context.Context, repo organizerRepository, username string) (int64, error) {
	organizer, err := repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, appErrors.Clone(appErrors.ErrUnauthorized, "organizer account not found")
		}
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch organizer")
	}
	return organizer.ID, nil
}
