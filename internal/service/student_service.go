package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-events-admin/internal/models"
	"github.com/noah-isme/sma-events-admin/internal/repository"
	appErrors "github.com/noah-isme/sma-events-admin/pkg/errors"
)

type studentRepository interface {
	Create(ctx context.Context, exec sqlx.ExtContext, student *models.Student) error
	FindByID(ctx context.Context, exec sqlx.ExtContext, id int64) (*models.Student, error)
	ConflictingField(ctx context.Context, exec sqlx.ExtContext, studentID, email string) (string, error)
}

// StudentService handles student self-registration.
type StudentService struct {
	repo        studentRepository
	credentials passwordHasher
	validator   *validator.Validate
	logger      *zap.Logger
	metrics     *MetricsService
	now         func() time.Time
}

// NewStudentService constructs the service.
func NewStudentService(repo studentRepository, credentials passwordHasher, validate *validator.Validate, logger *zap.Logger, metrics *MetricsService) *StudentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = NewValidator()
	}
	if credentials == nil {
		credentials = NewCredentialService(0)
	}
	return &StudentService{repo: repo, credentials: credentials, validator: validate, logger: logger, metrics: metrics, now: time.Now}
}

// Register validates the form and stores a new student with a hashed password.
func (s *StudentService) Register(ctx context.Context, req models.StudentRegisterRequest) (*models.Student, error) {
	req.StudentID = strings.TrimSpace(req.StudentID)
	req.Email = strings.TrimSpace(req.Email)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, validationMessage(err, "invalid registration form"))
	}

	dob, err := time.Parse(dateLayout, strings.TrimSpace(req.DateOfBirth))
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "dob must be a date in YYYY-MM-DD format")
	}
	classLevel, err := parseClassLevel(req.ClassLevel)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "class_level must be a whole number")
	}

	field, err := s.repo.ConflictingField(ctx, nil, req.StudentID, req.Email)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check student")
	}
	if field != "" {
		return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("a student with this %s already exists", field))
	}

	hash, err := s.credentials.Hash(req.Password)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "password cannot be used")
	}

	student := &models.Student{
		FirstName:    strings.TrimSpace(req.FirstName),
		MiddleName:   strings.TrimSpace(req.MiddleName),
		LastName:     strings.TrimSpace(req.LastName),
		DateOfBirth:  &dob,
		StudentID:    req.StudentID,
		PasswordHash: hash,
		Street:       req.Street,
		City:         req.City,
		Province:     req.Province,
		District:     req.District,
		Zip:          req.Zip,
		Email:        req.Email,
		Phone:        req.Phone,
		ClassLevel:   classLevel,
		Faculty:      req.Faculty,
		Comments:     req.Comments,
		CreatedAt:    s.now().UTC(),
	}

	if err := s.repo.Create(ctx, nil, student); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "a student with this student_id or email already exists")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to register student")
	}
	s.metrics.RecordStudentsCreated("register", 1)
	return student, nil
}

// parseClassLevel accepts an empty value as "no class". Spreadsheet numbers
// such as "7.0" are truncated to their integer part. Values outside the
// INT column range are rejected.
func parseClassLevel(raw string) (*int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f > math.MaxInt32 || f < math.MinInt32 {
		return nil, fmt.Errorf("invalid class_level %q", raw)
	}
	n := int(f)
	return &n, nil
}
