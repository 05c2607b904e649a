package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-events-admin/internal/models"
	"github.com/noah-isme/sma-events-admin/internal/repository"
	appErrors "github.com/noah-isme/sma-events-admin/pkg/errors"
)

type bookingRepository interface {
	CreateWithCapacity(ctx context.Context, booking *models.Booking) error
}

// BookingService books students onto the organizer's events.
type BookingService struct {
	bookings   bookingRepository
	events     eventRepository
	students   studentRepository
	organizers organizerRepository
	validator  *validator.Validate
	logger     *zap.Logger
	metrics    *MetricsService
	now        func() time.Time
}

func NewBookingService(bookings bookingRepository, events eventRepository, students studentRepository, organizers organizerRepository, validate *validator.Validate, logger *zap.Logger, metrics *MetricsService) *BookingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = NewValidator()
	}
	return &BookingService{bookings: bookings, events: events, students: students, organizers: organizers, validator: validate, logger: logger, metrics: metrics, now: time.Now}
}

// Book reserves a seat for the student. The student's name is copied onto the
// booking so it survives later edits.
func (s *BookingService) Book(ctx context.Context, username string, eventID int64, req models.BookingRequest) (*models.Booking, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, validationMessage(err, "invalid booking"))
	}
	ownerID, err := resolveOrganizerID(ctx, s.organizers, username)
	if err != nil {
		return nil, err
	}
	event, err := s.events.FindOwned(ctx, eventID, ownerID)
	if err != nil {
		return nil, mapEventError(err, "failed to load event")
	}
	student, err := s.students.FindByID(ctx, nil, req.StudentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	name := student.FullName()
	if name == "" {
		name = models.DefaultStudentName
	}
	ref := event.ID
	booking := &models.Booking{
		StudentID:   student.ID,
		EventID:     event.ID,
		StudentName: name,
		EventIDRef:  &ref,
		BookedAt:    s.now().UTC(),
	}

	if err := s.bookings.CreateWithCapacity(ctx, booking); err != nil {
		switch {
		case errors.Is(err, repository.ErrCapacityReached):
			s.metrics.RecordBooking("full")
			return nil, appErrors.Clone(appErrors.ErrEventFull, "no seats left for this event")
		case errors.Is(err, repository.ErrDuplicate):
			s.metrics.RecordBooking("duplicate")
			return nil, appErrors.Clone(appErrors.ErrConflict, "student is already booked for this event")
		case errors.Is(err, repository.ErrNotFound):
			return nil, appErrors.Clone(appErrors.ErrNotFound, "event not found")
		default:
			s.metrics.RecordBooking("error")
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to book student")
		}
	}
	s.metrics.RecordBooking("ok")
	s.logger.Info("student booked", zap.Int64("event_id", event.ID), zap.Int64("student_id", student.ID))
	return booking, nil
}
