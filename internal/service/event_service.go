package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-events-admin/internal/models"
	"github.com/noah-isme/sma-events-admin/internal/repository"
	appErrors "github.com/noah-isme/sma-events-admin/pkg/errors"
)

const dateLayout = "2006-01-02"

type eventRepository interface {
	ListByOrganizer(ctx context.Context, organizerID int64, forClass string) ([]models.EventWithCount, error)
	FindOwned(ctx context.Context, id, organizerID int64) (*models.Event, error)
	Create(ctx context.Context, event *models.Event) error
	UpdateOwned(ctx context.Context, event *models.Event) error
	DeleteOwned(ctx context.Context, id, organizerID int64) error
}

// EventService implements the organizer's event listing and maintenance.
// Every operation is scoped to the organizer named by the session.
type EventService struct {
	events     eventRepository
	organizers organizerRepository
	validator  *validator.Validate
	logger     *zap.Logger
	metrics    *MetricsService
	now        func() time.Time
}

// NewEventService wires dependencies for event operations.
func NewEventService(events eventRepository, organizers organizerRepository, validate *validator.Validate, logger *zap.Logger, metrics *MetricsService) *EventService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = NewValidator()
	}
	return &EventService{events: events, organizers: organizers, validator: validate, logger: logger, metrics: metrics, now: time.Now}
}

// List returns the organizer's events with booking counts. Events carry no
// academic year, so filtering by one is rejected rather than ignored.
func (s *EventService) List(ctx context.Context, username string, filter models.EventFilter) ([]models.EventWithCount, error) {
	if strings.TrimSpace(filter.AcademicYear) != "" {
		return nil, appErrors.Clone(appErrors.ErrUnsupportedFilter, "filtering by academic year is not supported")
	}
	ownerID, err := resolveOrganizerID(ctx, s.organizers, username)
	if err != nil {
		return nil, err
	}
	events, err := s.events.ListByOrganizer(ctx, ownerID, filter.ForClass)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list events")
	}
	return events, nil
}

// Get returns one of the organizer's events.
func (s *EventService) Get(ctx context.Context, username string, id int64) (*models.Event, error) {
	ownerID, err := resolveOrganizerID(ctx, s.organizers, username)
	if err != nil {
		return nil, err
	}
	event, err := s.events.FindOwned(ctx, id, ownerID)
	if err != nil {
		return nil, mapEventError(err, "failed to load event")
	}
	return event, nil
}

// Create stores a new event owned by the organizer.
func (s *EventService) Create(ctx context.Context, username string, req models.EventRequest) (*models.Event, error) {
	ownerID, err := resolveOrganizerID(ctx, s.organizers, username)
	if err != nil {
		return nil, err
	}
	event, err := s.buildEvent(req)
	if err != nil {
		return nil, err
	}
	event.OrganizerID = &ownerID
	event.CreatedAt = s.now().UTC()

	if err := s.events.Create(ctx, event); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create event")
	}
	s.metrics.RecordEventCreated()
	s.logger.Info("event created", zap.Int64("event_id", event.ID), zap.String("username", username))
	return event, nil
}

// Update replaces the editable fields of an owned event.
func (s *EventService) Update(ctx context.Context, username string, id int64, req models.EventRequest) (*models.Event, error) {
	ownerID, err := resolveOrganizerID(ctx, s.organizers, username)
	if err != nil {
		return nil, err
	}
	existing, err := s.events.FindOwned(ctx, id, ownerID)
	if err != nil {
		return nil, mapEventError(err, "failed to load event")
	}
	event, err := s.buildEvent(req)
	if err != nil {
		return nil, err
	}
	event.ID = existing.ID
	event.OrganizerID = &ownerID
	event.CreatedAt = existing.CreatedAt

	if err := s.events.UpdateOwned(ctx, event); err != nil {
		return nil, mapEventError(err, "failed to update event")
	}
	return event, nil
}

// Delete removes an owned event. Missing and foreign events both yield
// NotFound so ownership is not disclosed.
func (s *EventService) Delete(ctx context.Context, username string, id int64) error {
	ownerID, err := resolveOrganizerID(ctx, s.organizers, username)
	if err != nil {
		return err
	}
	if err := s.events.DeleteOwned(ctx, id, ownerID); err != nil {
		return mapEventError(err, "failed to delete event")
	}
	s.metrics.RecordEventDeleted()
	s.logger.Info("event deleted", zap.Int64("event_id", id), zap.String("username", username))
	return nil
}

func (s *EventService) buildEvent(req models.EventRequest) (*models.Event, error) {
	req.Title = strings.TrimSpace(req.Title)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, validationMessage(err, "invalid event form"))
	}

	event := &models.Event{
		Title:       req.Title,
		EventType:   defaultString(req.EventType, models.DefaultEventType),
		Venue:       defaultString(req.Venue, models.DefaultVenue),
		Description: req.Description,
	}

	var err error
	if event.StartDate, err = parseFormDate("start_date", req.StartDate); err != nil {
		return nil, err
	}
	if event.EndDate, err = parseFormDate("end_date", req.EndDate); err != nil {
		return nil, err
	}
	if event.StartTime, err = parseFormTime("start_time", req.StartTime); err != nil {
		return nil, err
	}
	if event.EndTime, err = parseFormTime("end_time", req.EndTime); err != nil {
		return nil, err
	}

	if seats := strings.TrimSpace(req.AvailableSeats); seats != "" {
		n, err := strconv.Atoi(seats)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "available must be a whole number")
		}
		event.AvailableSeats = n
	}
	if price := strings.TrimSpace(req.Price); price != "" {
		n, err := strconv.Atoi(price)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "Money must be a whole number")
		}
		event.Price = &n
	}
	event.TargetClass = joinClasses(req.ForClass)

	return event, nil
}

// joinClasses stores the selected classes as one comma separated value.
func joinClasses(values []string) *string {
	classes := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			classes = append(classes, v)
		}
	}
	if len(classes) == 0 {
		return nil
	}
	joined := strings.Join(classes, ", ")
	return &joined
}

func parseFormDate(field, raw string) (time.Time, error) {
	d, err := time.Parse(dateLayout, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%s must be a date in YYYY-MM-DD format", field))
	}
	return d, nil
}

func parseFormTime(field, raw string) (*models.TimeOfDay, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	t, err := models.ParseTimeOfDay(raw)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%s must be a time in HH:MM format", field))
	}
	return &t, nil
}

func defaultString(value, fallback string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return fallback
}

func mapEventError(err error, message string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return appErrors.Clone(appErrors.ErrNotFound, "event not found")
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
}
