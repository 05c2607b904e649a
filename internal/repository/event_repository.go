package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-events-admin/internal/models"
)

const eventColumns = `e.id, e.organizer_id, e.title, e.start_date, e.end_date, e.event_type, e.start_time, e.end_time, e.available_seats, e.venue, e.price, e.target_class, e.description, e.created_at`

// EventRepository handles persistence for events.
type EventRepository struct {
	db *sqlx.DB
}

// NewEventRepository constructs the repository.
func NewEventRepository(db *sqlx.DB) *EventRepository {
	return &EventRepository{db: db}
}

// ListByOrganizer returns the organizer's events with their booking counts
// in creation order. forClass is matched as a case-insensitive substring of
// the event's target classes.
func (r *EventRepository) ListByOrganizer(ctx context.Context, organizerID int64, forClass string) ([]models.EventWithCount, error) {
	var b strings.Builder
	b.WriteString(`SELECT ` + eventColumns + `, COUNT(b.id) AS total_registrations FROM events e LEFT JOIN bookings b ON b.event_id = e.id WHERE e.organizer_id = $1`)
	args := []interface{}{organizerID}

	if forClass = strings.TrimSpace(forClass); forClass != "" {
		args = append(args, "%"+escapeLike(strings.ToLower(forClass))+"%")
		fmt.Fprintf(&b, ` AND LOWER(COALESCE(e.target_class, '')) LIKE $%d ESCAPE '\'`, len(args))
	}
	b.WriteString(` GROUP BY e.id ORDER BY e.id`)

	events := make([]models.EventWithCount, 0)
	if err := r.db.SelectContext(ctx, &events, b.String(), args...); err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

// FindOwned returns an event only when it belongs to the organizer.
func (r *EventRepository) FindOwned(ctx context.Context, id, organizerID int64) (*models.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events e WHERE e.id = $1 AND e.organizer_id = $2`
	var event models.Event
	if err := r.db.GetContext(ctx, &event, query, id, organizerID); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find event: %w", err)
	}
	return &event, nil
}

// Create stores a new event and fills in its id.
func (r *EventRepository) Create(ctx context.Context, event *models.Event) error {
	const query = `INSERT INTO events (organizer_id, title, start_date, end_date, event_type, start_time, end_time, available_seats, venue, price, target_class, description, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13) RETURNING id`
	if err := r.db.GetContext(ctx, &event.ID, query,
		event.OrganizerID, event.Title, event.StartDate, event.EndDate, event.EventType, event.StartTime, event.EndTime,
		event.AvailableSeats, event.Venue, event.Price, event.TargetClass, event.Description, event.CreatedAt,
	); err != nil {
		return fmt.Errorf("create event: %w", err)
	}
	return nil
}

// UpdateOwned overwrites the editable fields of an event owned by the organizer.
func (r *EventRepository) UpdateOwned(ctx context.Context, event *models.Event) error {
	if event.OrganizerID == nil {
		return ErrNotFound
	}
	const query = `UPDATE events SET title = $1, start_date = $2, end_date = $3, event_type = $4, start_time = $5, end_time = $6, available_seats = $7, venue = $8, price = $9, target_class = $10, description = $11
WHERE id = $12 AND organizer_id = $13`
	res, err := r.db.ExecContext(ctx, query,
		event.Title, event.StartDate, event.EndDate, event.EventType, event.StartTime, event.EndTime,
		event.AvailableSeats, event.Venue, event.Price, event.TargetClass, event.Description,
		event.ID, *event.OrganizerID,
	)
	if err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	return expectAffected(res, "update event")
}

// DeleteOwned removes the event if the organizer owns it. Bookings go with it
// through ON DELETE CASCADE.
func (r *EventRepository) DeleteOwned(ctx context.Context, id, organizerID int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id = $1 AND organizer_id = $2`, id, organizerID)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	return expectAffected(res, "delete event")
}

func expectAffected(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", op, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
