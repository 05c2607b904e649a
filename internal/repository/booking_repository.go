package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-events-admin/internal/models"
)

// BookingRepository persists student bookings.
type BookingRepository struct {
	db *sqlx.DB
}

// NewBookingRepository constructs the repository.
func NewBookingRepository(db *sqlx.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// CreateWithCapacity inserts the booking only while the event still has
// seats. The event row is locked on Postgres so concurrent bookings
// serialise on it.
func (r *BookingRepository) CreateWithCapacity(ctx context.Context, booking *models.Booking) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin booking: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	seatQuery := `SELECT available_seats FROM events WHERE id = $1`
	if r.db.DriverName() == "postgres" {
		seatQuery += ` FOR UPDATE`
	}
	var seats int
	if err = tx.GetContext(ctx, &seats, seatQuery, booking.EventID); err != nil {
		if err == sql.ErrNoRows {
			err = ErrNotFound
			return err
		}
		return fmt.Errorf("lock event: %w", err)
	}

	var booked int
	if err = tx.GetContext(ctx, &booked, `SELECT COUNT(*) FROM bookings WHERE event_id = $1`, booking.EventID); err != nil {
		return fmt.Errorf("count bookings: %w", err)
	}
	if booked >= seats {
		err = ErrCapacityReached
		return err
	}

	const insert = `INSERT INTO bookings (student_id, event_id, student_name, event_id_ref, booked_at) VALUES ($1, $2, $3, $4, $5) RETURNING id`
	if err = tx.GetContext(ctx, &booking.ID, insert, booking.StudentID, booking.EventID, booking.StudentName, booking.EventIDRef, booking.BookedAt); err != nil {
		if isUniqueViolation(err) {
			err = ErrDuplicate
			return err
		}
		return fmt.Errorf("insert booking: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit booking: %w", err)
	}
	return nil
}
