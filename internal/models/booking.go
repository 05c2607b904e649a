package models

import "time"

// DefaultStudentName is stored when a booking's student has no name.
const DefaultStudentName = "Unknown Student"

// Booking links a student to an event.
type Booking struct {
	ID          int64     `db:"id" json:"id"`
	StudentID   int64     `db:"student_id" json:"student_id"`
	EventID     int64     `db:"event_id" json:"event_id"`
	StudentName string    `db:"student_name" json:"student_name"`
	EventIDRef  *int64    `db:"event_id_ref" json:"event_id_ref"`
	BookedAt    time.Time `db:"booked_at" json:"booked_at"`
}

// BookingRequest books an existing student onto an event.
type BookingRequest struct {
	StudentID int64 `form:"student_id" json:"student_id" validate:"required,gt=0"`
}
