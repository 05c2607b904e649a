package models

import "time"

// Event defaults applied when the creation form leaves a field empty.
const (
	DefaultEventType = "Program"
	DefaultVenue     = "TBD"
)

// ClassList enumerates the class levels offered by the filter and the
// event form.
var ClassList = []string{"Nursery", "LKG", "UKG", "1", "2", "3", "4", "5", "6", "7", "8", "9", "10", "11", "12"}

// Event is a scheduled activity owned by an organizer.
type Event struct {
	ID             int64      `db:"id" json:"id"`
	OrganizerID    *int64     `db:"organizer_id" json:"organizer_id,omitempty"`
	Title          string     `db:"title" json:"title"`
	StartDate      time.Time  `db:"start_date" json:"start_date"`
	EndDate        time.Time  `db:"end_date" json:"end_date"`
	EventType      string     `db:"event_type" json:"event_type"`
	StartTime      *TimeOfDay `db:"start_time" json:"start_time"`
	EndTime        *TimeOfDay `db:"end_time" json:"end_time"`
	AvailableSeats int        `db:"available_seats" json:"available_seats"`
	Venue          string     `db:"venue" json:"venue"`
	Price          *int       `db:"price" json:"price"`
	TargetClass    *string    `db:"target_class" json:"target_class"`
	Description    string     `db:"description" json:"description"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
}

// EventWithCount pairs an event with its number of bookings.
type EventWithCount struct {
	Event
	TotalRegistrations int `db:"total_registrations" json:"total_registrations"`
}

// EventFilter narrows the organizer's event listing. Empty fields do not
// restrict the result.
type EventFilter struct {
	ForClass     string `form:"for_class"`
	AcademicYear string `form:"academic"`
}

// EventRequest is the create/edit event form. Numbers and times arrive as
// text and are parsed by the service.
type EventRequest struct {
	Title          string   `form:"event" json:"event" validate:"required,max=100"`
	StartDate      string   `form:"start_date" json:"start_date" validate:"required"`
	EndDate        string   `form:"end_date" json:"end_date" validate:"required"`
	EventType      string   `form:"type" json:"type" validate:"max=30"`
	StartTime      string   `form:"start_time" json:"start_time"`
	EndTime        string   `form:"end_time" json:"end_time"`
	AvailableSeats string   `form:"available" json:"available"`
	Price          string   `form:"Money" json:"Money"`
	Venue          string   `form:"venue" json:"venue" validate:"max=100"`
	ForClass       []string `form:"for_class" json:"for_class"`
	Description    string   `form:"description" json:"description"`
}
