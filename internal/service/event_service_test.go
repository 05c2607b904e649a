package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-events-admin/internal/models"
	appErrors "github.com/noah-isme/sma-events-admin/pkg/errors"
)

type eventFixture struct {
	svc        *EventService
	events     *memEvents
	organizers *memOrganizers
}

func newEventFixture(t *testing.T) *eventFixture {
	t.Helper()
	organizers := newMemOrganizers()
	organizers.add("alice")
	organizers.add("bob")
	events := newMemEvents()
	svc := NewEventService(events, organizers, nil, nil, NewMetricsService())
	svc.now = func() time.Time { return time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC) }
	return &eventFixture{svc: svc, events: events, organizers: organizers}
}

func TestEventCreateAppliesDefaults(t *testing.T) {
	f := newEventFixture(t)

	event, err := f.svc.Create(context.Background(), "alice", models.EventRequest{
		Title:     "Science Fair",
		StartDate: "2024-06-01",
		EndDate:   "2024-06-01",
	})
	require.NoError(t, err)

	assert.Equal(t, models.DefaultEventType, event.EventType)
	assert.Equal(t, models.DefaultVenue, event.Venue)
	assert.Equal(t, 0, event.AvailableSeats)
	assert.Nil(t, event.Price)
	assert.Nil(t, event.StartTime)
	assert.Nil(t, event.TargetClass)
	require.NotNil(t, event.OrganizerID)
	assert.Equal(t, int64(1), *event.OrganizerID)
	assert.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), event.StartDate)
}

func TestEventCreateParsesOptionalFields(t *testing.T) {
	f := newEventFixture(t)

	event, err := f.svc.Create(context.Background(), "alice", models.EventRequest{
		Title:          "Sports Day",
		StartDate:      "2024-07-10",
		EndDate:        "2024-07-11",
		EventType:      "Sports",
		StartTime:      "09:30",
		EndTime:        "15:00",
		AvailableSeats: "40",
		Price:          "15",
		Venue:          "Main Field",
		ForClass:       []string{"7", " 8 ", ""},
	})
	require.NoError(t, err)

	assert.Equal(t, "Sports", event.EventType)
	assert.Equal(t, "Main Field", event.Venue)
	assert.Equal(t, 40, event.AvailableSeats)
	require.NotNil(t, event.Price)
	assert.Equal(t, 15, *event.Price)
	require.NotNil(t, event.StartTime)
	assert.Equal(t, "09:30", event.StartTime.String())
	require.NotNil(t, event.TargetClass)
	assert.Equal(t, "7, 8", *event.TargetClass)
}

func TestEventCreateRejectsBadInput(t *testing.T) {
	f := newEventFixture(t)
	ctx := context.Background()

	cases := map[string]struct {
		req     models.EventRequest
		message string
	}{
		"missing title": {
			req:     models.EventRequest{StartDate: "2024-06-01", EndDate: "2024-06-01"},
			message: "event is required",
		},
		"bad date": {
			req:     models.EventRequest{Title: "x", StartDate: "01/06/2024", EndDate: "2024-06-01"},
			message: "start_date must be a date in YYYY-MM-DD format",
		},
		"bad time": {
			req:     models.EventRequest{Title: "x", StartDate: "2024-06-01", EndDate: "2024-06-01", StartTime: "25:99"},
			message: "start_time must be a time in HH:MM format",
		},
		"bad seats": {
			req:     models.EventRequest{Title: "x", StartDate: "2024-06-01", EndDate: "2024-06-01", AvailableSeats: "many"},
			message: "available must be a whole number",
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.svc.Create(ctx, "alice", tc.req)
			appErr := appErrors.FromError(err)
			assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
			assert.Equal(t, tc.message, appErr.Message)
		})
	}
	assert.Empty(t, f.events.events)
}

func TestEventCreateUnknownOrganizer(t *testing.T) {
	f := newEventFixture(t)
	_, err := f.svc.Create(context.Background(), "ghost", models.EventRequest{Title: "x", StartDate: "2024-06-01", EndDate: "2024-06-01"})
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestEventListScopedAndFiltered(t *testing.T) {
	f := newEventFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, "alice", models.EventRequest{Title: "Junior Quiz", StartDate: "2024-06-01", EndDate: "2024-06-01", ForClass: []string{"UKG", "1"}})
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, "alice", models.EventRequest{Title: "Senior Quiz", StartDate: "2024-06-02", EndDate: "2024-06-02", ForClass: []string{"12"}})
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, "bob", models.EventRequest{Title: "Bob's Event", StartDate: "2024-06-03", EndDate: "2024-06-03"})
	require.NoError(t, err)

	all, err := f.svc.List(ctx, "alice", models.EventFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Junior Quiz", all[0].Title)
	assert.Equal(t, 0, all[0].TotalRegistrations)

	filtered, err := f.svc.List(ctx, "alice", models.EventFilter{ForClass: "ukg"})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, "Junior Quiz", filtered[0].Title)
}

func TestEventListRejectsAcademicFilter(t *testing.T) {
	f := newEventFixture(t)
	_, err := f.svc.List(context.Background(), "alice", models.EventFilter{AcademicYear: "2024"})
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrUnsupportedFilter.Code, appErr.Code)
	assert.Equal(t, 400, appErr.Status)
}

func TestEventUpdateAndDeleteRespectOwnership(t *testing.T) {
	f := newEventFixture(t)
	ctx := context.Background()

	event, err := f.svc.Create(ctx, "alice", models.EventRequest{Title: "Science Fair", StartDate: "2024-06-01", EndDate: "2024-06-01"})
	require.NoError(t, err)

	_, err = f.svc.Update(ctx, "bob", event.ID, models.EventRequest{Title: "Hijacked", StartDate: "2024-06-01", EndDate: "2024-06-01"})
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)

	err = f.svc.Delete(ctx, "bob", event.ID)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
	assert.Contains(t, f.events.events, event.ID)

	updated, err := f.svc.Update(ctx, "alice", event.ID, models.EventRequest{Title: "Science Expo", StartDate: "2024-06-01", EndDate: "2024-06-02", AvailableSeats: "10"})
	require.NoError(t, err)
	assert.Equal(t, event.ID, updated.ID)
	assert.Equal(t, "Science Expo", f.events.events[event.ID].Title)
	assert.Equal(t, 10, f.events.events[event.ID].AvailableSeats)

	require.NoError(t, f.svc.Delete(ctx, "alice", event.ID))
	assert.NotContains(t, f.events.events, event.ID)

	err = f.svc.Delete(ctx, "alice", event.ID)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
