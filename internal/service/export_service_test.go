package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-events-admin/internal/models"
	appErrors "github.com/noah-isme/sma-events-admin/pkg/errors"
)

func newExportFixture(t *testing.T) (*ExportService, *EventService) {
	t.Helper()
	f := newEventFixture(t)
	ctx := context.Background()
	_, err := f.svc.Create(ctx, "alice", models.EventRequest{
		Title: "Science Fair", StartDate: "2024-06-01", EndDate: "2024-06-02",
		StartTime: "09:00", EndTime: "12:00", AvailableSeats: "30", Price: "5", ForClass: []string{"7"},
	})
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, "alice", models.EventRequest{Title: "Art Show", StartDate: "2024-06-05", EndDate: "2024-06-05"})
	require.NoError(t, err)

	svc := NewExportService(f.svc, nil)
	svc.now = func() time.Time { return time.Date(2024, 5, 1, 8, 30, 0, 0, time.UTC) }
	return svc, f.svc
}

func TestExportEventsCSV(t *testing.T) {
	svc, _ := newExportFixture(t)

	file, err := svc.ExportEvents(context.Background(), "alice", models.EventFilter{}, "csv")
	require.NoError(t, err)
	assert.Equal(t, "events_20240501_083000.csv", file.Filename)
	assert.Equal(t, "text/csv; charset=utf-8", file.ContentType)

	records, err := csv.NewReader(bytes.NewReader(file.Body)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "Event", records[0][1])
	assert.Equal(t, []string{"1", "Science Fair", "Program", "2024-06-01 - 2024-06-02", "09:00 - 12:00", "TBD", "7", "30", "5", "0"}, records[1])
	assert.Equal(t, "2024-06-05", records[2][3])
	assert.Equal(t, "", records[2][8])
}

func TestExportEventsAppliesFilter(t *testing.T) {
	svc, _ := newExportFixture(t)

	file, err := svc.ExportEvents(context.Background(), "alice", models.EventFilter{ForClass: "7"}, "")
	require.NoError(t, err)
	records, err := csv.NewReader(bytes.NewReader(file.Body)).ReadAll()
	require.NoError(t, err)
	assert.Len(t, records, 2)

	_, err = svc.ExportEvents(context.Background(), "alice", models.EventFilter{AcademicYear: "2024"}, "csv")
	assert.Equal(t, appErrors.ErrUnsupportedFilter.Code, appErrors.FromError(err).Code)
}

func TestExportEventsPDF(t *testing.T) {
	svc, _ := newExportFixture(t)

	file, err := svc.ExportEvents(context.Background(), "alice", models.EventFilter{}, "pdf")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", file.ContentType)
	assert.True(t, bytes.HasPrefix(file.Body, []byte("%PDF")))
}

func TestExportEventsUnknownFormat(t *testing.T) {
	svc, _ := newExportFixture(t)
	_, err := svc.ExportEvents(context.Background(), "alice", models.EventFilter{}, "xml")
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
