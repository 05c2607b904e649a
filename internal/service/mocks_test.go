package service

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-events-admin/internal/models"
	"github.com/noah-isme/sma-events-admin/internal/repository"
)

func fastCredentials() *CredentialService {
	return NewCredentialService(4)
}

type memOrganizers struct {
	byName map[string]*models.Organizer
	nextID int64
	err    error
}

func newMemOrganizers() *memOrganizers {
	return &memOrganizers{byName: make(map[string]*models.Organizer)}
}

func (m *memOrganizers) FindByUsername(_ context.Context, username string) (*models.Organizer, error) {
	if m.err != nil {
		return nil, m.err
	}
	o, ok := m.byName[username]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *o
	return &cp, nil
}

func (m *memOrganizers) Create(_ context.Context, o *models.Organizer) error {
	if _, ok := m.byName[o.Username]; ok {
		return fmt.Errorf("create organizer: %w", repository.ErrDuplicate)
	}
	m.nextID++
	o.ID = m.nextID
	cp := *o
	m.byName[o.Username] = &cp
	return nil
}

func (m *memOrganizers) add(username string) int64 {
	o := &models.Organizer{Username: username}
	_ = m.Create(context.Background(), o)
	return o.ID
}

type memEvents struct {
	events   map[int64]*models.Event
	bookings map[int64]int
	nextID   int64
}

func newMemEvents() *memEvents {
	return &memEvents{events: make(map[int64]*models.Event), bookings: make(map[int64]int)}
}

func (m *memEvents) ListByOrganizer(_ context.Context, organizerID int64, forClass string) ([]models.EventWithCount, error) {
	ids := make([]int64, 0, len(m.events))
	for id := range m.events {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make([]models.EventWithCount, 0)
	for _, id := range ids {
		e := m.events[id]
		if e.OrganizerID == nil || *e.OrganizerID != organizerID {
			continue
		}
		if forClass != "" {
			if e.TargetClass == nil || !strings.Contains(strings.ToLower(*e.TargetClass), strings.ToLower(forClass)) {
				continue
			}
		}
		out = append(out, models.EventWithCount{Event: *e, TotalRegistrations: m.bookings[id]})
	}
	return out, nil
}

func (m *memEvents) FindOwned(_ context.Context, id, organizerID int64) (*models.Event, error) {
	e, ok := m.events[id]
	if !ok || e.OrganizerID == nil || *e.OrganizerID != organizerID {
		return nil, repository.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (m *memEvents) Create(_ context.Context, e *models.Event) error {
	m.nextID++
	e.ID = m.nextID
	cp := *e
	m.events[e.ID] = &cp
	return nil
}

func (m *memEvents) UpdateOwned(ctx context.Context, e *models.Event) error {
	if _, err := m.FindOwned(ctx, e.ID, *e.OrganizerID); err != nil {
		return err
	}
	cp := *e
	m.events[e.ID] = &cp
	return nil
}

func (m *memEvents) DeleteOwned(ctx context.Context, id, organizerID int64) error {
	if _, err := m.FindOwned(ctx, id, organizerID); err != nil {
		return err
	}
	delete(m.events, id)
	delete(m.bookings, id)
	return nil
}

type memStudents struct {
	mu       sync.Mutex
	students []*models.Student
	execs    []sqlx.ExtContext
	failOn   string
}

func (m *memStudents) Create(_ context.Context, exec sqlx.ExtContext, s *models.Student) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.execs = append(m.execs, exec)
	if m.failOn != "" && s.StudentID == m.failOn {
		return fmt.Errorf("create student: connection reset")
	}
	for _, existing := range m.students {
		if existing.StudentID == s.StudentID || existing.Email == s.Email {
			return fmt.Errorf("create student %s: %w", s.StudentID, repository.ErrDuplicate)
		}
	}
	s.ID = int64(len(m.students) + 1)
	cp := *s
	m.students = append(m.students, &cp)
	return nil
}

func (m *memStudents) FindByID(_ context.Context, _ sqlx.ExtContext, id int64) (*models.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.students {
		if s.ID == id {
			cp := *s
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memStudents) ConflictingField(_ context.Context, _ sqlx.ExtContext, studentID, email string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.students {
		if s.StudentID == studentID {
			return "student_id", nil
		}
		if s.Email == email {
			return "email", nil
		}
	}
	return "", nil
}

type memBookings struct {
	events *memEvents
	seen   map[[2]int64]bool
	last   *models.Booking
}

func newMemBookings(events *memEvents) *memBookings {
	return &memBookings{events: events, seen: make(map[[2]int64]bool)}
}

func (m *memBookings) CreateWithCapacity(_ context.Context, b *models.Booking) error {
	e, ok := m.events.events[b.EventID]
	if !ok {
		return repository.ErrNotFound
	}
	if m.events.bookings[b.EventID] >= e.AvailableSeats {
		return repository.ErrCapacityReached
	}
	key := [2]int64{b.StudentID, b.EventID}
	if m.seen[key] {
		return repository.ErrDuplicate
	}
	m.seen[key] = true
	m.events.bookings[b.EventID]++
	b.ID = int64(len(m.seen))
	cp := *b
	m.last = &cp
	return nil
}

type memAudit struct {
	mu      sync.Mutex
	entries []models.AuditLog
	failN   int
}

func (m *memAudit) Create(_ context.Context, entry *models.AuditLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failN > 0 {
		m.failN--
		return fmt.Errorf("db unavailable")
	}
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *memAudit) snapshot() []models.AuditLog {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.AuditLog(nil), m.entries...)
}
