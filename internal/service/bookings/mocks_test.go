package bookings

import (
	"context"
	"sort"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/infra/events"
	appointmentRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/appointment"
)

// ── Mock AppointmentRepository ──

type mockAppointmentRepo struct {
	appointments map[int64]*domain.Appointment
	lastFilter   domain.AppointmentsFilter
	// меняет статус между чтением и записью, имитируя параллельный запрос
	raceTo *domain.AppointmentStatus
	err    error
}

func newMockAppointmentRepo(items ...*domain.Appointment) *mockAppointmentRepo {
	m := &mockAppointmentRepo{appointments: make(map[int64]*domain.Appointment)}
	for _, a := range items {
		m.appointments[a.ID] = a
	}
	return m
}

func (m *mockAppointmentRepo) GetByID(_ context.Context, id int64) (*domain.Appointment, error) {
	if m.err != nil {
		return nil, m.err
	}
	a, ok := m.appointments[id]
	if !ok {
		return nil, appointmentRepo.ErrAppointmentNotFound
	}
	cp := *a
	if m.raceTo != nil {
		a.Status = *m.raceTo
	}
	return &cp, nil
}

func (m *mockAppointmentRepo) GetByFilter(_ context.Context, filter domain.AppointmentsFilter) ([]*domain.Appointment, error) {
	m.lastFilter = filter
	if m.err != nil {
		return nil, m.err
	}
	out := make([]*domain.Appointment, 0)
	for _, a := range m.appointments {
		if a.CompanyID == filter.CompanyID && (filter.IncludeInactive || a.IsActive()) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockAppointmentRepo) Cancel(_ context.Context, id int64, reason *string, allowed []domain.AppointmentStatus) error {
	a, ok := m.appointments[id]
	if !ok {
		return appointmentRepo.ErrStatusConflict
	}
	for _, s := range allowed {
		if a.Status == s {
			a.Status = domain.StatusCancelled
			a.CancellationReason = reason
			return nil
		}
	}
	return appointmentRepo.ErrStatusConflict
}

func (m *mockAppointmentRepo) UpdateStatus(_ context.Context, id int64, from, to domain.AppointmentStatus) error {
	a, ok := m.appointments[id]
	if !ok || a.Status != from {
		return appointmentRepo.ErrStatusConflict
	}
	a.Status = to
	return nil
}

func (m *mockAppointmentRepo) ExpirePending(_ context.Context, olderThan time.Time, limit uint64) ([]*domain.Appointment, error) {
	if m.err != nil {
		return nil, m.err
	}
	ids := make([]int64, 0)
	for id, a := range m.appointments {
		if a.Status == domain.StatusPending && a.CreatedAt.Before(olderThan) {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	if uint64(len(ids)) > limit {
		ids = ids[:limit]
	}

	out := make([]*domain.Appointment, 0, len(ids))
	for _, id := range ids {
		a := m.appointments[id]
		a.Status = domain.StatusExpired
		cp := *a
		out = append(out, &cp)
	}
	return out, nil
}

// ── Mock SlotCache ──

type invalidation struct {
	companyID int64
	date      string
}

type mockCache struct {
	invalidated []invalidation
}

func (m *mockCache) Invalidate(_ context.Context, companyID int64, date string) {
	m.invalidated = append(m.invalidated, invalidation{companyID: companyID, date: date})
}

// ── Mock EventPublisher ──

type published struct {
	subject string
	event   *events.BookingEvent
}

type mockPublisher struct {
	events []published
	err    error
}

func (m *mockPublisher) Publish(_ context.Context, subject string, e *events.BookingEvent) error {
	m.events = append(m.events, published{subject: subject, event: e})
	return m.err
}

// ── Mock Metrics ──

type mockMetrics struct {
	released map[string]int
}

func (m *mockMetrics) IncBookingReleased(status string) {
	if m.released == nil {
		m.released = make(map[string]int)
	}
	m.released[status]++
}

// ── Mock TimeProvider / Logger ──

type fixedTime struct {
	now time.Time
}

func (f fixedTime) Now() time.Time { return f.now }

type mockLogger struct{}

func (mockLogger) Info(string, ...interface{})  {}
func (mockLogger) Warn(string, ...interface{})  {}
func (mockLogger) Error(string, ...interface{}) {}
