package get_available_slots

import (
	"context"
	"sync"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	configRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/config"
	serviceRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/service"
)

// ── Mock AppointmentRepository ──

type mockAppointmentRepo struct {
	mu           sync.Mutex
	appointments []*domain.Appointment
	calls        int
	err          error
}

func (m *mockAppointmentRepo) GetByFilter(_ context.Context, filter domain.AppointmentsFilter) ([]*domain.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}

	out := make([]*domain.Appointment, 0)
	for _, a := range m.appointments {
		if a.CompanyID != filter.CompanyID || !a.Date.Equal(*filter.StartDate) {
			continue
		}
		if !filter.IncludeInactive && !a.IsActive() {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (m *mockAppointmentRepo) add(a *domain.Appointment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.appointments = append(m.appointments, a)
}

func (m *mockAppointmentRepo) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// ── Mock ConfigRepository ──

type mockConfigRepo struct {
	schedules map[int64]*domain.CompanySchedule
}

func (m *mockConfigRepo) GetSchedule(_ context.Context, companyID int64) (*domain.CompanySchedule, error) {
	s, ok := m.schedules[companyID]
	if !ok {
		return nil, configRepo.ErrConfigNotFound
	}
	return s, nil
}

// ── Mock ServiceRepository ──

type mockServiceRepo struct {
	services map[int64]*domain.Service
}

func (m *mockServiceRepo) GetByID(_ context.Context, companyID, serviceID int64) (*domain.Service, error) {
	s, ok := m.services[serviceID]
	if !ok || s.CompanyID != companyID {
		return nil, serviceRepo.ErrServiceNotFound
	}
	return s, nil
}

// ── Mock Metrics ──

type mockMetrics struct {
	mu     sync.Mutex
	hits   int
	misses int
}

func (m *mockMetrics) ObserveCacheLookup(hit bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if hit {
		m.hits++
	} else {
		m.misses++
	}
}

// ── Mock TimeProvider ──

type mockClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *mockClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *mockClock) set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// ── Mock Logger ──

type mockLogger struct{}

func (mockLogger) Info(string, ...interface{})  {}
func (mockLogger) Warn(string, ...interface{})  {}
func (mockLogger) Error(string, ...interface{}) {}
