package create_booking

import (
	"context"
	"sync"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/infra/events"
	appointmentRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/appointment"
	configRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/config"
	serviceRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/service"
	"github.com/m04kA/SMC-SchedulingService/internal/scheduling"
	"github.com/m04kA/SMC-SchedulingService/pkg/phone"
)

// ── Mock AppointmentRepository ──

// mockAppointmentRepo хранит записи в памяти и проверяет пересечения при вставке,
// как это делает exclusion-ограничение в БД
type mockAppointmentRepo struct {
	mu           sync.Mutex
	appointments []*domain.Appointment
	nextID       int64
	// GetByFilter ничего не находит: проверка остается только за ограничением
	staleReads bool
}

func (m *mockAppointmentRepo) Create(ctx context.Context, a *domain.Appointment) (*domain.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// database/sql прерывает запрос на отмененном контексте
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for _, e := range m.appointments {
		if e.CompanyID != a.CompanyID || !e.Date.Equal(a.Date) || !e.IsActive() {
			continue
		}
		if scheduling.Overlaps(a.StartMinute(), a.DurationMinutes, e.StartMinute(), e.DurationMinutes) {
			return nil, appointmentRepo.ErrSlotOccupied
		}
	}

	m.nextID++
	cp := *a
	cp.ID = m.nextID
	cp.CreatedAt = time.Now()
	cp.UpdatedAt = cp.CreatedAt
	m.appointments = append(m.appointments, &cp)

	out := cp
	return &out, nil
}

func (m *mockAppointmentRepo) GetByFilter(ctx context.Context, filter domain.AppointmentsFilter) ([]*domain.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make([]*domain.Appointment, 0)
	if m.staleReads {
		return out, nil
	}
	for _, a := range m.appointments {
		if a.CompanyID != filter.CompanyID || !a.IsActive() {
			continue
		}
		if filter.StartDate != nil && a.Date.Before(*filter.StartDate) {
			continue
		}
		if filter.EndDate != nil && a.Date.After(*filter.EndDate) {
			continue
		}
		cp := *a
		out = append(out, &cp)
	}
	return out, nil
}

func (m *mockAppointmentRepo) seed(a *domain.Appointment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	a.ID = m.nextID
	m.appointments = append(m.appointments, a)
}

func (m *mockAppointmentRepo) activeByClient(clientID int64) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, a := range m.appointments {
		if a.ClientID == clientID && a.IsActive() {
			n++
		}
	}
	return n
}

func (m *mockAppointmentRepo) all() []*domain.Appointment {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*domain.Appointment, len(m.appointments))
	copy(out, m.appointments)
	return out
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

// ── Mock ClientResolver ──

// mockClients upsert по нормализованному телефону под мьютексом
type mockClients struct {
	mu      sync.Mutex
	byPhone map[string]*domain.Client
	nextID  int64
}

func newMockClients() *mockClients {
	return &mockClients{byPhone: make(map[string]*domain.Client)}
}

func (m *mockClients) Lookup(_ context.Context, companyID int64, rawPhone string) (*domain.Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.byPhone[phone.Normalize(rawPhone, phone.DefaultCountryCode)]
	if !ok || c.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *mockClients) Resolve(_ context.Context, companyID int64, contact domain.ClientContact) (*domain.Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	normalized := phone.Normalize(contact.Phone, phone.DefaultCountryCode)
	c, ok := m.byPhone[normalized]
	if !ok {
		m.nextID++
		c = &domain.Client{ID: m.nextID, CompanyID: companyID, NormalizedPhone: &normalized}
		m.byPhone[normalized] = c
	}
	c.Name = contact.Name
	c.Phone = contact.Phone

	cp := *c
	return &cp, nil
}

func (m *mockClients) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byPhone)
}

// ── Mock QuotaEnforcer ──

// mockQuota считает активные записи клиента в репозитории; все тестовые даты в одном месяце
type mockQuota struct {
	repo *mockAppointmentRepo
}

func (m *mockQuota) Check(_ context.Context, cfg *domain.ScheduleConfiguration, clientID int64) (*domain.QuotaStatus, error) {
	count := m.repo.activeByClient(clientID)
	return &domain.QuotaStatus{
		Allowed:      !cfg.HasMonthlyLimit() || count < cfg.MonthlyAppointmentLimit,
		CurrentCount: count,
		Limit:        cfg.MonthlyAppointmentLimit,
	}, nil
}

func (m *mockQuota) Enforce(ctx context.Context, cfg *domain.ScheduleConfiguration, clientID int64) error {
	status, err := m.Check(ctx, cfg, clientID)
	if err != nil {
		return err
	}
	if !status.Allowed {
		return &domain.QuotaExceededError{Current: status.CurrentCount, Limit: status.Limit}
	}
	return nil
}

// ── Mock TransactionManager ──

// mockTxManager сериализует транзакции; failures возвращаются по одной перед выполнением fn
type mockTxManager struct {
	mu       sync.Mutex
	failures []error
	calls    int
	// onBegin вызывается в начале каждой транзакции
	onBegin func()
}

func (m *mockTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++

	if len(m.failures) > 0 {
		err := m.failures[0]
		m.failures = m.failures[1:]
		return err
	}
	if m.onBegin != nil {
		m.onBegin()
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(ctx)
}

// ── Mock SlotCache ──

type mockCache struct {
	mu          sync.Mutex
	invalidated []string
}

func (m *mockCache) Invalidate(_ context.Context, companyID int64, date string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.invalidated = append(m.invalidated, date)
}

// ── Mock EventPublisher ──

type mockPublisher struct {
	mu     sync.Mutex
	events []*events.BookingEvent
	err    error
	ctxErr error
}

func (m *mockPublisher) Publish(ctx context.Context, subject string, e *events.BookingEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ctxErr = ctx.Err()
	if subject == events.SubjectBookingCreated {
		m.events = append(m.events, e)
	}
	return m.err
}

// ── Mock Metrics ──

type mockMetrics struct {
	mu       sync.Mutex
	created  int
	rejected map[string]int
	retries  int
}

func newMockMetrics() *mockMetrics {
	return &mockMetrics{rejected: make(map[string]int)}
}

func (m *mockMetrics) IncBookingCreated() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.created++
}

func (m *mockMetrics) IncBookingRejected(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rejected[kind]++
}

func (m *mockMetrics) IncWriteRetry(string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.retries++
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
