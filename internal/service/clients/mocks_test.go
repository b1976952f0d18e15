package clients

import (
	"context"
	"sync"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	clientRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/client"
)

// ── Mock ClientRepository ──

type mockClientRepo struct {
	mu      sync.Mutex
	nextID  int64
	clients map[int64]*domain.Client
	clock   time.Time

	upsertErrs []error
	upserts    int

	setPhoneErr error
}

func newMockClientRepo() *mockClientRepo {
	return &mockClientRepo{
		nextID:  1,
		clients: make(map[int64]*domain.Client),
		clock:   time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// seed добавляет строку как есть, с увеличивающимся временем создания
func (m *mockClientRepo) seed(companyID int64, name, phone string, normalized *string) *domain.Client {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.clock = m.clock.Add(time.Hour)
	c := &domain.Client{
		ID:              m.nextID,
		CompanyID:       companyID,
		Name:            name,
		Phone:           phone,
		NormalizedPhone: normalized,
		CreatedAt:       m.clock,
		UpdatedAt:       m.clock,
	}
	m.nextID++
	m.clients[c.ID] = c
	return clone(c)
}

func (m *mockClientRepo) Upsert(_ context.Context, c *domain.Client) (*domain.Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.upserts++
	if len(m.upsertErrs) > 0 {
		err := m.upsertErrs[0]
		m.upsertErrs = m.upsertErrs[1:]
		if err != nil {
			return nil, err
		}
	}

	for _, existing := range m.clients {
		if existing.CompanyID == c.CompanyID && existing.NormalizedPhone != nil && *existing.NormalizedPhone == *c.NormalizedPhone {
			existing.Name = c.Name
			existing.Phone = c.Phone
			if c.Email != nil {
				existing.Email = c.Email
			}
			return clone(existing), nil
		}
	}

	m.clock = m.clock.Add(time.Hour)
	saved := clone(c)
	saved.ID = m.nextID
	saved.CreatedAt = m.clock
	saved.UpdatedAt = m.clock
	m.nextID++
	m.clients[saved.ID] = saved
	return clone(saved), nil
}

func (m *mockClientRepo) FindByNormalizedPhone(_ context.Context, companyID int64, normalized string) (*domain.Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, c := range m.clients {
		if c.CompanyID == companyID && c.NormalizedPhone != nil && *c.NormalizedPhone == normalized {
			return clone(c), nil
		}
	}
	return nil, clientRepo.ErrClientNotFound
}

func (m *mockClientRepo) FindLegacyByPhones(_ context.Context, companyID int64, phones []string) ([]*domain.Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*domain.Client, 0)
	for _, c := range m.clients {
		if c.CompanyID != companyID || c.NormalizedPhone != nil {
			continue
		}
		for _, p := range phones {
			if c.Phone == p {
				out = append(out, clone(c))
				break
			}
		}
	}
	return out, nil
}

func (m *mockClientRepo) ListLegacy(_ context.Context, companyID int64) ([]*domain.Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*domain.Client, 0)
	for _, c := range m.clients {
		if c.CompanyID == companyID && c.NormalizedPhone == nil {
			out = append(out, clone(c))
		}
	}
	return out, nil
}

func (m *mockClientRepo) SetNormalizedPhone(_ context.Context, id int64, normalized string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.setPhoneErr != nil {
		return m.setPhoneErr
	}

	target, ok := m.clients[id]
	if !ok {
		return clientRepo.ErrClientNotFound
	}
	for _, c := range m.clients {
		if c.ID != id && c.CompanyID == target.CompanyID && c.NormalizedPhone != nil && *c.NormalizedPhone == normalized {
			return clientRepo.ErrPhoneTaken
		}
	}
	n := normalized
	target.NormalizedPhone = &n
	return nil
}

func (m *mockClientRepo) DeleteByIDs(_ context.Context, ids []int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var deleted int64
	for _, id := range ids {
		if _, ok := m.clients[id]; ok {
			delete(m.clients, id)
			deleted++
		}
	}
	return deleted, nil
}

func (m *mockClientRepo) rowsFor(companyID int64, normalized string) []*domain.Client {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*domain.Client, 0)
	for _, c := range m.clients {
		if c.CompanyID == companyID && c.NormalizedPhone != nil && *c.NormalizedPhone == normalized {
			out = append(out, clone(c))
		}
	}
	return out
}

func clone(c *domain.Client) *domain.Client {
	cp := *c
	return &cp
}

// ── Mock AppointmentRepository ──

type mockAppointmentRepo struct {
	mu sync.Mutex
	// appointment id -> client id
	owners map[int64]int64
}

func newMockAppointmentRepo(owners map[int64]int64) *mockAppointmentRepo {
	return &mockAppointmentRepo{owners: owners}
}

func (m *mockAppointmentRepo) ReassignClient(_ context.Context, fromIDs []int64, toID int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var moved int64
	for apptID, owner := range m.owners {
		for _, from := range fromIDs {
			if owner == from {
				m.owners[apptID] = toID
				moved++
				break
			}
		}
	}
	return moved, nil
}

// ── Mock TransactionManager ──

type mockTxManager struct {
	calls int
}

func (m *mockTxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	m.calls++
	return fn(ctx)
}

// ── Mock Metrics ──

type mockMetrics struct {
	mu           sync.Mutex
	retries      int
	consolidated int
}

func (m *mockMetrics) IncWriteRetry(string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.retries++
}

func (m *mockMetrics) AddClientsConsolidated(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.consolidated += n
}

// ── Mock Logger ──

type mockLogger struct{}

func (mockLogger) Info(string, ...interface{})  {}
func (mockLogger) Warn(string, ...interface{})  {}
func (mockLogger) Error(string, ...interface{}) {}
