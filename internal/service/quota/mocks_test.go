package quota

import (
	"context"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	configRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/config"
	"github.com/m04kA/SMC-SchedulingService/internal/service/clients"
)

type mockConfigRepo struct {
	configs map[int64]*domain.ScheduleConfiguration
	err     error
}

func (m *mockConfigRepo) GetConfig(_ context.Context, companyID int64) (*domain.ScheduleConfiguration, error) {
	if m.err != nil {
		return nil, m.err
	}
	cfg, ok := m.configs[companyID]
	if !ok {
		return nil, configRepo.ErrConfigNotFound
	}
	return cfg, nil
}

type mockClientResolver struct {
	client *domain.Client
}

func (m *mockClientResolver) Lookup(context.Context, int64, string) (*domain.Client, error) {
	if m.client == nil {
		return nil, clients.ErrClientNotFound
	}
	return m.client, nil
}

type countCall struct {
	companyID, clientID int64
	from, to            time.Time
}

type mockAppointmentRepo struct {
	count int
	err   error
	calls []countCall
}

func (m *mockAppointmentRepo) CountActiveByClient(_ context.Context, companyID, clientID int64, from, to time.Time) (int, error) {
	m.calls = append(m.calls, countCall{companyID: companyID, clientID: clientID, from: from, to: to})
	return m.count, m.err
}

type fixedTime struct {
	now time.Time
}

func (f fixedTime) Now() time.Time { return f.now }

type mockLogger struct{}

func (mockLogger) Info(string, ...interface{})  {}
func (mockLogger) Warn(string, ...interface{})  {}
func (mockLogger) Error(string, ...interface{}) {}
