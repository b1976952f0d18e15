package config

import (
	"context"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	configRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/config"
)

// ── Mock ConfigRepository ──

type mockConfigRepo struct {
	configs   map[int64]*domain.ScheduleConfiguration
	overrides map[int64]map[time.Weekday]*domain.DayOverride
	upsertErr error
}

func newMockConfigRepo() *mockConfigRepo {
	return &mockConfigRepo{
		configs:   make(map[int64]*domain.ScheduleConfiguration),
		overrides: make(map[int64]map[time.Weekday]*domain.DayOverride),
	}
}

func (m *mockConfigRepo) GetSchedule(ctx context.Context, companyID int64) (*domain.CompanySchedule, error) {
	cfg, err := m.GetConfig(ctx, companyID)
	if err != nil {
		return nil, err
	}
	schedule := &domain.CompanySchedule{Config: cfg}
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		if o, ok := m.overrides[companyID][wd]; ok {
			schedule.Overrides = append(schedule.Overrides, o)
		}
	}
	return schedule, nil
}

func (m *mockConfigRepo) GetConfig(_ context.Context, companyID int64) (*domain.ScheduleConfiguration, error) {
	cfg, ok := m.configs[companyID]
	if !ok {
		return nil, configRepo.ErrConfigNotFound
	}
	cp := *cfg
	return &cp, nil
}

func (m *mockConfigRepo) UpsertConfig(_ context.Context, cfg *domain.ScheduleConfiguration) (*domain.ScheduleConfiguration, error) {
	if m.upsertErr != nil {
		return nil, m.upsertErr
	}
	cp := *cfg
	m.configs[cfg.CompanyID] = &cp
	return cfg, nil
}

func (m *mockConfigRepo) UpsertOverride(_ context.Context, o *domain.DayOverride) (*domain.DayOverride, error) {
	if m.overrides[o.CompanyID] == nil {
		m.overrides[o.CompanyID] = make(map[time.Weekday]*domain.DayOverride)
	}
	cp := *o
	m.overrides[o.CompanyID][o.Weekday] = &cp
	return o, nil
}

func (m *mockConfigRepo) DeleteOverride(_ context.Context, companyID int64, weekday time.Weekday) error {
	if _, ok := m.overrides[companyID][weekday]; !ok {
		return configRepo.ErrOverrideNotFound
	}
	delete(m.overrides[companyID], weekday)
	return nil
}

// ── Mock TransactionManager ──

type mockTxManager struct{}

func (mockTxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// ── Mock SlotCache ──

type mockCache struct {
	invalidated []int64
}

func (m *mockCache) InvalidateCompany(_ context.Context, companyID int64) {
	m.invalidated = append(m.invalidated, companyID)
}

// ── Mock Logger ──

type mockLogger struct{}

func (mockLogger) Info(string, ...interface{})  {}
func (mockLogger) Warn(string, ...interface{})  {}
func (mockLogger) Error(string, ...interface{}) {}
