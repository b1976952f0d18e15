package config

import (
	"context"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

// ConfigRepository интерфейс репозитория конфигурации расписания
type ConfigRepository interface {
	GetSchedule(ctx context.Context, companyID int64) (*domain.CompanySchedule, error)
	GetConfig(ctx context.Context, companyID int64) (*domain.ScheduleConfiguration, error)
	UpsertConfig(ctx context.Context, cfg *domain.ScheduleConfiguration) (*domain.ScheduleConfiguration, error)
	UpsertOverride(ctx context.Context, o *domain.DayOverride) (*domain.DayOverride, error)
	DeleteOverride(ctx context.Context, companyID int64, weekday time.Weekday) error
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// SlotCache инвалидация закешированных слотов компании
type SlotCache interface {
	InvalidateCompany(ctx context.Context, companyID int64)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
