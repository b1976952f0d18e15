package get_available_slots

import (
	"context"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/infra/cache"
	"github.com/m04kA/SMC-SchedulingService/pkg/types"
)

// AppointmentRepository интерфейс репозитория записей
type AppointmentRepository interface {
	// GetByFilter получает записи компании по фильтру
	GetByFilter(ctx context.Context, filter domain.AppointmentsFilter) ([]*domain.Appointment, error)
}

// ConfigRepository интерфейс репозитория конфигурации расписания
type ConfigRepository interface {
	// GetSchedule получает конфигурацию компании вместе с переопределениями дней
	GetSchedule(ctx context.Context, companyID int64) (*domain.CompanySchedule, error)
}

// ServiceRepository интерфейс репозитория услуг
type ServiceRepository interface {
	GetByID(ctx context.Context, companyID, serviceID int64) (*domain.Service, error)
}

// SlotCache кеш свободных слотов по (компания, дата, длительность)
type SlotCache interface {
	Get(ctx context.Context, key cache.Key) ([]types.TimeString, bool)
	Set(ctx context.Context, key cache.Key, slots []types.TimeString)
}

// Metrics интерфейс метрик
type Metrics interface {
	ObserveCacheLookup(hit bool)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
