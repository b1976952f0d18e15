package create_booking

import (
	"context"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/infra/events"
)

// AppointmentRepository интерфейс репозитория записей
type AppointmentRepository interface {
	Create(ctx context.Context, a *domain.Appointment) (*domain.Appointment, error)
	GetByFilter(ctx context.Context, filter domain.AppointmentsFilter) ([]*domain.Appointment, error)
}

// ConfigRepository интерфейс репозитория конфигурации расписания
type ConfigRepository interface {
	GetSchedule(ctx context.Context, companyID int64) (*domain.CompanySchedule, error)
}

// ServiceRepository интерфейс репозитория услуг
type ServiceRepository interface {
	GetByID(ctx context.Context, companyID, serviceID int64) (*domain.Service, error)
}

// ClientResolver определяет клиента по телефону
type ClientResolver interface {
	// Lookup только чтение, ErrNotFound если клиента нет
	Lookup(ctx context.Context, companyID int64, rawPhone string) (*domain.Client, error)
	// Resolve находит или создает клиента, результат всегда сохранен
	Resolve(ctx context.Context, companyID int64, contact domain.ClientContact) (*domain.Client, error)
}

// QuotaEnforcer проверяет месячный лимит записей клиента
type QuotaEnforcer interface {
	Check(ctx context.Context, cfg *domain.ScheduleConfiguration, clientID int64) (*domain.QuotaStatus, error)
	Enforce(ctx context.Context, cfg *domain.ScheduleConfiguration, clientID int64) error
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// SlotCache инвалидация кеша слотов
type SlotCache interface {
	Invalidate(ctx context.Context, companyID int64, date string)
}

// EventPublisher публикация событий о записях
type EventPublisher interface {
	Publish(ctx context.Context, subject string, e *events.BookingEvent) error
}

// Metrics интерфейс метрик
type Metrics interface {
	IncBookingCreated()
	IncBookingRejected(kind string)
	IncWriteRetry(operation string)
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
