package bookings

import (
	"context"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/infra/events"
)

// AppointmentRepository интерфейс репозитория записей
type AppointmentRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Appointment, error)
	GetByFilter(ctx context.Context, filter domain.AppointmentsFilter) ([]*domain.Appointment, error)
	Cancel(ctx context.Context, id int64, reason *string, allowed []domain.AppointmentStatus) error
	UpdateStatus(ctx context.Context, id int64, from, to domain.AppointmentStatus) error
	ExpirePending(ctx context.Context, olderThan time.Time, limit uint64) ([]*domain.Appointment, error)
}

// SlotCache инвалидация закешированных слотов
type SlotCache interface {
	Invalidate(ctx context.Context, companyID int64, date string)
}

// EventPublisher публикация событий по записям
type EventPublisher interface {
	Publish(ctx context.Context, subject string, event *events.BookingEvent) error
}

// Metrics счетчики освобожденных интервалов
type Metrics interface {
	IncBookingReleased(status string)
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
