package quota

import (
	"context"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

// ConfigRepository интерфейс репозитория конфигурации расписания
type ConfigRepository interface {
	GetConfig(ctx context.Context, companyID int64) (*domain.ScheduleConfiguration, error)
}

// ClientResolver поиск клиента без создания
type ClientResolver interface {
	Lookup(ctx context.Context, companyID int64, rawPhone string) (*domain.Client, error)
}

// AppointmentRepository подсчет записей клиента
type AppointmentRepository interface {
	CountActiveByClient(ctx context.Context, companyID, clientID int64, from, to time.Time) (int, error)
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
