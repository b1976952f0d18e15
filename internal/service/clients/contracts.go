package clients

import (
	"context"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

// ClientRepository интерфейс репозитория клиентов
type ClientRepository interface {
	Upsert(ctx context.Context, c *domain.Client) (*domain.Client, error)
	FindByNormalizedPhone(ctx context.Context, companyID int64, normalized string) (*domain.Client, error)
	FindLegacyByPhones(ctx context.Context, companyID int64, phones []string) ([]*domain.Client, error)
	ListLegacy(ctx context.Context, companyID int64) ([]*domain.Client, error)
	SetNormalizedPhone(ctx context.Context, id int64, normalized string) error
	DeleteByIDs(ctx context.Context, ids []int64) (int64, error)
}

// AppointmentRepository перенос записей при слиянии клиентов
type AppointmentRepository interface {
	ReassignClient(ctx context.Context, fromIDs []int64, toID int64) (int64, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// Metrics счетчики клиентского контура
type Metrics interface {
	IncWriteRetry(operation string)
	AddClientsConsolidated(n int)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
