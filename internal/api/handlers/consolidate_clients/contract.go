package consolidate_clients

import (
	"context"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

type ClientService interface {
	Consolidate(ctx context.Context, companyID int64, rawPhone string) (*domain.Client, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
