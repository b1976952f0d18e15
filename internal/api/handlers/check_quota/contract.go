package check_quota

import (
	"context"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

type QuotaService interface {
	CheckMonthlyQuota(ctx context.Context, companyID int64, rawPhone string) (*domain.QuotaStatus, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
