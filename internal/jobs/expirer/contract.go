package expirer

import (
	"context"
	"time"
)

type BookingService interface {
	ExpireStale(ctx context.Context, ttl time.Duration) (int, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
