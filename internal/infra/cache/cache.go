package cache

import (
	"fmt"

	"github.com/m04kA/SMC-SchedulingService/pkg/types"
)

// Key ключ закешированного списка слотов.
// Инвалидация всегда идет по паре (компания, дата) целиком.
type Key struct {
	CompanyID       int64
	Date            string // YYYY-MM-DD
	DurationMinutes int
}

func (k Key) String() string {
	return fmt.Sprintf("%d:%s:%d", k.CompanyID, k.Date, k.DurationMinutes)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

func cloneSlots(slots []types.TimeString) []types.TimeString {
	out := make([]types.TimeString, len(slots))
	copy(out, slots)
	return out
}
