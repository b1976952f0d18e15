package get_available_slots

import (
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

// Request модель запроса на получение доступных слотов
type Request struct {
	CompanyID int64     // ID компании
	ServiceID int64     // ID услуги
	Date      time.Time // Дата для получения слотов (без времени)
}

// Response модель ответа со списком доступных слотов
type Response struct {
	Date            time.Time         // Дата, на которую запрашивались слоты
	CompanyID       int64             // ID компании
	ServiceID       int64             // ID услуги
	DurationMinutes int               // Длительность услуги
	Closed          bool              // Компания не работает в этот день
	Slots           []domain.TimeSlot // Свободные слоты по возрастанию
}
