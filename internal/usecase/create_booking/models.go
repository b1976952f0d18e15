package create_booking

import (
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/pkg/types"
)

// Request модель запроса на создание записи
type Request struct {
	CompanyID int64                // ID компании
	ServiceID int64                // ID услуги
	Client    domain.ClientContact // Контакты клиента
	Date      time.Time            // Дата записи (без времени)
	StartTime types.TimeString     // Время начала (например, "10:00")
	Notes     *string              // Дополнительные заметки (опционально)
}

// Response модель ответа с созданной записью
type Response struct {
	ID              int64            // ID созданной записи
	CompanyID       int64            // ID компании
	ClientID        int64            // ID клиента
	ServiceID       int64            // ID услуги
	Date            time.Time        // Дата записи
	StartTime       types.TimeString // Время начала
	EndTime         types.TimeString // Время окончания
	DurationMinutes int              // Длительность в минутах
	Status          string           // Статус записи

	// Денормализованные данные
	ServiceName string  // Название услуги
	ClientName  string  // Имя клиента
	ClientPhone string  // Телефон в том виде, в котором его ввел клиент
	Notes       *string // Заметки

	CreatedAt time.Time // Время создания
	UpdatedAt time.Time // Время обновления
}

func newResponse(a *domain.Appointment, service *domain.Service, client *domain.Client) *Response {
	resp := &Response{
		ID:              a.ID,
		CompanyID:       a.CompanyID,
		ClientID:        a.ClientID,
		ServiceID:       a.ServiceID,
		Date:            a.Date,
		StartTime:       a.StartTime,
		DurationMinutes: a.DurationMinutes,
		Status:          string(a.Status),
		ServiceName:     service.Name,
		ClientName:      client.Name,
		ClientPhone:     client.Phone,
		Notes:           a.Notes,
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}
	if end, err := a.StartTime.AddMinutes(a.DurationMinutes); err == nil {
		resp.EndTime = end
	}
	return resp
}
