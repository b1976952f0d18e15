package domain

import (
	"time"

	"github.com/m04kA/SMC-SchedulingService/pkg/types"
)

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "pending"
	StatusConfirmed AppointmentStatus = "confirmed"
	StatusCompleted AppointmentStatus = "completed"
	StatusCancelled AppointmentStatus = "cancelled"
	StatusExpired   AppointmentStatus = "expired"
)

// Appointment represents a booked service slot on the company timeline
type Appointment struct {
	ID        int64
	CompanyID int64
	ClientID  int64
	ServiceID int64
	Date      time.Time
	StartTime types.TimeString
	// Копируется из услуги при создании, последующие правки услуги на запись не влияют
	DurationMinutes int
	Status          AppointmentStatus
	Notes           *string

	CancellationReason *string
	CancelledAt        *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsActive returns true if the appointment still occupies its interval
func (a *Appointment) IsActive() bool {
	return a.Status != StatusCancelled && a.Status != StatusExpired
}

// CanBeCancelled returns true if the appointment can be cancelled
func (a *Appointment) CanBeCancelled() bool {
	return a.Status == StatusPending || a.Status == StatusConfirmed
}

// CanBeCompleted returns true if the merchant can mark the appointment as done
func (a *Appointment) CanBeCompleted() bool {
	return a.Status == StatusConfirmed
}

// StartMinute minutes since midnight
func (a *Appointment) StartMinute() int {
	return a.StartTime.Minutes()
}

// EndMinute exclusive end of the occupied interval
func (a *Appointment) EndMinute() int {
	return a.StartTime.Minutes() + a.DurationMinutes
}

// IsValidStatus проверяет, что статус входит в известный набор
func IsValidStatus(s AppointmentStatus) bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled, StatusExpired:
		return true
	}
	return false
}

// AppointmentsFilter фильтр для выборки записей компании
type AppointmentsFilter struct {
	CompanyID       int64              // Обязательный параметр
	ClientID        *int64             // Только записи клиента
	StartDate       *time.Time         // Начало периода включительно
	EndDate         *time.Time         // Конец периода включительно
	Status          *AppointmentStatus // Фильтр по статусу
	IncludeInactive bool               // Включать отмененные и просроченные
}

// IsSingleDay true, если фильтр ограничен одной датой
func (f AppointmentsFilter) IsSingleDay() bool {
	return f.StartDate != nil && f.EndDate != nil && f.StartDate.Equal(*f.EndDate)
}
