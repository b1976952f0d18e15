package events

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

// Темы событий записи
const (
	SubjectBookingCreated   = "booking.created"
	SubjectBookingCancelled = "booking.cancelled"
	SubjectBookingCompleted = "booking.completed"
	SubjectBookingExpired   = "booking.expired"
)

// Publisher публикует событие в шину
type Publisher interface {
	Publish(ctx context.Context, subject string, event *BookingEvent) error
	Close() error
}

// BookingEvent полезная нагрузка событий по записи
type BookingEvent struct {
	ID              string    `json:"id"`
	OccurredAt      time.Time `json:"occurredAt"`
	AppointmentID   int64     `json:"appointmentId"`
	CompanyID       int64     `json:"companyId"`
	ClientID        int64     `json:"clientId"`
	ServiceID       int64     `json:"serviceId"`
	Date            string    `json:"date"`
	StartTime       string    `json:"startTime"`
	DurationMinutes int       `json:"durationMinutes"`
	Status          string    `json:"status"`
	Reason          *string   `json:"reason,omitempty"`
}

// NewBookingEvent заполняет идентификатор и время события
func NewBookingEvent(occurredAt time.Time) *BookingEvent {
	return &BookingEvent{
		ID:         uuid.NewString(),
		OccurredAt: occurredAt.UTC(),
	}
}

// FromAppointment событие по текущему состоянию записи
func FromAppointment(a *domain.Appointment, occurredAt time.Time) *BookingEvent {
	e := NewBookingEvent(occurredAt)
	e.AppointmentID = a.ID
	e.CompanyID = a.CompanyID
	e.ClientID = a.ClientID
	e.ServiceID = a.ServiceID
	e.Date = a.Date.Format(domain.DateFormat)
	e.StartTime = a.StartTime.String()
	e.DurationMinutes = a.DurationMinutes
	e.Status = string(a.Status)
	e.Reason = a.CancellationReason
	return e
}

// NoopPublisher используется, когда шина событий выключена
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, string, *BookingEvent) error {
	return nil
}

func (NoopPublisher) Close() error {
	return nil
}
