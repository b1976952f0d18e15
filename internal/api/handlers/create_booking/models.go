package create_booking

import (
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	createBooking "github.com/m04kA/SMC-SchedulingService/internal/usecase/create_booking"
	"github.com/m04kA/SMC-SchedulingService/pkg/types"
)

// CreateBookingRequest HTTP request model
type CreateBookingRequest struct {
	Name      string  `json:"name"`
	Phone     string  `json:"phone"`
	Email     *string `json:"email,omitempty"`
	ServiceID int64   `json:"serviceId"`
	Date      string  `json:"date"` // "2025-10-15"
	Time      string  `json:"time"` // "10:00"
	Notes     *string `json:"notes,omitempty"`
}

// BookingResponse HTTP response model
type BookingResponse struct {
	ID              int64   `json:"id"`
	CompanyID       int64   `json:"companyId"`
	ClientID        int64   `json:"clientId"`
	ServiceID       int64   `json:"serviceId"`
	Date            string  `json:"date"`
	StartTime       string  `json:"startTime"`
	EndTime         string  `json:"endTime"`
	DurationMinutes int     `json:"durationMinutes"`
	Status          string  `json:"status"`
	ServiceName     string  `json:"serviceName"`
	ClientName      string  `json:"clientName"`
	ClientPhone     string  `json:"clientPhone"`
	Notes           *string `json:"notes,omitempty"`
	CreatedAt       string  `json:"createdAt"`
	UpdatedAt       string  `json:"updatedAt"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case.
// Ошибки разбора даты и времени возвращаются как *domain.ValidationError.
func (r *CreateBookingRequest) ToUseCaseRequest(companyID int64) (*createBooking.Request, error) {
	if r.Date == "" {
		return nil, domain.NewValidationError("date", "is required")
	}
	date, err := time.Parse(domain.DateFormat, r.Date)
	if err != nil {
		return nil, domain.NewValidationError("date", "expected YYYY-MM-DD")
	}

	if r.Time == "" {
		return nil, domain.NewValidationError("time", "is required")
	}
	startTime, err := types.NewTimeStringFromString(r.Time)
	if err != nil {
		return nil, domain.NewValidationError("time", "expected HH:MM")
	}

	return &createBooking.Request{
		CompanyID: companyID,
		ServiceID: r.ServiceID,
		Client: domain.ClientContact{
			Name:  r.Name,
			Phone: r.Phone,
			Email: r.Email,
		},
		Date:      date,
		StartTime: startTime,
		Notes:     r.Notes,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *createBooking.Response) *BookingResponse {
	return &BookingResponse{
		ID:              resp.ID,
		CompanyID:       resp.CompanyID,
		ClientID:        resp.ClientID,
		ServiceID:       resp.ServiceID,
		Date:            resp.Date.Format(domain.DateFormat),
		StartTime:       resp.StartTime.String(),
		EndTime:         resp.EndTime.String(),
		DurationMinutes: resp.DurationMinutes,
		Status:          resp.Status,
		ServiceName:     resp.ServiceName,
		ClientName:      resp.ClientName,
		ClientPhone:     resp.ClientPhone,
		Notes:           resp.Notes,
		CreatedAt:       resp.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       resp.UpdatedAt.Format(time.RFC3339),
	}
}
