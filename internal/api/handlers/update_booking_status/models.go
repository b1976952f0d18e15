package update_booking_status

import (
	"strings"

	"github.com/m04kA/SMC-SchedulingService/internal/service/bookings/models"
)

// UpdateBookingStatusRequest HTTP request model
type UpdateBookingStatusRequest struct {
	Status string `json:"status"` // "completed" или "cancelled"
}

// ToServiceRequest конвертирует HTTP request в модель сервиса
func (r *UpdateBookingStatusRequest) ToServiceRequest() *models.UpdateStatusRequest {
	return &models.UpdateStatusRequest{
		Status: strings.ToLower(strings.TrimSpace(r.Status)),
	}
}
