package cancel_booking

import (
	"strings"

	"github.com/m04kA/SMC-SchedulingService/internal/service/bookings/models"
)

// CancelBookingRequest HTTP request model, тело запроса необязательно
type CancelBookingRequest struct {
	Reason *string `json:"reason,omitempty"`
}

// ToServiceRequest конвертирует HTTP request в модель сервиса
func (r *CancelBookingRequest) ToServiceRequest() *models.CancelBookingRequest {
	req := &models.CancelBookingRequest{}
	if r.Reason != nil {
		if reason := strings.TrimSpace(*r.Reason); reason != "" {
			req.Reason = &reason
		}
	}
	return req
}
