package get_available_slots

import (
	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.CompanyID <= 0 {
		return domain.NewValidationError("companyId", "must be positive")
	}

	if req.ServiceID <= 0 {
		return domain.NewValidationError("serviceId", "must be positive")
	}

	if req.Date.IsZero() {
		return domain.NewValidationError("date", "is required")
	}

	return nil
}
