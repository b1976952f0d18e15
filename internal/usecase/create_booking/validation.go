package create_booking

import (
	"fmt"
	"strings"

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

	// Проверяем, что дата не является нулевой
	if req.Date.IsZero() {
		return domain.NewValidationError("date", "is required")
	}

	// Проверяем, что время начала указано
	if req.StartTime.IsZero() {
		return domain.NewValidationError("time", "is required")
	}

	// Валидируем формат времени
	if err := req.StartTime.Validate(); err != nil {
		return domain.NewValidationError("time", err.Error())
	}

	if strings.TrimSpace(req.Client.Name) == "" {
		return domain.NewValidationError("name", "is required")
	}

	if strings.TrimSpace(req.Client.Phone) == "" {
		return domain.NewValidationError("phone", "is required")
	}

	if req.Notes != nil && len(*req.Notes) > domain.MaxNotesLength {
		return domain.NewValidationError("notes", fmt.Sprintf("must be at most %d characters", domain.MaxNotesLength))
	}

	return nil
}
