package get_available_slots

import (
	"errors"
	"fmt"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

var (
	// ErrConfigNotFound возвращается, когда у компании нет конфигурации расписания
	ErrConfigNotFound = fmt.Errorf("%w: company has no schedule configuration", domain.ErrConfiguration)

	// ErrServiceNotFound возвращается, когда услуга не найдена
	ErrServiceNotFound = fmt.Errorf("%w: service", domain.ErrNotFound)

	// ErrServiceInactive возвращается, когда услуга отключена компанией
	ErrServiceInactive = fmt.Errorf("%w: service is not active", domain.ErrValidation)

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("get_available_slots: internal error")
)
