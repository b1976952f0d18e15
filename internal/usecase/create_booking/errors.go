package create_booking

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

	// ErrCompanyClosed возвращается, когда компания закрыта в указанную дату
	ErrCompanyClosed = fmt.Errorf("%w: create_booking", domain.ErrClosedDay)

	// ErrInvalidTimeSlot возвращается, когда время не входит в сетку слотов дня
	// (не кратно интервалу, вне рабочего окна, на обеде или слишком близко к текущему времени)
	ErrInvalidTimeSlot = &domain.ValidationError{Field: "time", Reason: "is not an offered slot"}

	// ErrSlotNotAvailable возвращается, когда интервал уже занят
	ErrSlotNotAvailable = fmt.Errorf("%w: create_booking", domain.ErrSlotTaken)

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_booking: internal error")
)
