package config

import (
	"errors"
	"fmt"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

var (
	// ErrConfigNotFound возвращается, когда у компании нет конфигурации расписания
	ErrConfigNotFound = fmt.Errorf("%w: schedule configuration", domain.ErrNotFound)

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("config.service: internal error")
)
