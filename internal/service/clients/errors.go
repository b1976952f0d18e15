package clients

import (
	"errors"
	"fmt"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

var (
	// ErrClientNotFound возвращается, когда клиента с таким телефоном нет
	ErrClientNotFound = fmt.Errorf("%w: client", domain.ErrNotFound)

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("clients.service: internal error")
)
