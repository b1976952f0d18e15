package domain

import (
	"errors"
	"fmt"
)

// ErrorKind machine-distinguishable category of a rejection
type ErrorKind string

const (
	KindConfiguration  ErrorKind = "configuration"
	KindClosedDay      ErrorKind = "closed_day"
	KindSlotTaken      ErrorKind = "slot_taken"
	KindQuotaExceeded  ErrorKind = "quota_exceeded"
	KindValidation     ErrorKind = "validation"
	KindTransientStore ErrorKind = "transient_store"
	KindNotFound       ErrorKind = "not_found"
	KindInternal       ErrorKind = "internal"
)

var (
	// ErrConfiguration у компании нет конфигурации расписания
	ErrConfiguration = errors.New("domain: schedule configuration missing")

	// ErrClosedDay компания не работает в этот день
	ErrClosedDay = errors.New("domain: company is closed on this date")

	// ErrSlotTaken слот занят (проигранная гонка или устаревший кеш)
	ErrSlotTaken = errors.New("domain: slot is no longer available")

	// ErrQuotaExceeded превышен месячный лимит записей клиента
	ErrQuotaExceeded = errors.New("domain: monthly appointment limit reached")

	// ErrValidation некорректные входные данные
	ErrValidation = errors.New("domain: validation failed")

	// ErrTransientStore хранилище недоступно после всех повторов
	ErrTransientStore = errors.New("domain: store temporarily unavailable")

	// ErrNotFound сущность не найдена
	ErrNotFound = errors.New("domain: not found")
)

// QuotaExceededError carries the counts behind a quota rejection
type QuotaExceededError struct {
	Current int
	Limit   int
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("%v: %d of %d", ErrQuotaExceeded, e.Current, e.Limit)
}

func (e *QuotaExceededError) Unwrap() error {
	return ErrQuotaExceeded
}

// ValidationError names the offending field
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%v: %s: %s", ErrValidation, e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// NewValidationError shortcut for &ValidationError{...}
func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// KindOf maps an error chain to its ErrorKind
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrSlotTaken):
		return KindSlotTaken
	case errors.Is(err, ErrQuotaExceeded):
		return KindQuotaExceeded
	case errors.Is(err, ErrClosedDay):
		return KindClosedDay
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrConfiguration):
		return KindConfiguration
	case errors.Is(err, ErrTransientStore):
		return KindTransientStore
	default:
		return KindInternal
	}
}
