package config

import "errors"

var (
	// ErrConfigNotFound возвращается, когда у компании нет конфигурации расписания
	ErrConfigNotFound = errors.New("config.repository: schedule configuration not found")

	// ErrOverrideNotFound возвращается, когда переопределение дня не найдено
	ErrOverrideNotFound = errors.New("config.repository: day override not found")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("config.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("config.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("config.repository: failed to scan row")
)
