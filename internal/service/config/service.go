package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	configRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/config"
	"github.com/m04kA/SMC-SchedulingService/internal/service/config/models"
	"github.com/m04kA/SMC-SchedulingService/pkg/dberrors"
	"github.com/m04kA/SMC-SchedulingService/pkg/types"
)

// Service сервис для работы с конфигурацией расписания компании
type Service struct {
	configRepo      ConfigRepository
	txManager       TransactionManager
	cache           SlotCache
	defaultTimezone string
	logger          Logger
}

// NewService создает новый экземпляр сервиса конфигурации
func NewService(
	configRepo ConfigRepository,
	txManager TransactionManager,
	cache SlotCache,
	defaultTimezone string,
	logger Logger,
) *Service {
	if defaultTimezone == "" {
		defaultTimezone = domain.DefaultTimezone
	}
	return &Service{
		configRepo:      configRepo,
		txManager:       txManager,
		cache:           cache,
		defaultTimezone: defaultTimezone,
		logger:          logger,
	}
}

// Get получает конфигурацию компании вместе с переопределениями дней
func (s *Service) Get(ctx context.Context, companyID int64) (*models.ScheduleResponse, error) {
	s.logger.Info("Get: fetching schedule for company=%d", companyID)

	schedule, err := s.configRepo.GetSchedule(ctx, companyID)
	if err != nil {
		if errors.Is(err, configRepo.ErrConfigNotFound) {
			s.logger.Warn("Get: schedule for company=%d not found", companyID)
			return nil, ErrConfigNotFound
		}
		s.logger.Error("Get: repository error for company=%d: %v", companyID, err)
		return nil, storeError("Get", err)
	}

	return models.FromDomainSchedule(schedule), nil
}

// Update частично обновляет конфигурацию (или создает ее при первом вызове)
// и переопределения дней. Все закешированные слоты компании сбрасываются.
func (s *Service) Update(ctx context.Context, companyID int64, req *models.UpdateScheduleRequest) (*models.ScheduleResponse, error) {
	s.logger.Info("Update: updating schedule for company=%d", companyID)

	// 1. Текущая конфигурация или значения по умолчанию
	cfg, err := s.configRepo.GetConfig(ctx, companyID)
	if err != nil {
		if !errors.Is(err, configRepo.ErrConfigNotFound) {
			s.logger.Error("Update: repository error for company=%d: %v", companyID, err)
			return nil, storeError("Update", err)
		}
		s.logger.Info("Update: no schedule for company=%d yet, starting from defaults", companyID)
		cfg = s.defaultConfig(companyID)
	}

	// 2. Применяем изменения к копии и валидируем
	updated := *cfg
	if err := req.ApplyToConfig(&updated); err != nil {
		s.logger.Warn("Update: invalid patch for company=%d: %v", companyID, err)
		return nil, err
	}
	if err := ValidateConfig(&updated); err != nil {
		s.logger.Warn("Update: validation failed for company=%d: %v", companyID, err)
		return nil, err
	}

	overrides, err := req.ToDomainOverrides(companyID)
	if err != nil {
		s.logger.Warn("Update: invalid day overrides for company=%d: %v", companyID, err)
		return nil, err
	}
	for _, o := range overrides {
		if err := ValidateOverride(o); err != nil {
			s.logger.Warn("Update: override validation failed for company=%d: %v", companyID, err)
			return nil, err
		}
	}

	// 3. Сохраняем в одной транзакции
	err = s.txManager.Do(ctx, func(ctx context.Context) error {
		if _, err := s.configRepo.UpsertConfig(ctx, &updated); err != nil {
			return err
		}
		for _, o := range overrides {
			if _, err := s.configRepo.UpsertOverride(ctx, o); err != nil {
				return err
			}
		}
		for _, wd := range req.RemoveOverrides {
			err := s.configRepo.DeleteOverride(ctx, companyID, time.Weekday(wd))
			if err != nil && !errors.Is(err, configRepo.ErrOverrideNotFound) {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Update: failed to save schedule for company=%d: %v", companyID, err)
		return nil, storeError("Update", err)
	}

	// 4. Слоты всех дат компании могли измениться
	s.cache.InvalidateCompany(ctx, companyID)

	s.logger.Info("Update: successfully updated schedule for company=%d", companyID)
	return s.Get(ctx, companyID)
}

func (s *Service) defaultConfig(companyID int64) *domain.ScheduleConfiguration {
	return &domain.ScheduleConfiguration{
		CompanyID:                   companyID,
		WorkingDays:                 []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday},
		SlotIntervalMinutes:         domain.DefaultSlotIntervalMinutes,
		MaxSimultaneousAppointments: domain.DefaultMaxSimultaneousAppointments,
		AdvanceBookingDays:          domain.DefaultAdvanceBookingDays,
		MonthlyAppointmentLimit:     domain.DefaultMonthlyAppointmentLimit,
		Timezone:                    s.defaultTimezone,
	}
}

// ValidateConfig проверяет общую конфигурацию расписания
func ValidateConfig(cfg *domain.ScheduleConfiguration) error {
	if len(cfg.WorkingDays) == 0 {
		return domain.NewValidationError("workingDays", "at least one working day is required")
	}
	seen := make(map[time.Weekday]bool, len(cfg.WorkingDays))
	for _, d := range cfg.WorkingDays {
		if d < time.Sunday || d > time.Saturday {
			return domain.NewValidationError("workingDays", fmt.Sprintf("invalid weekday %d", d))
		}
		if seen[d] {
			return domain.NewValidationError("workingDays", fmt.Sprintf("duplicate weekday %d", d))
		}
		seen[d] = true
	}

	if err := validateWindow("openingTime", "closingTime", cfg.OpeningTime, cfg.ClosingTime); err != nil {
		return err
	}

	if cfg.SlotIntervalMinutes < domain.MinSlotIntervalMinutes || cfg.SlotIntervalMinutes > domain.MaxSlotIntervalMinutes {
		return domain.NewValidationError("slotIntervalMinutes",
			fmt.Sprintf("must be between %d and %d", domain.MinSlotIntervalMinutes, domain.MaxSlotIntervalMinutes))
	}

	if cfg.LunchEnabled {
		if err := validateLunch(cfg.OpeningTime, cfg.ClosingTime, cfg.LunchStart, cfg.LunchEnd); err != nil {
			return err
		}
	}

	if cfg.MaxSimultaneousAppointments < domain.MinSimultaneousAppointments ||
		cfg.MaxSimultaneousAppointments > domain.MaxSimultaneousAppointments {
		return domain.NewValidationError("maxSimultaneousAppointments",
			fmt.Sprintf("must be between %d and %d", domain.MinSimultaneousAppointments, domain.MaxSimultaneousAppointments))
	}

	if cfg.AdvanceBookingDays < 0 || cfg.AdvanceBookingDays > domain.MaxAdvanceBookingDays {
		return domain.NewValidationError("advanceBookingDays",
			fmt.Sprintf("must be between 0 and %d", domain.MaxAdvanceBookingDays))
	}

	if cfg.MonthlyAppointmentLimit < 0 || cfg.MonthlyAppointmentLimit > domain.MaxMonthlyAppointmentLimit {
		return domain.NewValidationError("monthlyAppointmentLimit",
			fmt.Sprintf("must be between 0 and %d", domain.MaxMonthlyAppointmentLimit))
	}

	if _, err := time.LoadLocation(cfg.Timezone); err != nil || cfg.Timezone == "" {
		return domain.NewValidationError("timezone", fmt.Sprintf("unknown timezone %q", cfg.Timezone))
	}

	return nil
}

// ValidateOverride проверяет переопределение дня недели
func ValidateOverride(o *domain.DayOverride) error {
	if o.Weekday < time.Sunday || o.Weekday > time.Saturday {
		return domain.NewValidationError("dayOverrides.weekday", fmt.Sprintf("invalid weekday %d", o.Weekday))
	}
	if err := validateWindow("dayOverrides.openingTime", "dayOverrides.closingTime", o.OpeningTime, o.ClosingTime); err != nil {
		return err
	}
	if o.LunchEnabled {
		return validateLunch(o.OpeningTime, o.ClosingTime, o.LunchStart, o.LunchEnd)
	}
	return nil
}

func validateWindow(openField, closeField string, open, closing types.TimeString) error {
	if open.Validate() != nil || open.Minutes() >= types.MinutesPerDay {
		return domain.NewValidationError(openField, "must be a valid HH:MM time")
	}
	if closing.Validate() != nil {
		return domain.NewValidationError(closeField, "must be a valid HH:MM time")
	}
	if !open.IsBefore(closing) {
		return domain.NewValidationError(closeField, "must be after opening time")
	}
	return nil
}

func validateLunch(open, closing, start, end types.TimeString) error {
	if start.Validate() != nil || end.Validate() != nil {
		return domain.NewValidationError("lunch", "lunch start and end are required when lunch is enabled")
	}
	if !start.IsBefore(end) {
		return domain.NewValidationError("lunchEnd", "must be after lunch start")
	}
	if start.IsBefore(open) || end.IsAfter(closing) {
		return domain.NewValidationError("lunch", "lunch must be within working hours")
	}
	return nil
}

func storeError(op string, err error) error {
	if dberrors.IsTransient(err) {
		return fmt.Errorf("%w: %s - %v", domain.ErrTransientStore, op, err)
	}
	return fmt.Errorf("%w: %s - %v", ErrInternal, op, err)
}
