package quota

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	configRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/config"
	"github.com/m04kA/SMC-SchedulingService/internal/scheduling"
	"github.com/m04kA/SMC-SchedulingService/internal/service/clients"
	"github.com/m04kA/SMC-SchedulingService/pkg/dberrors"
)

// Service месячный лимит записей клиента
type Service struct {
	configRepo      ConfigRepository
	clients         ClientResolver
	appointmentRepo AppointmentRepository
	timeProvider    TimeProvider
	logger          Logger
}

// NewService создает новый экземпляр сервиса квот
func NewService(
	configRepo ConfigRepository,
	clients ClientResolver,
	appointmentRepo AppointmentRepository,
	timeProvider TimeProvider,
	logger Logger,
) *Service {
	return &Service{
		configRepo:      configRepo,
		clients:         clients,
		appointmentRepo: appointmentRepo,
		timeProvider:    timeProvider,
		logger:          logger,
	}
}

// CheckMonthlyQuota проверяет лимит по телефону клиента без создания клиента.
// Неизвестный клиент проходит проверку с нулевым счетчиком.
func (s *Service) CheckMonthlyQuota(ctx context.Context, companyID int64, rawPhone string) (*domain.QuotaStatus, error) {
	s.logger.Info("CheckMonthlyQuota: company=%d", companyID)

	// 1. Конфигурация компании
	cfg, err := s.configRepo.GetConfig(ctx, companyID)
	if err != nil {
		if errors.Is(err, configRepo.ErrConfigNotFound) {
			s.logger.Error("CheckMonthlyQuota: schedule configuration missing for company=%d", companyID)
			return nil, fmt.Errorf("%w: company %d", domain.ErrConfiguration, companyID)
		}
		s.logger.Error("CheckMonthlyQuota: failed to load config for company=%d: %v", companyID, err)
		return nil, storeError("CheckMonthlyQuota", err)
	}

	// 2. Клиент по телефону
	client, err := s.clients.Lookup(ctx, companyID, rawPhone)
	if err != nil {
		if errors.Is(err, clients.ErrClientNotFound) {
			return &domain.QuotaStatus{Allowed: true, CurrentCount: 0, Limit: cfg.MonthlyAppointmentLimit}, nil
		}
		return nil, err
	}

	// 3. Подсчет за текущий месяц
	return s.Check(ctx, cfg, client.ID)
}

// Check считает активные записи клиента в текущем календарном месяце компании.
// Внутри транзакции видит записи, вставленные в ней же.
func (s *Service) Check(ctx context.Context, cfg *domain.ScheduleConfiguration, clientID int64) (*domain.QuotaStatus, error) {
	now := s.timeProvider.Now().In(cfg.Location())
	from, to := scheduling.MonthRange(now)

	count, err := s.appointmentRepo.CountActiveByClient(ctx, cfg.CompanyID, clientID, from, to.AddDate(0, 0, -1))
	if err != nil {
		s.logger.Error("Check: failed to count appointments company=%d client=%d: %v", cfg.CompanyID, clientID, err)
		return nil, storeError("Check", err)
	}

	status := &domain.QuotaStatus{
		Allowed:      !cfg.HasMonthlyLimit() || count < cfg.MonthlyAppointmentLimit,
		CurrentCount: count,
		Limit:        cfg.MonthlyAppointmentLimit,
	}

	if !status.Allowed {
		s.logger.Warn("Check: quota reached company=%d client=%d count=%d limit=%d",
			cfg.CompanyID, clientID, count, cfg.MonthlyAppointmentLimit)
	}

	return status, nil
}

// Enforce возвращает QuotaExceededError, если лимит исчерпан
func (s *Service) Enforce(ctx context.Context, cfg *domain.ScheduleConfiguration, clientID int64) error {
	if !cfg.HasMonthlyLimit() {
		return nil
	}

	status, err := s.Check(ctx, cfg, clientID)
	if err != nil {
		return err
	}
	if !status.Allowed {
		return &domain.QuotaExceededError{Current: status.CurrentCount, Limit: status.Limit}
	}
	return nil
}

func storeError(op string, err error) error {
	if dberrors.IsTransient(err) {
		return fmt.Errorf("%w: %s - %v", domain.ErrTransientStore, op, err)
	}
	return fmt.Errorf("%w: %s - %v", ErrInternal, op, err)
}
