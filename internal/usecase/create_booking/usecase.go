package create_booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/infra/events"
	appointmentRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/appointment"
	configRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/config"
	serviceRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/service"
	"github.com/m04kA/SMC-SchedulingService/internal/scheduling"
	"github.com/m04kA/SMC-SchedulingService/pkg/dberrors"
	"github.com/m04kA/SMC-SchedulingService/pkg/retry"
)

const (
	// retryOperation метка повторов записи в метриках
	retryOperation = "create_booking"
	// writeTimeout предел для записи после отвязки от контекста запроса
	writeTimeout = 15 * time.Second
)

// UseCase use case для создания записи
type UseCase struct {
	appointmentRepo AppointmentRepository
	configRepo      ConfigRepository
	serviceRepo     ServiceRepository
	clients         ClientResolver
	quota           QuotaEnforcer
	txManager       TransactionManager
	cache           SlotCache
	publisher       EventPublisher
	metrics         Metrics
	retryPolicy     retry.Policy
	timeProvider    TimeProvider
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	appointmentRepo AppointmentRepository,
	configRepo ConfigRepository,
	serviceRepo ServiceRepository,
	clients ClientResolver,
	quota QuotaEnforcer,
	txManager TransactionManager,
	cache SlotCache,
	publisher EventPublisher,
	metrics Metrics,
	retryPolicy retry.Policy,
	timeProvider TimeProvider,
	logger Logger,
) *UseCase {
	if timeProvider == nil {
		timeProvider = &RealTimeProvider{}
	}
	return &UseCase{
		appointmentRepo: appointmentRepo,
		configRepo:      configRepo,
		serviceRepo:     serviceRepo,
		clients:         clients,
		quota:           quota,
		txManager:       txManager,
		cache:           cache,
		publisher:       publisher,
		metrics:         metrics,
		retryPolicy:     retryPolicy,
		timeProvider:    timeProvider,
		logger:          logger,
	}
}

// Execute выполняет use case создания записи.
// Предварительные проверки только улучшают сообщение об ошибке; занятость интервала
// гарантируют повторная проверка в сериализуемой транзакции и ограничения БД.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	resp, err := uc.execute(ctx, req)
	if err != nil {
		uc.metrics.IncBookingRejected(string(domain.KindOf(err)))
		return nil, err
	}
	uc.metrics.IncBookingCreated()
	return resp, nil
}

func (uc *UseCase) execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateBooking: company=%d, service=%d, date=%s, time=%s",
		req.CompanyID, req.ServiceID, req.Date.Format(domain.DateFormat), req.StartTime)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateBooking: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем расписание компании
	schedule, err := uc.configRepo.GetSchedule(ctx, req.CompanyID)
	if err != nil {
		if errors.Is(err, configRepo.ErrConfigNotFound) {
			uc.logger.Error("CreateBooking: company id=%d has no schedule configuration", req.CompanyID)
			return nil, ErrConfigNotFound
		}
		uc.logger.Error("CreateBooking: failed to get schedule for company id=%d: %v", req.CompanyID, err)
		return nil, storeError("failed to get schedule", err)
	}
	cfg := schedule.Config

	// 3. Получаем услугу
	service, err := uc.serviceRepo.GetByID(ctx, req.CompanyID, req.ServiceID)
	if err != nil {
		if errors.Is(err, serviceRepo.ErrServiceNotFound) {
			uc.logger.Warn("CreateBooking: service id=%d not found", req.ServiceID)
			return nil, ErrServiceNotFound
		}
		uc.logger.Error("CreateBooking: failed to get service id=%d: %v", req.ServiceID, err)
		return nil, storeError("failed to get service", err)
	}
	if !service.Active {
		uc.logger.Warn("CreateBooking: service id=%d is not active", req.ServiceID)
		return nil, ErrServiceInactive
	}

	// 4. Валидация даты в часовом поясе компании
	now := uc.timeProvider.Now().In(cfg.Location())
	if err := scheduling.CheckBookingHorizon(req.Date, now, cfg.AdvanceBookingDays); err != nil {
		uc.logger.Warn("CreateBooking: date validation failed: %v", err)
		return nil, err
	}

	// 5. Рабочее окно и сетка слотов
	day, err := scheduling.ResolveDaySchedule(schedule, req.Date)
	if err != nil {
		if errors.Is(err, domain.ErrClosedDay) {
			uc.logger.Warn("CreateBooking: company id=%d is closed on %s", req.CompanyID, req.Date.Format(domain.DateFormat))
			return nil, ErrCompanyClosed
		}
		uc.logger.Error("CreateBooking: invalid schedule for company id=%d: %v", req.CompanyID, err)
		return nil, err
	}

	if !scheduling.Contains(scheduling.GenerateSlots(day, req.Date, service.DurationMinutes, now), req.StartTime) {
		uc.logger.Warn("CreateBooking: time=%s is not an offered slot on %s", req.StartTime, req.Date.Format(domain.DateFormat))
		return nil, ErrInvalidTimeSlot
	}

	date := scheduling.DateOnly(req.Date)
	dayFilter := domain.AppointmentsFilter{
		CompanyID: req.CompanyID,
		StartDate: &date,
		EndDate:   &date,
	}

	// 6. Предварительная проверка занятости (может устареть)
	existing, err := uc.appointmentRepo.GetByFilter(ctx, dayFilter)
	if err != nil {
		uc.logger.Error("CreateBooking: failed to get appointments: %v", err)
		return nil, storeError("failed to get appointments", err)
	}
	if conflict := scheduling.FindConflict(req.StartTime, service.DurationMinutes, existing); conflict != nil {
		uc.logger.Warn("CreateBooking: slot %s is taken by appointment id=%d", req.StartTime, conflict.ID)
		return nil, ErrSlotNotAvailable
	}

	// 7. Предварительная проверка квоты (клиент еще может не существовать)
	if cfg.HasMonthlyLimit() {
		if err := uc.precheckQuota(ctx, cfg, req.Client.Phone); err != nil {
			return nil, err
		}
	}

	// 8. Клиент: один upsert по (компания, нормализованный телефон)
	client, err := uc.clients.Resolve(ctx, req.CompanyID, req.Client)
	if err != nil {
		uc.logger.Error("CreateBooking: failed to resolve client for company=%d: %v", req.CompanyID, err)
		return nil, err
	}

	// 9. Авторитетная запись в сериализуемой транзакции с повтором транзиентных ошибок.
	// С этого момента отключение клиента запись не прерывает.
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), writeTimeout)
	defer cancel()

	var created *domain.Appointment
	attempt := 0

	err = retry.Do(writeCtx, uc.retryPolicy, isRetryable,
		func(err error, next time.Duration) {
			uc.metrics.IncWriteRetry(retryOperation)
			uc.logger.Warn("CreateBooking: attempt %d failed, retrying in %s: %v", attempt, next, err)
		},
		func() error {
			attempt++
			return uc.txManager.DoSerializable(writeCtx, func(txCtx context.Context) error {
				// 9.1. Повторная проверка на свежих данных с блокировкой дня
				appointments, err := uc.appointmentRepo.GetByFilter(txCtx, dayFilter)
				if err != nil {
					return fmt.Errorf("%w: failed to get appointments: %w", ErrInternal, err)
				}
				if conflict := scheduling.FindConflict(req.StartTime, service.DurationMinutes, appointments); conflict != nil {
					uc.logger.Warn("CreateBooking: slot %s was taken concurrently by appointment id=%d", req.StartTime, conflict.ID)
					return ErrSlotNotAvailable
				}

				// 9.2. Квота с учетом записей, видимых в транзакции
				if err := uc.quota.Enforce(txCtx, cfg, client.ID); err != nil {
					return err
				}

				// 9.3. Вставка; длительность копируется из услуги
				a, err := uc.appointmentRepo.Create(txCtx, &domain.Appointment{
					CompanyID:       req.CompanyID,
					ClientID:        client.ID,
					ServiceID:       service.ID,
					Date:            date,
					StartTime:       req.StartTime,
					DurationMinutes: service.DurationMinutes,
					Status:          domain.StatusConfirmed,
					Notes:           req.Notes,
				})
				if err != nil {
					if errors.Is(err, appointmentRepo.ErrSlotOccupied) {
						uc.logger.Warn("CreateBooking: storage constraint rejected slot %s on %s", req.StartTime, date.Format(domain.DateFormat))
						return ErrSlotNotAvailable
					}
					return fmt.Errorf("%w: failed to create appointment: %w", ErrInternal, err)
				}

				created = a
				return nil
			})
		})

	if err != nil {
		switch {
		case errors.Is(err, retry.ErrExhausted):
			uc.logger.Error("CreateBooking: store unavailable after %d attempts: %v", attempt, err)
			return nil, fmt.Errorf("%w: create appointment: %v", domain.ErrTransientStore, err)
		case domain.KindOf(err) == domain.KindInternal:
			uc.logger.Error("CreateBooking: failed to create appointment: %v", err)
			if !errors.Is(err, ErrInternal) {
				return nil, fmt.Errorf("%w: %v", ErrInternal, err)
			}
			return nil, err
		default:
			uc.logger.Warn("CreateBooking: rejected: %v", err)
			return nil, err
		}
	}

	// 10. Сбрасываем кеш дня и публикуем событие
	uc.cache.Invalidate(writeCtx, created.CompanyID, created.Date.Format(domain.DateFormat))

	event := events.FromAppointment(created, uc.timeProvider.Now())
	if err := uc.publisher.Publish(writeCtx, events.SubjectBookingCreated, event); err != nil {
		uc.logger.Warn("CreateBooking: failed to publish %s for appointment id=%d: %v",
			events.SubjectBookingCreated, created.ID, err)
	}

	uc.logger.Info("CreateBooking: successfully created appointment id=%d for client id=%d", created.ID, client.ID)

	return newResponse(created, service, client), nil
}

// precheckQuota отклоняет запись, если у существующего клиента лимит уже исчерпан
func (uc *UseCase) precheckQuota(ctx context.Context, cfg *domain.ScheduleConfiguration, rawPhone string) error {
	client, err := uc.clients.Lookup(ctx, cfg.CompanyID, rawPhone)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		uc.logger.Warn("CreateBooking: client lookup failed for company=%d: %v", cfg.CompanyID, err)
		return err
	}

	status, err := uc.quota.Check(ctx, cfg, client.ID)
	if err != nil {
		return err
	}
	if !status.Allowed {
		uc.logger.Warn("CreateBooking: client id=%d reached monthly limit %d/%d",
			client.ID, status.CurrentCount, status.Limit)
		return &domain.QuotaExceededError{Current: status.CurrentCount, Limit: status.Limit}
	}
	return nil
}

// isRetryable транзиентная ошибка драйвера или сервиса, отдавшего ErrTransientStore
func isRetryable(err error) bool {
	return dberrors.IsTransient(err) || errors.Is(err, domain.ErrTransientStore)
}

func storeError(op string, err error) error {
	if dberrors.IsTransient(err) {
		return fmt.Errorf("%w: %s: %v", domain.ErrTransientStore, op, err)
	}
	return fmt.Errorf("%w: %s: %v", ErrInternal, op, err)
}
