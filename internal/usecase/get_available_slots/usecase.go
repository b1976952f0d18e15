package get_available_slots

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/infra/cache"
	configRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/config"
	serviceRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/service"
	"github.com/m04kA/SMC-SchedulingService/internal/scheduling"
	"github.com/m04kA/SMC-SchedulingService/pkg/dberrors"
	"github.com/m04kA/SMC-SchedulingService/pkg/types"
)

// UseCase use case для получения доступных слотов
type UseCase struct {
	appointmentRepo AppointmentRepository
	configRepo      ConfigRepository
	serviceRepo     ServiceRepository
	cache           SlotCache
	metrics         Metrics
	timeProvider    TimeProvider
	logger          Logger

	// Параллельные промахи по одному ключу считаются один раз
	group singleflight.Group
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	appointmentRepo AppointmentRepository,
	configRepo ConfigRepository,
	serviceRepo ServiceRepository,
	cache SlotCache,
	metrics Metrics,
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
		cache:           cache,
		metrics:         metrics,
		timeProvider:    timeProvider,
		logger:          logger,
	}
}

// Execute выполняет use case получения доступных слотов
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("GetAvailableSlots: company=%d, service=%d, date=%s",
		req.CompanyID, req.ServiceID, req.Date.Format(domain.DateFormat))

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("GetAvailableSlots: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем расписание компании
	schedule, err := uc.configRepo.GetSchedule(ctx, req.CompanyID)
	if err != nil {
		if errors.Is(err, configRepo.ErrConfigNotFound) {
			uc.logger.Error("GetAvailableSlots: company id=%d has no schedule configuration", req.CompanyID)
			return nil, ErrConfigNotFound
		}
		uc.logger.Error("GetAvailableSlots: failed to get schedule for company id=%d: %v", req.CompanyID, err)
		return nil, storeError("failed to get schedule", err)
	}

	// 3. Получаем услугу
	service, err := uc.serviceRepo.GetByID(ctx, req.CompanyID, req.ServiceID)
	if err != nil {
		if errors.Is(err, serviceRepo.ErrServiceNotFound) {
			uc.logger.Warn("GetAvailableSlots: service id=%d not found", req.ServiceID)
			return nil, ErrServiceNotFound
		}
		uc.logger.Error("GetAvailableSlots: failed to get service id=%d: %v", req.ServiceID, err)
		return nil, storeError("failed to get service", err)
	}
	if !service.Active {
		uc.logger.Warn("GetAvailableSlots: service id=%d is not active", req.ServiceID)
		return nil, ErrServiceInactive
	}

	// 4. Текущее время в часовом поясе компании
	now := uc.timeProvider.Now().In(schedule.Config.Location())

	// 5. Валидация даты с учетом горизонта записи
	if err := scheduling.CheckBookingHorizon(req.Date, now, schedule.Config.AdvanceBookingDays); err != nil {
		uc.logger.Warn("GetAvailableSlots: date validation failed: %v", err)
		return nil, err
	}

	resp := &Response{
		Date:            req.Date,
		CompanyID:       req.CompanyID,
		ServiceID:       req.ServiceID,
		DurationMinutes: service.DurationMinutes,
		Slots:           []domain.TimeSlot{},
	}

	// 6. Эффективное рабочее окно на дату
	day, err := scheduling.ResolveDaySchedule(schedule, req.Date)
	if err != nil {
		if errors.Is(err, domain.ErrClosedDay) {
			uc.logger.Info("GetAvailableSlots: company id=%d is closed on %s", req.CompanyID, req.Date.Format(domain.DateFormat))
			resp.Closed = true
			return resp, nil
		}
		uc.logger.Error("GetAvailableSlots: invalid schedule for company id=%d: %v", req.CompanyID, err)
		return nil, err
	}

	// 7. Свободные слоты (кеш или расчет)
	free, err := uc.FreeSlots(ctx, req.CompanyID, req.Date, day, service.DurationMinutes, now)
	if err != nil {
		return nil, err
	}

	resp.Slots = scheduling.ToTimeSlots(free, service.DurationMinutes)

	uc.logger.Info("GetAvailableSlots: %d free slots for company=%d, service=%d, date=%s",
		len(resp.Slots), req.CompanyID, req.ServiceID, req.Date.Format(domain.DateFormat))

	return resp, nil
}

// FreeSlots возвращает свободные времена начала на дату: кандидаты генератора
// без пересечений с активными записями. Результат кешируется по (компания, дата, длительность).
// now должен быть в часовом поясе компании.
func (uc *UseCase) FreeSlots(
	ctx context.Context,
	companyID int64,
	date time.Time,
	day *domain.DaySchedule,
	durationMinutes int,
	now time.Time,
) ([]types.TimeString, error) {
	key := cache.Key{
		CompanyID:       companyID,
		Date:            date.Format(domain.DateFormat),
		DurationMinutes: durationMinutes,
	}

	if slots, ok := uc.cache.Get(ctx, key); ok {
		uc.metrics.ObserveCacheLookup(true)
		// Список мог быть посчитан раньше, сегодняшние слоты отфильтровываем заново
		return scheduling.DropStarted(slots, date, now), nil
	}
	uc.metrics.ObserveCacheLookup(false)

	v, err, _ := uc.group.Do(key.String(), func() (interface{}, error) {
		candidates := scheduling.GenerateSlots(day, date, durationMinutes, now)

		d := scheduling.DateOnly(date)
		appointments, err := uc.appointmentRepo.GetByFilter(ctx, domain.AppointmentsFilter{
			CompanyID: companyID,
			StartDate: &d,
			EndDate:   &d,
		})
		if err != nil {
			uc.logger.Error("GetAvailableSlots: failed to get appointments for company=%d date=%s: %v",
				companyID, key.Date, err)
			return nil, storeError("failed to get appointments", err)
		}

		free := scheduling.FilterConflicts(candidates, durationMinutes, appointments)
		uc.cache.Set(ctx, key, free)
		return free, nil
	})
	if err != nil {
		return nil, err
	}

	return scheduling.DropStarted(v.([]types.TimeString), date, now), nil
}

func storeError(op string, err error) error {
	if dberrors.IsTransient(err) {
		return fmt.Errorf("%w: %s: %v", domain.ErrTransientStore, op, err)
	}
	return fmt.Errorf("%w: %s: %v", ErrInternal, op, err)
}
