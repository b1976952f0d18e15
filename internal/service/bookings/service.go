package bookings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/infra/events"
	appointmentRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/appointment"
	"github.com/m04kA/SMC-SchedulingService/internal/service/bookings/models"
	"github.com/m04kA/SMC-SchedulingService/pkg/dberrors"
)

// expireBatchSize сколько pending-записей истекает за один запрос
const expireBatchSize = 500

// transitions допустимые переходы статуса вне отмены
var transitions = map[domain.AppointmentStatus][]domain.AppointmentStatus{
	domain.StatusPending:   {domain.StatusConfirmed},
	domain.StatusConfirmed: {domain.StatusCompleted},
}

// Service сервис для работы с существующими записями
type Service struct {
	appointmentRepo AppointmentRepository
	cache           SlotCache
	publisher       EventPublisher
	metrics         Metrics
	timeProvider    TimeProvider
	logger          Logger
}

// NewService создает новый экземпляр сервиса записей
func NewService(
	appointmentRepo AppointmentRepository,
	cache SlotCache,
	publisher EventPublisher,
	metrics Metrics,
	timeProvider TimeProvider,
	logger Logger,
) *Service {
	return &Service{
		appointmentRepo: appointmentRepo,
		cache:           cache,
		publisher:       publisher,
		metrics:         metrics,
		timeProvider:    timeProvider,
		logger:          logger,
	}
}

// GetByID получает запись по ID
func (s *Service) GetByID(ctx context.Context, id int64) (*models.AppointmentResponse, error) {
	s.logger.Info("GetByID: fetching appointment id=%d", id)

	a, err := s.get(ctx, "GetByID", id)
	if err != nil {
		return nil, err
	}

	return models.FromDomainAppointment(a), nil
}

// GetCompanyBookings получает записи компании с фильтрацией по периоду, клиенту и статусу
func (s *Service) GetCompanyBookings(ctx context.Context, req *models.GetCompanyBookingsRequest) (*models.AppointmentListResponse, error) {
	logMsg := fmt.Sprintf("GetCompanyBookings: fetching appointments for company=%d", req.CompanyID)
	if req.StartDate != nil && req.EndDate != nil {
		logMsg += fmt.Sprintf(", period=%s to %s", req.StartDate.Format(domain.DateFormat), req.EndDate.Format(domain.DateFormat))
	}
	if req.Status != nil {
		logMsg += fmt.Sprintf(", status=%s", *req.Status)
	}
	if req.IncludeInactive {
		logMsg += ", includeInactive=true"
	}
	s.logger.Info(logMsg)

	filter, err := req.ToDomainFilter()
	if err != nil {
		s.logger.Warn("GetCompanyBookings: invalid filter for company=%d: %v", req.CompanyID, err)
		return nil, err
	}

	appointments, err := s.appointmentRepo.GetByFilter(ctx, filter)
	if err != nil {
		s.logger.Error("GetCompanyBookings: repository error for company=%d: %v", req.CompanyID, err)
		return nil, storeError("GetCompanyBookings", err)
	}

	s.logger.Info("GetCompanyBookings: fetched %d appointments for company=%d", len(appointments), req.CompanyID)
	return models.FromDomainAppointmentList(appointments), nil
}

// Cancel отменяет запись и освобождает ее интервал
func (s *Service) Cancel(ctx context.Context, id int64, req *models.CancelBookingRequest) (*models.AppointmentResponse, error) {
	s.logger.Info("Cancel: cancelling appointment id=%d", id)

	// 1. Валидация причины
	if req.Reason != nil && len(*req.Reason) > domain.MaxCancellationReasonLength {
		return nil, domain.NewValidationError("reason",
			fmt.Sprintf("must be at most %d characters", domain.MaxCancellationReasonLength))
	}

	// 2. Получаем запись
	a, err := s.get(ctx, "Cancel", id)
	if err != nil {
		return nil, err
	}

	// 3. Проверяем, можно ли отменить
	if !a.CanBeCancelled() {
		s.logger.Warn("Cancel: appointment id=%d cannot be cancelled, status=%s", id, a.Status)
		return nil, ErrCannotCancel
	}

	// 4. Отменяем; условие по статусу защищает от параллельной смены
	err = s.appointmentRepo.Cancel(ctx, id, req.Reason, []domain.AppointmentStatus{domain.StatusPending, domain.StatusConfirmed})
	if err != nil {
		if errors.Is(err, appointmentRepo.ErrStatusConflict) {
			s.logger.Warn("Cancel: appointment id=%d changed status concurrently", id)
			return nil, ErrCannotCancel
		}
		s.logger.Error("Cancel: repository error for appointment id=%d: %v", id, err)
		return nil, storeError("Cancel", err)
	}

	now := s.timeProvider.Now()
	a.Status = domain.StatusCancelled
	a.CancellationReason = req.Reason
	a.CancelledAt = &now
	a.UpdatedAt = now

	// 5. Сбрасываем кеш и публикуем событие
	s.released(ctx, a, events.SubjectBookingCancelled)

	s.logger.Info("Cancel: successfully cancelled appointment id=%d", id)
	return models.FromDomainAppointment(a), nil
}

// UpdateStatus переводит запись в новый статус (pending -> confirmed, confirmed -> completed).
// Отмена выполняется через Cancel.
func (s *Service) UpdateStatus(ctx context.Context, id int64, req *models.UpdateStatusRequest) (*models.AppointmentResponse, error) {
	s.logger.Info("UpdateStatus: updating appointment id=%d to status=%s", id, req.Status)

	// 1. Валидируем статус
	to, err := models.ToDomainStatus(req.Status)
	if err != nil {
		s.logger.Warn("UpdateStatus: invalid status=%s for appointment id=%d", req.Status, id)
		return nil, err
	}
	if to == domain.StatusCancelled {
		return s.Cancel(ctx, id, &models.CancelBookingRequest{})
	}

	// 2. Получаем запись
	a, err := s.get(ctx, "UpdateStatus", id)
	if err != nil {
		return nil, err
	}

	// 3. Проверяем переход
	if !canTransition(a.Status, to) {
		s.logger.Warn("UpdateStatus: transition %s -> %s not allowed for appointment id=%d", a.Status, to, id)
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, a.Status, to)
	}

	// 4. Обновляем статус
	if err := s.appointmentRepo.UpdateStatus(ctx, id, a.Status, to); err != nil {
		if errors.Is(err, appointmentRepo.ErrStatusConflict) {
			s.logger.Warn("UpdateStatus: appointment id=%d changed status concurrently", id)
			return nil, fmt.Errorf("%w: status changed concurrently", ErrInvalidTransition)
		}
		s.logger.Error("UpdateStatus: repository error for appointment id=%d: %v", id, err)
		return nil, storeError("UpdateStatus", err)
	}

	a.Status = to
	a.UpdatedAt = s.timeProvider.Now()

	if to == domain.StatusCompleted {
		s.publish(ctx, events.SubjectBookingCompleted, a)
	}

	s.logger.Info("UpdateStatus: appointment id=%d is now %s", id, to)
	return models.FromDomainAppointment(a), nil
}

// ExpireStale переводит в expired pending-записи старше ttl.
// Возвращает количество истекших записей.
func (s *Service) ExpireStale(ctx context.Context, ttl time.Duration) (int, error) {
	cutoff := s.timeProvider.Now().Add(-ttl)
	total := 0

	for {
		expired, err := s.appointmentRepo.ExpirePending(ctx, cutoff, expireBatchSize)
		if err != nil {
			s.logger.Error("ExpireStale: repository error after %d expired: %v", total, err)
			return total, storeError("ExpireStale", err)
		}

		for _, a := range expired {
			s.released(ctx, a, events.SubjectBookingExpired)
		}
		total += len(expired)

		if len(expired) < expireBatchSize {
			break
		}
	}

	if total > 0 {
		s.logger.Info("ExpireStale: expired %d pending appointments created before %s", total, cutoff.Format(time.RFC3339))
	}
	return total, nil
}

func (s *Service) get(ctx context.Context, op string, id int64) (*domain.Appointment, error) {
	a, err := s.appointmentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
			s.logger.Warn("%s: appointment id=%d not found", op, id)
			return nil, ErrAppointmentNotFound
		}
		s.logger.Error("%s: repository error for appointment id=%d: %v", op, id, err)
		return nil, storeError(op, err)
	}
	return a, nil
}

// released интервал записи освободился: сброс кеша дня, метрика, событие
func (s *Service) released(ctx context.Context, a *domain.Appointment, subject string) {
	s.cache.Invalidate(ctx, a.CompanyID, a.Date.Format(domain.DateFormat))
	s.metrics.IncBookingReleased(string(a.Status))
	s.publish(ctx, subject, a)
}

// publish событие после фиксации, ошибка публикации только логируется
func (s *Service) publish(ctx context.Context, subject string, a *domain.Appointment) {
	if err := s.publisher.Publish(ctx, subject, events.FromAppointment(a, s.timeProvider.Now())); err != nil {
		s.logger.Warn("publish: failed to publish %s for appointment id=%d: %v", subject, a.ID, err)
	}
}

func canTransition(from, to domain.AppointmentStatus) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

func storeError(op string, err error) error {
	if dberrors.IsTransient(err) {
		return fmt.Errorf("%w: %s - %v", domain.ErrTransientStore, op, err)
	}
	return fmt.Errorf("%w: %s - %v", ErrInternal, op, err)
}
