package appointment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/pkg/dberrors"
	"github.com/m04kA/SMC-SchedulingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-SchedulingService/pkg/psqlbuilder"
)

// Имена ограничений из миграций, которые означают занятый интервал
const (
	constraintSlotKey   = "appointments_slot_key"
	constraintNoOverlap = "appointments_no_overlap"
)

var appointmentColumns = []string{
	"id",
	"company_id",
	"client_id",
	"service_id",
	"appointment_date",
	"start_time",
	"duration_minutes",
	"status",
	"notes",
	"cancellation_reason",
	"cancelled_at",
	"created_at",
	"updated_at",
}

// Repository репозиторий записей на услуги
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория записей
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create вставляет запись.
// Пересечение с активной записью (уникальный индекс или exclusion-ограничение)
// возвращается как ErrSlotOccupied.
func (r *Repository) Create(ctx context.Context, a *domain.Appointment) (*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("appointments").
		Columns(
			"company_id",
			"client_id",
			"service_id",
			"appointment_date",
			"start_time",
			"duration_minutes",
			"status",
			"notes",
		).
		Values(
			a.CompanyID,
			a.ClientID,
			a.ServiceID,
			a.Date.Format(domain.DateFormat),
			a.StartTime,
			a.DurationMinutes,
			string(a.Status),
			a.Notes,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	err = executor.QueryRowContext(ctx, query, args...).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if dberrors.IsUniqueViolation(err, constraintSlotKey) || dberrors.IsExclusionViolation(err, constraintNoOverlap) {
			return nil, fmt.Errorf("%w: Create - %v", ErrSlotOccupied, err)
		}
		return nil, fmt.Errorf("%w: Create - execute insert: %w", ErrExecQuery, err)
	}

	return a, nil
}

// GetByID получает запись по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(appointmentColumns...).
		From("appointments").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	a, err := scanAppointment(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAppointmentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan appointment: %w", ErrScanRow, err)
	}

	return a, nil
}

// GetByFilter получает записи компании с фильтрацией.
// Внутри транзакции для выборки за один день строки блокируются (FOR UPDATE),
// это используется при создании записи для повторной проверки конфликтов.
func (r *Repository) GetByFilter(ctx context.Context, filter domain.AppointmentsFilter) ([]*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(appointmentColumns...).
		From("appointments").
		Where(squirrel.Eq{"company_id": filter.CompanyID})

	if filter.ClientID != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"client_id": *filter.ClientID})
	}

	if filter.StartDate != nil {
		selectBuilder = selectBuilder.Where(squirrel.GtOrEq{"appointment_date": filter.StartDate.Format(domain.DateFormat)})
	}
	if filter.EndDate != nil {
		selectBuilder = selectBuilder.Where(squirrel.LtOrEq{"appointment_date": filter.EndDate.Format(domain.DateFormat)})
	}

	if filter.Status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": string(*filter.Status)})
	} else if !filter.IncludeInactive {
		selectBuilder = selectBuilder.Where(squirrel.NotEq{"status": domain.InactiveStatusStrings()})
	}

	if filter.IsSingleDay() {
		selectBuilder = selectBuilder.OrderBy("start_time ASC")
	} else {
		selectBuilder = selectBuilder.OrderBy("appointment_date DESC", "start_time DESC")
	}

	if dbmetrics.IsInTransaction(ctx) && filter.IsSingleDay() {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByFilter - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByFilter - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanAppointments(rows)
}

// CountActiveByClient считает активные записи клиента с датой в [from, to]
func (r *Repository) CountActiveByClient(ctx context.Context, companyID, clientID int64, from, to time.Time) (int, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("COUNT(*)").
		From("appointments").
		Where(squirrel.Eq{"company_id": companyID, "client_id": clientID}).
		Where(squirrel.GtOrEq{"appointment_date": from.Format(domain.DateFormat)}).
		Where(squirrel.LtOrEq{"appointment_date": to.Format(domain.DateFormat)}).
		Where(squirrel.NotEq{"status": domain.InactiveStatusStrings()}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: CountActiveByClient - build select query: %v", ErrBuildQuery, err)
	}

	var count int
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: CountActiveByClient - scan count: %w", ErrScanRow, err)
	}

	return count, nil
}

// UpdateStatus переводит запись из статуса from в статус to.
// Если запись уже в другом статусе, возвращается ErrStatusConflict.
func (r *Repository) UpdateStatus(ctx context.Context, id int64, from, to domain.AppointmentStatus) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("appointments").
		Set("status", string(to)).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id, "status": string(from)}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - build update query: %v", ErrBuildQuery, err)
	}

	return r.execSingle(ctx, executor, "UpdateStatus", query, args)
}

// Cancel отменяет запись, если она в одном из статусов allowed
func (r *Repository) Cancel(ctx context.Context, id int64, reason *string, allowed []domain.AppointmentStatus) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	statuses := make([]string, len(allowed))
	for i, s := range allowed {
		statuses[i] = string(s)
	}

	query, args, err := psqlbuilder.Update("appointments").
		Set("status", string(domain.StatusCancelled)).
		Set("cancellation_reason", reason).
		Set("cancelled_at", squirrel.Expr("NOW()")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id, "status": statuses}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Cancel - build update query: %v", ErrBuildQuery, err)
	}

	return r.execSingle(ctx, executor, "Cancel", query, args)
}

// ExpirePending переводит в expired все pending-записи, созданные раньше olderThan.
// Возвращает истекшие записи, чтобы вызывающий мог сбросить кеш и опубликовать события.
func (r *Repository) ExpirePending(ctx context.Context, olderThan time.Time, limit uint64) ([]*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	// Подзапрос собирается с плейсхолдерами "?", нумерацию проставит внешний билдер
	sub := squirrel.Select("id").
		From("appointments").
		Where(squirrel.Eq{"status": string(domain.StatusPending)}).
		Where(squirrel.Lt{"created_at": olderThan}).
		OrderBy("created_at ASC").
		Limit(limit).
		Suffix("FOR UPDATE SKIP LOCKED")

	subQuery, subArgs, err := sub.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ExpirePending - build subquery: %v", ErrBuildQuery, err)
	}

	query, args, err := psqlbuilder.Update("appointments").
		Set("status", string(domain.StatusExpired)).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Expr("id IN ("+subQuery+")", subArgs...)).
		Suffix("RETURNING " + strings.Join(appointmentColumns, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ExpirePending - build update query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ExpirePending - execute update: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanAppointments(rows)
}

// ReassignClient переносит все записи с клиентов fromIDs на клиента toID
func (r *Repository) ReassignClient(ctx context.Context, fromIDs []int64, toID int64) (int64, error) {
	if len(fromIDs) == 0 {
		return 0, nil
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("appointments").
		Set("client_id", toID).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"client_id": fromIDs}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: ReassignClient - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%w: ReassignClient - execute update: %w", ErrExecQuery, err)
	}

	moved, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: ReassignClient - get rows affected: %v", ErrExecQuery, err)
	}

	return moved, nil
}

func (r *Repository) execSingle(ctx context.Context, executor DBExecutor, op, query string, args []interface{}) error {
	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: %s - execute update: %w", ErrExecQuery, op, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %s - get rows affected: %v", ErrExecQuery, op, err)
	}

	if rowsAffected == 0 {
		return ErrStatusConflict
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAppointment(row rowScanner) (*domain.Appointment, error) {
	var (
		a                  domain.Appointment
		status             string
		notes              sql.NullString
		cancellationReason sql.NullString
		cancelledAt        sql.NullTime
	)

	err := row.Scan(
		&a.ID,
		&a.CompanyID,
		&a.ClientID,
		&a.ServiceID,
		&a.Date,
		&a.StartTime,
		&a.DurationMinutes,
		&status,
		&notes,
		&cancellationReason,
		&cancelledAt,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	a.Status = domain.AppointmentStatus(status)
	a.Date = time.Date(a.Date.Year(), a.Date.Month(), a.Date.Day(), 0, 0, 0, 0, time.UTC)
	if notes.Valid {
		a.Notes = &notes.String
	}
	if cancellationReason.Valid {
		a.CancellationReason = &cancellationReason.String
	}
	if cancelledAt.Valid {
		a.CancelledAt = &cancelledAt.Time
	}

	return &a, nil
}

func scanAppointments(rows *sql.Rows) ([]*domain.Appointment, error) {
	appointments := make([]*domain.Appointment, 0)

	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanAppointments - scan row: %v", ErrScanRow, err)
		}
		appointments = append(appointments, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanAppointments - rows error: %w", ErrScanRow, err)
	}

	return appointments, nil
}
