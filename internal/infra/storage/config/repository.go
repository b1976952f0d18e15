package config

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-SchedulingService/pkg/psqlbuilder"
	"github.com/m04kA/SMC-SchedulingService/pkg/types"
)

// Repository репозиторий конфигурации расписания и переопределений по дням недели
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория конфигурации
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

var configColumns = []string{
	"company_id",
	"working_days",
	"opening_time",
	"closing_time",
	"slot_interval_minutes",
	"lunch_enabled",
	"lunch_start",
	"lunch_end",
	"max_simultaneous_appointments",
	"advance_booking_days",
	"monthly_appointment_limit",
	"timezone",
	"created_at",
	"updated_at",
}

var overrideColumns = []string{
	"id",
	"company_id",
	"weekday",
	"active",
	"opening_time",
	"closing_time",
	"lunch_enabled",
	"lunch_start",
	"lunch_end",
	"created_at",
	"updated_at",
}

// GetSchedule получает конфигурацию компании вместе со всеми переопределениями дней
func (r *Repository) GetSchedule(ctx context.Context, companyID int64) (*domain.CompanySchedule, error) {
	cfg, err := r.GetConfig(ctx, companyID)
	if err != nil {
		return nil, err
	}

	overrides, err := r.GetOverrides(ctx, companyID)
	if err != nil {
		return nil, err
	}

	return &domain.CompanySchedule{Config: cfg, Overrides: overrides}, nil
}

// GetConfig получает общую конфигурацию расписания компании
func (r *Repository) GetConfig(ctx context.Context, companyID int64) (*domain.ScheduleConfiguration, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(configColumns...).
		From("schedule_configurations").
		Where(squirrel.Eq{"company_id": companyID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetConfig - build select query: %v", ErrBuildQuery, err)
	}

	cfg, err := scanConfig(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrConfigNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetConfig - scan config: %w", ErrScanRow, err)
	}

	return cfg, nil
}

// UpsertConfig создает или полностью перезаписывает конфигурацию компании
func (r *Repository) UpsertConfig(ctx context.Context, cfg *domain.ScheduleConfiguration) (*domain.ScheduleConfiguration, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("schedule_configurations").
		Columns(
			"company_id",
			"working_days",
			"opening_time",
			"closing_time",
			"slot_interval_minutes",
			"lunch_enabled",
			"lunch_start",
			"lunch_end",
			"max_simultaneous_appointments",
			"advance_booking_days",
			"monthly_appointment_limit",
			"timezone",
		).
		Values(
			cfg.CompanyID,
			pq.Array(weekdaysToInts(cfg.WorkingDays)),
			cfg.OpeningTime,
			cfg.ClosingTime,
			cfg.SlotIntervalMinutes,
			cfg.LunchEnabled,
			cfg.LunchStart,
			cfg.LunchEnd,
			cfg.MaxSimultaneousAppointments,
			cfg.AdvanceBookingDays,
			cfg.MonthlyAppointmentLimit,
			cfg.Timezone,
		).
		Suffix(`ON CONFLICT (company_id) DO UPDATE SET
			working_days = EXCLUDED.working_days,
			opening_time = EXCLUDED.opening_time,
			closing_time = EXCLUDED.closing_time,
			slot_interval_minutes = EXCLUDED.slot_interval_minutes,
			lunch_enabled = EXCLUDED.lunch_enabled,
			lunch_start = EXCLUDED.lunch_start,
			lunch_end = EXCLUDED.lunch_end,
			max_simultaneous_appointments = EXCLUDED.max_simultaneous_appointments,
			advance_booking_days = EXCLUDED.advance_booking_days,
			monthly_appointment_limit = EXCLUDED.monthly_appointment_limit,
			timezone = EXCLUDED.timezone,
			updated_at = NOW()
		RETURNING created_at, updated_at`).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: UpsertConfig - build insert query: %v", ErrBuildQuery, err)
	}

	if err := executor.QueryRowContext(ctx, query, args...).Scan(&cfg.CreatedAt, &cfg.UpdatedAt); err != nil {
		return nil, fmt.Errorf("%w: UpsertConfig - execute upsert: %w", ErrExecQuery, err)
	}

	return cfg, nil
}

// GetOverrides получает переопределения дней недели компании, упорядоченные по дню
func (r *Repository) GetOverrides(ctx context.Context, companyID int64) ([]*domain.DayOverride, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(overrideColumns...).
		From("day_overrides").
		Where(squirrel.Eq{"company_id": companyID}).
		OrderBy("weekday ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetOverrides - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetOverrides - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	overrides := make([]*domain.DayOverride, 0)
	for rows.Next() {
		o, err := scanOverride(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: GetOverrides - scan row: %v", ErrScanRow, err)
		}
		overrides = append(overrides, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetOverrides - rows error: %w", ErrScanRow, err)
	}

	return overrides, nil
}

// UpsertOverride создает или обновляет переопределение для (компания, день недели)
func (r *Repository) UpsertOverride(ctx context.Context, o *domain.DayOverride) (*domain.DayOverride, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("day_overrides").
		Columns(
			"company_id",
			"weekday",
			"active",
			"opening_time",
			"closing_time",
			"lunch_enabled",
			"lunch_start",
			"lunch_end",
		).
		Values(
			o.CompanyID,
			int(o.Weekday),
			o.Active,
			o.OpeningTime,
			o.ClosingTime,
			o.LunchEnabled,
			o.LunchStart,
			o.LunchEnd,
		).
		Suffix(`ON CONFLICT (company_id, weekday) DO UPDATE SET
			active = EXCLUDED.active,
			opening_time = EXCLUDED.opening_time,
			closing_time = EXCLUDED.closing_time,
			lunch_enabled = EXCLUDED.lunch_enabled,
			lunch_start = EXCLUDED.lunch_start,
			lunch_end = EXCLUDED.lunch_end,
			updated_at = NOW()
		RETURNING id, created_at, updated_at`).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: UpsertOverride - build insert query: %v", ErrBuildQuery, err)
	}

	if err := executor.QueryRowContext(ctx, query, args...).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return nil, fmt.Errorf("%w: UpsertOverride - execute upsert: %w", ErrExecQuery, err)
	}

	return o, nil
}

// DeleteOverride удаляет переопределение дня недели
func (r *Repository) DeleteOverride(ctx context.Context, companyID int64, weekday time.Weekday) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete("day_overrides").
		Where(squirrel.Eq{"company_id": companyID, "weekday": int(weekday)}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: DeleteOverride - build delete query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: DeleteOverride - execute delete: %w", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: DeleteOverride - get rows affected: %v", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return ErrOverrideNotFound
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanConfig(row rowScanner) (*domain.ScheduleConfiguration, error) {
	var (
		cfg         domain.ScheduleConfiguration
		workingDays pq.Int64Array
		lunchStart  types.TimeString
		lunchEnd    types.TimeString
	)

	err := row.Scan(
		&cfg.CompanyID,
		&workingDays,
		&cfg.OpeningTime,
		&cfg.ClosingTime,
		&cfg.SlotIntervalMinutes,
		&cfg.LunchEnabled,
		&lunchStart,
		&lunchEnd,
		&cfg.MaxSimultaneousAppointments,
		&cfg.AdvanceBookingDays,
		&cfg.MonthlyAppointmentLimit,
		&cfg.Timezone,
		&cfg.CreatedAt,
		&cfg.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	cfg.WorkingDays = intsToWeekdays(workingDays)
	cfg.LunchStart = lunchStart
	cfg.LunchEnd = lunchEnd

	return &cfg, nil
}

func scanOverride(row rowScanner) (*domain.DayOverride, error) {
	var (
		o       domain.DayOverride
		weekday int
	)

	err := row.Scan(
		&o.ID,
		&o.CompanyID,
		&weekday,
		&o.Active,
		&o.OpeningTime,
		&o.ClosingTime,
		&o.LunchEnabled,
		&o.LunchStart,
		&o.LunchEnd,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	o.Weekday = time.Weekday(weekday)
	return &o, nil
}

func weekdaysToInts(days []time.Weekday) []int64 {
	out := make([]int64, len(days))
	for i, d := range days {
		out[i] = int64(d)
	}
	return out
}

func intsToWeekdays(days []int64) []time.Weekday {
	out := make([]time.Weekday, 0, len(days))
	for _, d := range days {
		if d >= 0 && d <= 6 {
			out = append(out, time.Weekday(d))
		}
	}
	return out
}
