package models

import (
	"fmt"
	"sort"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/pkg/types"
)

// Request модели

// UpdateScheduleRequest частичное обновление расписания компании.
// Все поля опциональны, обновляются только переданные значения.
type UpdateScheduleRequest struct {
	WorkingDays                 *[]int  `json:"workingDays,omitempty"` // 0 = воскресенье
	OpeningTime                 *string `json:"openingTime,omitempty"` // "09:00"
	ClosingTime                 *string `json:"closingTime,omitempty"` // "18:00"
	SlotIntervalMinutes         *int    `json:"slotIntervalMinutes,omitempty"`
	LunchEnabled                *bool   `json:"lunchEnabled,omitempty"`
	LunchStart                  *string `json:"lunchStart,omitempty"`
	LunchEnd                    *string `json:"lunchEnd,omitempty"`
	MaxSimultaneousAppointments *int    `json:"maxSimultaneousAppointments,omitempty"`
	AdvanceBookingDays          *int    `json:"advanceBookingDays,omitempty"`
	MonthlyAppointmentLimit     *int    `json:"monthlyAppointmentLimit,omitempty"`
	Timezone                    *string `json:"timezone,omitempty"`

	// Создаются или заменяются целиком по дню недели
	DayOverrides []DayOverrideRequest `json:"dayOverrides,omitempty"`
	// Дни недели, переопределения которых нужно удалить
	RemoveOverrides []int `json:"removeOverrides,omitempty"`
}

// DayOverrideRequest переопределение одного дня недели
type DayOverrideRequest struct {
	Weekday      int     `json:"weekday"`
	Active       bool    `json:"active"`
	OpeningTime  string  `json:"openingTime"`
	ClosingTime  string  `json:"closingTime"`
	LunchEnabled bool    `json:"lunchEnabled"`
	LunchStart   *string `json:"lunchStart,omitempty"`
	LunchEnd     *string `json:"lunchEnd,omitempty"`
}

// Response модели

// ScheduleResponse конфигурация расписания с переопределениями
type ScheduleResponse struct {
	CompanyID                   int64                 `json:"companyId"`
	WorkingDays                 []int                 `json:"workingDays"`
	OpeningTime                 string                `json:"openingTime"`
	ClosingTime                 string                `json:"closingTime"`
	SlotIntervalMinutes         int                   `json:"slotIntervalMinutes"`
	LunchEnabled                bool                  `json:"lunchEnabled"`
	LunchStart                  *string               `json:"lunchStart,omitempty"`
	LunchEnd                    *string               `json:"lunchEnd,omitempty"`
	MaxSimultaneousAppointments int                   `json:"maxSimultaneousAppointments"`
	AdvanceBookingDays          int                   `json:"advanceBookingDays"`
	MonthlyAppointmentLimit     int                   `json:"monthlyAppointmentLimit"`
	Timezone                    string                `json:"timezone"`
	DayOverrides                []DayOverrideResponse `json:"dayOverrides"`
	CreatedAt                   time.Time             `json:"createdAt"`
	UpdatedAt                   time.Time             `json:"updatedAt"`
}

// DayOverrideResponse переопределение дня недели
type DayOverrideResponse struct {
	Weekday      int     `json:"weekday"`
	Active       bool    `json:"active"`
	OpeningTime  string  `json:"openingTime"`
	ClosingTime  string  `json:"closingTime"`
	LunchEnabled bool    `json:"lunchEnabled"`
	LunchStart   *string `json:"lunchStart,omitempty"`
	LunchEnd     *string `json:"lunchEnd,omitempty"`
}

// Методы конвертации

// FromDomainSchedule конвертирует domain модель в DTO
func FromDomainSchedule(s *domain.CompanySchedule) *ScheduleResponse {
	if s == nil || s.Config == nil {
		return nil
	}

	cfg := s.Config
	days := make([]int, len(cfg.WorkingDays))
	for i, d := range cfg.WorkingDays {
		days[i] = int(d)
	}
	sort.Ints(days)

	resp := &ScheduleResponse{
		CompanyID:                   cfg.CompanyID,
		WorkingDays:                 days,
		OpeningTime:                 cfg.OpeningTime.String(),
		ClosingTime:                 cfg.ClosingTime.String(),
		SlotIntervalMinutes:         cfg.SlotIntervalMinutes,
		LunchEnabled:                cfg.LunchEnabled,
		LunchStart:                  optionalTime(cfg.LunchStart),
		LunchEnd:                    optionalTime(cfg.LunchEnd),
		MaxSimultaneousAppointments: cfg.MaxSimultaneousAppointments,
		AdvanceBookingDays:          cfg.AdvanceBookingDays,
		MonthlyAppointmentLimit:     cfg.MonthlyAppointmentLimit,
		Timezone:                    cfg.Timezone,
		DayOverrides:                make([]DayOverrideResponse, 0, len(s.Overrides)),
		CreatedAt:                   cfg.CreatedAt,
		UpdatedAt:                   cfg.UpdatedAt,
	}

	for _, o := range s.Overrides {
		resp.DayOverrides = append(resp.DayOverrides, DayOverrideResponse{
			Weekday:      int(o.Weekday),
			Active:       o.Active,
			OpeningTime:  o.OpeningTime.String(),
			ClosingTime:  o.ClosingTime.String(),
			LunchEnabled: o.LunchEnabled,
			LunchStart:   optionalTime(o.LunchStart),
			LunchEnd:     optionalTime(o.LunchEnd),
		})
	}

	return resp
}

// ApplyToConfig применяет обновления к существующей конфигурации.
// Обновляются только непустые (not nil) поля из request.
func (r *UpdateScheduleRequest) ApplyToConfig(cfg *domain.ScheduleConfiguration) error {
	if r.WorkingDays != nil {
		days := make([]time.Weekday, len(*r.WorkingDays))
		for i, d := range *r.WorkingDays {
			days[i] = time.Weekday(d)
		}
		cfg.WorkingDays = days
	}

	var err error
	if r.OpeningTime != nil {
		if cfg.OpeningTime, err = parseTime("openingTime", *r.OpeningTime); err != nil {
			return err
		}
	}
	if r.ClosingTime != nil {
		if cfg.ClosingTime, err = parseTime("closingTime", *r.ClosingTime); err != nil {
			return err
		}
	}
	if r.LunchStart != nil {
		if cfg.LunchStart, err = parseOptionalTime("lunchStart", *r.LunchStart); err != nil {
			return err
		}
	}
	if r.LunchEnd != nil {
		if cfg.LunchEnd, err = parseOptionalTime("lunchEnd", *r.LunchEnd); err != nil {
			return err
		}
	}

	if r.SlotIntervalMinutes != nil {
		cfg.SlotIntervalMinutes = *r.SlotIntervalMinutes
	}
	if r.LunchEnabled != nil {
		cfg.LunchEnabled = *r.LunchEnabled
	}
	if r.MaxSimultaneousAppointments != nil {
		cfg.MaxSimultaneousAppointments = *r.MaxSimultaneousAppointments
	}
	if r.AdvanceBookingDays != nil {
		cfg.AdvanceBookingDays = *r.AdvanceBookingDays
	}
	if r.MonthlyAppointmentLimit != nil {
		cfg.MonthlyAppointmentLimit = *r.MonthlyAppointmentLimit
	}
	if r.Timezone != nil {
		cfg.Timezone = *r.Timezone
	}

	return nil
}

// ToDomainOverrides конвертирует переопределения дней в domain модели
func (r *UpdateScheduleRequest) ToDomainOverrides(companyID int64) ([]*domain.DayOverride, error) {
	out := make([]*domain.DayOverride, 0, len(r.DayOverrides))
	seen := make(map[int]bool, len(r.DayOverrides))

	for _, o := range r.DayOverrides {
		if seen[o.Weekday] {
			return nil, domain.NewValidationError("dayOverrides.weekday", fmt.Sprintf("duplicate weekday %d", o.Weekday))
		}
		seen[o.Weekday] = true

		open, err := parseTime("dayOverrides.openingTime", o.OpeningTime)
		if err != nil {
			return nil, err
		}
		closing, err := parseTime("dayOverrides.closingTime", o.ClosingTime)
		if err != nil {
			return nil, err
		}

		override := &domain.DayOverride{
			CompanyID:    companyID,
			Weekday:      time.Weekday(o.Weekday),
			Active:       o.Active,
			OpeningTime:  open,
			ClosingTime:  closing,
			LunchEnabled: o.LunchEnabled,
		}
		if o.LunchStart != nil {
			if override.LunchStart, err = parseOptionalTime("dayOverrides.lunchStart", *o.LunchStart); err != nil {
				return nil, err
			}
		}
		if o.LunchEnd != nil {
			if override.LunchEnd, err = parseOptionalTime("dayOverrides.lunchEnd", *o.LunchEnd); err != nil {
				return nil, err
			}
		}

		out = append(out, override)
	}

	for _, wd := range r.RemoveOverrides {
		if seen[wd] {
			return nil, domain.NewValidationError("removeOverrides", fmt.Sprintf("weekday %d is both updated and removed", wd))
		}
	}

	return out, nil
}

func parseTime(field, raw string) (types.TimeString, error) {
	t, err := types.NewTimeStringFromString(raw)
	if err != nil {
		return "", domain.NewValidationError(field, "must be in HH:MM format")
	}
	return t, nil
}

// parseOptionalTime пустая строка очищает поле
func parseOptionalTime(field, raw string) (types.TimeString, error) {
	if raw == "" {
		return "", nil
	}
	return parseTime(field, raw)
}

func optionalTime(t types.TimeString) *string {
	if t.IsZero() {
		return nil
	}
	s := t.String()
	return &s
}
