package domain

import (
	"time"
	_ "time/tzdata"

	"github.com/m04kA/SMC-SchedulingService/pkg/types"
)

// ScheduleConfiguration company-wide scheduling defaults
type ScheduleConfiguration struct {
	CompanyID           int64
	WorkingDays         []time.Weekday
	OpeningTime         types.TimeString
	ClosingTime         types.TimeString
	SlotIntervalMinutes int
	LunchEnabled        bool
	LunchStart          types.TimeString
	LunchEnd            types.TimeString
	// Хранится и валидируется, но слоты считаются эксклюзивными (вместимость 1)
	MaxSimultaneousAppointments int
	AdvanceBookingDays          int // 0 = unlimited
	MonthlyAppointmentLimit     int // 0 = unlimited
	Timezone                    string
	CreatedAt                   time.Time
	UpdatedAt                   time.Time
}

// IsWorkingDay returns true if the weekday belongs to the working-day set
func (c *ScheduleConfiguration) IsWorkingDay(wd time.Weekday) bool {
	for _, d := range c.WorkingDays {
		if d == wd {
			return true
		}
	}
	return false
}

// HasAdvanceBookingLimit returns true if there's a limit on how far in advance bookings can be made
func (c *ScheduleConfiguration) HasAdvanceBookingLimit() bool {
	return c.AdvanceBookingDays > 0
}

// HasMonthlyLimit returns true if clients are capped per calendar month
func (c *ScheduleConfiguration) HasMonthlyLimit() bool {
	return c.MonthlyAppointmentLimit > 0
}

// Location часовой пояс компании; при ошибке используется DefaultTimezone, затем UTC
func (c *ScheduleConfiguration) Location() *time.Location {
	for _, name := range []string{c.Timezone, DefaultTimezone} {
		if name == "" {
			continue
		}
		if loc, err := time.LoadLocation(name); err == nil {
			return loc
		}
	}
	return time.UTC
}

// DayOverride per-weekday schedule that supersedes the defaults when active
type DayOverride struct {
	ID           int64
	CompanyID    int64
	Weekday      time.Weekday
	Active       bool
	OpeningTime  types.TimeString
	ClosingTime  types.TimeString
	LunchEnabled bool
	LunchStart   types.TimeString
	LunchEnd     types.TimeString
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CompanySchedule configuration plus all overrides of one company
type CompanySchedule struct {
	Config    *ScheduleConfiguration
	Overrides []*DayOverride
}

// OverrideFor returns the override stored for the weekday, if any
func (s *CompanySchedule) OverrideFor(wd time.Weekday) *DayOverride {
	for _, o := range s.Overrides {
		if o.Weekday == wd {
			return o
		}
	}
	return nil
}

// DaySchedule effective working window for a concrete date
type DaySchedule struct {
	Open            types.TimeString
	Close           types.TimeString
	IntervalMinutes int
	LunchEnabled    bool
	LunchStart      types.TimeString
	LunchEnd        types.TimeString
}
