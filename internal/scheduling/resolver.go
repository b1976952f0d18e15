package scheduling

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

// ResolveDaySchedule возвращает эффективное рабочее окно компании на дату.
// Активный DayOverride для дня недели имеет приоритет; иначе используется
// общая конфигурация, если день входит в набор рабочих дней.
func ResolveDaySchedule(schedule *domain.CompanySchedule, date time.Time) (*domain.DaySchedule, error) {
	if schedule == nil || schedule.Config == nil {
		return nil, domain.ErrConfiguration
	}

	cfg := schedule.Config
	weekday := date.Weekday()

	if override := schedule.OverrideFor(weekday); override != nil && override.Active {
		day := &domain.DaySchedule{
			Open:            override.OpeningTime,
			Close:           override.ClosingTime,
			IntervalMinutes: cfg.SlotIntervalMinutes,
			LunchEnabled:    override.LunchEnabled,
			LunchStart:      override.LunchStart,
			LunchEnd:        override.LunchEnd,
		}
		if err := validateDaySchedule(day); err != nil {
			return nil, fmt.Errorf("%w: override for %s: %v", domain.ErrConfiguration, weekday, err)
		}
		return day, nil
	}

	if !cfg.IsWorkingDay(weekday) {
		return nil, domain.ErrClosedDay
	}

	day := &domain.DaySchedule{
		Open:            cfg.OpeningTime,
		Close:           cfg.ClosingTime,
		IntervalMinutes: cfg.SlotIntervalMinutes,
		LunchEnabled:    cfg.LunchEnabled,
		LunchStart:      cfg.LunchStart,
		LunchEnd:        cfg.LunchEnd,
	}
	if err := validateDaySchedule(day); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrConfiguration, err)
	}

	return day, nil
}

func validateDaySchedule(day *domain.DaySchedule) error {
	open, closing := day.Open.Minutes(), day.Close.Minutes()
	if open < 0 || closing < 0 || open >= closing {
		return fmt.Errorf("invalid working window %s-%s", day.Open, day.Close)
	}
	if day.IntervalMinutes <= 0 {
		return fmt.Errorf("invalid slot interval %d", day.IntervalMinutes)
	}
	if day.LunchEnabled {
		ls, le := day.LunchStart.Minutes(), day.LunchEnd.Minutes()
		if ls < 0 || le < 0 || ls >= le {
			return fmt.Errorf("invalid lunch window %s-%s", day.LunchStart, day.LunchEnd)
		}
	}
	return nil
}
