package scheduling

import (
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/pkg/types"
)

// GenerateSlots возвращает кандидатов на время начала по возрастанию.
// Занятость здесь не учитывается, только границы окна, обед и минимальный
// запас по времени для сегодняшней даты. now должен быть в часовом поясе компании.
func GenerateSlots(day *domain.DaySchedule, date time.Time, durationMinutes int, now time.Time) []types.TimeString {
	slots := make([]types.TimeString, 0)
	if day == nil || day.IntervalMinutes <= 0 || durationMinutes <= 0 {
		return slots
	}

	open := day.Open.Minutes()
	closing := day.Close.Minutes()
	if open < 0 || closing < 0 {
		return slots
	}

	lunchStart, lunchEnd := -1, -1
	if day.LunchEnabled {
		lunchStart, lunchEnd = day.LunchStart.Minutes(), day.LunchEnd.Minutes()
	}
	lunch := day.LunchEnabled && lunchStart >= 0 && lunchEnd > lunchStart

	today := IsSameDay(date, now)
	earliest := leadTimeBound(now)

	for t := open; t < closing; t += day.IntervalMinutes {
		// Слот, который фактически уже начался
		if today && t <= earliest {
			continue
		}

		// Начало внутри обеда
		if lunch && t >= lunchStart && t < lunchEnd {
			continue
		}

		// Не помещается до закрытия
		if t+durationMinutes > closing {
			continue
		}

		// Услуга заходит на обед
		if lunch && t < lunchStart && t+durationMinutes > lunchStart {
			continue
		}

		slots = append(slots, types.MustFromMinutes(t))
	}

	return slots
}

// DropStarted убирает сегодняшние слоты, которые начинаются не позже now + MinLeadTimeMinutes.
// Нужен для списков, посчитанных раньше (кеш).
func DropStarted(slots []types.TimeString, date, now time.Time) []types.TimeString {
	if !IsSameDay(date, now) {
		return slots
	}

	earliest := leadTimeBound(now)
	out := make([]types.TimeString, 0, len(slots))
	for _, s := range slots {
		if s.Minutes() > earliest {
			out = append(out, s)
		}
	}
	return out
}

func leadTimeBound(now time.Time) int {
	return now.Hour()*60 + now.Minute() + domain.MinLeadTimeMinutes
}

// ToTimeSlots дополняет времена начала концом интервала
func ToTimeSlots(starts []types.TimeString, durationMinutes int) []domain.TimeSlot {
	out := make([]domain.TimeSlot, 0, len(starts))
	for _, s := range starts {
		end, err := s.AddMinutes(durationMinutes)
		if err != nil {
			continue
		}
		out = append(out, domain.TimeSlot{
			StartTime:       s,
			EndTime:         end,
			DurationMinutes: durationMinutes,
		})
	}
	return out
}

// Contains проверяет, что start есть среди слотов
func Contains(slots []types.TimeString, start types.TimeString) bool {
	m := start.Minutes()
	for _, s := range slots {
		if s.Minutes() == m {
			return true
		}
	}
	return false
}
