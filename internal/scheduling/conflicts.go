package scheduling

import (
	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/pkg/types"
)

// Overlaps проверяет пересечение полуоткрытых интервалов [a, a+da) и [b, b+db)
func Overlaps(a, da, b, db int) bool {
	return a < b+db && a+da > b
}

// FindConflict возвращает первую активную запись, пересекающуюся с [start, start+duration)
func FindConflict(start types.TimeString, durationMinutes int, appointments []*domain.Appointment) *domain.Appointment {
	s := start.Minutes()
	if s < 0 {
		return nil
	}

	for _, a := range appointments {
		if a == nil || !a.IsActive() {
			continue
		}
		if Overlaps(s, durationMinutes, a.StartMinute(), a.DurationMinutes) {
			return a
		}
	}
	return nil
}

// HasConflict true, если интервал пересекается с какой-либо активной записью
func HasConflict(start types.TimeString, durationMinutes int, appointments []*domain.Appointment) bool {
	return FindConflict(start, durationMinutes, appointments) != nil
}

// FilterConflicts убирает слоты, пересекающиеся с существующими записями.
// O(слоты × записи), для одного рабочего дня этого достаточно.
func FilterConflicts(slots []types.TimeString, durationMinutes int, appointments []*domain.Appointment) []types.TimeString {
	free := make([]types.TimeString, 0, len(slots))
	for _, slot := range slots {
		if HasConflict(slot, durationMinutes, appointments) {
			continue
		}
		free = append(free, slot)
	}
	return free
}
