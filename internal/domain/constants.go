package domain

// Default configuration values
const (
	DefaultSlotIntervalMinutes         = 30
	DefaultMaxSimultaneousAppointments = 1
	DefaultAdvanceBookingDays          = 0 // 0 = unlimited
	DefaultMonthlyAppointmentLimit     = 0 // 0 = unlimited
	DefaultTimezone                    = "America/Sao_Paulo"
)

// MinLeadTimeMinutes на сегодняшнюю дату не предлагаются слоты раньше now + 30 минут
const MinLeadTimeMinutes = 30

// Business validation constants
const (
	MinSlotIntervalMinutes      = 5
	MaxSlotIntervalMinutes      = 480 // 8 hours
	MinSimultaneousAppointments = 1
	MaxSimultaneousAppointments = 100
	MaxAdvanceBookingDays       = 365 // 1 year
	MaxMonthlyAppointmentLimit  = 1000
	MaxNotesLength              = 500
	MaxCancellationReasonLength = 500
	MaxClientNameLength         = 200
)

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// InactiveStatuses статусы, которые освобождают интервал и не учитываются в квоте
var InactiveStatuses = []AppointmentStatus{
	StatusCancelled,
	StatusExpired,
}

// ActiveStatuses статусы записей, занимающих интервал
var ActiveStatuses = []AppointmentStatus{
	StatusPending,
	StatusConfirmed,
	StatusCompleted,
}

// InactiveStatusStrings InactiveStatuses в виде строк для SQL
func InactiveStatusStrings() []string {
	out := make([]string, len(InactiveStatuses))
	for i, s := range InactiveStatuses {
		out[i] = string(s)
	}
	return out
}
