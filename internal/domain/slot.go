package domain

import "github.com/m04kA/SMC-SchedulingService/pkg/types"

// TimeSlot a bookable start time with the interval it would occupy
type TimeSlot struct {
	StartTime       types.TimeString
	EndTime         types.TimeString
	DurationMinutes int
}

// QuotaStatus result of a monthly quota check
type QuotaStatus struct {
	Allowed      bool
	CurrentCount int
	Limit        int // 0 = unlimited
}
