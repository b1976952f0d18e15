package check_quota

import "github.com/m04kA/SMC-SchedulingService/internal/domain"

// QuotaResponse HTTP response model
type QuotaResponse struct {
	Allowed      bool `json:"allowed"`
	CurrentCount int  `json:"currentCount"`
	Limit        int  `json:"limit"` // 0 = без ограничений
}

// FromDomain конвертирует результат проверки в HTTP response
func FromDomain(s *domain.QuotaStatus) *QuotaResponse {
	return &QuotaResponse{
		Allowed:      s.Allowed,
		CurrentCount: s.CurrentCount,
		Limit:        s.Limit,
	}
}
