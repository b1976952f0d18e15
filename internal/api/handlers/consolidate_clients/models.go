package consolidate_clients

import (
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

// ConsolidateRequest HTTP request model
type ConsolidateRequest struct {
	Phone string `json:"phone"`
}

// ClientResponse клиент, оставшийся после слияния
type ClientResponse struct {
	ID              int64   `json:"id"`
	CompanyID       int64   `json:"companyId"`
	Name            string  `json:"name"`
	Phone           string  `json:"phone"`
	NormalizedPhone *string `json:"normalizedPhone,omitempty"`
	Email           *string `json:"email,omitempty"`
	CreatedAt       string  `json:"createdAt"`
	UpdatedAt       string  `json:"updatedAt"`
}

// FromDomainClient конвертирует domain модель в HTTP response
func FromDomainClient(c *domain.Client) *ClientResponse {
	return &ClientResponse{
		ID:              c.ID,
		CompanyID:       c.CompanyID,
		Name:            c.Name,
		Phone:           c.Phone,
		NormalizedPhone: c.NormalizedPhone,
		Email:           c.Email,
		CreatedAt:       c.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       c.UpdatedAt.Format(time.RFC3339),
	}
}
