package domain

import "time"

// Client a booker identified within a company by normalized phone
type Client struct {
	ID        int64
	CompanyID int64
	Name      string
	Phone     string
	// nil у старых записей, созданных до нормализации
	NormalizedPhone *string
	Email           *string
	Notes           *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// IsLegacy returns true if the row predates phone normalization
func (c *Client) IsLegacy() bool {
	return c.NormalizedPhone == nil
}

// ClientContact contact details supplied with a booking request
type ClientContact struct {
	Name  string
	Phone string
	Email *string
}
