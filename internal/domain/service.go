package domain

import "time"

// Service a bookable service of a company
type Service struct {
	ID              int64
	CompanyID       int64
	Name            string
	DurationMinutes int
	Active          bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
