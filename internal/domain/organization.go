package domain

import "time"

// Organization is a business entity that owns venues and grants memberships.
type Organization struct {
	ID          string
	Name        string
	Description string
	OwnerUserID string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
