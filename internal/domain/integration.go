package domain

import "time"

// Integration is a third-party capability users can hold a role against.
// Token exchange with the external provider happens outside this service.
type Integration struct {
	ID          string
	Name        string
	Provider    string
	CallbackURL string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
