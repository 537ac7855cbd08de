package domain

import "time"

// Device is a registered contact reader or wearable tied to one owner. The
// reader submission path trusts this registration instead of a bearer token.
type Device struct {
	ID           string
	SerialNumber string
	OwnerUserID  string
	Label        string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
