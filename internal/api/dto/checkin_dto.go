package dto

import "time"

// SubmitCheckInRequest carries one proximity sighting. Zone values arrive as
// strings and are validated before any store access.
type SubmitCheckInRequest struct {
	Field     string `json:"field"`
	Major     string `json:"major"`
	Minor     string `json:"minor"`
	Proximity string `json:"proximity"`
}

// SubmitReaderCheckInRequest carries a contact-reader sighting. The serial
// number identifies the registered reader; no bearer identity is involved.
type SubmitReaderCheckInRequest struct {
	SerialNumber string `json:"serial_number"`
	Field        string `json:"field"`
	Major        string `json:"major"`
	Minor        string `json:"minor"`
	Proximity    string `json:"proximity"`
}

// CheckInResponse is the stored last-known-state record.
type CheckInResponse struct {
	Field     string    `json:"field"`
	Major     int       `json:"major"`
	Minor     int       `json:"minor"`
	UserID    string    `json:"user_id"`
	Proximity string    `json:"proximity"`
	Source    string    `json:"source"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
