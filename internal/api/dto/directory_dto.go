package dto

import "time"

// CreateOrganizationRequest payload.
type CreateOrganizationRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// OrganizationResponse public organization shape.
type OrganizationResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// CreateVenueRequest payload.
type CreateVenueRequest struct {
	Name      string  `json:"name"`
	Address   string  `json:"address"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// VenueResponse public venue shape.
type VenueResponse struct {
	ID             string    `json:"id"`
	OrganizationID string    `json:"organization_id"`
	Name           string    `json:"name"`
	Address        string    `json:"address,omitempty"`
	Latitude       float64   `json:"latitude"`
	Longitude      float64   `json:"longitude"`
	CreatedAt      time.Time `json:"created_at"`
}

// CreateIntegrationRequest payload.
type CreateIntegrationRequest struct {
	Name        string `json:"name"`
	Provider    string `json:"provider"`
	CallbackURL string `json:"callback_url"`
}

// IntegrationResponse public integration shape.
type IntegrationResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Provider string `json:"provider"`
}

// GrantMembershipRequest payload.
type GrantMembershipRequest struct {
	UserID  string  `json:"user_id"`
	VenueID *string `json:"venue_id,omitempty"`
	Level   string  `json:"level"`
}

// MembershipResponse public membership shape.
type MembershipResponse struct {
	ID        string  `json:"id"`
	Kind      string  `json:"kind"`
	SubjectID string  `json:"subject_id"`
	VenueID   *string `json:"venue_id,omitempty"`
	Level     string  `json:"level"`
}

// RegisterDeviceRequest payload.
type RegisterDeviceRequest struct {
	SerialNumber string `json:"serial_number"`
	Label        string `json:"label"`
}

// DeviceResponse public device shape.
type DeviceResponse struct {
	ID           string    `json:"id"`
	SerialNumber string    `json:"serial_number"`
	Label        string    `json:"label,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
