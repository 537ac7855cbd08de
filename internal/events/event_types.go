package events

import (
	"time"

	"github.com/spec-kit/beacon-marketplace/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventCheckInRecorded  EventType = "check_in_recorded"
	EventRoleBound        EventType = "role_bound"
	EventRoleReleased     EventType = "role_released"
	EventDeviceRegistered EventType = "device_registered"
	EventVenueCreated     EventType = "venue_created"
)

// Actor encapsulates actor metadata for an event. Reader-submitted check-ins
// carry a device serial instead of a bearer identity.
type Actor struct {
	UserID       *string `json:"user_id,omitempty"`
	DeviceSerial *string `json:"device_serial,omitempty"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	SubjectID string      `json:"subject_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// CheckInRecordedPayload payload.
type CheckInRecordedPayload struct {
	Field     string               `json:"field"`
	Major     int                  `json:"major"`
	Minor     int                  `json:"minor"`
	UserID    string               `json:"user_id"`
	Proximity domain.Proximity     `json:"proximity"`
	Source    domain.CheckInSource `json:"source"`
	Created   bool                 `json:"created"`
}

// RoleBoundPayload payload.
type RoleBoundPayload struct {
	SessionID      string              `json:"session_id"`
	State          domain.BindingState `json:"state"`
	OrganizationID *string             `json:"organization_id,omitempty"`
	VenueID        *string             `json:"venue_id,omitempty"`
	IntegrationID  *string             `json:"integration_id,omitempty"`
}

// RoleReleasedPayload payload.
type RoleReleasedPayload struct {
	SessionID string              `json:"session_id"`
	Released  domain.BindingState `json:"released"`
}

// DeviceRegisteredPayload payload.
type DeviceRegisteredPayload struct {
	SerialNumber string `json:"serial_number"`
	OwnerUserID  string `json:"owner_user_id"`
}

// VenueCreatedPayload payload.
type VenueCreatedPayload struct {
	OrganizationID string  `json:"organization_id"`
	Name           string  `json:"name"`
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
}
