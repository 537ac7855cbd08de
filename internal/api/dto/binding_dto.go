package dto

// AssociateOrganizationRequest binds the caller's session to an organization
// role, optionally scoped to one venue.
type AssociateOrganizationRequest struct {
	OrganizationID string  `json:"organization_id"`
	VenueID        *string `json:"venue_id,omitempty"`
}

// AssociateIntegrationRequest binds the caller's session to an integration
// role.
type AssociateIntegrationRequest struct {
	IntegrationID string `json:"integration_id"`
}

// BindingResponse reports the session's binding after an associate call.
// Exactly one of Organization/Integration is set; Venue accompanies a
// venue-scoped organization binding.
type BindingResponse struct {
	State        string                `json:"state"`
	Organization *OrganizationResponse `json:"organization,omitempty"`
	Venue        *VenueResponse        `json:"venue,omitempty"`
	Integration  *IntegrationResponse  `json:"integration,omitempty"`
}

// DissociateResponse reports the released state and the memberships the
// caller may rebind to.
type DissociateResponse struct {
	Released    string               `json:"released"`
	Memberships []MembershipResponse `json:"memberships"`
}
