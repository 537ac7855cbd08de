package domain

import (
	"time"

	apperrors "github.com/spec-kit/beacon-marketplace/pkg/util/errorutil"
)

// BindingState enumerates the role-binding states of a session.
type BindingState string

const (
	BindingStateUnbound             BindingState = "UNBOUND"
	BindingStateBoundToOrganization BindingState = "BOUND_TO_ORGANIZATION"
	BindingStateBoundToIntegration  BindingState = "BOUND_TO_INTEGRATION"
)

// OrganizationRole is a session's active organization binding.
type OrganizationRole struct {
	MembershipID   string
	OrganizationID string
	VenueID        *string
}

// IntegrationRole is a session's active integration binding.
type IntegrationRole struct {
	MembershipID  string
	IntegrationID string
}

// Session is one active bearer session. At most one of OrgRole and
// IntegrationRole may be set; all transitions go through the methods below so
// the exclusivity rule is enforced in exactly one place.
type Session struct {
	ID              string
	UserID          string
	OrgRole         *OrganizationRole
	IntegrationRole *IntegrationRole
	IssuedAt        time.Time
	ExpiresAt       time.Time
}

// BindingState derives the current state from the populated role fields.
// A session with both roles set reports BindingStateUnbound from neither
// branch; callers detect that case via CheckConsistent.
func (s *Session) BindingState() BindingState {
	switch {
	case s.OrgRole != nil && s.IntegrationRole == nil:
		return BindingStateBoundToOrganization
	case s.IntegrationRole != nil && s.OrgRole == nil:
		return BindingStateBoundToIntegration
	default:
		return BindingStateUnbound
	}
}

// CheckConsistent fails with BAD_STATE when both role variants are populated.
// That shape is structurally unreachable through the methods below but is
// checked defensively before any transition that reads the current role.
func (s *Session) CheckConsistent() error {
	if s.OrgRole != nil && s.IntegrationRole != nil {
		return apperrors.NewBadState("session holds both role variants", map[string]any{
			"session_id": s.ID,
		})
	}
	return nil
}

// BindOrganization sets the organization role. Rebinding an existing
// organization role is allowed (last association wins); a bound integration
// role makes the transition fail with CONFLICT and leaves the session
// unchanged.
func (s *Session) BindOrganization(role OrganizationRole) error {
	if err := s.CheckConsistent(); err != nil {
		return err
	}
	if s.IntegrationRole != nil {
		return apperrors.NewConflict("session already bound to an integration role", map[string]any{
			"integration_id": s.IntegrationRole.IntegrationID,
		})
	}
	s.OrgRole = &role
	return nil
}

// BindIntegration sets the integration role, symmetric to BindOrganization.
func (s *Session) BindIntegration(role IntegrationRole) error {
	if err := s.CheckConsistent(); err != nil {
		return err
	}
	if s.OrgRole != nil {
		return apperrors.NewConflict("session already bound to an organization role", map[string]any{
			"organization_id": s.OrgRole.OrganizationID,
		})
	}
	s.IntegrationRole = &role
	return nil
}

// ReleaseBinding clears the bound role and returns the state that was
// released. An unbound session fails with NOT_FOUND.
func (s *Session) ReleaseBinding() (BindingState, error) {
	if err := s.CheckConsistent(); err != nil {
		return BindingStateUnbound, err
	}
	switch {
	case s.OrgRole != nil:
		s.OrgRole = nil
		return BindingStateBoundToOrganization, nil
	case s.IntegrationRole != nil:
		s.IntegrationRole = nil
		return BindingStateBoundToIntegration, nil
	default:
		return BindingStateUnbound, apperrors.NewNotFound("role binding", map[string]any{
			"session_id": s.ID,
		})
	}
}

// Expired reports whether the session is past its expiry.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}
