package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/beacon-marketplace/internal/domain"
	"github.com/spec-kit/beacon-marketplace/internal/events"
	"github.com/spec-kit/beacon-marketplace/internal/repository"
	apperrors "github.com/spec-kit/beacon-marketplace/pkg/util/errorutil"
)

// BindingService binds and releases session roles. A session holds at most
// one role variant; the transition rules live on domain.Session, and every
// read-then-write goes through SessionRepository.Mutate so concurrent
// requests are serialized on the session row.
type BindingService struct {
	sessions      repository.SessionRepository
	memberships   repository.MembershipRepository
	organizations repository.OrganizationRepository
	venues        repository.VenueRepository
	integrations  repository.IntegrationRepository
	dispatcher    events.Dispatcher
}

// BindingDependencies bundles repositories for the binding service.
type BindingDependencies struct {
	SessionRepo      repository.SessionRepository
	MembershipRepo   repository.MembershipRepository
	OrganizationRepo repository.OrganizationRepository
	VenueRepo        repository.VenueRepository
	IntegrationRepo  repository.IntegrationRepository
	Dispatcher       events.Dispatcher
}

// NewBindingService constructs the service.
func NewBindingService(deps BindingDependencies) *BindingService {
	return &BindingService{
		sessions:      deps.SessionRepo,
		memberships:   deps.MembershipRepo,
		organizations: deps.OrganizationRepo,
		venues:        deps.VenueRepo,
		integrations:  deps.IntegrationRepo,
		dispatcher:    deps.Dispatcher,
	}
}

// OrganizationBindingResult is returned by AssociateOrganizationRole. Venue
// is nil for an organization-wide binding.
type OrganizationBindingResult struct {
	Session      *domain.Session
	Organization *domain.Organization
	Venue        *domain.Venue
}

// IntegrationBindingResult is returned by AssociateIntegrationRole.
type IntegrationBindingResult struct {
	Session     *domain.Session
	Integration *domain.Integration
}

// DissociateResult carries the released state and the caller's memberships in
// the released category so a new role can be chosen.
type DissociateResult struct {
	Session     *domain.Session
	Released    domain.BindingState
	Memberships []domain.Membership
}

// AssociateOrganizationRole binds the session to the caller's membership at
// the organization, optionally scoped to one venue. Rebinding another
// organization role overwrites; a bound integration role fails CONFLICT.
func (s *BindingService) AssociateOrganizationRole(ctx context.Context, sessionID, userID, organizationID string, venueID *string) (*OrganizationBindingResult, error) {
	membership, err := s.memberships.GetOrganizationMembership(ctx, userID, organizationID, venueID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("membership", map[string]any{
				"organization_id": organizationID,
			})
		}
		return nil, err
	}

	session, err := s.mutateOwnedSession(ctx, sessionID, userID, func(session *domain.Session) error {
		return session.BindOrganization(domain.OrganizationRole{
			MembershipID:   membership.ID,
			OrganizationID: organizationID,
			VenueID:        venueID,
		})
	})
	if err != nil {
		return nil, err
	}

	result := &OrganizationBindingResult{Session: session}
	result.Organization, err = s.organizations.GetByID(ctx, organizationID)
	if err != nil {
		return nil, err
	}
	if venueID != nil {
		venue, err := s.venues.GetByID(ctx, *venueID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, apperrors.NewNotFound("venue", nil)
			}
			return nil, err
		}
		result.Venue = venue
	}

	s.publish(ctx, events.Event{
		Type:      events.EventRoleBound,
		SubjectID: sessionID,
		Actor:     events.Actor{UserID: &userID},
		Payload: events.RoleBoundPayload{
			SessionID:      sessionID,
			State:          domain.BindingStateBoundToOrganization,
			OrganizationID: &organizationID,
			VenueID:        venueID,
		},
	})
	return result, nil
}

// AssociateIntegrationRole binds the session to the caller's membership at
// the integration, symmetric to AssociateOrganizationRole.
func (s *BindingService) AssociateIntegrationRole(ctx context.Context, sessionID, userID, integrationID string) (*IntegrationBindingResult, error) {
	membership, err := s.memberships.GetIntegrationMembership(ctx, userID, integrationID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("membership", map[string]any{
				"integration_id": integrationID,
			})
		}
		return nil, err
	}

	session, err := s.mutateOwnedSession(ctx, sessionID, userID, func(session *domain.Session) error {
		return session.BindIntegration(domain.IntegrationRole{
			MembershipID:  membership.ID,
			IntegrationID: integrationID,
		})
	})
	if err != nil {
		return nil, err
	}

	integration, err := s.integrations.GetByID(ctx, integrationID)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:      events.EventRoleBound,
		SubjectID: sessionID,
		Actor:     events.Actor{UserID: &userID},
		Payload: events.RoleBoundPayload{
			SessionID:     sessionID,
			State:         domain.BindingStateBoundToIntegration,
			IntegrationID: &integrationID,
		},
	})
	return &IntegrationBindingResult{Session: session, Integration: integration}, nil
}

// Dissociate clears the bound role and returns the memberships of the
// released category.
func (s *BindingService) Dissociate(ctx context.Context, sessionID, userID string) (*DissociateResult, error) {
	var released domain.BindingState
	session, err := s.mutateOwnedSession(ctx, sessionID, userID, func(session *domain.Session) error {
		var err error
		released, err = session.ReleaseBinding()
		return err
	})
	if err != nil {
		return nil, err
	}

	kind := domain.MembershipKindOrganization
	if released == domain.BindingStateBoundToIntegration {
		kind = domain.MembershipKindIntegration
	}
	memberships, err := s.memberships.ListByUserAndKind(ctx, userID, kind)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:      events.EventRoleReleased,
		SubjectID: sessionID,
		Actor:     events.Actor{UserID: &userID},
		Payload: events.RoleReleasedPayload{
			SessionID: sessionID,
			Released:  released,
		},
	})
	return &DissociateResult{Session: session, Released: released, Memberships: memberships}, nil
}

func (s *BindingService) mutateOwnedSession(ctx context.Context, sessionID, userID string, fn func(*domain.Session) error) (*domain.Session, error) {
	session, err := s.sessions.Mutate(ctx, sessionID, func(session *domain.Session) error {
		if session.UserID != userID {
			return apperrors.NewForbidden("session belongs to another user")
		}
		return fn(session)
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("session", nil)
		}
		return nil, err
	}
	return session, nil
}

func (s *BindingService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
