package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/beacon-marketplace/internal/domain"
	"github.com/spec-kit/beacon-marketplace/internal/events"
	"github.com/spec-kit/beacon-marketplace/internal/repository"
	apperrors "github.com/spec-kit/beacon-marketplace/pkg/util/errorutil"
)

// DirectoryService manages the resource surface the core flows depend on:
// organizations, venues, integrations, memberships and registered devices.
type DirectoryService struct {
	organizations repository.OrganizationRepository
	venues        repository.VenueRepository
	integrations  repository.IntegrationRepository
	memberships   repository.MembershipRepository
	devices       repository.DeviceRepository
	dispatcher    events.Dispatcher
}

// DirectoryDependencies bundles repositories for the directory service.
type DirectoryDependencies struct {
	OrganizationRepo repository.OrganizationRepository
	VenueRepo        repository.VenueRepository
	IntegrationRepo  repository.IntegrationRepository
	MembershipRepo   repository.MembershipRepository
	DeviceRepo       repository.DeviceRepository
	Dispatcher       events.Dispatcher
}

// NewDirectoryService constructs the service.
func NewDirectoryService(deps DirectoryDependencies) *DirectoryService {
	return &DirectoryService{
		organizations: deps.OrganizationRepo,
		venues:        deps.VenueRepo,
		integrations:  deps.IntegrationRepo,
		memberships:   deps.MembershipRepo,
		devices:       deps.DeviceRepo,
		dispatcher:    deps.Dispatcher,
	}
}

// CreateOrganization registers an organization and grants the creator an
// organization-wide OWNER membership.
func (s *DirectoryService) CreateOrganization(ctx context.Context, ownerUserID, name, description string) (*domain.Organization, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewValidationError("name required", nil)
	}

	org := &domain.Organization{
		Name:        name,
		Description: strings.TrimSpace(description),
		OwnerUserID: ownerUserID,
	}
	if err := s.organizations.Create(ctx, org); err != nil {
		return nil, err
	}

	membership := &domain.Membership{
		UserID:    ownerUserID,
		Kind:      domain.MembershipKindOrganization,
		SubjectID: org.ID,
		Level:     domain.AuthorityOwner,
	}
	if err := s.memberships.Create(ctx, membership); err != nil {
		return nil, err
	}
	return org, nil
}

// GetOrganization fetches one organization.
func (s *DirectoryService) GetOrganization(ctx context.Context, id string) (*domain.Organization, error) {
	org, err := s.organizations.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("organization", nil)
		}
		return nil, err
	}
	return org, nil
}

// CreateVenue adds a venue under an organization. The caller needs MANAGER
// authority or better, organization-wide.
func (s *DirectoryService) CreateVenue(ctx context.Context, actorUserID, organizationID string, venue *domain.Venue) (*domain.Venue, error) {
	if strings.TrimSpace(venue.Name) == "" {
		return nil, apperrors.NewValidationError("name required", nil)
	}
	if !venue.ValidCoordinates() {
		return nil, apperrors.NewValidationError("coordinates out of range", map[string]any{
			"latitude":  venue.Latitude,
			"longitude": venue.Longitude,
		})
	}
	if err := s.requireAuthority(ctx, actorUserID, organizationID, domain.AuthorityManager); err != nil {
		return nil, err
	}
	if _, err := s.GetOrganization(ctx, organizationID); err != nil {
		return nil, err
	}

	venue.OrganizationID = organizationID
	if err := s.venues.Create(ctx, venue); err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:      events.EventVenueCreated,
		SubjectID: venue.ID,
		Actor:     events.Actor{UserID: &actorUserID},
		Payload: events.VenueCreatedPayload{
			OrganizationID: organizationID,
			Name:           venue.Name,
			Latitude:       venue.Latitude,
			Longitude:      venue.Longitude,
		},
	})
	return venue, nil
}

// ListVenues returns an organization's venues.
func (s *DirectoryService) ListVenues(ctx context.Context, organizationID string) ([]domain.Venue, error) {
	return s.venues.ListByOrganization(ctx, organizationID)
}

// CreateIntegration registers a third-party integration.
func (s *DirectoryService) CreateIntegration(ctx context.Context, name, provider, callbackURL string) (*domain.Integration, error) {
	name = strings.TrimSpace(name)
	if name == "" || strings.TrimSpace(provider) == "" {
		return nil, apperrors.NewValidationError("name and provider required", nil)
	}
	integration := &domain.Integration{
		Name:        name,
		Provider:    strings.TrimSpace(provider),
		CallbackURL: strings.TrimSpace(callbackURL),
	}
	if err := s.integrations.Create(ctx, integration); err != nil {
		return nil, err
	}
	return integration, nil
}

// GrantMembership creates a membership. Organization memberships require the
// actor to hold MANAGER authority or better at the organization; a venue
// scope must reference a venue of that organization. Memberships are never
// cascade-deleted; revocation is its own gated operation.
func (s *DirectoryService) GrantMembership(ctx context.Context, actorUserID string, membership *domain.Membership) (*domain.Membership, error) {
	if membership.Level.Rank() == 0 {
		return nil, apperrors.NewValidationError("unknown authority level", nil)
	}
	switch membership.Kind {
	case domain.MembershipKindOrganization:
		if err := s.requireAuthority(ctx, actorUserID, membership.SubjectID, domain.AuthorityManager); err != nil {
			return nil, err
		}
		if membership.VenueID != nil {
			venue, err := s.venues.GetByID(ctx, *membership.VenueID)
			if err != nil {
				if errors.Is(err, pgx.ErrNoRows) {
					return nil, apperrors.NewNotFound("venue", nil)
				}
				return nil, err
			}
			if venue.OrganizationID != membership.SubjectID {
				return nil, apperrors.NewValidationError("venue belongs to another organization", nil)
			}
		}
	case domain.MembershipKindIntegration:
		if membership.VenueID != nil {
			return nil, apperrors.NewValidationError("integration memberships cannot be venue-scoped", nil)
		}
		if _, err := s.integrations.GetByID(ctx, membership.SubjectID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, apperrors.NewNotFound("integration", nil)
			}
			return nil, err
		}
	default:
		return nil, apperrors.NewValidationError("unknown membership kind", nil)
	}

	if err := s.memberships.Create(ctx, membership); err != nil {
		return nil, err
	}
	return membership, nil
}

// RevokeMembership deletes a membership. Only a MANAGER or better at the
// same organization, or the member themselves, may revoke.
func (s *DirectoryService) RevokeMembership(ctx context.Context, actorUserID, membershipID string) error {
	membership, err := s.memberships.GetByID(ctx, membershipID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("membership", nil)
		}
		return err
	}
	if membership.UserID != actorUserID {
		if membership.Kind != domain.MembershipKindOrganization {
			return apperrors.NewForbidden("cannot revoke another user's integration membership")
		}
		if err := s.requireAuthority(ctx, actorUserID, membership.SubjectID, domain.AuthorityManager); err != nil {
			return err
		}
	}
	return s.memberships.Delete(ctx, membershipID)
}

// ListMemberships returns the user's memberships of one kind.
func (s *DirectoryService) ListMemberships(ctx context.Context, userID string, kind domain.MembershipKind) ([]domain.Membership, error) {
	return s.memberships.ListByUserAndKind(ctx, userID, kind)
}

// RegisterDevice ties a serial number to its owner. Serial uniqueness is
// enforced by the store.
func (s *DirectoryService) RegisterDevice(ctx context.Context, ownerUserID, serialNumber, label string) (*domain.Device, error) {
	serialNumber = strings.TrimSpace(serialNumber)
	if serialNumber == "" {
		return nil, apperrors.NewValidationError("serial number required", nil)
	}

	device := &domain.Device{
		SerialNumber: serialNumber,
		OwnerUserID:  ownerUserID,
		Label:        strings.TrimSpace(label),
	}
	if err := s.devices.Create(ctx, device); err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:      events.EventDeviceRegistered,
		SubjectID: device.ID,
		Actor:     events.Actor{UserID: &ownerUserID},
		Payload: events.DeviceRegisteredPayload{
			SerialNumber: serialNumber,
			OwnerUserID:  ownerUserID,
		},
	})
	return device, nil
}

// RemoveDevice unregisters one of the caller's devices.
func (s *DirectoryService) RemoveDevice(ctx context.Context, ownerUserID, serialNumber string) error {
	if err := s.devices.Delete(ctx, ownerUserID, strings.TrimSpace(serialNumber)); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("device", nil)
		}
		return err
	}
	return nil
}

// ListDevices returns the caller's registered devices.
func (s *DirectoryService) ListDevices(ctx context.Context, ownerUserID string) ([]domain.Device, error) {
	return s.devices.ListByOwner(ctx, ownerUserID)
}

func (s *DirectoryService) requireAuthority(ctx context.Context, userID, organizationID string, min domain.AuthorityLevel) error {
	membership, err := s.memberships.GetOrganizationMembership(ctx, userID, organizationID, nil)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewForbidden("organization authority required")
		}
		return err
	}
	if !membership.Level.AtLeast(min) {
		return apperrors.NewForbidden("insufficient authority")
	}
	return nil
}

func (s *DirectoryService) publish(ctx context.Context, event events.Event) {
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
