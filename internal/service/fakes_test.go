package service

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/beacon-marketplace/internal/domain"
	"github.com/spec-kit/beacon-marketplace/internal/repository"
)

// In-memory repository fakes. They mirror the storage-layer contracts the
// pgx implementations provide: Mutate serializes on a lock the way FOR
// UPDATE serializes on the row, and the check-in upsert is atomic under its
// own mutex like the ON CONFLICT statement.

type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]*domain.Session
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[string]*domain.Session)}
}

func (r *fakeSessionRepo) Create(_ context.Context, session *domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *session
	r.sessions[session.ID] = &copied
	return nil
}

func (r *fakeSessionRepo) GetByID(_ context.Context, id string) (*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *session
	return &copied, nil
}

func (r *fakeSessionRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.sessions, id)
	return nil
}

func (r *fakeSessionRepo) Mutate(_ context.Context, id string, fn func(*domain.Session) error) (*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	working := *session
	if err := fn(&working); err != nil {
		return nil, err
	}
	r.sessions[id] = &working
	result := working
	return &result, nil
}

type fakeMembershipRepo struct {
	mu          sync.Mutex
	memberships map[string]*domain.Membership
	nextID      int
}

func newFakeMembershipRepo() *fakeMembershipRepo {
	return &fakeMembershipRepo{memberships: make(map[string]*domain.Membership)}
}

func (r *fakeMembershipRepo) Create(_ context.Context, membership *domain.Membership) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	membership.ID = "membership-" + strconv.Itoa(r.nextID)
	membership.CreatedAt = time.Now()
	membership.UpdatedAt = membership.CreatedAt
	copied := *membership
	r.memberships[membership.ID] = &copied
	return nil
}

func (r *fakeMembershipRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.memberships[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.memberships, id)
	return nil
}

func (r *fakeMembershipRepo) GetByID(_ context.Context, id string) (*domain.Membership, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	membership, ok := r.memberships[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *membership
	return &copied, nil
}

func (r *fakeMembershipRepo) GetOrganizationMembership(_ context.Context, userID, organizationID string, venueID *string) (*domain.Membership, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, membership := range r.memberships {
		if membership.Kind != domain.MembershipKindOrganization ||
			membership.UserID != userID || membership.SubjectID != organizationID {
			continue
		}
		if venueID == nil && membership.VenueID == nil {
			copied := *membership
			return &copied, nil
		}
		if venueID != nil && membership.VenueID != nil && *venueID == *membership.VenueID {
			copied := *membership
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeMembershipRepo) GetIntegrationMembership(_ context.Context, userID, integrationID string) (*domain.Membership, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, membership := range r.memberships {
		if membership.Kind == domain.MembershipKindIntegration &&
			membership.UserID == userID && membership.SubjectID == integrationID {
			copied := *membership
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeMembershipRepo) ListByUserAndKind(_ context.Context, userID string, kind domain.MembershipKind) ([]domain.Membership, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Membership
	for _, membership := range r.memberships {
		if membership.UserID == userID && membership.Kind == kind {
			result = append(result, *membership)
		}
	}
	return result, nil
}

type fakeOrganizationRepo struct {
	mu   sync.Mutex
	orgs map[string]*domain.Organization
}

func newFakeOrganizationRepo() *fakeOrganizationRepo {
	return &fakeOrganizationRepo{orgs: make(map[string]*domain.Organization)}
}

func (r *fakeOrganizationRepo) Create(_ context.Context, org *domain.Organization) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if org.ID == "" {
		org.ID = "org-" + strconv.Itoa(len(r.orgs)+1)
	}
	org.CreatedAt = time.Now()
	org.UpdatedAt = org.CreatedAt
	copied := *org
	r.orgs[org.ID] = &copied
	return nil
}

func (r *fakeOrganizationRepo) GetByID(_ context.Context, id string) (*domain.Organization, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	org, ok := r.orgs[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *org
	return &copied, nil
}

type fakeVenueRepo struct {
	mu     sync.Mutex
	venues map[string]*domain.Venue
}

func newFakeVenueRepo() *fakeVenueRepo {
	return &fakeVenueRepo{venues: make(map[string]*domain.Venue)}
}

func (r *fakeVenueRepo) Create(_ context.Context, venue *domain.Venue) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if venue.ID == "" {
		venue.ID = "venue-" + strconv.Itoa(len(r.venues)+1)
	}
	venue.CreatedAt = time.Now()
	venue.UpdatedAt = venue.CreatedAt
	copied := *venue
	r.venues[venue.ID] = &copied
	return nil
}

func (r *fakeVenueRepo) GetByID(_ context.Context, id string) (*domain.Venue, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	venue, ok := r.venues[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *venue
	return &copied, nil
}

func (r *fakeVenueRepo) ListByOrganization(_ context.Context, organizationID string) ([]domain.Venue, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Venue
	for _, venue := range r.venues {
		if venue.OrganizationID == organizationID {
			result = append(result, *venue)
		}
	}
	return result, nil
}

func (r *fakeVenueRepo) FindWithinBounds(_ context.Context, filter repository.BoundsFilter) ([]domain.Venue, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Venue
	for _, venue := range r.venues {
		if venue.Latitude >= filter.LatLow && venue.Latitude <= filter.LatHigh &&
			venue.Longitude >= filter.LonLow && venue.Longitude <= filter.LonHigh {
			result = append(result, *venue)
		}
		if filter.Limit > 0 && len(result) >= filter.Limit {
			break
		}
	}
	return result, nil
}

type fakeIntegrationRepo struct {
	mu           sync.Mutex
	integrations map[string]*domain.Integration
}

func newFakeIntegrationRepo() *fakeIntegrationRepo {
	return &fakeIntegrationRepo{integrations: make(map[string]*domain.Integration)}
}

func (r *fakeIntegrationRepo) Create(_ context.Context, integration *domain.Integration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if integration.ID == "" {
		integration.ID = "integration-" + strconv.Itoa(len(r.integrations)+1)
	}
	integration.CreatedAt = time.Now()
	integration.UpdatedAt = integration.CreatedAt
	copied := *integration
	r.integrations[integration.ID] = &copied
	return nil
}

func (r *fakeIntegrationRepo) GetByID(_ context.Context, id string) (*domain.Integration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	integration, ok := r.integrations[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *integration
	return &copied, nil
}

type fakeCheckInRepo struct {
	mu      sync.Mutex
	records map[domain.CheckInKey]*domain.CheckIn
}

func newFakeCheckInRepo() *fakeCheckInRepo {
	return &fakeCheckInRepo{records: make(map[domain.CheckInKey]*domain.CheckIn)}
}

func (r *fakeCheckInRepo) Upsert(_ context.Context, key domain.CheckInKey, proximity domain.Proximity, source domain.CheckInSource, now time.Time) (*domain.CheckIn, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.records[key]; ok {
		existing.Proximity = proximity
		existing.Source = source
		existing.UpdatedAt = now
		copied := *existing
		return &copied, false, nil
	}
	record := &domain.CheckIn{
		Key:       key,
		Proximity: proximity,
		Source:    source,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.records[key] = record
	copied := *record
	return &copied, true, nil
}

func (r *fakeCheckInRepo) GetByKey(_ context.Context, key domain.CheckInKey) (*domain.CheckIn, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	record, ok := r.records[key]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *record
	return &copied, nil
}

func (r *fakeCheckInRepo) ListByUser(_ context.Context, userID string, limit int) ([]domain.CheckIn, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.CheckIn
	for _, record := range r.records {
		if record.Key.UserID == userID {
			result = append(result, *record)
		}
		if limit > 0 && len(result) >= limit {
			break
		}
	}
	return result, nil
}

func (r *fakeCheckInRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}

type fakeDeviceRepo struct {
	mu      sync.Mutex
	devices map[string]*domain.Device
}

func newFakeDeviceRepo() *fakeDeviceRepo {
	return &fakeDeviceRepo{devices: make(map[string]*domain.Device)}
}

func (r *fakeDeviceRepo) Create(_ context.Context, device *domain.Device) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if device.ID == "" {
		device.ID = "device-" + strconv.Itoa(len(r.devices)+1)
	}
	device.CreatedAt = time.Now()
	device.UpdatedAt = device.CreatedAt
	copied := *device
	r.devices[device.SerialNumber] = &copied
	return nil
}

func (r *fakeDeviceRepo) Delete(_ context.Context, ownerUserID, serial string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	device, ok := r.devices[serial]
	if !ok || device.OwnerUserID != ownerUserID {
		return pgx.ErrNoRows
	}
	delete(r.devices, serial)
	return nil
}

func (r *fakeDeviceRepo) GetBySerialNumber(_ context.Context, serial string) (*domain.Device, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	device, ok := r.devices[serial]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *device
	return &copied, nil
}

func (r *fakeDeviceRepo) ListByOwner(_ context.Context, ownerUserID string) ([]domain.Device, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Device
	for _, device := range r.devices {
		if device.OwnerUserID == ownerUserID {
			result = append(result, *device)
		}
	}
	return result, nil
}
