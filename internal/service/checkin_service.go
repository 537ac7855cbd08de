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

// CheckInService records proximity sightings. Repeated sightings for the
// same (zone, user) key collapse into one row; the repository upsert is
// atomic so concurrent sightings never duplicate.
//
// Two submission paths exist: a user's own device reporting its position
// (beacon-derived), and a venue-owned contact reader reporting a discovered
// device by serial number. The reader path is trusted through device
// registration, not through a bearer token.
type CheckInService struct {
	checkIns   repository.CheckInRepository
	devices    repository.DeviceRepository
	dispatcher events.Dispatcher
	now        func() time.Time
}

// CheckInDependencies bundles repositories for the check-in service.
type CheckInDependencies struct {
	CheckInRepo repository.CheckInRepository
	DeviceRepo  repository.DeviceRepository
	Dispatcher  events.Dispatcher
}

// NewCheckInService constructs the service.
func NewCheckInService(deps CheckInDependencies) *CheckInService {
	return &CheckInService{
		checkIns:   deps.CheckInRepo,
		devices:    deps.DeviceRepo,
		dispatcher: deps.Dispatcher,
		now:        time.Now,
	}
}

// SubmitSelf records a sighting reported by the user's own device.
func (s *CheckInService) SubmitSelf(ctx context.Context, userID string, zone domain.ZoneKey, proximity domain.Proximity) (*domain.CheckIn, error) {
	return s.record(ctx, domain.CheckInKey{Zone: zone, UserID: userID}, proximity, domain.SourceBeacon, events.Actor{UserID: &userID})
}

// SubmitByReader records a sighting reported by a registered contact reader.
// The serial number resolves to the reader's owner; an unregistered serial
// fails NOT_FOUND.
func (s *CheckInService) SubmitByReader(ctx context.Context, readerSerial string, zone domain.ZoneKey, proximity domain.Proximity) (*domain.CheckIn, error) {
	readerSerial = strings.TrimSpace(readerSerial)
	if readerSerial == "" {
		return nil, apperrors.NewValidationError("reader serial number required", nil)
	}

	device, err := s.devices.GetBySerialNumber(ctx, readerSerial)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("device", map[string]any{
				"serial_number": readerSerial,
			})
		}
		return nil, err
	}

	key := domain.CheckInKey{Zone: zone, UserID: device.OwnerUserID}
	return s.record(ctx, key, proximity, domain.SourceContactReader, events.Actor{DeviceSerial: &readerSerial})
}

// GetForUser returns the stored record for one (zone, user) key.
func (s *CheckInService) GetForUser(ctx context.Context, userID string, zone domain.ZoneKey) (*domain.CheckIn, error) {
	record, err := s.checkIns.GetByKey(ctx, domain.CheckInKey{Zone: zone, UserID: userID})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("check-in", nil)
		}
		return nil, err
	}
	return record, nil
}

// ListForUser returns the user's most recent check-ins.
func (s *CheckInService) ListForUser(ctx context.Context, userID string, limit int) ([]domain.CheckIn, error) {
	return s.checkIns.ListByUser(ctx, userID, limit)
}

func (s *CheckInService) record(ctx context.Context, key domain.CheckInKey, proximity domain.Proximity, source domain.CheckInSource, actor events.Actor) (*domain.CheckIn, error) {
	if err := key.Zone.Validate(); err != nil {
		return nil, err
	}
	if !proximity.Valid() {
		return nil, apperrors.NewValidationError("unknown proximity class", map[string]any{
			"proximity": string(proximity),
		})
	}

	record, created, err := s.checkIns.Upsert(ctx, key, proximity, source, s.now())
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:      events.EventCheckInRecorded,
		SubjectID: key.UserID,
		Actor:     actor,
		Payload: events.CheckInRecordedPayload{
			Field:     key.Zone.Field,
			Major:     key.Zone.Major,
			Minor:     key.Zone.Minor,
			UserID:    key.UserID,
			Proximity: proximity,
			Source:    source,
			Created:   created,
		},
	})
	return record, nil
}

func (s *CheckInService) publish(ctx context.Context, event events.Event) {
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
