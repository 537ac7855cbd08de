package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/beacon-marketplace/internal/domain"
	apperrors "github.com/spec-kit/beacon-marketplace/pkg/util/errorutil"
)

func newCheckInFixture() (*CheckInService, *fakeCheckInRepo, *fakeDeviceRepo) {
	checkIns := newFakeCheckInRepo()
	devices := newFakeDeviceRepo()
	svc := NewCheckInService(CheckInDependencies{
		CheckInRepo: checkIns,
		DeviceRepo:  devices,
	})
	return svc, checkIns, devices
}

func TestSubmitSelfCreatesRecord(t *testing.T) {
	svc, checkIns, _ := newCheckInFixture()
	zone := domain.ZoneKey{Field: "campus-a", Major: 3, Minor: 17}

	record, err := svc.SubmitSelf(context.Background(), "user-1", zone, domain.ProximityNear)
	require.NoError(t, err)
	assert.Equal(t, zone, record.Key.Zone)
	assert.Equal(t, "user-1", record.Key.UserID)
	assert.Equal(t, domain.ProximityNear, record.Proximity)
	assert.Equal(t, domain.SourceBeacon, record.Source)
	assert.Equal(t, 1, checkIns.count())
}

func TestSubmitSelfIsIdempotentLastWriteWins(t *testing.T) {
	svc, checkIns, _ := newCheckInFixture()
	zone := domain.ZoneKey{Field: "campus-a", Major: 3, Minor: 17}
	ctx := context.Background()

	first, err := svc.SubmitSelf(ctx, "user-1", zone, domain.ProximityFar)
	require.NoError(t, err)
	second, err := svc.SubmitSelf(ctx, "user-1", zone, domain.ProximityImmediate)
	require.NoError(t, err)

	assert.Equal(t, 1, checkIns.count())
	assert.Equal(t, domain.ProximityImmediate, second.Proximity)
	assert.Equal(t, first.Key, second.Key)
	assert.Equal(t, first.CreatedAt, second.CreatedAt)
}

func TestSubmitSelfDistinctZonesDistinctRecords(t *testing.T) {
	svc, checkIns, _ := newCheckInFixture()
	ctx := context.Background()

	_, err := svc.SubmitSelf(ctx, "user-1", domain.ZoneKey{Field: "campus-a", Major: 3, Minor: 17}, domain.ProximityNear)
	require.NoError(t, err)
	_, err = svc.SubmitSelf(ctx, "user-1", domain.ZoneKey{Field: "campus-a", Major: 3, Minor: 18}, domain.ProximityNear)
	require.NoError(t, err)
	_, err = svc.SubmitSelf(ctx, "user-2", domain.ZoneKey{Field: "campus-a", Major: 3, Minor: 17}, domain.ProximityNear)
	require.NoError(t, err)

	assert.Equal(t, 3, checkIns.count())
}

func TestSubmitSelfRejectsUnknownProximity(t *testing.T) {
	svc, checkIns, _ := newCheckInFixture()

	_, err := svc.SubmitSelf(context.Background(), "user-1", domain.ZoneKey{Field: "campus-a", Major: 1, Minor: 1}, domain.Proximity("TOUCHING"))
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))
	assert.Equal(t, 0, checkIns.count())
}

func TestSubmitSelfRejectsMalformedZone(t *testing.T) {
	svc, checkIns, _ := newCheckInFixture()
	ctx := context.Background()

	// Keys built in code bypass the HTTP parsing path, so the service must
	// reject them itself before touching the store.
	_, err := svc.SubmitSelf(ctx, "user-1", domain.ZoneKey{Field: "", Major: 1, Minor: 1}, domain.ProximityNear)
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))
	_, err = svc.SubmitSelf(ctx, "user-1", domain.ZoneKey{Field: "campus-a", Major: -1, Minor: 1}, domain.ProximityNear)
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))
	assert.Equal(t, 0, checkIns.count())
}

func TestSubmitByReaderRejectsMalformedZone(t *testing.T) {
	svc, checkIns, devices := newCheckInFixture()
	ctx := context.Background()
	err := devices.Create(ctx, &domain.Device{SerialNumber: "ABC123", OwnerUserID: "user-7"})
	require.NoError(t, err)

	_, err = svc.SubmitByReader(ctx, "ABC123", domain.ZoneKey{Field: "  ", Major: 1, Minor: 5}, domain.ProximityNear)
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))
	assert.Equal(t, 0, checkIns.count())
}

func TestSubmitByReaderResolvesOwner(t *testing.T) {
	svc, _, devices := newCheckInFixture()
	ctx := context.Background()
	err := devices.Create(ctx, &domain.Device{
		SerialNumber: "ABC123",
		OwnerUserID:  "user-7",
		Label:        "lobby reader",
	})
	require.NoError(t, err)

	record, err := svc.SubmitByReader(ctx, "ABC123", domain.ZoneKey{Field: "F1", Major: 1, Minor: 5}, domain.ProximityNear)
	require.NoError(t, err)
	assert.Equal(t, "user-7", record.Key.UserID)
	assert.Equal(t, domain.SourceContactReader, record.Source)
}

func TestSubmitByReaderUnregisteredSerial(t *testing.T) {
	svc, _, _ := newCheckInFixture()

	_, err := svc.SubmitByReader(context.Background(), "NOPE", domain.ZoneKey{Field: "F1", Major: 1, Minor: 5}, domain.ProximityNear)
	assert.True(t, apperrors.IsCode(err, "NOT_FOUND"))
}

func TestSubmitByReaderBlankSerial(t *testing.T) {
	svc, _, _ := newCheckInFixture()

	_, err := svc.SubmitByReader(context.Background(), "   ", domain.ZoneKey{Field: "F1", Major: 1, Minor: 5}, domain.ProximityNear)
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))
}

// Full reader flow: register a reader, sight the same key twice, read it
// back. One record survives, holding the later proximity.
func TestReaderSightingsCollapse(t *testing.T) {
	svc, checkIns, devices := newCheckInFixture()
	ctx := context.Background()
	err := devices.Create(ctx, &domain.Device{SerialNumber: "ABC123", OwnerUserID: "user-7"})
	require.NoError(t, err)
	zone := domain.ZoneKey{Field: "F1", Major: 1, Minor: 5}

	_, err = svc.SubmitByReader(ctx, "ABC123", zone, domain.ProximityNear)
	require.NoError(t, err)
	_, err = svc.SubmitByReader(ctx, "ABC123", zone, domain.ProximityImmediate)
	require.NoError(t, err)

	assert.Equal(t, 1, checkIns.count())
	stored, err := svc.GetForUser(ctx, "user-7", zone)
	require.NoError(t, err)
	assert.Equal(t, domain.ProximityImmediate, stored.Proximity)
}

func TestConcurrentSameKeySubmissions(t *testing.T) {
	svc, checkIns, _ := newCheckInFixture()
	ctx := context.Background()
	zone := domain.ZoneKey{Field: "campus-a", Major: 9, Minor: 9}
	proximities := []domain.Proximity{domain.ProximityImmediate, domain.ProximityNear, domain.ProximityFar, domain.ProximityNear}

	var wg sync.WaitGroup
	errs := make([]error, len(proximities))
	for i, p := range proximities {
		wg.Add(1)
		go func(i int, p domain.Proximity) {
			defer wg.Done()
			_, errs[i] = svc.SubmitSelf(ctx, "user-1", zone, p)
		}(i, p)
	}
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, 1, checkIns.count())

	stored, err := svc.GetForUser(ctx, "user-1", zone)
	require.NoError(t, err)
	assert.Contains(t, proximities, stored.Proximity)
}

func TestGetForUserMissing(t *testing.T) {
	svc, _, _ := newCheckInFixture()

	_, err := svc.GetForUser(context.Background(), "user-1", domain.ZoneKey{Field: "F1", Major: 1, Minor: 1})
	assert.True(t, apperrors.IsCode(err, "NOT_FOUND"))
}

func TestListForUser(t *testing.T) {
	svc, _, _ := newCheckInFixture()
	ctx := context.Background()

	_, err := svc.SubmitSelf(ctx, "user-1", domain.ZoneKey{Field: "F1", Major: 1, Minor: 1}, domain.ProximityNear)
	require.NoError(t, err)
	_, err = svc.SubmitSelf(ctx, "user-1", domain.ZoneKey{Field: "F1", Major: 1, Minor: 2}, domain.ProximityFar)
	require.NoError(t, err)
	_, err = svc.SubmitSelf(ctx, "user-2", domain.ZoneKey{Field: "F1", Major: 1, Minor: 1}, domain.ProximityNear)
	require.NoError(t, err)

	records, err := svc.ListForUser(ctx, "user-1", 10)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestUpsertTimestampsAdvance(t *testing.T) {
	svc, _, _ := newCheckInFixture()
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	current := base
	svc.now = func() time.Time { return current }
	ctx := context.Background()
	zone := domain.ZoneKey{Field: "F1", Major: 2, Minor: 2}

	first, err := svc.SubmitSelf(ctx, "user-1", zone, domain.ProximityNear)
	require.NoError(t, err)
	current = base.Add(5 * time.Minute)
	second, err := svc.SubmitSelf(ctx, "user-1", zone, domain.ProximityFar)
	require.NoError(t, err)

	assert.Equal(t, base, first.CreatedAt)
	assert.Equal(t, base, second.CreatedAt)
	assert.Equal(t, base.Add(5*time.Minute), second.UpdatedAt)
}
