package service

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/beacon-marketplace/internal/config"
	"github.com/spec-kit/beacon-marketplace/internal/domain"
	apperrors "github.com/spec-kit/beacon-marketplace/pkg/util/errorutil"
)

func newSearchFixture(t *testing.T, venues ...domain.Venue) *VenueSearchService {
	t.Helper()
	repo := newFakeVenueRepo()
	for i := range venues {
		require.NoError(t, repo.Create(context.Background(), &venues[i]))
	}
	return NewVenueSearchService(repo, config.GeoConfig{
		DefaultDeltaLat: 1.0,
		DefaultDeltaLon: 1.0,
		MaxResults:      100,
	})
}

func floatPtr(v float64) *float64 { return &v }

func TestFindNearbyReturnsVenuesInsideWindow(t *testing.T) {
	svc := newSearchFixture(t,
		domain.Venue{ID: "inside", Latitude: 10.0, Longitude: 20.0},
		domain.Venue{ID: "outside-lat", Latitude: 15.0, Longitude: 20.0},
		domain.Venue{ID: "outside-lon", Latitude: 10.0, Longitude: 25.0},
	)

	venues, err := svc.FindNearby(context.Background(), NearbyQuery{
		CenterLat: 10.0,
		CenterLon: 20.0,
		DeltaLat:  floatPtr(4.0),
		DeltaLon:  floatPtr(4.0),
	})
	require.NoError(t, err)
	require.Len(t, venues, 1)
	assert.Equal(t, "inside", venues[0].ID)
}

func TestFindNearbyWindowEdgesAreInclusive(t *testing.T) {
	// Center 10, delta 4 spans [8, 12] on each axis; both edges match.
	svc := newSearchFixture(t,
		domain.Venue{ID: "low-edge", Latitude: 8.0, Longitude: 10.0},
		domain.Venue{ID: "high-edge", Latitude: 12.0, Longitude: 10.0},
		domain.Venue{ID: "past-edge", Latitude: 12.0001, Longitude: 10.0},
	)

	venues, err := svc.FindNearby(context.Background(), NearbyQuery{
		CenterLat: 10.0,
		CenterLon: 10.0,
		DeltaLat:  floatPtr(4.0),
		DeltaLon:  floatPtr(4.0),
	})
	require.NoError(t, err)
	assert.Len(t, venues, 2)
}

func TestFindNearbyClampsAtPole(t *testing.T) {
	// Center 89, delta 10 clamps to [84, 90]; the pole venue stays inside.
	svc := newSearchFixture(t,
		domain.Venue{ID: "pole", Latitude: 90.0, Longitude: 0.0},
		domain.Venue{ID: "below", Latitude: 83.0, Longitude: 0.0},
	)

	venues, err := svc.FindNearby(context.Background(), NearbyQuery{
		CenterLat: 89.0,
		CenterLon: 0.0,
		DeltaLat:  floatPtr(10.0),
		DeltaLon:  floatPtr(10.0),
	})
	require.NoError(t, err)
	require.Len(t, venues, 1)
	assert.Equal(t, "pole", venues[0].ID)
}

func TestFindNearbyDegenerateWindowIsEmpty(t *testing.T) {
	svc := newSearchFixture(t,
		domain.Venue{ID: "anywhere", Latitude: 0.0, Longitude: 0.0},
	)

	// A negative delta collapses the window below its own center.
	venues, err := svc.FindNearby(context.Background(), NearbyQuery{
		CenterLat: 0.0,
		CenterLon: 0.0,
		DeltaLat:  floatPtr(-4.0),
		DeltaLon:  floatPtr(2.0),
	})
	require.NoError(t, err)
	assert.Empty(t, venues)
	assert.NotNil(t, venues)
}

func TestFindNearbyCenterFarOutsideBounds(t *testing.T) {
	svc := newSearchFixture(t,
		domain.Venue{ID: "pole", Latitude: 90.0, Longitude: 0.0},
	)

	// Center 200 with delta 10 clamps to low=195, high=90: degenerate.
	venues, err := svc.FindNearby(context.Background(), NearbyQuery{
		CenterLat: 200.0,
		CenterLon: 0.0,
		DeltaLat:  floatPtr(10.0),
		DeltaLon:  floatPtr(10.0),
	})
	require.NoError(t, err)
	assert.Empty(t, venues)
}

func TestFindNearbyUsesConfiguredDefaults(t *testing.T) {
	// Default delta 1.0 spans [9.5, 10.5] around center 10.
	svc := newSearchFixture(t,
		domain.Venue{ID: "close", Latitude: 10.2, Longitude: 10.2},
		domain.Venue{ID: "far", Latitude: 11.0, Longitude: 11.0},
	)

	venues, err := svc.FindNearby(context.Background(), NearbyQuery{
		CenterLat: 10.0,
		CenterLon: 10.0,
	})
	require.NoError(t, err)
	require.Len(t, venues, 1)
	assert.Equal(t, "close", venues[0].ID)
}

func TestFindNearbyRejectsNaNCenter(t *testing.T) {
	svc := newSearchFixture(t)

	_, err := svc.FindNearby(context.Background(), NearbyQuery{
		CenterLat: math.NaN(),
		CenterLon: 0.0,
	})
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))
}

func TestFindNearbyLimitCapped(t *testing.T) {
	repo := newFakeVenueRepo()
	for i := 0; i < 5; i++ {
		require.NoError(t, repo.Create(context.Background(), &domain.Venue{Latitude: 1.0, Longitude: 1.0}))
	}
	svc := NewVenueSearchService(repo, config.GeoConfig{
		DefaultDeltaLat: 4.0,
		DefaultDeltaLon: 4.0,
		MaxResults:      3,
	})

	venues, err := svc.FindNearby(context.Background(), NearbyQuery{CenterLat: 1.0, CenterLon: 1.0, Limit: 100})
	require.NoError(t, err)
	assert.Len(t, venues, 3)
}
