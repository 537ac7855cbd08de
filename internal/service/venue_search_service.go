package service

import (
	"context"
	"math"

	"github.com/spec-kit/beacon-marketplace/internal/config"
	"github.com/spec-kit/beacon-marketplace/internal/domain"
	"github.com/spec-kit/beacon-marketplace/internal/geo"
	"github.com/spec-kit/beacon-marketplace/internal/repository"
	apperrors "github.com/spec-kit/beacon-marketplace/pkg/util/errorutil"
)

// VenueSearchService answers "what venues are near this point" queries with
// a clamped rectangular bounding box, one window per axis.
type VenueSearchService struct {
	venues repository.VenueRepository
	cfg    config.GeoConfig
}

// NewVenueSearchService constructs the service.
func NewVenueSearchService(venues repository.VenueRepository, cfg config.GeoConfig) *VenueSearchService {
	return &VenueSearchService{venues: venues, cfg: cfg}
}

// NearbyQuery holds a range query. Zero deltas fall back to configured
// defaults; explicit negative deltas are honored and yield empty results.
type NearbyQuery struct {
	CenterLat float64
	CenterLon float64
	DeltaLat  *float64
	DeltaLon  *float64
	Limit     int
}

// FindNearby returns venues inside both closed windows. Degenerate windows
// (low > high, possible when the center sits outside axis bounds or a delta
// is negative) return an empty list without touching the store.
func (s *VenueSearchService) FindNearby(ctx context.Context, query NearbyQuery) ([]domain.Venue, error) {
	if math.IsNaN(query.CenterLat) || math.IsNaN(query.CenterLon) {
		return nil, apperrors.NewValidationError("center coordinates must be numbers", nil)
	}

	deltaLat := s.cfg.DefaultDeltaLat
	if query.DeltaLat != nil {
		deltaLat = *query.DeltaLat
	}
	deltaLon := s.cfg.DefaultDeltaLon
	if query.DeltaLon != nil {
		deltaLon = *query.DeltaLon
	}

	latLow, latHigh := geo.LatitudeWindow(query.CenterLat, deltaLat)
	lonLow, lonHigh := geo.LongitudeWindow(query.CenterLon, deltaLon)
	if geo.Degenerate(latLow, latHigh) || geo.Degenerate(lonLow, lonHigh) {
		return []domain.Venue{}, nil
	}

	limit := query.Limit
	if limit <= 0 || limit > s.cfg.MaxResults {
		limit = s.cfg.MaxResults
	}

	venues, err := s.venues.FindWithinBounds(ctx, repository.BoundsFilter{
		LatLow:  latLow,
		LatHigh: latHigh,
		LonLow:  lonLow,
		LonHigh: lonHigh,
		Limit:   limit,
	})
	if err != nil {
		return nil, err
	}
	if venues == nil {
		venues = []domain.Venue{}
	}
	return venues, nil
}
