package domain

import (
	"strconv"
	"strings"
	"time"

	apperrors "github.com/spec-kit/beacon-marketplace/pkg/util/errorutil"
)

// Proximity is the distance bucket reported by a sighting.
type Proximity string

const (
	ProximityImmediate Proximity = "IMMEDIATE"
	ProximityNear      Proximity = "NEAR"
	ProximityFar       Proximity = "FAR"
)

// Valid reports whether the proximity is a known bucket.
func (p Proximity) Valid() bool {
	switch p {
	case ProximityImmediate, ProximityNear, ProximityFar:
		return true
	}
	return false
}

// CheckInSource identifies which side of the radio link reported the sighting.
type CheckInSource string

const (
	SourceBeacon        CheckInSource = "BEACON"
	SourceContactReader CheckInSource = "CONTACT_READER"
)

// ZoneKey identifies one physical broadcast region, analogous to a beacon's
// UUID/major/minor triple.
type ZoneKey struct {
	Field string
	Major int
	Minor int
}

// Validate checks the assembled key. Field must be non-empty and the zone
// values non-negative; anything else fails with VALIDATION_FAILED. Services
// call this before any store access, so a malformed key never reaches a row.
func (k ZoneKey) Validate() error {
	if strings.TrimSpace(k.Field) == "" {
		return apperrors.NewValidationError("field identifier required", nil)
	}
	if k.Major < 0 {
		return apperrors.NewValidationError("major zone must be a non-negative integer", map[string]any{
			"major": k.Major,
		})
	}
	if k.Minor < 0 {
		return apperrors.NewValidationError("minor zone must be a non-negative integer", map[string]any{
			"minor": k.Minor,
		})
	}
	return nil
}

// ParseZoneKey builds a ZoneKey from raw request components and validates it.
func ParseZoneKey(field, major, minor string) (ZoneKey, error) {
	majorNum, err := strconv.Atoi(strings.TrimSpace(major))
	if err != nil {
		return ZoneKey{}, apperrors.NewValidationError("major zone must be a non-negative integer", map[string]any{
			"major": major,
		})
	}
	minorNum, err := strconv.Atoi(strings.TrimSpace(minor))
	if err != nil {
		return ZoneKey{}, apperrors.NewValidationError("minor zone must be a non-negative integer", map[string]any{
			"minor": minor,
		})
	}
	key := ZoneKey{Field: strings.TrimSpace(field), Major: majorNum, Minor: minorNum}
	if err := key.Validate(); err != nil {
		return ZoneKey{}, err
	}
	return key, nil
}

// CheckInKey is the composite identity of a check-in row: one row exists per
// (zone, user) pair at any time.
type CheckInKey struct {
	Zone   ZoneKey
	UserID string
}

// CheckIn is the last known proximity of one user to one zone. The key fields
// are immutable once created; only Proximity, Source and UpdatedAt change on
// later sightings.
type CheckIn struct {
	Key       CheckInKey
	Proximity Proximity
	Source    CheckInSource
	CreatedAt time.Time
	UpdatedAt time.Time
}
