package domain

import "time"

// Coordinate axis bounds for venue positions.
const (
	LatitudeMin  = -90.0
	LatitudeMax  = 90.0
	LongitudeMin = -180.0
	LongitudeMax = 180.0
)

// Venue is a physical sub-location of an organization.
type Venue struct {
	ID             string
	OrganizationID string
	Name           string
	Address        string
	Latitude       float64
	Longitude      float64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ValidCoordinates reports whether the venue position is inside axis bounds.
func (v *Venue) ValidCoordinates() bool {
	return v.Latitude >= LatitudeMin && v.Latitude <= LatitudeMax &&
		v.Longitude >= LongitudeMin && v.Longitude <= LongitudeMax
}
