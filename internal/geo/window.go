// Package geo computes the clamped bounding windows used by venue range
// queries. Queries are rectangular by design: one window per axis, combined
// into a box, never a geodesic disk.
package geo

import "github.com/spec-kit/beacon-marketplace/internal/domain"

// Window returns the [low, high] interval of width delta centered on center,
// clamped to [min, max]. A center outside the axis bounds or a negative delta
// can produce low > high; callers must treat such degenerate windows as "no
// matches" rather than an error.
func Window(center, delta, min, max float64) (low, high float64) {
	low = center - delta/2
	if low < min {
		low = min
	}
	high = center + delta/2
	if high > max {
		high = max
	}
	return low, high
}

// LatitudeWindow clamps to the latitude axis.
func LatitudeWindow(center, delta float64) (low, high float64) {
	return Window(center, delta, domain.LatitudeMin, domain.LatitudeMax)
}

// LongitudeWindow clamps to the longitude axis.
func LongitudeWindow(center, delta float64) (low, high float64) {
	return Window(center, delta, domain.LongitudeMin, domain.LongitudeMax)
}

// Degenerate reports whether a window selects nothing.
func Degenerate(low, high float64) bool {
	return low > high
}
