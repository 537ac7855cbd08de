package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWindow(t *testing.T) {
	tests := []struct {
		name                     string
		center, delta, min, max  float64
		wantLow, wantHigh        float64
	}{
		{"centered window", 10, 4, -90, 90, 8, 12},
		{"clamped at upper bound", 89, 10, -90, 90, 84, 90},
		{"clamped at lower bound", -89, 10, -90, 90, -90, -84},
		{"zero delta collapses to center", 45, 0, -90, 90, 45, 45},
		{"longitude axis", 179, 4, -180, 180, 177, 180},
		{"window spanning whole axis", 0, 400, -90, 90, -90, 90},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			low, high := Window(tt.center, tt.delta, tt.min, tt.max)
			assert.Equal(t, tt.wantLow, low)
			assert.Equal(t, tt.wantHigh, high)
		})
	}
}

func TestWindowDegenerate(t *testing.T) {
	t.Run("negative delta produces empty window", func(t *testing.T) {
		low, high := Window(10, -4, -90, 90)
		assert.True(t, Degenerate(low, high))
	})

	t.Run("center far outside bounds stays clamped", func(t *testing.T) {
		low, high := Window(500, 2, -90, 90)
		assert.Equal(t, 90.0, high)
		assert.True(t, Degenerate(low, high), "low %f high %f", low, high)
	})

	t.Run("valid window is not degenerate", func(t *testing.T) {
		low, high := Window(0, 1, -90, 90)
		assert.False(t, Degenerate(low, high))
	})
}

func TestAxisWindows(t *testing.T) {
	low, high := LatitudeWindow(89, 10)
	assert.Equal(t, 84.0, low)
	assert.Equal(t, 90.0, high)

	low, high = LongitudeWindow(-179, 10)
	assert.Equal(t, -180.0, low)
	assert.Equal(t, -174.0, high)
}
