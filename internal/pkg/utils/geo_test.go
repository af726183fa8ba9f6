package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHaversineDistanceMeters(t *testing.T) {
	// Same point.
	assert.Zero(t, HaversineDistanceMeters(14.5547, 121.0244, 14.5547, 121.0244))

	// One degree of latitude is roughly 111.2 km.
	d := HaversineDistanceMeters(14.0, 121.0, 15.0, 121.0)
	assert.InDelta(t, 111195, d, 200)

	// Symmetry.
	assert.InDelta(t,
		HaversineDistanceMeters(14.5547, 121.0244, 14.6, 121.1),
		HaversineDistanceMeters(14.6, 121.1, 14.5547, 121.0244),
		1e-6)

	// A small offset stays in geofence scale: 0.0045 deg lat ~ 500m.
	d = HaversineDistanceMeters(14.5547, 121.0244, 14.5592, 121.0244)
	assert.InDelta(t, 500, d, 5)
}
