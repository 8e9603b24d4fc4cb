package geodist

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hkgeo/station-cli/internal/model"
)

func TestHaversineZeroForIdenticalPoints(t *testing.T) {
	p := model.Coordinate{Lat: 22.2847, Lon: 114.1586}
	assert.InDelta(t, 0, Haversine(p, p), 0.001)
}

func TestHaversineSymmetric(t *testing.T) {
	a := model.Coordinate{Lat: 22.2830, Lon: 114.1588}
	b := model.Coordinate{Lat: 22.3964, Lon: 114.1095}
	assert.InDelta(t, Haversine(a, b), Haversine(b, a), 1e-9)
}

func TestHaversineKnownDistances(t *testing.T) {
	// Central to a point ~100m north.
	a := model.Coordinate{Lat: 22.2830, Lon: 114.1588}
	b := model.Coordinate{Lat: 22.2839, Lon: 114.1590}
	d := Haversine(a, b)
	assert.Greater(t, d, 90.0)
	assert.Less(t, d, 110.0)

	// ~1.1km north.
	c := model.Coordinate{Lat: 22.2930, Lon: 114.1588}
	d = Haversine(a, c)
	assert.Greater(t, d, 1000.0)
	assert.Less(t, d, 1200.0)
}
