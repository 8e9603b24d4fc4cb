// Package geodist computes great-circle distances between coordinates.
package geodist

import (
	"math"

	"github.com/hkgeo/station-cli/internal/model"
)

// earthRadiusM is the mean Earth radius in meters.
const earthRadiusM = 6371000.0

// Haversine returns the great-circle distance between a and b in meters.
func Haversine(a, b model.Coordinate) float64 {
	lat1 := a.Lat * math.Pi / 180.0
	lat2 := b.Lat * math.Pi / 180.0
	dLat := (b.Lat - a.Lat) * math.Pi / 180.0
	dLon := (b.Lon - a.Lon) * math.Pi / 180.0

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Asin(math.Sqrt(h))
	return earthRadiusM * c
}
