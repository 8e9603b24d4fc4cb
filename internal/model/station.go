// Package model defines the station record types shared across the pipeline.
package model

import "fmt"

// Hong Kong validity bounding box. A coordinate outside this box is never
// stored on a record; it is treated as absent.
const (
	MinLat = 22.0
	MaxLat = 23.0
	MinLon = 113.0
	MaxLon = 115.0
)

// CoordinateSource records which extraction or geocoding strategy produced
// a record's coordinate.
type CoordinateSource string

const (
	SourceNone             CoordinateSource = "none"
	SourceLinkDerived      CoordinateSource = "link_derived"
	SourceInlineGeo        CoordinateSource = "inline_geo"
	SourceFreetextRegex    CoordinateSource = "freetext_regex"
	SourceGeocodeFallback  CoordinateSource = "geocode_fallback"
	SourceGeocodeCorrected CoordinateSource = "geocode_corrected"
)

// Coordinate is a WGS84 latitude/longitude pair in decimal degrees.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// InBounds reports whether the coordinate lies within the Hong Kong
// validity bounding box.
func (c Coordinate) InBounds() bool {
	return c.Lat >= MinLat && c.Lat <= MaxLat && c.Lon >= MinLon && c.Lon <= MaxLon
}

// String formats the coordinate to six decimal places, the precision used
// throughout the persisted record set.
func (c Coordinate) String() string {
	return fmt.Sprintf("%.6f, %.6f", c.Lat, c.Lon)
}

// StationRecord is one physical station. Coordinate is nil when no
// extraction or geocoding strategy produced an in-bounds pair.
type StationRecord struct {
	NamePrimary   string           `json:"name_primary"`
	NameSecondary string           `json:"name_secondary,omitempty"`
	StationCode   string           `json:"station_code,omitempty"`
	Lines         []string         `json:"lines,omitempty"`
	Address       string           `json:"address,omitempty"`
	Coordinate    *Coordinate      `json:"coordinate,omitempty"`
	Source        CoordinateSource `json:"coordinate_source"`
}

// HasCoordinate reports whether the record carries a stored coordinate.
func (r *StationRecord) HasCoordinate() bool {
	return r.Coordinate != nil
}

// SetCoordinate stores c on the record if it is in bounds and returns true.
// An out-of-bounds pair leaves the record untouched.
func (r *StationRecord) SetCoordinate(c Coordinate, src CoordinateSource) bool {
	if !c.InBounds() {
		return false
	}
	r.Coordinate = &c
	r.Source = src
	return true
}
