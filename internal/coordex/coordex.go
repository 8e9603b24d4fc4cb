// Package coordex extracts coordinates from table rows using an ordered
// chain of strategies, from most structured (machine-readable link
// encodings) to least (loose free text).
package coordex

import (
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/hkgeo/station-cli/internal/model"
	"github.com/hkgeo/station-cli/internal/wikitable"
)

// Strategy attempts to pull a coordinate pair out of a row.
type Strategy interface {
	// Source tags coordinates produced by this strategy.
	Source() model.CoordinateSource

	// Attempt returns the first coordinate the strategy can parse from
	// the row, before bounds validation.
	Attempt(row wikitable.Row) (model.Coordinate, bool)
}

// Chain tries strategies in priority order, returning the first result
// that passes bounds validation. An out-of-bounds parse is discarded and
// the chain moves on; it is not a fatal parse error.
type Chain struct {
	strategies []Strategy
}

// NewChain creates the default chain: link-derived, inline geo span,
// free-text regex.
func NewChain() *Chain {
	return &Chain{strategies: []Strategy{
		linkDerived{},
		inlineGeo{},
		freetextRegex{},
	}}
}

// Extract returns at most one coordinate for the row, tagged with the
// strategy that produced it, or (nil, SourceNone) when every strategy
// misses.
func (c *Chain) Extract(row wikitable.Row) (*model.Coordinate, model.CoordinateSource) {
	for _, s := range c.strategies {
		coord, ok := s.Attempt(row)
		if !ok {
			continue
		}
		if !coord.InBounds() {
			zap.L().Debug("coordex: discarding out-of-bounds parse",
				zap.String("strategy", string(s.Source())),
				zap.Float64("lat", coord.Lat),
				zap.Float64("lon", coord.Lon),
			)
			continue
		}
		return &coord, s.Source()
	}
	return nil, model.SourceNone
}

// geohackRe matches the coordinate parameter of geohack-style map links,
// e.g. params=22.284722_N_114.158611_E.
var geohackRe = regexp.MustCompile(`params=([\d.]+)_([NS])_([\d.]+)_([EW])`)

// linkDerived scans row hyperlinks for a coordinate-encoding target.
type linkDerived struct{}

func (linkDerived) Source() model.CoordinateSource { return model.SourceLinkDerived }

func (linkDerived) Attempt(row wikitable.Row) (model.Coordinate, bool) {
	for _, link := range row.Links() {
		m := geohackRe.FindStringSubmatch(link.Href)
		if m == nil {
			continue
		}
		lat, err1 := strconv.ParseFloat(m[1], 64)
		lon, err2 := strconv.ParseFloat(m[3], 64)
		if err1 != nil || err2 != nil {
			continue
		}
		if m[2] == "S" {
			lat = -lat
		}
		if m[4] == "W" {
			lon = -lon
		}
		return model.Coordinate{Lat: lat, Lon: lon}, true
	}
	return model.Coordinate{}, false
}

// geoSpanRe matches the "lat; lon" text of a geo microformat span. The
// separator may be a semicolon or an ASCII/CJK comma.
var geoSpanRe = regexp.MustCompile(`([\d.]+)\s*[;，,]\s*([\d.]+)`)

// inlineGeo scans geo microformat spans in the row.
type inlineGeo struct{}

func (inlineGeo) Source() model.CoordinateSource { return model.SourceInlineGeo }

func (inlineGeo) Attempt(row wikitable.Row) (model.Coordinate, bool) {
	for _, span := range row.GeoSpans() {
		m := geoSpanRe.FindStringSubmatch(span)
		if m == nil {
			continue
		}
		lat, err1 := strconv.ParseFloat(m[1], 64)
		lon, err2 := strconv.ParseFloat(m[2], 64)
		if err1 != nil || err2 != nil {
			continue
		}
		return model.Coordinate{Lat: lat, Lon: lon}, true
	}
	return model.Coordinate{}, false
}

// freetextRe matches loose coordinate text such as
// "22.284722°N 114.158611°E" or "22.284722, 114.158611". Hemisphere
// letters are optional and default to north/east.
var freetextRe = regexp.MustCompile(`(\d+\.\d+)[°\s]*([NS])?\s*[,，/\s]+\s*(\d+\.\d+)[°\s]*([EW])?`)

// freetextRegex scans each cell's plain text for a coordinate pattern.
type freetextRegex struct{}

func (freetextRegex) Source() model.CoordinateSource { return model.SourceFreetextRegex }

func (freetextRegex) Attempt(row wikitable.Row) (model.Coordinate, bool) {
	for _, cell := range row.Cells {
		m := freetextRe.FindStringSubmatch(cell.Text)
		if m == nil {
			continue
		}
		lat, err1 := strconv.ParseFloat(m[1], 64)
		lon, err2 := strconv.ParseFloat(m[3], 64)
		if err1 != nil || err2 != nil {
			continue
		}
		if strings.EqualFold(m[2], "S") {
			lat = -lat
		}
		if strings.EqualFold(m[4], "W") {
			lon = -lon
		}
		return model.Coordinate{Lat: lat, Lon: lon}, true
	}
	return model.Coordinate{}, false
}
