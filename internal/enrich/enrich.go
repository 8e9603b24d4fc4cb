// Package enrich fills missing station coordinates via the geocoding
// service.
package enrich

import (
	"context"

	"go.uber.org/zap"

	"github.com/hkgeo/station-cli/internal/model"
	"github.com/hkgeo/station-cli/internal/store"
	"github.com/hkgeo/station-cli/pkg/nominatim"
)

// Stats tallies the outcome of an enrichment pass.
type Stats struct {
	Attempted int
	Filled    int
	Failed    int
}

// Enricher resolves coordinates for records that have none. A failure on
// one record never blocks enrichment of the others.
type Enricher struct {
	locator nominatim.Client
	cache   *store.SideStore // optional
}

// New creates an Enricher. cache may be nil, in which case every lookup
// goes to the service.
func New(locator nominatim.Client, cache *store.SideStore) *Enricher {
	return &Enricher{locator: locator, cache: cache}
}

// Enrich processes records sequentially, filling in coordinates for those
// without one. Records are mutated in place.
func (e *Enricher) Enrich(ctx context.Context, records []model.StationRecord) Stats {
	var stats Stats
	log := zap.L().With(zap.String("component", "enrich"))

	for i := range records {
		if records[i].HasCoordinate() {
			continue
		}
		if ctx.Err() != nil {
			break
		}
		stats.Attempted++
		name := records[i].NamePrimary

		if cached := e.checkCache(ctx, name); cached != nil {
			if cached.Matched && records[i].SetCoordinate(
				model.Coordinate{Lat: cached.Lat, Lon: cached.Lon}, model.SourceGeocodeFallback,
			) {
				stats.Filled++
			} else {
				stats.Failed++
			}
			continue
		}

		result, err := e.locator.Locate(ctx, name)
		if err != nil {
			// Transport errors count as misses for the pipeline but are
			// logged distinctly. They are not cached.
			log.Warn("geocode request failed", zap.String("station", name), zap.Error(err))
			stats.Failed++
			continue
		}

		if !result.Matched {
			log.Info("no coordinates found", zap.String("station", name))
			stats.Failed++
			e.storeCache(ctx, name, store.CachedLookup{Matched: false})
			continue
		}

		if !records[i].SetCoordinate(model.Coordinate{Lat: result.Lat, Lon: result.Lon}, model.SourceGeocodeFallback) {
			log.Info("geocode result out of range", zap.String("station", name),
				zap.Float64("lat", result.Lat), zap.Float64("lon", result.Lon))
			stats.Failed++
			e.storeCache(ctx, name, store.CachedLookup{Matched: false})
			continue
		}

		log.Info("coordinates resolved",
			zap.String("station", name),
			zap.Float64("lat", result.Lat),
			zap.Float64("lon", result.Lon),
		)
		stats.Filled++
		e.storeCache(ctx, name, store.CachedLookup{Lat: result.Lat, Lon: result.Lon, Matched: true})
	}

	log.Info("enrichment complete",
		zap.Int("attempted", stats.Attempted),
		zap.Int("filled", stats.Filled),
		zap.Int("failed", stats.Failed),
	)
	return stats
}

func (e *Enricher) checkCache(ctx context.Context, name string) *store.CachedLookup {
	if e.cache == nil {
		return nil
	}
	cached, err := e.cache.GetCachedLookup(ctx, name)
	if err != nil {
		zap.L().Warn("enrich: cache lookup failed", zap.String("station", name), zap.Error(err))
		return nil
	}
	return cached
}

func (e *Enricher) storeCache(ctx context.Context, name string, c store.CachedLookup) {
	if e.cache == nil {
		return
	}
	if err := e.cache.PutCachedLookup(ctx, name, c); err != nil {
		zap.L().Warn("enrich: cache store failed", zap.String("station", name), zap.Error(err))
	}
}
