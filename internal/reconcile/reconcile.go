// Package reconcile compares stored station coordinates against freshly
// fetched ones and decides whether to keep, correct, or flag them.
package reconcile

import (
	"context"

	"go.uber.org/zap"

	"github.com/hkgeo/station-cli/internal/geodist"
	"github.com/hkgeo/station-cli/internal/model"
	"github.com/hkgeo/station-cli/pkg/nominatim"
)

// CorrectionThresholdMeters is the distance beyond which a stored
// coordinate is considered wrong and overwritten with the fetched one.
const CorrectionThresholdMeters = 100.0

// Summary tallies a reconciliation pass.
type Summary struct {
	Verified int
	Updated  int
	Failed   int
	Outcomes []model.ReconcileOutcome
}

// Reconciler re-queries the geocoding service for every record and applies
// the distance-threshold decision.
type Reconciler struct {
	locator nominatim.Client
}

// New creates a Reconciler.
func New(locator nominatim.Client) *Reconciler {
	return &Reconciler{locator: locator}
}

// Reconcile processes records strictly sequentially (the per-call pacing
// contract precludes fan-out) and mutates them in place. Re-running
// against unchanged source data converges: a corrected record verifies on
// the next pass.
func (r *Reconciler) Reconcile(ctx context.Context, records []model.StationRecord) Summary {
	var sum Summary
	log := zap.L().With(zap.String("component", "reconcile"))

	for i := range records {
		if ctx.Err() != nil {
			break
		}
		rec := &records[i]
		outcome := model.ReconcileOutcome{Name: rec.NamePrimary, Previous: rec.Coordinate}

		result, err := r.locator.Locate(ctx, rec.NamePrimary)
		if err != nil {
			// A transport failure is inconclusive, not evidence of error;
			// it is handled exactly like "not found".
			log.Warn("geocode request failed", zap.String("station", rec.NamePrimary), zap.Error(err))
			result = &nominatim.Result{Matched: false}
		}

		if result.Matched {
			outcome.Fetched = &model.Coordinate{Lat: result.Lat, Lon: result.Lon}
		}

		switch {
		case rec.HasCoordinate() && result.Matched:
			d := geodist.Haversine(*rec.Coordinate, *outcome.Fetched)
			outcome.DistanceMeters = d
			if d > CorrectionThresholdMeters {
				rec.SetCoordinate(*outcome.Fetched, model.SourceGeocodeCorrected)
				outcome.Decision = model.DecisionCorrected
				sum.Updated++
				log.Info("coordinate corrected",
					zap.String("station", rec.NamePrimary),
					zap.Float64("distance_m", d),
				)
			} else {
				outcome.Decision = model.DecisionVerified
				sum.Verified++
			}

		case rec.HasCoordinate():
			// Inconclusive fetch: keep existing data.
			outcome.Decision = model.DecisionVerified
			sum.Verified++
			log.Info("could not verify, keeping existing", zap.String("station", rec.NamePrimary))

		case result.Matched:
			rec.SetCoordinate(*outcome.Fetched, model.SourceGeocodeFallback)
			outcome.Decision = model.DecisionCorrected
			sum.Updated++
			log.Info("missing coordinate filled",
				zap.String("station", rec.NamePrimary),
				zap.Float64("lat", result.Lat),
				zap.Float64("lon", result.Lon),
			)

		default:
			outcome.Decision = model.DecisionUnresolved
			sum.Failed++
			log.Info("not found", zap.String("station", rec.NamePrimary))
		}

		sum.Outcomes = append(sum.Outcomes, outcome)
	}

	log.Info("reconciliation complete",
		zap.Int("verified", sum.Verified),
		zap.Int("updated", sum.Updated),
		zap.Int("failed", sum.Failed),
	)
	return sum
}
