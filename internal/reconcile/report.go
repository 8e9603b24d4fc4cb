package reconcile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/hkgeo/station-cli/internal/model"
)

// WriteReport renders the human-readable verification summary to path.
func WriteReport(path string, sum Summary) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return eris.Wrapf(err, "reconcile: create report dir for %s", path)
	}

	var b strings.Builder
	b.WriteString("# Station Coordinate Verification Report\n\n")
	fmt.Fprintf(&b, "**Date:** %s\n\n", time.Now().Format("2006-01-02 15:04:05"))
	b.WriteString("**Source:** OpenStreetMap (Nominatim API)\n\n")

	b.WriteString("## Summary\n\n")
	fmt.Fprintf(&b, "- Stations verified: %d\n", sum.Verified)
	fmt.Fprintf(&b, "- Stations updated: %d\n", sum.Updated)
	fmt.Fprintf(&b, "- Stations not found: %d\n\n", sum.Failed)

	if corrections := collectCorrections(sum); len(corrections) > 0 {
		b.WriteString("## Corrections\n\n")
		b.WriteString("| Station | Previous | Fetched | Distance (m) |\n")
		b.WriteString("|---|---|---|---|\n")
		for _, o := range corrections {
			fmt.Fprintf(&b, "| %s | %s | %s | %.0f |\n",
				o.Name, coordCell(o.Previous), coordCell(o.Fetched), o.DistanceMeters)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Notes\n\n")
	b.WriteString("- Coordinates are WGS84 (EPSG:4326), latitude then longitude\n")
	fmt.Fprintf(&b, "- Stored coordinates more than %.0f m from the fetched position were updated\n", CorrectionThresholdMeters)
	b.WriteString("- Inconclusive lookups keep the previously stored coordinate\n")

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return eris.Wrapf(err, "reconcile: write report %s", path)
	}
	return nil
}

func collectCorrections(sum Summary) []model.ReconcileOutcome {
	var out []model.ReconcileOutcome
	for _, o := range sum.Outcomes {
		if o.Decision == model.DecisionCorrected {
			out = append(out, o)
		}
	}
	return out
}

func coordCell(c *model.Coordinate) string {
	if c == nil {
		return "n/a"
	}
	return c.String()
}
