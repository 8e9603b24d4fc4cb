package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hkgeo/station-cli/internal/coordex"
	"github.com/hkgeo/station-cli/internal/enrich"
	"github.com/hkgeo/station-cli/internal/fetcher"
	"github.com/hkgeo/station-cli/internal/station"
	"github.com/hkgeo/station-cli/internal/store"
	"github.com/hkgeo/station-cli/internal/wikitable"
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Scrape the station list and write the station workbook",
	Long: `Fetch the MTR station list document, extract station records, resolve
missing coordinates via Nominatim, and write the station workbook.

Stations whose coordinates cannot be extracted from the document markup
are geocoded one at a time, respecting the provider's one request per
second fair-use policy. Results (including misses) are cached locally so
re-runs only hit the network for unseen stations.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		log := zap.L().With(zap.String("command", "scrape"))

		side, err := openSideStore(cmd)
		if err != nil {
			return err
		}
		defer side.Close() //nolint:errcheck

		runID, err := side.StartRun(ctx, "scrape")
		if err != nil {
			return err
		}

		rows, err := fetchRows(ctx, newFetcher())
		if err != nil {
			return err
		}
		log.Info("document parsed", zap.Int("rows", len(rows)))

		records := station.ExtractAll(rows, coordex.NewChain())
		records = station.Dedupe(records)
		log.Info("stations extracted", zap.Int("stations", len(records)))

		noGeocode, _ := cmd.Flags().GetBool("no-geocode")
		var stats enrich.Stats
		if !noGeocode {
			stats = enrich.New(newLocator(), side).Enrich(ctx, records)
		}

		if err := store.WriteWorkbook(cfg.Output.StationsFile, records); err != nil {
			return err
		}

		if err := side.FinishRun(ctx, runID, len(records), stats.Filled, stats.Failed); err != nil {
			log.Warn("failed to record run", zap.Error(err))
		}

		withCoords := 0
		for _, r := range records {
			if r.HasCoordinate() {
				withCoords++
			}
		}
		log.Info("scrape complete",
			zap.String("output", cfg.Output.StationsFile),
			zap.Int("stations", len(records)),
			zap.Int("with_coordinates", withCoords),
			zap.Int("geocoded", stats.Filled),
			zap.Int("geocode_failed", stats.Failed),
		)
		return nil
	},
}

func init() {
	scrapeCmd.Flags().Bool("no-geocode", false, "skip the geocoding fallback for stations without coordinates")
	rootCmd.AddCommand(scrapeCmd)
}

// fetchRows downloads and parses the station list, trying the configured
// alternate URLs when the primary source is unavailable.
func fetchRows(ctx context.Context, f fetcher.Fetcher) ([]wikitable.Row, error) {
	urls := append([]string{cfg.Source.URL}, cfg.Source.AlternateURLs...)

	var lastErr error
	for _, u := range urls {
		body, err := f.Download(ctx, u)
		if err != nil {
			lastErr = eris.Wrap(wikitable.ErrSourceUnavailable, err.Error())
			zap.L().Warn("source unavailable, trying next", zap.String("url", u), zap.Error(err))
			continue
		}

		tables, err := wikitable.Parse(body)
		_ = body.Close()
		if err != nil {
			lastErr = err
			zap.L().Warn("source unparseable, trying next", zap.String("url", u), zap.Error(err))
			continue
		}
		return wikitable.DataRows(tables), nil
	}
	return nil, eris.Wrap(lastErr, "scrape: all sources failed")
}
