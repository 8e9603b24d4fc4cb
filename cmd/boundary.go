package main

import (
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hkgeo/station-cli/internal/boundary"
)

var boundaryCmd = &cobra.Command{
	Use:   "boundary",
	Short: "Download Tertiary Planning Unit boundary GeoJSON",
	Long: `Download TPU census boundary polygons for the configured vintages from
the Hong Kong open-data portals. Each vintage has a list of candidate
endpoints; the first one that returns a valid, non-empty feature
collection is written to the output directory.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		log := zap.L().With(zap.String("command", "boundary"))

		sources := selectSources(boundary.DefaultSources(), cfg.Boundary.Vintages)
		if len(sources) == 0 {
			return eris.Errorf("boundary: no known sources for vintages %v", cfg.Boundary.Vintages)
		}

		dl := boundary.NewDownloader(newFetcher(), cfg.Boundary.OutputDir)
		results, err := dl.DownloadAll(ctx, sources)
		if err != nil {
			return err
		}

		for _, r := range results {
			log.Info("vintage ready",
				zap.String("vintage", r.Vintage),
				zap.String("path", r.Path),
				zap.Int("features", r.Features),
			)
		}
		if len(results) < len(sources) {
			log.Warn("some vintages failed",
				zap.Int("requested", len(sources)),
				zap.Int("downloaded", len(results)),
			)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(boundaryCmd)
}

// selectSources filters the known sources down to the requested vintages,
// preserving the source order.
func selectSources(all []boundary.Source, vintages []string) []boundary.Source {
	want := make(map[string]bool, len(vintages))
	for _, v := range vintages {
		want[v] = true
	}
	var out []boundary.Source
	for _, s := range all {
		if want[s.Vintage] {
			out = append(out, s)
		}
	}
	return out
}
