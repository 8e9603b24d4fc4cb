package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hkgeo/station-cli/internal/config"
	"github.com/hkgeo/station-cli/internal/fetcher"
	"github.com/hkgeo/station-cli/internal/store"
	"github.com/hkgeo/station-cli/pkg/nominatim"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "station-cli",
	Short: "MTR station coordinate pipeline",
	Long:  "Collects Hong Kong MTR stations from the public station list, resolves missing coordinates via Nominatim, and reconciles stored coordinates against OpenStreetMap.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newLocator builds the Nominatim client from configuration.
func newLocator() nominatim.Client {
	return nominatim.NewClient(
		nominatim.WithBaseURL(cfg.Nominatim.BaseURL),
		nominatim.WithUserAgent(cfg.Nominatim.UserAgent),
		nominatim.WithRateLimit(cfg.Nominatim.RequestsPerSec),
		nominatim.WithQualifier(cfg.Nominatim.Qualifier),
		nominatim.WithRegionHint(cfg.Nominatim.RegionHint),
		nominatim.WithHTTPClient(&http.Client{
			Timeout: time.Duration(cfg.Nominatim.TimeoutSecs) * time.Second,
		}),
	)
}

// newFetcher builds the document fetcher from configuration.
func newFetcher() fetcher.Fetcher {
	return fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
		UserAgent:    cfg.Source.UserAgent,
		Timeout:      time.Duration(cfg.Source.TimeoutSecs) * time.Second,
		MaxRetries:   3,
		RateLimiters: fetcher.DefaultRateLimiters(),
	})
}

// openSideStore opens and migrates the local SQLite side store.
func openSideStore(cmd *cobra.Command) (*store.SideStore, error) {
	s, err := store.OpenSideStore(cfg.Cache.Path)
	if err != nil {
		return nil, err
	}
	if err := s.Migrate(cmd.Context()); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}
