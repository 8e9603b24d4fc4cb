package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hkgeo/station-cli/internal/reconcile"
	"github.com/hkgeo/station-cli/internal/store"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Reconcile stored station coordinates against OpenStreetMap",
	Long: `Read the station workbook from a prior scrape, re-query Nominatim for
every station, and correct stored coordinates that differ from the
fetched position by more than 100 meters. The workbook is rewritten in
place and a markdown verification report is produced.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		log := zap.L().With(zap.String("command", "verify"))

		records, err := store.ReadWorkbook(cfg.Output.StationsFile)
		if err != nil {
			return err
		}
		log.Info("workbook loaded",
			zap.String("path", cfg.Output.StationsFile),
			zap.Int("stations", len(records)),
		)

		side, err := openSideStore(cmd)
		if err != nil {
			return err
		}
		defer side.Close() //nolint:errcheck

		runID, err := side.StartRun(ctx, "verify")
		if err != nil {
			return err
		}

		sum := reconcile.New(newLocator()).Reconcile(ctx, records)

		if err := store.WriteWorkbook(cfg.Output.StationsFile, records); err != nil {
			return err
		}
		if err := reconcile.WriteReport(cfg.Output.ReportFile, sum); err != nil {
			return err
		}

		if err := side.FinishRun(ctx, runID, len(records), sum.Updated, sum.Failed); err != nil {
			log.Warn("failed to record run", zap.Error(err))
		}

		log.Info("verify complete",
			zap.String("report", cfg.Output.ReportFile),
			zap.Int("verified", sum.Verified),
			zap.Int("updated", sum.Updated),
			zap.Int("failed", sum.Failed),
		)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}
