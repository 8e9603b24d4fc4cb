package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hkgeo/station-cli/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config.yaml with the default settings",
	RunE: func(cmd *cobra.Command, _ []string) error {
		path, _ := cmd.Flags().GetString("output")
		if err := config.WriteDefault(path); err != nil {
			return err
		}
		zap.L().Info("config written", zap.String("path", path))
		return nil
	},
}

func init() {
	configInitCmd.Flags().String("output", "config.yaml", "where to write the default config")
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}
