package main

import (
	"log/slog"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(exportCmd)
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Re-materialize the dashboard JSON files from the store.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.exporter.WriteAll(ctx); err != nil {
			return err
		}
		slog.Info("Exports written", "dir", a.cfg.DataDir)
		return nil
	},
}
