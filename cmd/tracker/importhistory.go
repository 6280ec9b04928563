package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/drewAdorno/stfc-stat-tracker/internal/export"
)

func init() {
	rootCmd.AddCommand(importHistoryCmd)
}

var importHistoryCmd = &cobra.Command{
	Use:   "import-history <history.json>",
	Short: "Backfill the store from a history export document.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		history, err := export.LoadHistory(args[0])
		if err != nil {
			return err
		}

		days := export.ToImportDays(history, a.cfg.Server, a.cfg.AllianceID, a.cfg.AllianceTag)
		if err := a.store.ImportHistory(ctx, days); err != nil {
			return fmt.Errorf("backfilling history: %w", err)
		}

		rows := 0
		for _, d := range days {
			rows += len(d.Rows)
		}
		slog.Info("History imported", "days", len(days), "rows", rows)
		return nil
	},
}
