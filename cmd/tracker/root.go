package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/drewAdorno/stfc-stat-tracker/internal/metrics"
)

var rootCmd = &cobra.Command{
	Use:          "tracker",
	Short:        "tracker ingests STFC alliance leaderboard snapshots and posts roster changes to Discord.",
	SilenceUsage: true,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		// Runs are short-lived cron invocations; counters reach Prometheus
		// through the node_exporter textfile collector when configured.
		path := os.Getenv("METRICS_TEXTFILE")
		if path == "" {
			return
		}
		if err := metrics.WriteTextfile(path); err != nil {
			slog.Warn("Failed to write metrics textfile", "path", path, "error", err)
		}
	},
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
