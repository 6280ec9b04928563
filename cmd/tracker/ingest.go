package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/drewAdorno/stfc-stat-tracker/internal/leaderboard"
	"github.com/drewAdorno/stfc-stat-tracker/internal/metrics"
	"github.com/drewAdorno/stfc-stat-tracker/internal/storage"
)

var ingestDate string

func init() {
	ingestCmd.Flags().StringVar(&ingestDate, "date", "", "snapshot date (YYYY-MM-DD, default today)")
	rootCmd.AddCommand(ingestCmd)
}

var ingestCmd = &cobra.Command{
	Use:   "ingest <file...>",
	Short: "Load snapshot files (JSON or scraped HTML) into the store and refresh exports.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		date := ingestDate
		if date == "" {
			date = time.Now().Format("2006-01-02")
		}

		// Multi-page scrapes arrive as several files; merge by player ID so
		// a member appearing twice keeps the last capture.
		merged := make(map[int64]storage.SnapshotRow)
		for _, path := range args {
			rows, err := loadSnapshotFile(path, a.cfg.Server)
			if err != nil {
				return err
			}
			slog.Info("Loaded snapshot file", "path", path, "members", len(rows))
			for _, r := range rows {
				merged[r.PlayerID] = r
			}
		}

		rows := make([]storage.SnapshotRow, 0, len(merged))
		for _, r := range merged {
			rows = append(rows, r)
		}
		sort.Slice(rows, func(i, j int) bool { return rows[i].PlayerID < rows[j].PlayerID })

		// A roster far below the expected size means the scrape failed
		// part-way; committing it would flood the next run with bogus
		// leave events.
		if len(rows) < a.cfg.MinMemberThreshold {
			return fmt.Errorf("snapshot has only %d members (threshold %d), refusing to commit",
				len(rows), a.cfg.MinMemberThreshold)
		}

		if err := a.store.UpsertDaily(ctx, date, rows); err != nil {
			return fmt.Errorf("storing snapshot: %w", err)
		}
		metrics.IngestedRows.Add(float64(len(rows)))

		if err := a.store.LogPull(ctx, a.cfg.Server, len(rows), "ingest"); err != nil {
			return fmt.Errorf("logging pull: %w", err)
		}

		slog.Info("Snapshot stored", "date", date, "members", len(rows))

		if err := a.exporter.WriteAll(ctx); err != nil {
			return fmt.Errorf("writing exports: %w", err)
		}
		slog.Info("Exports refreshed", "dir", a.cfg.DataDir)
		return nil
	},
}

func loadSnapshotFile(path string, server int) ([]storage.SnapshotRow, error) {
	if strings.EqualFold(filepath.Ext(path), ".html") {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("unable to open roster page: %w", err)
		}
		defer f.Close()

		records, err := leaderboard.ParseRosterTable(f)
		if err != nil {
			return nil, fmt.Errorf("parsing roster page %s: %w", path, err)
		}
		return leaderboard.MapMembers(records, server), nil
	}

	snap, err := leaderboard.LoadSnapshot(path)
	if err != nil {
		return nil, err
	}
	return leaderboard.MapMembers(snap.Members, server), nil
}
