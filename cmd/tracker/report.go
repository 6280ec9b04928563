package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/drewAdorno/stfc-stat-tracker/internal/notify"
	"github.com/drewAdorno/stfc-stat-tracker/internal/tracker"
)

const (
	lastReportKey     = "last_report_date"
	inactiveShowLimit = 5
)

func init() {
	rootCmd.AddCommand(reportCmd)
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Post the daily alliance report (at most once per snapshot date).",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		date, err := a.store.LatestDate(ctx, a.cfg.AllianceID)
		if err != nil {
			return fmt.Errorf("finding latest date: %w", err)
		}
		if date == "" {
			slog.Info("No snapshot data, skipping report")
			return nil
		}

		lastSent, err := a.store.GetState(ctx, lastReportKey)
		if err != nil {
			return fmt.Errorf("reading report state: %w", err)
		}
		if lastSent == date {
			slog.Info("Report already sent for this date, skipping", "date", date)
			return nil
		}

		rows, err := a.store.RowsForDate(ctx, date, a.cfg.AllianceID)
		if err != nil {
			return fmt.Errorf("loading members: %w", err)
		}
		if len(rows) < a.cfg.MinMemberThreshold {
			return fmt.Errorf("snapshot has only %d members (threshold %d), refusing to report",
				len(rows), a.cfg.MinMemberThreshold)
		}

		history, err := loadHistory(ctx, a)
		if err != nil {
			return err
		}

		members := tracker.MemberList(rows)
		now := time.Now()

		data := notify.ReportData{
			Date:         date,
			AllianceName: a.cfg.AllianceName,
			Summary:      tracker.Summarize(members),
			NewMembers:   tracker.FindNewMembers(members, now),
			Departed:     tracker.FindDeparted(members, history),
			LowestHelps:  tracker.FindLowestHelps(members, history),
		}

		if prev := tracker.SnapshotDaysAgo(history, 1, now); prev != nil && prev.Date != date {
			summary := tracker.Summarize(snapshotMembers(prev))
			data.Prev = &summary
		}

		inactive := tracker.FindInactive(members, history)
		if len(inactive) > inactiveShowLimit {
			inactive = inactive[:inactiveShowLimit]
		}
		data.Inactive = inactive

		if anchor := tracker.SnapshotDaysAgo(history, 7, now); anchor != nil {
			data.Gainers, data.Losers = tracker.FindPowerMovers(members, anchor.Members)
		}

		if !a.webhook.Configured() {
			slog.Warn("No webhook URL configured, skipping report")
			return nil
		}

		embed := notify.BuildReportEmbed(data, a.cfg.EmbedFooter)
		if err := a.webhook.Send(ctx, embed); err != nil {
			return fmt.Errorf("sending report: %w", err)
		}

		if err := a.store.SetState(ctx, lastReportKey, date); err != nil {
			return fmt.Errorf("recording report state: %w", err)
		}
		slog.Info("Daily report sent", "date", date, "fields", len(embed.Fields))
		return nil
	},
}

// loadHistory materializes every stored day as an engine snapshot, oldest
// first.
func loadHistory(ctx context.Context, a *app) ([]tracker.Snapshot, error) {
	dates, err := a.store.DistinctDates(ctx, a.cfg.AllianceID)
	if err != nil {
		return nil, fmt.Errorf("listing snapshot dates: %w", err)
	}

	history := make([]tracker.Snapshot, 0, len(dates))
	for _, d := range dates {
		rows, err := a.store.MembersForDate(ctx, d, a.cfg.AllianceID)
		if err != nil {
			return nil, fmt.Errorf("loading members for %s: %w", d, err)
		}
		history = append(history, tracker.Snapshot{Date: d, Members: tracker.FromRows(rows)})
	}
	return history, nil
}

func snapshotMembers(snap *tracker.Snapshot) []tracker.Member {
	members := make([]tracker.Member, 0, len(snap.Members))
	for _, m := range snap.Members {
		members = append(members, m)
	}
	return members
}
