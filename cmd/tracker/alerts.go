package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/drewAdorno/stfc-stat-tracker/internal/metrics"
	"github.com/drewAdorno/stfc-stat-tracker/internal/notify"
	"github.com/drewAdorno/stfc-stat-tracker/internal/tracker"
)

func init() {
	rootCmd.AddCommand(alertsCmd)
}

var alertsCmd = &cobra.Command{
	Use:   "alerts",
	Short: "Compare the two most recent snapshots and post join/leave/level-up alerts.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		prevDate, currDate, err := a.store.LatestTwoDates(ctx, a.cfg.AllianceID)
		if err != nil {
			return fmt.Errorf("finding snapshot dates: %w", err)
		}
		if prevDate == "" || currDate == "" {
			slog.Info("Not enough snapshots for alerts, need at least 2")
			return nil
		}

		currRows, err := a.store.MembersForDate(ctx, currDate, a.cfg.AllianceID)
		if err != nil {
			return fmt.Errorf("loading current members: %w", err)
		}
		if len(currRows) < a.cfg.MinMemberThreshold {
			return fmt.Errorf("current snapshot has only %d members (threshold %d), refusing to alert",
				len(currRows), a.cfg.MinMemberThreshold)
		}

		prevRows, err := a.store.MembersForDate(ctx, prevDate, a.cfg.AllianceID)
		if err != nil {
			return fmt.Errorf("loading previous members: %w", err)
		}

		changes := tracker.DetectChanges(tracker.FromRows(prevRows), tracker.FromRows(currRows))
		if changes.Empty() {
			slog.Info("No joins, leaves, or level-ups detected", "prev", prevDate, "curr", currDate)
			return nil
		}

		metrics.TrackedEvents.WithLabelValues("joined").Add(float64(len(changes.Joined)))
		metrics.TrackedEvents.WithLabelValues("left").Add(float64(len(changes.Left)))
		metrics.TrackedEvents.WithLabelValues("levelup").Add(float64(len(changes.LevelUps)))

		window := notify.Window(prevDate, currDate)
		sent, err := a.store.SentEvents(ctx, window)
		if err != nil {
			return fmt.Errorf("reading dedup ledger: %w", err)
		}

		changes = notify.FilterUnsent(changes, sent)
		if changes.Empty() {
			slog.Info("All changes already announced for this window", "window", window)
			return nil
		}

		slog.Info("Changes detected",
			"joined", len(changes.Joined),
			"left", len(changes.Left),
			"level_ups", len(changes.LevelUps))

		if !a.webhook.Configured() {
			slog.Warn("No webhook URL configured, skipping alert")
			return nil
		}

		embeds := notify.BuildChangeEmbeds(changes, a.cfg.EmbedFooter)
		sendErr := a.webhook.Send(ctx, embeds...)

		// Mark every attempted event regardless of outcome: a Discord-side
		// failure after delivery would otherwise replay the whole batch.
		if err := a.store.MarkSent(ctx, window, notify.EventKeys(changes)); err != nil {
			return fmt.Errorf("updating dedup ledger: %w", err)
		}

		if sendErr != nil {
			return fmt.Errorf("sending alerts: %w", sendErr)
		}
		slog.Info("Alerts sent", "embeds", len(embeds))
		return nil
	},
}
