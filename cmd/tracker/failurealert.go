package main

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/drewAdorno/stfc-stat-tracker/internal/notify"
)

const lastFailureKey = "last_failure_alert"

func init() {
	rootCmd.AddCommand(failureAlertCmd)
}

var failureAlertCmd = &cobra.Command{
	Use:   "failure-alert <message...>",
	Short: "Post a pipeline failure alert, rate-limited by a cooldown.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		lastSent, err := a.store.GetState(ctx, lastFailureKey)
		if err != nil {
			return fmt.Errorf("reading cooldown state: %w", err)
		}
		if lastSent != "" {
			if t, err := time.Parse(time.RFC3339, lastSent); err == nil {
				if time.Since(t) < a.cfg.FailureCooldown {
					slog.Info("Failure alert suppressed, cooldown active",
						"last_sent", lastSent, "cooldown", a.cfg.FailureCooldown)
					return nil
				}
			}
		}

		if !a.webhook.Configured() {
			return fmt.Errorf("no webhook URL configured, cannot send failure alert")
		}

		message := strings.Join(args, " ")
		embed := notify.BuildFailureEmbed(message, a.cfg.EmbedFooter)
		if err := a.webhook.Send(ctx, embed); err != nil {
			return fmt.Errorf("sending failure alert: %w", err)
		}

		if err := a.store.SetState(ctx, lastFailureKey, time.Now().Format(time.RFC3339)); err != nil {
			return fmt.Errorf("recording cooldown state: %w", err)
		}
		slog.Info("Failure alert sent")
		return nil
	},
}
