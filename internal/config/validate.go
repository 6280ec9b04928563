package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Validation constants define acceptable bounds for configuration values
const (
	// MinMemberThreshold validation
	minMemberThresholdFloor = 1
	maxMemberThreshold      = 1000

	// FailureCooldown validation
	maxFailureCooldown = 48 * time.Hour

	// WebhookTimeout validation
	minWebhookTimeout = 1 * time.Second
	maxWebhookTimeout = 5 * time.Minute

	// EmbedFooter validation (Discord footer text limit)
	maxEmbedFooterLength = 2048
)

// Validate checks the configuration values and returns all failures at once
// using errors.Join.
func (c *Config) Validate() error {
	var errs []error

	if err := c.validateWebhookURL(); err != nil {
		errs = append(errs, err)
	}

	if err := c.validatePaths(); err != nil {
		errs = append(errs, err)
	}

	if err := c.validateAlliance(); err != nil {
		errs = append(errs, err)
	}

	if err := c.validateThreshold(); err != nil {
		errs = append(errs, err)
	}

	if err := c.validateTimings(); err != nil {
		errs = append(errs, err)
	}

	if err := c.validateEmbedFooter(); err != nil {
		errs = append(errs, err)
	}

	if err := c.validateDeltaBaseline(); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n  %w", errors.Join(errs...))
	}

	return nil
}

// validateWebhookURL only checks the shape of a configured URL; an empty URL
// is a valid skip condition.
func (c *Config) validateWebhookURL() error {
	if c.WebhookURL == "" {
		return nil
	}

	if !strings.HasPrefix(c.WebhookURL, "https://") {
		return fmt.Errorf("DISCORD_WEBHOOK_URL must be an https:// URL, got %q", c.WebhookURL)
	}

	return nil
}

func (c *Config) validatePaths() error {
	var errs []error

	if c.DatabasePath == "" {
		errs = append(errs, fmt.Errorf("DB_PATH cannot be empty"))
	}

	if c.DataDir == "" {
		errs = append(errs, fmt.Errorf("DATA_DIR cannot be empty"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

func (c *Config) validateAlliance() error {
	var errs []error

	if c.Server <= 0 {
		errs = append(errs, fmt.Errorf("SERVER must be positive, got %d", c.Server))
	}

	if c.AllianceID <= 0 {
		errs = append(errs, fmt.Errorf("ALLIANCE_ID must be positive, got %d", c.AllianceID))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

func (c *Config) validateThreshold() error {
	if c.MinMemberThreshold < minMemberThresholdFloor {
		return fmt.Errorf(
			"MIN_MEMBER_THRESHOLD must be at least %d, got %d",
			minMemberThresholdFloor, c.MinMemberThreshold,
		)
	}

	if c.MinMemberThreshold > maxMemberThreshold {
		return fmt.Errorf(
			"MIN_MEMBER_THRESHOLD must be at most %d, got %d",
			maxMemberThreshold, c.MinMemberThreshold,
		)
	}

	return nil
}

func (c *Config) validateTimings() error {
	var errs []error

	if c.FailureCooldown < 0 || c.FailureCooldown > maxFailureCooldown {
		errs = append(errs, fmt.Errorf(
			"FAILURE_ALERT_COOLDOWN must be between 0 and %v, got %v",
			maxFailureCooldown, c.FailureCooldown,
		))
	}

	if c.WebhookTimeout < minWebhookTimeout || c.WebhookTimeout > maxWebhookTimeout {
		errs = append(errs, fmt.Errorf(
			"WEBHOOK_TIMEOUT must be between %v and %v, got %v",
			minWebhookTimeout, maxWebhookTimeout, c.WebhookTimeout,
		))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

func (c *Config) validateEmbedFooter() error {
	if len(c.EmbedFooter) > maxEmbedFooterLength {
		return fmt.Errorf(
			"EMBED_FOOTER must be at most %d characters (Discord limit), got %d",
			maxEmbedFooterLength, len(c.EmbedFooter),
		)
	}

	return nil
}

func (c *Config) validateDeltaBaseline() error {
	switch c.DeltaBaseline {
	case DeltaBaselineZero, DeltaBaselineOmit:
		return nil
	}

	return fmt.Errorf(
		"ALLIANCE_DELTA_ABSENT_BASELINE must be %q or %q, got %q",
		DeltaBaselineZero, DeltaBaselineOmit, c.DeltaBaseline,
	)
}
