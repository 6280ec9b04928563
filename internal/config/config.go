package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	WebhookURL         string
	DatabasePath       string
	DataDir            string
	Server             int
	AllianceID         int64
	AllianceName       string
	AllianceTag        string
	MinMemberThreshold int
	FailureCooldown    time.Duration
	WebhookTimeout     time.Duration
	EmbedFooter        string
	DeltaBaseline      string
}

// Delta baseline modes for the alliance 7-day power delta when no prior
// snapshot exists for an alliance.
const (
	DeltaBaselineZero = "zero" // treat absent baseline as 0 (delta = current power)
	DeltaBaselineOmit = "omit" // report no delta for alliances without a baseline
)

func Load() (*Config, error) {
	_ = godotenv.Load()

	// A missing webhook URL is a skip condition for notifications, not an
	// error: ingestion and exports still run without one.
	webhookURL := readSecret("discord_webhook_url")
	if webhookURL == "" {
		webhookURL = os.Getenv("DISCORD_WEBHOOK_URL")
	}

	cfg := &Config{
		WebhookURL:         webhookURL,
		DatabasePath:       envString("DB_PATH", "data/stfc.db"),
		DataDir:            envString("DATA_DIR", "data"),
		Server:             envInt("SERVER", 716),
		AllianceID:         envInt64("ALLIANCE_ID", 3974286889),
		AllianceName:       envString("ALLIANCE_NAME", "Discovery"),
		AllianceTag:        envString("ALLIANCE_TAG", "NCC"),
		MinMemberThreshold: envInt("MIN_MEMBER_THRESHOLD", 10),
		FailureCooldown:    envDuration("FAILURE_ALERT_COOLDOWN", 6*time.Hour),
		WebhookTimeout:     envDuration("WEBHOOK_TIMEOUT", 30*time.Second),
		EmbedFooter:        envString("EMBED_FOOTER", "ncctracker.top"),
		DeltaBaseline:      envString("ALLIANCE_DELTA_ABSENT_BASELINE", DeltaBaselineZero),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// AllianceURL returns the public leaderboard page for the tracked alliance.
func (c *Config) AllianceURL() string {
	return fmt.Sprintf("https://v3.stfc.pro/alliances/%d", c.AllianceID)
}

var secretsDir = "/run/secrets/"

func readSecret(name string) string {
	data, err := os.ReadFile(secretsDir + name)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.ParseInt(v, 10, 64); err == nil {
			return i
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
