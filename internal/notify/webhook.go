package notify

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/go-resty/resty/v2"

	"github.com/drewAdorno/stfc-stat-tracker/internal/metrics"
)

// WebhookClient posts embed payloads to a Discord webhook URL. A client
// constructed with an empty URL is valid but unconfigured; callers check
// Configured and skip posting rather than treating it as an error.
type WebhookClient struct {
	client *resty.Client
	url    string
}

func NewWebhookClient(url string, timeout time.Duration) *WebhookClient {
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("User-Agent", "stfc-stat-tracker/1.0")

	return &WebhookClient{client: client, url: url}
}

func (c *WebhookClient) Configured() bool {
	return c.url != ""
}

// Send posts the embeds as a single webhook message. Non-2xx responses are
// errors; the body is included because Discord explains validation failures
// there.
func (c *WebhookClient) Send(ctx context.Context, embeds ...*discordgo.MessageEmbed) error {
	if !c.Configured() {
		return fmt.Errorf("webhook URL not configured")
	}

	payload := &discordgo.WebhookParams{Embeds: embeds}

	start := time.Now()
	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(payload).
		Post(c.url)
	duration := time.Since(start).Seconds()

	if err != nil {
		metrics.WebhookRequests.WithLabelValues("error").Inc()
		metrics.WebhookRequestDuration.WithLabelValues("error").Observe(duration)
		return fmt.Errorf("posting webhook: %w", err)
	}

	status := strconv.Itoa(resp.StatusCode())
	metrics.WebhookRequests.WithLabelValues(status).Inc()
	metrics.WebhookRequestDuration.WithLabelValues(status).Observe(duration)

	if resp.IsError() {
		return fmt.Errorf("webhook returned HTTP %d: %s", resp.StatusCode(), resp.String())
	}
	return nil
}
