package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	IngestedRows = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stat_tracker_ingested_rows_total",
		Help: "The total number of member rows ingested from snapshots",
	})

	TrackedEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stat_tracker_events_total",
		Help: "Total number of detected roster events",
	}, []string{"category"})

	SuppressedDuplicates = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stat_tracker_suppressed_duplicates_total",
		Help: "The total number of events suppressed by the dedup ledger",
	})

	WebhookRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "discord_webhook_request_duration_seconds",
		Help:    "Duration of Discord webhook requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"status"})

	WebhookRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "discord_webhook_requests_total",
		Help: "Total number of Discord webhook requests",
	}, []string{"status"})

	ExportWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stat_tracker_export_writes_total",
		Help: "Total number of export document writes",
	}, []string{"document", "status"})
)
