package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/drewAdorno/stfc-stat-tracker/internal/config"
	"github.com/drewAdorno/stfc-stat-tracker/internal/export"
	"github.com/drewAdorno/stfc-stat-tracker/internal/notify"
	"github.com/drewAdorno/stfc-stat-tracker/internal/storage"
)

// app wires the store, exporter and webhook client for one command run.
type app struct {
	cfg      *config.Config
	store    storage.Storage
	exporter *export.Exporter
	webhook  *notify.WebhookClient
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	if dir := filepath.Dir(cfg.DatabasePath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	store, err := storage.NewSQLiteStore(ctx, cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	return &app{
		cfg:      cfg,
		store:    store,
		exporter: export.NewExporter(store, cfg),
		webhook:  notify.NewWebhookClient(cfg.WebhookURL, cfg.WebhookTimeout),
	}, nil
}

func (a *app) Close() error {
	return a.store.Close()
}
