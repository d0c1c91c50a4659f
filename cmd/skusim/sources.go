package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/andresuchdata/skusim/internal/config"
	"github.com/andresuchdata/skusim/internal/dataset"
	"github.com/andresuchdata/skusim/internal/repository"
	"github.com/andresuchdata/skusim/internal/repository/postgres"
	"github.com/andresuchdata/skusim/internal/storage"
	"github.com/urfave/cli/v2"
)

const (
	sourceCSV      = "csv"
	sourceObject   = "object"
	sourcePostgres = "postgres"
)

func sourceFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "source",
			Usage:   "Historical input source: csv, object or postgres",
			Value:   sourceCSV,
			EnvVars: []string{"SIM_SOURCE"},
		},
		&cli.StringFlag{
			Name:  "data-dir",
			Usage: "Directory (csv) or key prefix (object) holding the input files; defaults to APP_DATA_DIR / STORAGE_PREFIX",
		},
		&cli.StringFlag{
			Name:  "sku",
			Usage: "SKU to load from the history database; defaults to HISTORY_SKU",
		},
	}
}

// openSource builds the source selected by the flags. The returned closer is never nil.
func openSource(c *cli.Context, cfg *config.Config) (dataset.Source, func(), error) {
	return buildSource(c.Context, cfg, c.String("source"), c.String("data-dir"), c.String("sku"))
}

func buildSource(ctx context.Context, cfg *config.Config, kind, dir, sku string) (dataset.Source, func(), error) {
	noop := func() {}

	switch kind {
	case "", sourceCSV:
		if dir == "" {
			dir = cfg.App.DataDir
		}
		return dataset.NewCSVSource(
			filepath.Join(dir, cfg.App.ForecastFile),
			filepath.Join(dir, cfg.App.ErrorsFile),
			filepath.Join(dir, cfg.App.LeadTimeFile),
		), noop, nil

	case sourceObject:
		client, err := storage.NewFromConfig(cfg.Storage)
		if err != nil {
			return nil, noop, err
		}
		if dir == "" {
			dir = cfg.Storage.Prefix
		}
		return dataset.NewObjectSource(client, dir, cfg.App.ForecastFile, cfg.App.ErrorsFile, cfg.App.LeadTimeFile), noop, nil

	case sourcePostgres:
		if sku == "" {
			sku = cfg.Database.HistorySKU
		}
		src, err := postgres.NewHistorySource(ctx, cfg.Database.HistoryURL, sku)
		if err != nil {
			return nil, noop, err
		}
		return src, src.Close, nil
	}

	return nil, noop, fmt.Errorf("unknown source %q", kind)
}

// openRepository connects the run repository when the database is enabled.
func openRepository(cfg *config.Config) (repository.RunRepository, func(), error) {
	if !cfg.Database.Enabled {
		return nil, func() {}, nil
	}
	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		return nil, func() {}, fmt.Errorf("failed to connect to database: %w", err)
	}
	return postgres.NewRunRepository(db), func() { db.Close() }, nil
}
