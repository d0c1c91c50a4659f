package main

import (
	"database/sql"
	"fmt"

	"github.com/andresuchdata/skusim/internal/config"
	"github.com/andresuchdata/skusim/internal/repository/postgres"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

func seedCommand() *cli.Command {
	return &cli.Command{
		Name:  "seed",
		Usage: "Load CSV history for one SKU into the history database",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "db-url",
				Usage:    "History database connection string",
				EnvVars:  []string{"HISTORY_DATABASE_URL"},
				Required: true,
			},
			&cli.StringFlag{
				Name:     "sku",
				Usage:    "SKU the history belongs to",
				EnvVars:  []string{"HISTORY_SKU"},
				Required: true,
			},
			&cli.StringFlag{
				Name:  "data-dir",
				Usage: "Directory containing the input CSVs (default APP_DATA_DIR)",
			},
			&cli.BoolFlag{
				Name:  "replace",
				Usage: "Delete the SKU's existing history first",
				Value: true,
			},
		},
		Action: seedHistory,
	}
}

func seedHistory(c *cli.Context) error {
	cfg := config.Load()

	src, closeSource, err := buildSource(c.Context, cfg, sourceCSV, c.String("data-dir"), "")
	if err != nil {
		return err
	}
	defer closeSource()

	input, err := src.Load(c.Context)
	if err != nil {
		return err
	}

	db, err := sql.Open("pgx", c.String("db-url"))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(c.Context); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	sku := c.String("sku")
	if err := postgres.SeedHistory(c.Context, db, sku, input, c.Bool("replace")); err != nil {
		return err
	}

	log.Info().
		Str("sku", sku).
		Int("forecast_periods", len(input.Forecast)).
		Int("errors", len(input.Errors)).
		Int("lead_times", len(input.LeadTimes)).
		Msg("history seeded")
	return nil
}
