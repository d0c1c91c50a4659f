package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/andresuchdata/skusim/internal/cache"
	"github.com/andresuchdata/skusim/internal/config"
	"github.com/andresuchdata/skusim/internal/domain"
	"github.com/andresuchdata/skusim/internal/report"
	"github.com/andresuchdata/skusim/internal/repository"
	"github.com/andresuchdata/skusim/internal/service"
	"github.com/andresuchdata/skusim/internal/storage"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

func runCommand() *cli.Command {
	flags := append(sourceFlags(),
		&cli.IntFlag{Name: "periods", Usage: "Number of periods to simulate (default SIM_TOTAL_PERIODS)"},
		&cli.IntFlag{Name: "review-period", Usage: "Periods between reviews (default SIM_REVIEW_PERIOD)"},
		&cli.Float64Flag{Name: "service-level", Usage: "Target service level in (0,1) (default SIM_SERVICE_LEVEL)"},
		&cli.Uint64Flag{Name: "seed", Usage: "Random seed; 0 picks one and reports it"},
		&cli.StringFlag{Name: "quantile-policy", Usage: "Safety stock quantile: complement or upper"},
		&cli.StringFlag{Name: "format", Usage: "Stdout format: table, csv or json", Value: "table"},
		&cli.StringFlag{Name: "out", Usage: "Also write the trajectory CSV to this file (relative paths land in APP_OUTPUT_DIR)"},
		&cli.StringFlag{Name: "upload", Usage: "Also upload the trajectory CSV to object storage under this key"},
		&cli.BoolFlag{Name: "persist", Usage: "Save the run to the database"},
	)

	return &cli.Command{
		Name:   "run",
		Usage:  "Run one simulation and print the report",
		Flags:  flags,
		Action: runSimulation,
	}
}

func paramsFromFlags(c *cli.Context, defaults domain.SimulationParams) domain.SimulationParams {
	params := defaults
	if c.IsSet("periods") {
		params.TotalPeriods = c.Int("periods")
	}
	if c.IsSet("review-period") {
		params.ReviewPeriod = c.Int("review-period")
	}
	if c.IsSet("service-level") {
		params.ServiceLevel = c.Float64("service-level")
	}
	if c.IsSet("seed") {
		params.Seed = c.Uint64("seed")
	}
	if c.IsSet("quantile-policy") {
		params.QuantilePolicy = domain.QuantilePolicy(c.String("quantile-policy"))
	}
	return params
}

// simulationDefaults takes the configured parameters without validating them,
// so flags can still correct an invalid setting.
func simulationDefaults(cfg *config.Config) domain.SimulationParams {
	return domain.SimulationParams{
		TotalPeriods:   cfg.Simulation.TotalPeriods,
		ReviewPeriod:   cfg.Simulation.ReviewPeriod,
		ServiceLevel:   cfg.Simulation.ServiceLevel,
		Seed:           cfg.Simulation.Seed,
		QuantilePolicy: domain.QuantilePolicy(cfg.Simulation.QuantilePolicy),
	}
}

func runSimulation(c *cli.Context) error {
	cfg := config.Load()

	src, closeSource, err := openSource(c, cfg)
	if err != nil {
		return err
	}
	defer closeSource()

	var repo repository.RunRepository
	if c.Bool("persist") {
		var closeRepo func()
		repo, closeRepo, err = openRepository(cfg)
		if err != nil {
			return err
		}
		defer closeRepo()
		if repo == nil {
			return fmt.Errorf("--persist requires DB_ENABLED=true")
		}
	}

	svc := service.NewSimulationService(src, repo, cache.NewNoopRunCache(), nil)
	run, err := svc.Run(c.Context, service.RunRequest{Params: paramsFromFlags(c, simulationDefaults(cfg))})
	if err != nil {
		return err
	}

	var csvReport bytes.Buffer
	if err := report.WriteCSV(&csvReport, run.Trajectories); err != nil {
		return err
	}

	switch c.String("format") {
	case "csv":
		_, err = c.App.Writer.Write(csvReport.Bytes())
	case "json":
		enc := json.NewEncoder(c.App.Writer)
		enc.SetIndent("", "  ")
		err = enc.Encode(run)
	default:
		err = report.WriteTable(c.App.Writer, run)
	}
	if err != nil {
		return err
	}

	if out := c.String("out"); out != "" {
		if !filepath.IsAbs(out) {
			out = filepath.Join(cfg.App.OutputDir, out)
		}
		if err := os.WriteFile(out, csvReport.Bytes(), 0o644); err != nil {
			return fmt.Errorf("failed to write report %s: %w", out, err)
		}
		log.Info().Str("path", out).Msg("report written")
	}

	if key := c.String("upload"); key != "" {
		client, err := storage.NewFromConfig(cfg.Storage)
		if err != nil {
			return err
		}
		if err := client.UploadObject(c.Context, key, csvReport.Bytes()); err != nil {
			return err
		}
		log.Info().Str("key", key).Msg("report uploaded")
	}

	return nil
}
