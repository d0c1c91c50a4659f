package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/andresuchdata/skusim/internal/config"
	"github.com/andresuchdata/skusim/internal/pipeline"
	"github.com/urfave/cli/v2"
)

func sweepCommand() *cli.Command {
	defaults := pipeline.DefaultSweepConfig()

	flags := append(sourceFlags(),
		&cli.IntFlag{Name: "periods", Usage: "Number of periods to simulate (default SIM_TOTAL_PERIODS)"},
		&cli.IntFlag{Name: "review-period", Usage: "Periods between reviews (default SIM_REVIEW_PERIOD)"},
		&cli.StringFlag{Name: "quantile-policy", Usage: "Safety stock quantile: complement or upper"},
		&cli.Float64SliceFlag{Name: "service-level", Usage: "Service levels to evaluate (repeatable)", Value: cli.NewFloat64Slice(defaults.ServiceLevels...)},
		&cli.IntFlag{Name: "replications", Usage: "Seeded runs per service level", Value: defaults.Replications},
		&cli.IntFlag{Name: "workers", Usage: "Concurrent workers", Value: defaults.WorkerCount},
		&cli.Uint64Flag{Name: "seed", Usage: "Base seed; 0 picks one"},
	)

	return &cli.Command{
		Name:   "sweep",
		Usage:  "Compare fill rate and inventory across service levels",
		Flags:  flags,
		Action: runSweep,
	}
}

func runSweep(c *cli.Context) error {
	cfg := config.Load()

	src, closeSource, err := openSource(c, cfg)
	if err != nil {
		return err
	}
	defer closeSource()

	input, err := src.Load(c.Context)
	if err != nil {
		return err
	}

	base := paramsFromFlags(c, simulationDefaults(cfg))
	res, err := pipeline.Sweep(c.Context, input, base, pipeline.SweepConfig{
		ServiceLevels: c.Float64Slice("service-level"),
		Replications:  c.Int("replications"),
		WorkerCount:   c.Int("workers"),
		BaseSeed:      c.Uint64("seed"),
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(c.App.Writer, "base seed: %d\n\n", res.BaseSeed)

	tw := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "service level\tsafety stock\tfill rate\tmin fill rate\tstockouts\tavg inventory\tordered\t")
	for _, pt := range res.Points {
		fmt.Fprintf(tw, "%.3f\t%.2f\t%.2f%%\t%.2f%%\t%.2f\t%.2f\t%.2f\t\n",
			pt.ServiceLevel, pt.SafetyStock, 100*pt.MeanFillRate, 100*pt.MinFillRate,
			pt.MeanStockouts, pt.MeanAvgInventory, pt.MeanOrdered)
	}
	return tw.Flush()
}
