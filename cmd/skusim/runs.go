package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/andresuchdata/skusim/internal/config"
	"github.com/andresuchdata/skusim/internal/domain"
	"github.com/urfave/cli/v2"
)

func runsCommand() *cli.Command {
	return &cli.Command{
		Name:  "runs",
		Usage: "List persisted simulation runs",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "status", Usage: "Only runs with this status (completed, failed)"},
			&cli.IntFlag{Name: "limit", Usage: "Maximum runs to list", Value: 20},
		},
		Action: listRuns,
	}
}

func listRuns(c *cli.Context) error {
	cfg := config.Load()

	repo, closeRepo, err := openRepository(cfg)
	if err != nil {
		return err
	}
	defer closeRepo()
	if repo == nil {
		return fmt.Errorf("listing runs requires DB_ENABLED=true")
	}

	filter := domain.RunFilter{Limit: c.Int("limit")}
	if raw := c.String("status"); raw != "" {
		status, ok := domain.ParseRunStatus(raw)
		if !ok {
			return fmt.Errorf("unknown status %q", raw)
		}
		filter.Status = status
	}

	runs, err := repo.ListRuns(c.Context, filter)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTATUS\tPERIODS\tREVIEW\tSERVICE LEVEL\tSAFETY STOCK\tSOURCE\tCREATED")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%.3f\t%.2f\t%s\t%s\n",
			r.ID, domain.RunStatusLabel(r.Status), r.TotalPeriods, r.ReviewPeriod,
			r.ServiceLevel, r.SafetyStock, r.Source, r.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	return tw.Flush()
}
