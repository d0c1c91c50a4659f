// cmd/skusim/main.go
package main

import (
	"os"

	"github.com/andresuchdata/skusim/pkg/logger"
	"github.com/urfave/cli/v2"
)

func newApp() *cli.App {
	return &cli.App{
		Name:  "skusim",
		Usage: "Simulate periodic-review replenishment for a single SKU",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				EnvVars: []string{"LOG_LEVEL"},
			},
			&cli.BoolFlag{
				Name:  "json-logs",
				Usage: "Emit structured JSON logs on stderr",
			},
		},
		Before: func(c *cli.Context) error {
			logger.SetLevel(c.String("log-level"))
			if c.Bool("json-logs") {
				logger.UseJSON()
			}
			return nil
		},
		Commands: []*cli.Command{
			runCommand(),
			serveCommand(),
			sweepCommand(),
			runsCommand(),
			seedCommand(),
		},
	}
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		logger.Log.Fatal().Err(err).Msg("skusim failed")
	}
}
