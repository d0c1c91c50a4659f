package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/andresuchdata/skusim/internal/api"
	"github.com/andresuchdata/skusim/internal/cache"
	"github.com/andresuchdata/skusim/internal/config"
	"github.com/andresuchdata/skusim/internal/dataset"
	"github.com/andresuchdata/skusim/internal/metrics"
	"github.com/andresuchdata/skusim/internal/service"
	"github.com/andresuchdata/skusim/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
)

func serveCommand() *cli.Command {
	flags := append(sourceFlags(),
		&cli.BoolFlag{
			Name:  "no-default-source",
			Usage: "Only accept simulations with inline historical input",
		},
	)

	return &cli.Command{
		Name:   "serve",
		Usage:  "Serve the simulation HTTP API",
		Flags:  flags,
		Action: serve,
	}
}

func serve(c *cli.Context) error {
	cfg := config.Load()

	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
		logger.UseJSON()
	}

	defaults, err := cfg.Simulation.Params()
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	repo, closeRepo, err := openRepository(cfg)
	if err != nil {
		return err
	}
	defer closeRepo()

	runCache, err := cache.NewRunCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("run cache unavailable, continuing without it")
		runCache = cache.NewNoopRunCache()
	}

	var src dataset.Source
	if !c.Bool("no-default-source") {
		var closeSource func()
		src, closeSource, err = openSource(c, cfg)
		if err != nil {
			return err
		}
		defer closeSource()
	}

	svc := service.NewSimulationService(src, repo, runCache, metrics.New(reg))
	router := api.NewRouter(&api.Services{
		Simulation: svc,
		Defaults:   defaults,
		Gatherer:   reg,
	}, cfg.Server.AllowedOrigins)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Log.Info().Str("port", cfg.Server.Port).Bool("persist", repo != nil).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Log.Info().Msg("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Log.Info().Msg("Server exiting")
	return nil
}
