package service

import (
	"context"
	"time"

	"github.com/andresuchdata/skusim/internal/cache"
	"github.com/andresuchdata/skusim/internal/dataset"
	"github.com/andresuchdata/skusim/internal/domain"
	"github.com/andresuchdata/skusim/internal/metrics"
	"github.com/andresuchdata/skusim/internal/repository"
	"github.com/andresuchdata/skusim/internal/simulation"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// RunRequest describes one simulation. When Input is nil the service's
// default source is loaded.
type RunRequest struct {
	Params domain.SimulationParams
	Input  *domain.HistoricalInput
}

type SimulationService struct {
	source  dataset.Source
	repo    repository.RunRepository
	cache   cache.RunCache
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewSimulationService wires the service. source and repo may be nil: runs then
// require inline input and are kept only in the cache.
func NewSimulationService(source dataset.Source, repo repository.RunRepository, cacheImpl cache.RunCache, m *metrics.Metrics) *SimulationService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopRunCache()
	}
	return &SimulationService{
		source:  source,
		repo:    repo,
		cache:   cacheImpl,
		metrics: m,
		now:     time.Now,
	}
}

// Run loads the input, builds the simulation and runs it to completion.
// A zero seed is replaced by a time-based one, recorded on the returned run.
// Runs that fail after their parameters validate are persisted with
// RunStatusFailed when a repository is configured.
func (s *SimulationService) Run(ctx context.Context, req RunRequest) (*domain.SimulationRun, error) {
	start := s.now()

	run, err := s.run(ctx, req, start)
	if err != nil {
		s.observe(nil, err, time.Since(start))
		if run != nil {
			s.recordFailure(ctx, run)
		}
		return nil, err
	}
	s.observe(run, nil, time.Since(start))

	if s.repo != nil {
		if err := s.repo.SaveRun(ctx, run); err != nil {
			return nil, errors.Wrap(err, "persist simulation run")
		}
	}
	if err := s.cache.SetRun(ctx, run); err != nil {
		log.Warn().Err(err).Str("run_id", run.ID.String()).Msg("simulation: cache set run failed")
	}

	log.Info().
		Str("run_id", run.ID.String()).
		Str("source", run.Source).
		Int("periods", run.Params.TotalPeriods).
		Int("review_period", run.Params.ReviewPeriod).
		Float64("service_level", run.Params.ServiceLevel).
		Float64("safety_stock", run.SafetyStock).
		Dur("duration", run.Duration).
		Msg("simulation: run completed")

	return run, nil
}

func (s *SimulationService) recordFailure(ctx context.Context, run *domain.SimulationRun) {
	log.Warn().
		Str("run_id", run.ID.String()).
		Str("source", run.Source).
		Str("error", run.Error).
		Msg("simulation: run failed")

	if s.repo == nil {
		return
	}
	if err := s.repo.SaveRun(ctx, run); err != nil {
		log.Warn().Err(err).Str("run_id", run.ID.String()).Msg("simulation: persist failed run")
	}
}

// run returns a failed run alongside the error once the parameters and
// source are known, and a nil run before that.
func (s *SimulationService) run(ctx context.Context, req RunRequest, start time.Time) (*domain.SimulationRun, error) {
	params := req.Params
	if err := params.Validate(); err != nil {
		return nil, err
	}

	src := s.source
	if req.Input != nil {
		src = dataset.StaticSource{Input: *req.Input}
	}
	if src == nil {
		return nil, errors.Wrap(domain.ErrInsufficientData, "no historical input given and no default source configured")
	}

	if params.Seed == 0 {
		params.Seed = uint64(start.UnixNano())
	}

	run := &domain.SimulationRun{
		ID:        uuid.New(),
		Status:    domain.RunStatusCompleted,
		Params:    params,
		Source:    src.Name(),
		CreatedAt: start.UTC(),
	}

	err := simulate(ctx, src, run)
	run.Duration = time.Since(start)
	if err != nil {
		run.Status = domain.RunStatusFailed
		run.Error = err.Error()
		return run, err
	}
	return run, nil
}

// simulate fills in the results of run.
func simulate(ctx context.Context, src dataset.Source, run *domain.SimulationRun) error {
	input, err := src.Load(ctx)
	if err != nil {
		return errors.Wrapf(err, "load historical input from %s", src.Name())
	}

	sim, err := simulation.New(input, run.Params, simulation.NewSeededSource(run.Params.Seed))
	if err != nil {
		return err
	}

	traj, err := sim.SimulateReplenishment()
	if err != nil {
		return err
	}

	run.SafetyStock = sim.SafetyStock()
	run.Distribution = sim.Distribution()
	run.Summary = simulation.Summarize(run.Distribution)
	run.Trajectories = traj
	return nil
}

// Get returns a run from the cache, falling back to the repository.
func (s *SimulationService) Get(ctx context.Context, id uuid.UUID) (*domain.SimulationRun, error) {
	if run, ok, err := s.cache.GetRun(ctx, id); err == nil && ok {
		s.cacheHit(true)
		return run, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("simulation: cache get run failed")
	}
	s.cacheHit(false)

	if s.repo == nil {
		return nil, errors.Wrapf(domain.ErrRunNotFound, "run %s", id)
	}

	run, err := s.repo.GetRun(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.cache.SetRun(ctx, run); err != nil {
		log.Warn().Err(err).Msg("simulation: cache set run failed")
	}
	return run, nil
}

// List returns recent persisted runs; without a repository it is always empty.
func (s *SimulationService) List(ctx context.Context, filter domain.RunFilter) ([]domain.RunListItem, error) {
	if s.repo == nil {
		return make([]domain.RunListItem, 0), nil
	}
	return s.repo.ListRuns(ctx, filter)
}

// Outcome classifies a run error for metrics and API responses.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "completed"
	case errors.Is(err, domain.ErrInvalidParameter):
		return "invalid_parameter"
	case errors.Is(err, domain.ErrInsufficientData):
		return "insufficient_data"
	case errors.Is(err, domain.ErrIndexOutOfRange):
		return "index_out_of_range"
	default:
		return "error"
	}
}

func (s *SimulationService) observe(run *domain.SimulationRun, err error, elapsed time.Duration) {
	if s.metrics == nil {
		return
	}
	s.metrics.RunsTotal.WithLabelValues(Outcome(err)).Inc()
	s.metrics.RunDuration.Observe(elapsed.Seconds())
	if run == nil {
		return
	}
	s.metrics.SafetyStock.Set(run.SafetyStock)

	stockouts := 0
	for _, lost := range run.Trajectories.LostSales {
		if lost > 0 {
			stockouts++
		}
	}
	s.metrics.StockoutPeriods.Observe(float64(stockouts))
}

func (s *SimulationService) cacheHit(hit bool) {
	if s.metrics == nil {
		return
	}
	if hit {
		s.metrics.CacheHits.Inc()
	} else {
		s.metrics.CacheMisses.Inc()
	}
}
