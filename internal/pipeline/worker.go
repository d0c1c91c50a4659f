package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/andresuchdata/skusim/internal/domain"
	"github.com/andresuchdata/skusim/internal/report"
	"github.com/andresuchdata/skusim/internal/simulation"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Sweep runs every (service level, replication) pair of cfg against the same
// historical input and aggregates the results per service level. Each job owns
// its simulation and random source; input is shared read-only. The first
// failing job stops the sweep and its error is returned.
func Sweep(ctx context.Context, input domain.HistoricalInput, base domain.SimulationParams, cfg SweepConfig) (*SweepResult, error) {
	if len(cfg.ServiceLevels) == 0 {
		return nil, errors.Wrap(domain.ErrInvalidParameter, "sweep needs at least one service level")
	}
	if cfg.Replications < 1 {
		return nil, errors.Wrapf(domain.ErrInvalidParameter, "replications must be >= 1, got %d", cfg.Replications)
	}
	for _, sl := range cfg.ServiceLevels {
		p := base
		p.ServiceLevel = sl
		if err := p.Validate(); err != nil {
			return nil, err
		}
	}

	baseSeed := cfg.BaseSeed
	if baseSeed == 0 {
		baseSeed = uint64(time.Now().UnixNano())
	}

	jobs := make([]Job, 0, len(cfg.ServiceLevels)*cfg.Replications)
	for _, sl := range cfg.ServiceLevels {
		for r := 0; r < cfg.Replications; r++ {
			idx := len(jobs)
			jobs = append(jobs, Job{Index: idx, ServiceLevel: sl, Replication: r, Seed: baseSeed + uint64(idx)})
		}
	}

	start := time.Now()
	results, err := processJobsParallel(ctx, input, base, jobs, cfg.WorkerCount)
	if err != nil {
		return nil, err
	}

	log.Info().
		Uint64("base_seed", baseSeed).
		Int("jobs", len(jobs)).
		Int("workers", cfg.WorkerCount).
		Dur("elapsed", time.Since(start)).
		Msg("sweep completed")

	return &SweepResult{BaseSeed: baseSeed, Points: aggregate(cfg.ServiceLevels, results)}, nil
}

// runJob executes a single job; replaced in tests.
var runJob = processJob

// processJobsParallel processes jobs using a worker pool. Results are indexed
// by Job.Index. A job error or a cancelled ctx stops dispatch, and queued jobs
// are skipped.
func processJobsParallel(ctx context.Context, input domain.HistoricalInput, base domain.SimulationParams, jobs []Job, workerCount int) ([]Result, error) {
	if workerCount < 1 {
		workerCount = 1
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	jobCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make([]Result, len(jobs))
	jobChan := make(chan Job)
	var (
		wg       sync.WaitGroup
		failOnce sync.Once
		firstErr error
	)

	for i := 0; i < workerCount; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for job := range jobChan {
				if jobCtx.Err() != nil {
					continue
				}
				res := runJob(input, base, job)
				results[job.Index] = res
				if res.Err != nil {
					log.Debug().Err(res.Err).Int("worker", workerID).Int("job", job.Index).Msg("sweep job failed")
					failOnce.Do(func() {
						firstErr = res.Err
						cancel()
					})
				}
			}
		}(i)
	}

dispatch:
	for _, job := range jobs {
		select {
		case <-jobCtx.Done():
			break dispatch
		case jobChan <- job:
		}
	}
	close(jobChan)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return results, nil
}

func processJob(input domain.HistoricalInput, base domain.SimulationParams, job Job) Result {
	params := base
	params.ServiceLevel = job.ServiceLevel
	params.Seed = job.Seed
	res := Result{Job: job, Params: params, Status: JobStatusQueued}

	sim, err := simulation.New(input, params, simulation.NewSeededSource(job.Seed))
	if err != nil {
		res.Status, res.Err = JobStatusFailed, err
		return res
	}
	traj, err := sim.SimulateReplenishment()
	if err != nil {
		res.Status, res.Err = JobStatusFailed, err
		return res
	}

	res.Summary = report.Summarize(&domain.SimulationRun{SafetyStock: sim.SafetyStock(), Trajectories: traj})
	res.Status = JobStatusCompleted
	return res
}

func aggregate(levels []float64, results []Result) []Point {
	points := make([]Point, len(levels))
	for i, sl := range levels {
		points[i] = Point{ServiceLevel: sl, MinFillRate: 1}
	}

	// Jobs were enumerated level by level, so results are grouped the same way.
	perLevel := len(results) / len(levels)
	for i := range points {
		pt := &points[i]
		for _, res := range results[i*perLevel : (i+1)*perLevel] {
			s := res.Summary
			pt.Runs++
			pt.SafetyStock += s.SafetyStock
			pt.MeanFillRate += s.FillRate
			pt.MeanStockouts += float64(s.StockoutPeriods)
			pt.MeanAvgInventory += s.AverageInventory
			pt.MeanOrdered += s.TotalOrdered
			if s.FillRate < pt.MinFillRate {
				pt.MinFillRate = s.FillRate
			}
		}
		if pt.Runs == 0 {
			continue
		}
		n := float64(pt.Runs)
		pt.SafetyStock /= n
		pt.MeanFillRate /= n
		pt.MeanStockouts /= n
		pt.MeanAvgInventory /= n
		pt.MeanOrdered /= n
	}
	return points
}
