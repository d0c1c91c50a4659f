package pipeline

import (
	"github.com/andresuchdata/skusim/internal/domain"
	"github.com/andresuchdata/skusim/internal/report"
)

// SweepConfig controls a service-level sweep.
type SweepConfig struct {
	ServiceLevels []float64 // evaluated in the given order
	Replications  int       // independent seeded runs per service level
	WorkerCount   int       // number of concurrent workers
	BaseSeed      uint64    // job i runs with BaseSeed+i; 0 picks a time-based base
}

// DefaultSweepConfig returns sensible defaults
func DefaultSweepConfig() SweepConfig {
	return SweepConfig{
		ServiceLevels: []float64{0.8, 0.85, 0.9, 0.95, 0.99},
		Replications:  20,
		WorkerCount:   4,
	}
}

// Job is one simulation of a sweep.
type Job struct {
	Index        int
	ServiceLevel float64
	Replication  int
	Seed         uint64
}

// JobStatus represents the state of a sweep job
type JobStatus string

const (
	JobStatusQueued    JobStatus = "queued"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// Result is the outcome of one job.
type Result struct {
	Job     Job
	Status  JobStatus
	Params  domain.SimulationParams
	Summary report.Summary
	Err     error
}

// Point aggregates all replications of one service level.
type Point struct {
	ServiceLevel     float64 `json:"service_level"`
	SafetyStock      float64 `json:"safety_stock"`
	Runs             int     `json:"runs"`
	MeanFillRate     float64 `json:"mean_fill_rate"`
	MinFillRate      float64 `json:"min_fill_rate"`
	MeanStockouts    float64 `json:"mean_stockout_periods"`
	MeanAvgInventory float64 `json:"mean_average_inventory"`
	MeanOrdered      float64 `json:"mean_total_ordered"`
}

// SweepResult is the aggregated outcome of a sweep. BaseSeed is the seed job 0
// ran with; passing it back as SweepConfig.BaseSeed reproduces the sweep.
type SweepResult struct {
	BaseSeed uint64  `json:"base_seed"`
	Points   []Point `json:"points"`
}
