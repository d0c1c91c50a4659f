// internal/domain/models.go
package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// HistoricalInput is the set of historical samples a simulation is built from.
type HistoricalInput struct {
	Forecast  []float64 `json:"forecast"`  // period-indexed forecast
	Errors    []float64 `json:"errors"`    // pool of forecast deviations
	LeadTimes []int     `json:"lead_time"` // realised lead times, in periods
}

// Validate reports ErrInsufficientData when any pool is empty or a lead time is not positive.
func (h HistoricalInput) Validate() error {
	if len(h.Forecast) == 0 {
		return errors.Wrap(ErrInsufficientData, "forecast series is empty")
	}
	if len(h.Errors) == 0 {
		return errors.Wrap(ErrInsufficientData, "error pool is empty")
	}
	if len(h.LeadTimes) == 0 {
		return errors.Wrap(ErrInsufficientData, "no lead time observations")
	}
	for i, lt := range h.LeadTimes {
		if lt <= 0 {
			return errors.Wrapf(ErrInsufficientData, "lead time observation %d is %d, must be positive", i, lt)
		}
	}
	return nil
}

// QuantilePolicy selects which percentile of the lead-time demand distribution
// becomes the safety stock.
type QuantilePolicy string

const (
	// QuantileComplement takes the 100*(1-service_level) percentile.
	QuantileComplement QuantilePolicy = "complement"
	// QuantileUpper takes the 100*service_level percentile.
	QuantileUpper QuantilePolicy = "upper"
)

// SimulationParams holds the run configuration.
type SimulationParams struct {
	TotalPeriods   int            `json:"total_periods"`
	ReviewPeriod   int            `json:"review_period"`
	ServiceLevel   float64        `json:"service_level"`
	Seed           uint64         `json:"seed,omitempty"`
	QuantilePolicy QuantilePolicy `json:"quantile_policy,omitempty"`
}

// Validate checks the parameters eagerly, before any simulation work is done.
func (p SimulationParams) Validate() error {
	if p.TotalPeriods < 1 {
		return errors.Wrapf(ErrInvalidParameter, "total_periods must be >= 1, got %d", p.TotalPeriods)
	}
	if p.ReviewPeriod < 1 {
		return errors.Wrapf(ErrInvalidParameter, "review_period must be >= 1, got %d", p.ReviewPeriod)
	}
	if !(p.ServiceLevel > 0 && p.ServiceLevel < 1) {
		return errors.Wrapf(ErrInvalidParameter, "service_level must be in (0,1), got %v", p.ServiceLevel)
	}
	switch p.QuantilePolicy {
	case "", QuantileComplement, QuantileUpper:
	default:
		return errors.Wrapf(ErrInvalidParameter, "unknown quantile policy %q", p.QuantilePolicy)
	}
	return nil
}

// RequiredForecastLength is the number of forecast periods a run over
// totalPeriods reads, including the look-ahead of the last review.
func RequiredForecastLength(totalPeriods, reviewPeriod int) int {
	return totalPeriods + reviewPeriod - 1
}

// Policy returns the quantile policy, defaulting to QuantileComplement.
func (p SimulationParams) Policy() QuantilePolicy {
	if p.QuantilePolicy == "" {
		return QuantileComplement
	}
	return p.QuantilePolicy
}

// PeriodRecord is the outcome of one simulated period.
type PeriodRecord struct {
	Period         int
	Demand         float64
	LostSales      float64
	InventoryLevel float64 // after demand, before receipt
	OrderQuantity  float64
	Review         bool
}

// Trajectories are the period-aligned outputs of a simulation run.
type Trajectories struct {
	InventoryLevels []float64 `json:"inventory_levels"`
	OrderQuantities []float64 `json:"order_quantities"`
	Demands         []float64 `json:"demands"`
	LostSales       []float64 `json:"lost_sales"`
}

// NewTrajectories allocates trajectories with capacity for n periods.
func NewTrajectories(n int) Trajectories {
	return Trajectories{
		InventoryLevels: make([]float64, 0, n),
		OrderQuantities: make([]float64, 0, n),
		Demands:         make([]float64, 0, n),
		LostSales:       make([]float64, 0, n),
	}
}

// Append records one period.
func (t *Trajectories) Append(r PeriodRecord) {
	t.InventoryLevels = append(t.InventoryLevels, r.InventoryLevel)
	t.OrderQuantities = append(t.OrderQuantities, r.OrderQuantity)
	t.Demands = append(t.Demands, r.Demand)
	t.LostSales = append(t.LostSales, r.LostSales)
}

// Len returns the number of recorded periods.
func (t Trajectories) Len() int {
	return len(t.InventoryLevels)
}

// DistributionSummary describes the estimated lead-time demand distribution.
type DistributionSummary struct {
	Count  int     `json:"count"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Median float64 `json:"median"`
}

// SimulationRun is a simulation with its inputs and outputs. Failed runs carry
// the parameters and Error but no results.
type SimulationRun struct {
	ID           uuid.UUID           `json:"id" db:"id"`
	Status       RunStatus           `json:"status" db:"status"`
	Params       SimulationParams    `json:"params"`
	SafetyStock  float64             `json:"safety_stock" db:"safety_stock"`
	Distribution []float64           `json:"distribution"`
	Summary      DistributionSummary `json:"distribution_summary"`
	Trajectories Trajectories        `json:"trajectories"`
	Source       string              `json:"source" db:"source"`
	Error        string              `json:"error,omitempty" db:"error_message"`
	CreatedAt    time.Time           `json:"created_at" db:"created_at"`
	Duration     time.Duration       `json:"duration_ns" db:"-"`
}

// RunListItem is the lightweight view of a persisted run.
type RunListItem struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Status       RunStatus `json:"status" db:"status"`
	TotalPeriods int       `json:"total_periods" db:"total_periods"`
	ReviewPeriod int       `json:"review_period" db:"review_period"`
	ServiceLevel float64   `json:"service_level" db:"service_level"`
	SafetyStock  float64   `json:"safety_stock" db:"safety_stock"`
	Source       string    `json:"source" db:"source"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// RunFilter narrows run listings.
type RunFilter struct {
	Status RunStatus `json:"status"`
	Limit  int       `json:"limit"`
}
