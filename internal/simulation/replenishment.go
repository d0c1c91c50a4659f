package simulation

import (
	"math"

	"github.com/andresuchdata/skusim/internal/domain"
	"github.com/pkg/errors"
)

// Simulator runs the periodic-review order-up-to policy over a planning horizon.
// A Simulator is not safe for concurrent use; each run owns its inventory state.
type Simulator struct {
	safetyStock  float64
	forecast     []float64
	errors       []float64
	totalPeriods int
	reviewPeriod int
	rng          RandomSource
}

// NewSimulator validates the horizon and look-ahead coverage up front so that
// Run never discovers a short forecast mid-simulation.
func NewSimulator(safetyStock float64, forecast, errorPool []float64, totalPeriods, reviewPeriod int, rng RandomSource) (*Simulator, error) {
	if totalPeriods < 1 {
		return nil, errors.Wrapf(domain.ErrInvalidParameter, "total_periods must be >= 1, got %d", totalPeriods)
	}
	if reviewPeriod < 1 {
		return nil, errors.Wrapf(domain.ErrInvalidParameter, "review_period must be >= 1, got %d", reviewPeriod)
	}
	if len(errorPool) == 0 {
		return nil, errors.Wrap(domain.ErrInsufficientData, "error pool is empty")
	}
	if need := domain.RequiredForecastLength(totalPeriods, reviewPeriod); len(forecast) < need {
		return nil, errors.Wrapf(domain.ErrIndexOutOfRange,
			"forecast has %d periods, need %d to cover %d periods with review period %d",
			len(forecast), need, totalPeriods, reviewPeriod)
	}

	return &Simulator{
		safetyStock:  safetyStock,
		forecast:     forecast,
		errors:       errorPool,
		totalPeriods: totalPeriods,
		reviewPeriod: reviewPeriod,
		rng:          rng,
	}, nil
}

// Run simulates every period in order, starting from the safety stock.
func (s *Simulator) Run() (domain.Trajectories, error) {
	traj := domain.NewTrajectories(s.totalPeriods)
	inventory := s.safetyStock

	for p := 0; p < s.totalPeriods; p++ {
		demand := s.forecast[p] + draw(s.errors, s.rng)

		review := p%s.reviewPeriod == 0
		orderUpTo := 0.0
		if review {
			window, err := lookAhead(s.forecast, p, s.reviewPeriod)
			if err != nil {
				return domain.Trajectories{}, err
			}
			orderUpTo = s.safetyStock + window
		}

		var rec domain.PeriodRecord
		rec, inventory = Step(inventory, demand, review, orderUpTo)
		rec.Period = p
		traj.Append(rec)
	}

	return traj, nil
}

// Step applies one period's transition to the inventory level and returns the
// period record together with the level carried into the next period.
//
// Unmet demand is lost, not backordered. The recorded inventory level is taken
// after demand and before the order is received; receipt is instantaneous.
func Step(inventory, demand float64, review bool, orderUpTo float64) (domain.PeriodRecord, float64) {
	rec := domain.PeriodRecord{Demand: demand, Review: review}

	after := inventory - demand
	if after < 0 {
		rec.LostSales = -after
		after = 0
	}
	rec.InventoryLevel = after

	if review {
		rec.OrderQuantity = math.Max(0, orderUpTo-after)
	}

	return rec, after + rec.OrderQuantity
}

// lookAhead sums forecast[p : p+window].
func lookAhead(forecast []float64, p, window int) (float64, error) {
	end := p + window
	if p < 0 || end > len(forecast) {
		return 0, errors.Wrapf(domain.ErrIndexOutOfRange,
			"look-ahead window [%d:%d] exceeds forecast length %d", p, end, len(forecast))
	}
	sum := 0.0
	for _, f := range forecast[p:end] {
		sum += f
	}
	return sum, nil
}
