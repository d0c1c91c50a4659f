// Package simulation estimates lead-time demand, derives safety stock and
// simulates a periodic-review order-up-to replenishment policy for one SKU.
package simulation

import (
	"github.com/andresuchdata/skusim/internal/domain"
	"github.com/rs/zerolog/log"
)

// InventorySimulation ties the estimator, the safety stock calculation and the
// simulator together. The distribution and safety stock are computed once in New.
type InventorySimulation struct {
	params       domain.SimulationParams
	distribution []float64
	safetyStock  float64
	simulator    *Simulator
}

// New validates params, estimates the lead-time demand distribution and
// derives the safety stock. Errors abort construction:
//   - domain.ErrInvalidParameter before any sampling happens
//   - domain.ErrInsufficientData from the estimator
//   - domain.ErrIndexOutOfRange when the forecast is too short for the horizon
func New(input domain.HistoricalInput, params domain.SimulationParams, rng RandomSource) (*InventorySimulation, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	distribution, err := NewEstimator(input, rng).Estimate()
	if err != nil {
		return nil, err
	}

	safetyStock, err := SafetyStockWithPolicy(distribution, params.ServiceLevel, params.Policy())
	if err != nil {
		return nil, err
	}

	simulator, err := NewSimulator(safetyStock, input.Forecast, input.Errors, params.TotalPeriods, params.ReviewPeriod, rng)
	if err != nil {
		return nil, err
	}

	log.Debug().
		Int("observations", len(distribution)).
		Float64("service_level", params.ServiceLevel).
		Str("quantile_policy", string(params.Policy())).
		Float64("safety_stock", safetyStock).
		Msg("simulation: safety stock computed")

	return &InventorySimulation{
		params:       params,
		distribution: distribution,
		safetyStock:  safetyStock,
		simulator:    simulator,
	}, nil
}

// Distribution returns a copy of the lead-time demand distribution.
func (s *InventorySimulation) Distribution() []float64 {
	out := make([]float64, len(s.distribution))
	copy(out, s.distribution)
	return out
}

func (s *InventorySimulation) SafetyStock() float64 {
	return s.safetyStock
}

func (s *InventorySimulation) Params() domain.SimulationParams {
	return s.params
}

// SimulateReplenishment runs the replenishment policy over the planning horizon.
func (s *InventorySimulation) SimulateReplenishment() (domain.Trajectories, error) {
	return s.simulator.Run()
}
