package simulation

import (
	"github.com/andresuchdata/skusim/internal/domain"
)

// Estimator builds the empirical lead-time demand distribution by composing
// resampled forecasts and forecast errors.
type Estimator struct {
	forecast  []float64
	errors    []float64
	leadTimes []int
	rng       RandomSource
}

// NewEstimator creates an estimator over the historical input.
func NewEstimator(input domain.HistoricalInput, rng RandomSource) *Estimator {
	return &Estimator{
		forecast:  input.Forecast,
		errors:    input.Errors,
		leadTimes: input.LeadTimes,
		rng:       rng,
	}
}

// Estimate returns one simulated lead-time demand total per lead-time observation,
// in observation order.
//
// For an observation L it draws L errors and then L forecasts with replacement
// and sums the L pairwise sums. The forecast series is treated as an unordered
// pool here.
func (e *Estimator) Estimate() ([]float64, error) {
	input := domain.HistoricalInput{Forecast: e.forecast, Errors: e.errors, LeadTimes: e.leadTimes}
	if err := input.Validate(); err != nil {
		return nil, err
	}

	distribution := make([]float64, 0, len(e.leadTimes))
	for _, lt := range e.leadTimes {
		distribution = append(distribution, e.leadTimeDemand(lt))
	}
	return distribution, nil
}

func (e *Estimator) leadTimeDemand(leadTime int) float64 {
	errs := make([]float64, leadTime)
	for i := range errs {
		errs[i] = draw(e.errors, e.rng)
	}

	total := 0.0
	for i := 0; i < leadTime; i++ {
		total += errs[i] + draw(e.forecast, e.rng)
	}
	return total
}
