package simulation

import (
	"math"
	"sort"

	"github.com/andresuchdata/skusim/internal/domain"
	"github.com/pkg/errors"
)

// SafetyStock returns the 100*(1-serviceLevel) percentile of the lead-time
// demand distribution.
//
// NOTE: this convention lowers the safety stock as the service level rises.
// It is kept for compatibility with existing plans; use SafetyStockWithPolicy
// with domain.QuantileUpper for the serviceLevel-th percentile.
func SafetyStock(distribution []float64, serviceLevel float64) (float64, error) {
	return SafetyStockWithPolicy(distribution, serviceLevel, domain.QuantileComplement)
}

// SafetyStockWithPolicy returns the distribution percentile selected by policy.
// It does not modify distribution.
func SafetyStockWithPolicy(distribution []float64, serviceLevel float64, policy domain.QuantilePolicy) (float64, error) {
	if !(serviceLevel > 0 && serviceLevel < 1) {
		return 0, errors.Wrapf(domain.ErrInvalidParameter, "service_level must be in (0,1), got %v", serviceLevel)
	}
	if len(distribution) == 0 {
		return 0, errors.Wrap(domain.ErrInsufficientData, "lead time demand distribution is empty")
	}

	var rank float64
	switch policy {
	case "", domain.QuantileComplement:
		rank = 100 * (1 - serviceLevel)
	case domain.QuantileUpper:
		rank = 100 * serviceLevel
	default:
		return 0, errors.Wrapf(domain.ErrInvalidParameter, "unknown quantile policy %q", policy)
	}

	sorted := make([]float64, len(distribution))
	copy(sorted, distribution)
	sort.Float64s(sorted)

	return Percentile(sorted, rank), nil
}

// Percentile returns the p-th percentile (0..100) of an ascending slice using
// linear interpolation between the two closest ranks. p is clamped to [0,100].
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	if n == 1 {
		return sorted[0]
	}

	p = math.Max(0, math.Min(100, p))
	h := float64(n-1) * p / 100
	lo := int(math.Floor(h))
	if lo >= n-1 {
		return sorted[n-1]
	}
	frac := h - float64(lo)
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}

// Summarize computes descriptive statistics of a distribution.
func Summarize(distribution []float64) domain.DistributionSummary {
	n := len(distribution)
	if n == 0 {
		return domain.DistributionSummary{}
	}

	sorted := make([]float64, n)
	copy(sorted, distribution)
	sort.Float64s(sorted)

	sum := 0.0
	for _, v := range sorted {
		sum += v
	}
	mean := sum / float64(n)

	variance := 0.0
	if n > 1 {
		for _, v := range sorted {
			d := v - mean
			variance += d * d
		}
		variance /= float64(n - 1)
	}

	return domain.DistributionSummary{
		Count:  n,
		Min:    sorted[0],
		Max:    sorted[n-1],
		Mean:   mean,
		StdDev: math.Sqrt(variance),
		Median: Percentile(sorted, 50),
	}
}
