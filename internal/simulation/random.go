package simulation

import (
	"math/rand/v2"
)

// RandomSource picks indices for sampling with replacement. *rand.Rand from
// math/rand/v2 satisfies it.
type RandomSource interface {
	IntN(n int) int
}

// NewSeededSource returns a reproducible PCG-backed source.
func NewSeededSource(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// SequenceSource replays a fixed list of indices, wrapping around when exhausted.
// Each index is reduced modulo n so any sequence is valid for any pool.
type SequenceSource struct {
	indices []int
	pos     int
}

// NewSequenceSource creates a deterministic source. With no indices it always returns 0.
func NewSequenceSource(indices ...int) *SequenceSource {
	return &SequenceSource{indices: indices}
}

func (s *SequenceSource) IntN(n int) int {
	if len(s.indices) == 0 || n <= 0 {
		return 0
	}
	idx := s.indices[s.pos%len(s.indices)]
	s.pos++
	idx %= n
	if idx < 0 {
		idx += n
	}
	return idx
}

// draw samples one value from pool with replacement.
func draw(pool []float64, rng RandomSource) float64 {
	return pool[rng.IntN(len(pool))]
}
