package engine

import "hash/fnv"

// Rand is a Mulberry32 pseudo-random stream keyed by a universe seed.
// Two streams built from the same seed and consumed in the same order
// produce identical sequences, which is what makes simulations replayable.
type Rand struct {
	state uint32
}

// NewRand derives the initial stream state from a seed string via FNV-1a.
func NewRand(seed string) *Rand {
	h := fnv.New32a()
	h.Write([]byte(seed))
	return &Rand{state: h.Sum32()}
}

// RandFromState resumes a stream at a previously persisted state.
func RandFromState(state uint32) *Rand {
	return &Rand{state: state}
}

// State returns the current stream state for persistence between steps.
func (r *Rand) State() uint32 {
	return r.state
}

// Float64 returns the next value in [0, 1).
func (r *Rand) Float64() float64 {
	r.state += 0x6D2B79F5
	t := r.state
	t = (t ^ (t >> 15)) * (t | 1)
	t ^= t + (t^(t>>7))*(t|61)
	return float64(t^(t>>14)) / 4294967296.0
}

// FloatBetween returns a value in [min, max).
func (r *Rand) FloatBetween(min, max float64) float64 {
	return min + r.Float64()*(max-min)
}

// IntBetween returns an integer in [min, max).
func (r *Rand) IntBetween(min, max int) int {
	return min + int(r.Float64()*float64(max-min))
}
