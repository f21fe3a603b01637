package physics

import "golang.org/x/exp/rand"

// DefaultSeed seeds the random source when none is supplied.
const DefaultSeed = 42

// Random is the uniform [0, 1) source used for jitter and placement.
type Random interface {
	Float64() float64
}

// NewRandom returns a deterministic source for the given seed.
func NewRandom(seed uint64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}
