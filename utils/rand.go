package utils

import (
	"math"

	"golang.org/x/exp/rand"
	"lukechampine.com/frand"
)

// NewRand returns a generator seeded with seed, or with a fresh seed drawn
// from the system CSPRNG when seed is 0.
func NewRand(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = FreshSeed()
	}
	return rand.New(rand.NewSource(seed))
}

// FreshSeed returns a non-zero random seed.
func FreshSeed() uint64 {
	return frand.Uint64n(math.MaxUint64) + 1
}
