package testkit

import (
	"context"
	"math/rand/v2"
	"strconv"

	"gopower/ports"
)

// RNGAdapter implements the RNGPort interface with PCG-seeded streams
type RNGAdapter struct{}

// NewRNGAdapter creates an RNG adapter
func NewRNGAdapter() *RNGAdapter {
	return &RNGAdapter{}
}

// SeededStream creates a deterministic random source for a named operation
func (r *RNGAdapter) SeededStream(ctx context.Context, name string, seed int64) (rand.Source, error) {
	return rand.NewPCG(uint64(seed), uint64(hashString(name))), nil
}

// Stream creates a deterministic RNG stream for a specific sweep/sample size.
// The stream key mixes sweep ID and size so every grid point gets an
// independent, reproducible source for the same base seed.
func (r *RNGAdapter) Stream(ctx context.Context, sweepID string, sampleSize int, baseSeed int64) (rand.Source, error) {
	key := uint64(hashString(sweepID))
	key = key<<32 | uint64(hashString(strconv.Itoa(sampleSize)))
	return rand.NewPCG(uint64(baseSeed), key), nil
}

var _ ports.RNGPort = (*RNGAdapter)(nil)

// hashString creates a simple hash for deterministic seeding
func hashString(s string) uint32 {
	var hash uint32 = 5381
	for _, c := range s {
		hash = ((hash << 5) + hash) + uint32(c) // djb2 algorithm
	}
	return hash
}
