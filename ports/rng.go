package ports

import (
	"context"
	"math/rand/v2"
)

// RNGPort provides seeded random number generation for deterministic operations
type RNGPort interface {
	// SeededStream creates a deterministic random source for a named operation
	SeededStream(ctx context.Context, name string, seed int64) (rand.Source, error)

	// Stream creates a deterministic RNG stream for a specific sweep/sample size
	// This ensures repeated sweeps produce identical estimates for the same seed
	Stream(ctx context.Context, sweepID string, sampleSize int, baseSeed int64) (rand.Source, error)
}
