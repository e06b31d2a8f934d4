package ports

import (
	"context"
	"math/rand/v2"

	"gopower/domain/power"
)

// EstimatorPort estimates statistical power for one sample size by Monte Carlo
// simulation. Implementations are pure functions of their inputs and the
// injected random source.
type EstimatorPort interface {
	Estimate(ctx context.Context, src rand.Source, n int, rates power.GroupRates, alpha float64, repetitions int) (*power.Estimate, error)
}
