package simulate

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"

	"gopower/domain/core"
	"gopower/domain/power"
	"gopower/internal/errors"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"
)

// ZTestEstimator estimates power for a two-proportion pooled z-test by
// Monte Carlo simulation: draw binomial success counts for both arms,
// compute the pooled z-score per repetition, and count how often it
// clears the two-sided critical value.
type ZTestEstimator struct{}

// NewZTestEstimator creates a Monte Carlo power estimator
func NewZTestEstimator() *ZTestEstimator {
	return &ZTestEstimator{}
}

// Estimate runs `repetitions` simulated experiments of size n per group.
// Repetitions with a zero pooled standard error (all successes or all
// failures across both arms) are counted as non-rejections and tallied
// in the Degenerate field rather than propagated as NaN.
func (e *ZTestEstimator) Estimate(ctx context.Context, src rand.Source, n int, rates power.GroupRates, alpha float64, repetitions int) (*power.Estimate, error) {
	if n <= 0 {
		return nil, core.NewSampleSizeError(n)
	}
	if alpha <= 0 || alpha >= 1 {
		return nil, fmt.Errorf("%w: got %g", core.ErrInvalidAlpha, alpha)
	}
	if repetitions <= 0 {
		return nil, fmt.Errorf("%w: got %d", core.ErrInvalidRepetitions, repetitions)
	}
	if err := rates.Validate(); err != nil {
		return nil, err
	}
	if src == nil {
		return nil, errors.SimulationError("random source is required", nil)
	}

	// Two-sided critical value at the configured significance level
	critical := distuv.Normal{Mu: 0, Sigma: 1}.Quantile(1 - alpha/2)

	controlDist := distuv.Binomial{N: float64(n), P: rates.Control, Src: src}
	treatmentDist := distuv.Binomial{N: float64(n), P: rates.Treatment, Src: src}

	nf := float64(n)
	rejections := make([]float64, 0, repetitions)
	degenerate := 0

	for i := 0; i < repetitions; i++ {
		if i%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		successesControl := controlDist.Rand()
		successesTreatment := treatmentDist.Rand()

		pooled := (successesControl + successesTreatment) / (2 * nf)
		se := math.Sqrt(2 * pooled * (1 - pooled) / nf)
		if se == 0 || math.IsNaN(se) {
			// Undefined z-score; count as a non-rejection
			degenerate++
			rejections = append(rejections, 0)
			continue
		}

		z := (successesTreatment/nf - successesControl/nf) / se
		if math.Abs(z) > critical {
			rejections = append(rejections, 1)
		} else {
			rejections = append(rejections, 0)
		}
	}

	estimated, err := stats.Mean(rejections)
	if err != nil {
		return nil, errors.SimulationError("rejection fraction", err)
	}

	return &power.Estimate{
		Power:       estimated,
		Degenerate:  degenerate,
		Repetitions: repetitions,
	}, nil
}
