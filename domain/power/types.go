package power

import (
	"fmt"

	"gopower/domain/core"
)

// GroupRates holds the assumed true click-through rates for both arms of the test.
type GroupRates struct {
	Control   float64 `json:"control"`
	Treatment float64 `json:"treatment"`
}

// Validate checks both rates are probabilities.
func (g GroupRates) Validate() error {
	if g.Control < 0 || g.Control > 1 {
		return core.NewRateError("p_control", g.Control)
	}
	if g.Treatment < 0 || g.Treatment > 1 {
		return core.NewRateError("p_treatment", g.Treatment)
	}
	return nil
}

// AbsDiff returns |treatment - control|, the assumed true effect.
func (g GroupRates) AbsDiff() float64 {
	d := g.Treatment - g.Control
	if d < 0 {
		return -d
	}
	return d
}

// ExperimentConfig fixes the non-interactive parameters of a power sweep.
// INVARIANTS:
// - Alpha strictly within (0,1)
// - Repetitions > 0
// - SampleSizes non-empty, every entry > 0, insertion order preserved
type ExperimentConfig struct {
	Alpha       float64 `json:"alpha"`
	TargetPower float64 `json:"target_power"` // informational, drawn as a reference line
	Repetitions int     `json:"repetitions"`
	SampleSizes []int   `json:"sample_sizes"`
}

// Validate checks the configuration invariants.
func (c ExperimentConfig) Validate() error {
	if c.Alpha <= 0 || c.Alpha >= 1 {
		return fmt.Errorf("%w: got %g", core.ErrInvalidAlpha, c.Alpha)
	}
	if c.TargetPower < 0 || c.TargetPower > 1 {
		return core.NewRateError("target_power", c.TargetPower)
	}
	if c.Repetitions <= 0 {
		return fmt.Errorf("%w: got %d", core.ErrInvalidRepetitions, c.Repetitions)
	}
	if len(c.SampleSizes) == 0 {
		return core.ErrEmptySizeGrid
	}
	for _, n := range c.SampleSizes {
		if n <= 0 {
			return core.NewSampleSizeError(n)
		}
	}
	return nil
}

// Estimate is the outcome of one Monte Carlo power estimation.
// INVARIANTS:
// - Power always within [0,1]
// - Degenerate counts repetitions whose pooled standard error was zero;
//   those repetitions are treated as non-rejections, never as NaN
type Estimate struct {
	Power       float64 `json:"power"`
	Degenerate  int     `json:"degenerate,omitempty"`
	Repetitions int     `json:"repetitions"`
}

// PointOutcome carries either an estimate or an error for one sample size.
// A failed size is recorded, not silently dropped, so downstream consumers
// can distinguish "no data" from "failed".
type PointOutcome struct {
	SampleSize int       `json:"sample_size"`
	Estimate   *Estimate `json:"estimate,omitempty"`
	Err        string    `json:"error,omitempty"`
}

// OK reports whether this size produced an estimate.
func (p PointOutcome) OK() bool {
	return p.Estimate != nil
}

// Curve is the ordered power series over the sample size grid,
// one outcome per candidate size, insertion order = input order.
type Curve []PointOutcome

// Succeeded returns the count of sizes that produced an estimate.
func (c Curve) Succeeded() int {
	n := 0
	for _, p := range c {
		if p.OK() {
			n++
		}
	}
	return n
}

// Failed returns the count of sizes whose estimation errored.
func (c Curve) Failed() int {
	return len(c) - c.Succeeded()
}

// Points returns the successful (size, power) pairs in input order.
func (c Curve) Points() ([]int, []float64) {
	sizes := make([]int, 0, len(c))
	powers := make([]float64, 0, len(c))
	for _, p := range c {
		if p.OK() {
			sizes = append(sizes, p.SampleSize)
			powers = append(powers, p.Estimate.Power)
		}
	}
	return sizes, powers
}

// MinDetectableSize returns the smallest sample size whose estimated power
// reached the target, or false when the curve never crosses it.
func (c Curve) MinDetectableSize(target float64) (int, bool) {
	best := 0
	found := false
	for _, p := range c {
		if p.OK() && p.Estimate.Power >= target {
			if !found || p.SampleSize < best {
				best = p.SampleSize
				found = true
			}
		}
	}
	return best, found
}

// SizeGrid builds an ascending sample size grid [start, stop) with the given step.
func SizeGrid(start, stop, step int) ([]int, error) {
	if start <= 0 {
		return nil, core.NewSampleSizeError(start)
	}
	if step <= 0 {
		return nil, fmt.Errorf("grid step must be positive, got %d", step)
	}
	if stop <= start {
		return nil, fmt.Errorf("grid stop %d must exceed start %d", stop, start)
	}
	var sizes []int
	for n := start; n < stop; n += step {
		sizes = append(sizes, n)
	}
	return sizes, nil
}
