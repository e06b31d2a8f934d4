package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"gopower/domain/core"
	"gopower/domain/power"
	"gopower/ports"

	"golang.org/x/sync/errgroup"
)

// SweepService drives power estimation across the sample size grid.
// Grid points are independent, so they are estimated concurrently with a
// bounded worker limit and reassembled in input order.
type SweepService struct {
	estimator ports.EstimatorPort
	rngPort   ports.RNGPort
	workers   int
}

// SweepRequest defines the inputs for one deterministic power sweep
type SweepRequest struct {
	Config  power.ExperimentConfig
	Rates   power.GroupRates
	Seed    int64
	SweepID core.SweepID // optional, will be generated if empty
}

// SweepResult contains the complete output of a power sweep
type SweepResult struct {
	SweepID   core.SweepID           `json:"sweep_id"`
	Config    power.ExperimentConfig `json:"config"`
	Rates     power.GroupRates       `json:"rates"`
	Curve     power.Curve            `json:"curve"`
	Seed      int64                  `json:"seed"`
	CreatedAt core.Timestamp         `json:"created_at"`
	RuntimeMs int64                  `json:"runtime_ms"`
	Succeeded int                    `json:"succeeded"`
	Failed    int                    `json:"failed"`
}

// NewSweepService creates a sweep service
func NewSweepService(estimator ports.EstimatorPort, rngPort ports.RNGPort, workers int) *SweepService {
	if workers <= 0 {
		workers = 1
	}
	return &SweepService{
		estimator: estimator,
		rngPort:   rngPort,
		workers:   workers,
	}
}

// RunSweep estimates power once per candidate sample size with shared rates,
// alpha and repetition count. An error while estimating one size is captured
// in that size's outcome and the remaining sizes still run; the only errors
// returned from RunSweep itself are invalid requests and context cancellation.
func (s *SweepService) RunSweep(ctx context.Context, req SweepRequest) (*SweepResult, error) {
	startTime := time.Now()

	if err := req.Config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid sweep config: %w", err)
	}
	if err := req.Rates.Validate(); err != nil {
		return nil, fmt.Errorf("invalid group rates: %w", err)
	}

	sweepID := req.SweepID
	if core.ID(sweepID).IsEmpty() {
		sweepID = core.SweepID(core.NewID())
	}

	curve := make(power.Curve, len(req.Config.SampleSizes))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for i, n := range req.Config.SampleSizes {
		g.Go(func() error {
			src, err := s.rngPort.Stream(gctx, sweepID.String(), n, req.Seed)
			if err != nil {
				curve[i] = power.PointOutcome{SampleSize: n, Err: err.Error()}
				return nil
			}

			estimate, err := s.estimator.Estimate(gctx, src, n, req.Rates, req.Config.Alpha, req.Config.Repetitions)
			if err != nil {
				// Cancellation is a sweep-level failure, not a per-size one
				if gctx.Err() != nil {
					return gctx.Err()
				}
				log.Printf("power estimation failed for sample size %d: %v", n, err)
				curve[i] = power.PointOutcome{SampleSize: n, Err: err.Error()}
				return nil
			}

			curve[i] = power.PointOutcome{SampleSize: n, Estimate: estimate}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &SweepResult{
		SweepID:   sweepID,
		Config:    req.Config,
		Rates:     req.Rates,
		Curve:     curve,
		Seed:      req.Seed,
		CreatedAt: core.Now(),
		RuntimeMs: time.Since(startTime).Milliseconds(),
		Succeeded: curve.Succeeded(),
		Failed:    curve.Failed(),
	}, nil
}
