package app

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"testing"

	"gopower/adapters/simulate"
	"gopower/domain/power"
	"gopower/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// faultyEstimator fails for one configured sample size and delegates the rest
type faultyEstimator struct {
	failFor  int
	delegate *simulate.ZTestEstimator
}

func (f *faultyEstimator) Estimate(ctx context.Context, src rand.Source, n int, rates power.GroupRates, alpha float64, repetitions int) (*power.Estimate, error) {
	if n == f.failFor {
		return nil, fmt.Errorf("injected failure for n=%d", n)
	}
	return f.delegate.Estimate(ctx, src, n, rates, alpha, repetitions)
}

func testConfig(sizes ...int) power.ExperimentConfig {
	return power.ExperimentConfig{
		Alpha:       0.05,
		TargetPower: 0.8,
		Repetitions: 500,
		SampleSizes: sizes,
	}
}

func TestRunSweep_ProducesOutcomePerSize(t *testing.T) {
	svc := NewSweepService(simulate.NewZTestEstimator(), testkit.NewRNGAdapter(), 4)

	result, err := svc.RunSweep(context.Background(), SweepRequest{
		Config: testConfig(500, 1500, 2500),
		Rates:  power.GroupRates{Control: 0.05, Treatment: 0.06},
		Seed:   42,
	})
	require.NoError(t, err)

	require.Len(t, result.Curve, 3)
	assert.Equal(t, 3, result.Succeeded)
	assert.Equal(t, 0, result.Failed)
	assert.False(t, result.SweepID.String() == "")
	assert.False(t, result.CreatedAt.IsZero())

	// Insertion order is preserved regardless of worker scheduling
	for i, want := range []int{500, 1500, 2500} {
		assert.Equal(t, want, result.Curve[i].SampleSize)
		require.True(t, result.Curve[i].OK())
		assert.GreaterOrEqual(t, result.Curve[i].Estimate.Power, 0.0)
		assert.LessOrEqual(t, result.Curve[i].Estimate.Power, 1.0)
	}
}

func TestRunSweep_PartialFailureContinues(t *testing.T) {
	estimator := &faultyEstimator{failFor: 1500, delegate: simulate.NewZTestEstimator()}
	svc := NewSweepService(estimator, testkit.NewRNGAdapter(), 2)

	result, err := svc.RunSweep(context.Background(), SweepRequest{
		Config: testConfig(500, 1500, 2500),
		Rates:  power.GroupRates{Control: 0.05, Treatment: 0.06},
		Seed:   42,
	})
	require.NoError(t, err, "one failing size must not fail the sweep")

	require.Len(t, result.Curve, 3)
	assert.Equal(t, 2, result.Succeeded)
	assert.Equal(t, 1, result.Failed)

	failed := result.Curve[1]
	assert.Equal(t, 1500, failed.SampleSize)
	assert.False(t, failed.OK())
	assert.Contains(t, failed.Err, "n=1500")

	assert.True(t, result.Curve[0].OK())
	assert.True(t, result.Curve[2].OK())
}

func TestRunSweep_DeterministicForSeed(t *testing.T) {
	svc := NewSweepService(simulate.NewZTestEstimator(), testkit.NewRNGAdapter(), 4)

	req := SweepRequest{
		Config:  testConfig(500, 1500, 2500, 3500),
		Rates:   power.GroupRates{Control: 0.05, Treatment: 0.06},
		Seed:    12345,
		SweepID: "fixed-sweep",
	}

	first, err := svc.RunSweep(context.Background(), req)
	require.NoError(t, err)
	second, err := svc.RunSweep(context.Background(), req)
	require.NoError(t, err)

	for i := range first.Curve {
		require.True(t, first.Curve[i].OK())
		assert.Equal(t, first.Curve[i].Estimate.Power, second.Curve[i].Estimate.Power,
			"size %d should reproduce for a fixed seed and sweep ID", first.Curve[i].SampleSize)
	}
}

func TestSweepResult_JSONRoundTrip(t *testing.T) {
	svc := NewSweepService(simulate.NewZTestEstimator(), testkit.NewRNGAdapter(), 2)

	result, err := svc.RunSweep(context.Background(), SweepRequest{
		Config: testConfig(500),
		Rates:  power.GroupRates{Control: 0.05, Treatment: 0.06},
		Seed:   42,
	})
	require.NoError(t, err)

	raw, err := json.Marshal(result)
	require.NoError(t, err)

	var decoded SweepResult
	require.NoError(t, json.Unmarshal(raw, &decoded))

	assert.Equal(t, result.SweepID, decoded.SweepID)
	assert.False(t, decoded.CreatedAt.IsZero())
	assert.True(t, result.CreatedAt.Time().Equal(decoded.CreatedAt.Time()))
}

func TestRunSweep_InvalidRequest(t *testing.T) {
	svc := NewSweepService(simulate.NewZTestEstimator(), testkit.NewRNGAdapter(), 2)

	_, err := svc.RunSweep(context.Background(), SweepRequest{
		Config: power.ExperimentConfig{Alpha: 0.05, Repetitions: 100}, // empty grid
		Rates:  power.GroupRates{Control: 0.05, Treatment: 0.06},
	})
	assert.Error(t, err)

	_, err = svc.RunSweep(context.Background(), SweepRequest{
		Config: testConfig(500),
		Rates:  power.GroupRates{Control: 1.5, Treatment: 0.06},
	})
	assert.Error(t, err)
}

func TestRunSweep_CancelledContext(t *testing.T) {
	svc := NewSweepService(simulate.NewZTestEstimator(), testkit.NewRNGAdapter(), 2)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.RunSweep(ctx, SweepRequest{
		Config: testConfig(500, 1500),
		Rates:  power.GroupRates{Control: 0.05, Treatment: 0.06},
		Seed:   42,
	})
	assert.Error(t, err)
}
