package power

import (
	"errors"
	"math"
	"testing"

	"gopower/domain/core"
)

func TestSizeGrid_ReferenceRange(t *testing.T) {
	sizes, err := SizeGrid(500, 15000, 1000)
	if err != nil {
		t.Fatalf("SizeGrid failed: %v", err)
	}

	if len(sizes) != 15 {
		t.Fatalf("expected 15 grid points, got %d", len(sizes))
	}
	if sizes[0] != 500 {
		t.Errorf("first size should be 500, got %d", sizes[0])
	}
	if sizes[len(sizes)-1] != 14500 {
		t.Errorf("last size should be 14500 (15000 exclusive), got %d", sizes[len(sizes)-1])
	}
	for i := 1; i < len(sizes); i++ {
		if sizes[i]-sizes[i-1] != 1000 {
			t.Errorf("grid step broken at index %d: %d -> %d", i, sizes[i-1], sizes[i])
		}
	}
}

func TestSizeGrid_Invalid(t *testing.T) {
	cases := []struct {
		name              string
		start, stop, step int
	}{
		{"zero start", 0, 1000, 100},
		{"negative start", -10, 1000, 100},
		{"zero step", 100, 1000, 0},
		{"stop before start", 1000, 500, 100},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := SizeGrid(tc.start, tc.stop, tc.step); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestExperimentConfig_Validate(t *testing.T) {
	valid := ExperimentConfig{
		Alpha:       0.05,
		TargetPower: 0.8,
		Repetitions: 10000,
		SampleSizes: []int{500, 1500},
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	bad := valid
	bad.Alpha = 1
	if err := bad.Validate(); !errors.Is(err, core.ErrInvalidAlpha) {
		t.Errorf("expected ErrInvalidAlpha, got %v", err)
	}

	bad = valid
	bad.Repetitions = 0
	if err := bad.Validate(); !errors.Is(err, core.ErrInvalidRepetitions) {
		t.Errorf("expected ErrInvalidRepetitions, got %v", err)
	}

	bad = valid
	bad.SampleSizes = nil
	if err := bad.Validate(); !errors.Is(err, core.ErrEmptySizeGrid) {
		t.Errorf("expected ErrEmptySizeGrid, got %v", err)
	}

	bad = valid
	bad.SampleSizes = []int{500, -1}
	if err := bad.Validate(); !errors.Is(err, core.ErrInvalidSampleSize) {
		t.Errorf("expected ErrInvalidSampleSize, got %v", err)
	}
}

func TestGroupRates_Validate(t *testing.T) {
	if err := (GroupRates{Control: 0.05, Treatment: 0.06}).Validate(); err != nil {
		t.Errorf("valid rates rejected: %v", err)
	}
	if err := (GroupRates{Control: -0.1, Treatment: 0.06}).Validate(); !errors.Is(err, core.ErrInvalidRate) {
		t.Errorf("expected ErrInvalidRate, got %v", err)
	}
	if err := (GroupRates{Control: 0.05, Treatment: 1.2}).Validate(); !errors.Is(err, core.ErrInvalidRate) {
		t.Errorf("expected ErrInvalidRate, got %v", err)
	}
}

func TestGroupRates_AbsDiff(t *testing.T) {
	if got := (GroupRates{Control: 0.05, Treatment: 0.06}).AbsDiff(); math.Abs(got-0.01) > 1e-12 {
		t.Errorf("AbsDiff = %g, want 0.01", got)
	}
	if got := (GroupRates{Control: 0.06, Treatment: 0.05}).AbsDiff(); math.Abs(got-0.01) > 1e-12 {
		t.Errorf("AbsDiff should ignore direction, got %g", got)
	}
}

func TestCurve_Accounting(t *testing.T) {
	curve := Curve{
		{SampleSize: 500, Estimate: &Estimate{Power: 0.2, Repetitions: 100}},
		{SampleSize: 1500, Err: "boom"},
		{SampleSize: 2500, Estimate: &Estimate{Power: 0.85, Repetitions: 100}},
	}

	if got := curve.Succeeded(); got != 2 {
		t.Errorf("Succeeded = %d, want 2", got)
	}
	if got := curve.Failed(); got != 1 {
		t.Errorf("Failed = %d, want 1", got)
	}

	sizes, powers := curve.Points()
	if len(sizes) != 2 || sizes[0] != 500 || sizes[1] != 2500 {
		t.Errorf("Points sizes = %v, want [500 2500]", sizes)
	}
	if len(powers) != 2 || powers[1] != 0.85 {
		t.Errorf("Points powers = %v", powers)
	}

	n, ok := curve.MinDetectableSize(0.8)
	if !ok || n != 2500 {
		t.Errorf("MinDetectableSize = %d,%v, want 2500,true", n, ok)
	}
	if _, ok := curve.MinDetectableSize(0.99); ok {
		t.Error("MinDetectableSize should not find a size above the curve")
	}
}
