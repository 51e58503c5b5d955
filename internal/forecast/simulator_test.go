package forecast

import (
	"errors"
	"math"
	"testing"
	"time"
)

func month(y int, m time.Month) time.Time {
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
}

func approx(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("%s = %v, want %v", name, got, want)
	}
}

func TestSimulate_TwoPointHistory(t *testing.T) {
	history := []Point{
		{Date: month(2024, time.January), Quantity: 10},
		{Date: month(2024, time.February), Quantity: 20},
	}

	var sim Simulator
	out, err := sim.Simulate(history, 1, 0.80, time.Time{})
	if err != nil {
		t.Fatalf("Simulate: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("got %d periods, want 1", len(out))
	}

	p := out[0]
	if !p.Date.Equal(month(2024, time.March)) {
		t.Fatalf("date = %v", p.Date)
	}
	// baseAvg 15, trend 10, March never observed so the factor is 1.
	approx(t, "BaseValue", p.BaseValue, 25)
	approx(t, "SeasonalFactor", p.SeasonalFactor, 1)
	approx(t, "TrendComponent", p.TrendComponent, 10)
	// Population stdDev is 5; z for 0.80 is 1.28.
	approx(t, "UpperBound", p.UpperBound, 25+1.28*5)
	approx(t, "LowerBound", p.LowerBound, 25-1.28*5)
}

func TestSimulate_SeasonalFactorApplied(t *testing.T) {
	// March appears in history at 1.5x the baseline average of 20.
	history := []Point{
		{Date: month(2023, time.March), Quantity: 30},
		{Date: month(2024, time.January), Quantity: 10},
		{Date: month(2024, time.February), Quantity: 20},
	}

	var sim Simulator
	out, err := sim.Simulate(history, 1, 0.90, time.Time{})
	if err != nil {
		t.Fatalf("Simulate: %v", err)
	}

	p := out[0]
	if !p.Date.Equal(month(2024, time.March)) {
		t.Fatalf("date = %v", p.Date)
	}
	approx(t, "SeasonalFactor", p.SeasonalFactor, 1.5)
	// 20 x 1.5 + trend (-5) x 1
	approx(t, "BaseValue", p.BaseValue, 25)
	approx(t, "TrendComponent", p.TrendComponent, -5)
}

func TestSimulate_TrendCompoundsPerPeriod(t *testing.T) {
	history := []Point{
		{Date: month(2024, time.January), Quantity: 10},
		{Date: month(2024, time.February), Quantity: 20},
	}

	var sim Simulator
	out, err := sim.Simulate(history, 3, 0.95, time.Time{})
	if err != nil {
		t.Fatalf("Simulate: %v", err)
	}
	if len(out) != 3 {
		t.Fatalf("got %d periods, want 3", len(out))
	}

	// Months 3..5 never occur in history, so every factor is 1 and the
	// point estimates are baseAvg + trend x i.
	for i, p := range out {
		wantDate := month(2024, time.March).AddDate(0, i, 0)
		if !p.Date.Equal(wantDate) {
			t.Fatalf("period %d date = %v, want %v", i, p.Date, wantDate)
		}
		approx(t, "BaseValue", p.BaseValue, 15+10*float64(i+1))
	}
}

func TestSimulate_ExplicitBaseDate(t *testing.T) {
	history := []Point{
		{Date: month(2024, time.January), Quantity: 10},
		{Date: month(2024, time.February), Quantity: 20},
	}

	var sim Simulator
	out, err := sim.Simulate(history, 1, 0.80, month(2024, time.June))
	if err != nil {
		t.Fatalf("Simulate: %v", err)
	}
	if !out[0].Date.Equal(month(2024, time.July)) {
		t.Fatalf("date = %v, want 2024-07-01", out[0].Date)
	}
}

func TestSimulate_ZeroVarianceCollapsesBounds(t *testing.T) {
	history := []Point{
		{Date: month(2024, time.January), Quantity: 50},
		{Date: month(2024, time.February), Quantity: 50},
	}

	var sim Simulator
	out, err := sim.Simulate(history, 1, 0.95, time.Time{})
	if err != nil {
		t.Fatalf("Simulate: %v", err)
	}
	p := out[0]
	approx(t, "BaseValue", p.BaseValue, 50)
	approx(t, "UpperBound", p.UpperBound, 50)
	approx(t, "LowerBound", p.LowerBound, 50)
}

type constantNoise struct{ v float64 }

func (c constantNoise) Sample(float64) float64 { return c.v }

func TestSimulate_NoiseShiftsEstimateBeforeBounds(t *testing.T) {
	history := []Point{
		{Date: month(2024, time.January), Quantity: 10},
		{Date: month(2024, time.February), Quantity: 20},
	}

	sim := Simulator{Noise: constantNoise{v: 3}}
	out, err := sim.Simulate(history, 1, 0.80, time.Time{})
	if err != nil {
		t.Fatalf("Simulate: %v", err)
	}
	p := out[0]
	approx(t, "BaseValue", p.BaseValue, 28)
	approx(t, "UpperBound", p.UpperBound, 28+1.28*5)
	approx(t, "LowerBound", p.LowerBound, 28-1.28*5)
}

func TestSimulate_Validation(t *testing.T) {
	history := []Point{
		{Date: month(2024, time.January), Quantity: 10},
		{Date: month(2024, time.February), Quantity: 20},
	}
	var sim Simulator

	if _, err := sim.Simulate(history[:1], 1, 0.80, time.Time{}); !errors.Is(err, ErrInsufficientHistory) {
		t.Fatalf("one point: %v", err)
	}
	if _, err := sim.Simulate(nil, 1, 0.80, time.Time{}); !errors.Is(err, ErrInsufficientHistory) {
		t.Fatalf("empty history: %v", err)
	}
	for _, h := range []int{0, -1, 7} {
		if _, err := sim.Simulate(history, h, 0.80, time.Time{}); !errors.Is(err, ErrInvalidHorizon) {
			t.Fatalf("horizon %d: %v", h, err)
		}
	}
	for _, c := range []float64{0, 0.5, 0.85, 0.99} {
		if _, err := sim.Simulate(history, 1, c, time.Time{}); !errors.Is(err, ErrInvalidConfidenceLevel) {
			t.Fatalf("confidence %v: %v", c, err)
		}
	}
}

func TestValidConfidenceLevel(t *testing.T) {
	for _, c := range []float64{0.80, 0.90, 0.95} {
		if !ValidConfidenceLevel(c) {
			t.Fatalf("level %v should be valid", c)
		}
	}
	if ValidConfidenceLevel(0.85) {
		t.Fatalf("level 0.85 should be invalid")
	}
}
