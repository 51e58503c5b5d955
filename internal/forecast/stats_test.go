package forecast

import (
	"math"
	"testing"
)

func TestMean(t *testing.T) {
	if got := Mean(nil); got != 0 {
		t.Fatalf("Mean(nil) = %v", got)
	}
	if got := Mean([]float64{10, 20}); got != 15 {
		t.Fatalf("Mean = %v", got)
	}
}

func TestStdDevPop(t *testing.T) {
	if got := StdDevPop(nil, 0); got != 0 {
		t.Fatalf("StdDevPop(nil) = %v", got)
	}
	// Population, not sample: sqrt(((10-15)^2 + (20-15)^2) / 2) = 5.
	if got := StdDevPop([]float64{10, 20}, 15); got != 5 {
		t.Fatalf("StdDevPop = %v", got)
	}
}

func TestCoefVariation(t *testing.T) {
	if got := CoefVariation(nil); got != 0 {
		t.Fatalf("CoefVariation(nil) = %v", got)
	}
	if got := CoefVariation([]float64{-5, 5}); got != 0 {
		t.Fatalf("zero mean should yield 0, got %v", got)
	}
	got := CoefVariation([]float64{10, 20})
	if math.Abs(got-5.0/15.0) > 1e-12 {
		t.Fatalf("CoefVariation = %v", got)
	}
}

func TestClamp(t *testing.T) {
	cases := []struct{ v, lo, hi, want float64 }{
		{0.5, 0, 1, 0.5},
		{-1, 0, 1, 0},
		{2, 0, 1, 1},
		{0.60, 0.60, 0.95, 0.60},
	}
	for _, c := range cases {
		if got := Clamp(c.v, c.lo, c.hi); got != c.want {
			t.Fatalf("Clamp(%v, %v, %v) = %v, want %v", c.v, c.lo, c.hi, got, c.want)
		}
	}
}
