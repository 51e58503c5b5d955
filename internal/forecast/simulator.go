// Package forecast implements the seasonal-trend forecast simulator and its
// synthetic-history fallback. It is a pure library in the style of the rest
// of the codebase's core packages:
//
//   - No logging and no persistence (callers own both)
//   - Deterministic except for the injectable noise source
//   - Explicit, typed validation errors
//
// The model is intentionally simple: an arithmetic baseline, a linear
// first-to-last trend, multiplicative monthly seasonal factors, and normal
// quantile confidence bounds around a noise-adjusted point estimate.
package forecast

import (
	"errors"
	"time"
)

// Validation errors returned by Simulate.
var (
	// ErrInsufficientHistory is returned for histories with fewer than two
	// observations.
	ErrInsufficientHistory = errors.New("not enough historical data to forecast")

	// ErrInvalidHorizon is returned when the horizon is outside [1, 6].
	ErrInvalidHorizon = errors.New("horizon must be between 1 and 6 months")

	// ErrInvalidConfidenceLevel is returned when the confidence level is not
	// one of 0.80, 0.90, 0.95.
	ErrInvalidConfidenceLevel = errors.New("confidence level must be one of: 0.80, 0.90, 0.95")
)

// Horizon bounds in months.
const (
	MinHorizon = 1
	MaxHorizon = 6
)

// zTable maps supported confidence levels to standard normal quantiles.
var zTable = map[float64]float64{
	0.80: 1.28,
	0.90: 1.64,
	0.95: 1.96,
}

// ValidConfidenceLevel reports whether level has a z-value entry.
func ValidConfidenceLevel(level float64) bool {
	_, ok := zTable[level]
	return ok
}

// Point is one historical observation.
type Point struct {
	Date     time.Time
	Quantity float64
}

// Period is one forecasted future month.
type Period struct {
	Date           time.Time
	BaseValue      float64
	UpperBound     float64
	LowerBound     float64
	SeasonalFactor float64
	TrendComponent float64
}

// Simulator produces horizon-length forecast sequences. The zero value uses
// no noise; production callers install a seeded UniformNoise.
type Simulator struct {
	// Noise perturbs each point estimate before bounds are computed.
	// Nil means no perturbation.
	Noise NoiseSource
}

// Simulate produces one forecasted Period per future month.
//
// Inputs:
//   - history: observations in ascending date order, length >= 2
//   - horizon: months ahead, in [1, 6]
//   - confidence: one of 0.80, 0.90, 0.95
//   - baseDate: period arithmetic origin; zero means the latest history date
//
// Per period i (1-based): the baseline average is scaled by the seasonal
// factor of the target month (1 when that month never occurs in history),
// the linear trend compounds as trend x i, and the noise sample shifts the
// point estimate before the z x stdDev confidence bounds are applied.
func (s *Simulator) Simulate(history []Point, horizon int, confidence float64, baseDate time.Time) ([]Period, error) {
	if len(history) < 2 {
		return nil, ErrInsufficientHistory
	}
	if horizon < MinHorizon || horizon > MaxHorizon {
		return nil, ErrInvalidHorizon
	}
	z, ok := zTable[confidence]
	if !ok {
		return nil, ErrInvalidConfidenceLevel
	}

	quantities := make([]float64, len(history))
	for i, p := range history {
		quantities[i] = p.Quantity
	}

	baseAvg := Mean(quantities)
	stdDev := StdDevPop(quantities, baseAvg)
	trend := (quantities[len(quantities)-1] - quantities[0]) / float64(len(quantities)-1)
	seasonal := seasonalFactors(history, baseAvg)

	if baseDate.IsZero() {
		baseDate = history[len(history)-1].Date
	}

	out := make([]Period, 0, horizon)
	for i := 1; i <= horizon; i++ {
		date := baseDate.AddDate(0, i, 0)

		factor := 1.0
		if f, ok := seasonal[date.Month()]; ok {
			factor = f
		}

		base := baseAvg*factor + trend*float64(i)
		adjusted := base
		if s.Noise != nil {
			adjusted += s.Noise.Sample(stdDev)
		}

		out = append(out, Period{
			Date:           date,
			BaseValue:      adjusted,
			UpperBound:     adjusted + z*stdDev,
			LowerBound:     adjusted - z*stdDev,
			SeasonalFactor: factor,
			TrendComponent: trend,
		})
	}
	return out, nil
}

// seasonalFactors averages quantities per calendar month and divides by the
// overall baseline, yielding a relative multiplier per observed month.
func seasonalFactors(history []Point, baseAvg float64) map[time.Month]float64 {
	if baseAvg == 0 {
		return map[time.Month]float64{}
	}
	sums := make(map[time.Month]float64, 12)
	counts := make(map[time.Month]int, 12)
	for _, p := range history {
		m := p.Date.Month()
		sums[m] += p.Quantity
		counts[m]++
	}
	factors := make(map[time.Month]float64, len(sums))
	for m, sum := range sums {
		factors[m] = (sum / float64(counts[m])) / baseAvg
	}
	return factors
}
