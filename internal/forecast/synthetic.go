package forecast

import (
	"hash/fnv"
	"math"
	"math/rand"
	"time"
)

// SyntheticMonths is the default length of a generated fallback series.
const SyntheticMonths = 18

// Synthetic generates a plausible monthly sales history for a SKU, used as
// a fallback data source when fewer than two real observations exist. The
// series is a deterministic function of the SKU: the same SKU always yields
// the same history, so repeated generation runs stay reproducible.
//
// Shape: a hash-derived base level with mild linear drift, an annual
// sinusoidal seasonal swing, and bounded hash-seeded noise. Quantities
// never drop below 1. The series covers `months` calendar months ending at
// the month before `end`, each point on the first of its month.
func Synthetic(sku string, months int, end time.Time) []Point {
	if months <= 0 {
		months = SyntheticMonths
	}

	h := fnv.New64a()
	h.Write([]byte(sku))
	seed := h.Sum64()

	rng := rand.New(rand.NewSource(int64(seed)))

	base := 60 + float64(seed%140)            // level in [60, 200)
	drift := float64(int(seed>>8%9)) - 4      // monthly drift in [-4, 4]
	phase := float64(seed>>16%12) * math.Pi / 6 // seasonal phase offset

	start := time.Date(end.Year(), end.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -months, 0)

	points := make([]Point, 0, months)
	for i := 0; i < months; i++ {
		date := start.AddDate(0, i, 0)
		seasonal := 1 + 0.25*math.Sin(2*math.Pi*float64(date.Month()-1)/12+phase)
		noise := (rng.Float64() - 0.5) * 0.2 * base
		q := base*seasonal + drift*float64(i) + noise
		if q < 1 {
			q = 1
		}
		points = append(points, Point{Date: date, Quantity: math.Round(q)})
	}
	return points
}
