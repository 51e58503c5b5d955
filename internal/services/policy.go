package services

import "github.com/avaldes/go-forecast-backend/internal/domain"

// Reduction policies: configuration stores horizons and confidence levels as
// multi-valued sets (for batch multi-horizon UIs), but a single generation
// run consumes one scalar of each. The reduction rule lives here as named
// functions so an alternative policy (e.g. one generation run per configured
// horizon) can be swapped in without touching the orchestrator.

// ReduceHorizon selects the horizon used for a single run: the longest
// configured horizon.
func ReduceHorizon(set domain.IntSet) int {
	return set.Max()
}

// ReduceConfidence selects the confidence level used for a single run: the
// highest configured level.
func ReduceConfidence(set domain.FloatSet) float64 {
	return set.Max()
}
