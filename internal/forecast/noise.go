package forecast

import (
	"math/rand"
	"sync"
)

// NoiseSource perturbs a point estimate given the history's standard
// deviation. Implementations must be safe for concurrent use.
type NoiseSource interface {
	Sample(stdDev float64) float64
}

// UniformNoise samples uniformly from [0, 0.5 x stdDev).
//
// The distribution is deliberately one-sided: it reproduces the upstream
// simulator's upward shift of the point estimate. Callers wanting symmetric
// or deterministic behavior supply a different NoiseSource.
type UniformNoise struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewUniformNoise returns a UniformNoise seeded for reproducible runs.
func NewUniformNoise(seed int64) *UniformNoise {
	return &UniformNoise{rng: rand.New(rand.NewSource(seed))}
}

// Sample implements NoiseSource.
func (u *UniformNoise) Sample(stdDev float64) float64 {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.rng.Float64() * stdDev * 0.5
}

// NoNoise is a NoiseSource that never perturbs. Useful in tests and for
// fully deterministic generation.
type NoNoise struct{}

// Sample implements NoiseSource.
func (NoNoise) Sample(float64) float64 { return 0 }
