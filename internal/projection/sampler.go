package projection

import (
	"math/rand/v2"
)

// Sampler supplies normally distributed draws to the simulator.
type Sampler interface {
	Normal(mean, stdev float64) float64
}

// SamplerFunc adapts a plain function to the Sampler interface.
type SamplerFunc func(mean, stdev float64) float64

// Normal implements Sampler.
func (f SamplerFunc) Normal(mean, stdev float64) float64 {
	return f(mean, stdev)
}

type rngSampler struct {
	rng *rand.Rand
}

// NewSampler returns a sampler backed by a PCG generator. Two samplers built
// from the same seed and stream produce the same sequence of draws.
func NewSampler(seed, stream uint64) Sampler {
	return &rngSampler{rng: rand.New(rand.NewPCG(seed, stream))}
}

// Normal returns a draw from N(mean, stdev). A zero stdev returns mean
// exactly without consuming randomness.
func (s *rngSampler) Normal(mean, stdev float64) float64 {
	if stdev == 0 {
		return mean
	}
	return mean + stdev*s.rng.NormFloat64()
}

// Fixed returns a sampler that always yields the mean. Useful for
// deterministic projections regardless of the configured spreads.
func Fixed() Sampler {
	return SamplerFunc(func(mean, _ float64) float64 { return mean })
}

// Sequence returns a sampler that replays standard-normal values z, scaled
// to the requested mean and stdev, cycling when exhausted.
func Sequence(z ...float64) Sampler {
	i := 0
	return SamplerFunc(func(mean, stdev float64) float64 {
		if len(z) == 0 {
			return mean
		}
		v := z[i%len(z)]
		i++
		return mean + stdev*v
	})
}
