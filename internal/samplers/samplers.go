// Package samplers draws the random quantities the simulator needs: CPU
// and I/O service times, and inter-arrival gaps. Every distribution here
// mirrors the reference workload generator's formulas exactly so that a
// given seed reproduces the same sequence of draws.
package samplers

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
)

// ErrUnknownDistribution is returned by New* when dist names a
// distribution this package does not implement.
var ErrUnknownDistribution = errors.New("samplers: unknown distribution")

// Sampler draws one value (a duration in milliseconds, or an
// inter-arrival gap in milliseconds, depending on context) each call.
type Sampler func() float64

// NewRand builds the RNG source shared by every sampler in a single
// simulation run. Using one source for both service-time and
// arrival-time draws keeps a run fully reproducible from a single seed.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed>>32|seed<<32))
}

// TimeExponential returns a sampler for exponentially distributed
// service times with the given mean, in milliseconds.
func TimeExponential(rng *rand.Rand, meanMS float64) Sampler {
	return func() float64 {
		return rng.ExpFloat64() * meanMS
	}
}

// TimeLognormal returns a sampler for lognormally distributed service
// times with the given mean and shape parameter sigma, in milliseconds.
// mu is derived from meanMS so the distribution's mean (not its median)
// lands on meanMS, matching the reference generator.
func TimeLognormal(rng *rand.Rand, meanMS, sigma float64) Sampler {
	mu := math.Log(meanMS) - 0.5*sigma*sigma
	return func() float64 {
		return math.Exp(mu + sigma*rng.NormFloat64())
	}
}

// ArrivalPoisson returns a sampler for exponential inter-arrival gaps
// (in milliseconds) implied by a Poisson arrival process at rateRPS
// requests per second.
func ArrivalPoisson(rng *rand.Rand, rateRPS float64) Sampler {
	return func() float64 {
		ratePerMS := rateRPS / 1000.0
		return rng.ExpFloat64() / ratePerMS
	}
}

// ArrivalBursty returns an inter-arrival sampler that behaves like
// ArrivalPoisson except that, with probability burstProb, the effective
// rate is multiplied by burstFactor for that single draw — producing
// occasional tight clusters of arrivals on top of the steady background
// rate.
func ArrivalBursty(rng *rand.Rand, rateRPS, burstFactor, burstProb float64) Sampler {
	return func() float64 {
		ratePerMS := rateRPS / 1000.0
		if rng.Float64() < burstProb {
			ratePerMS *= burstFactor
		}
		return rng.ExpFloat64() / ratePerMS
	}
}

// NewServiceTimeSampler selects a service-time distribution by name.
// Supported names are "exponential" and "lognormal".
func NewServiceTimeSampler(dist string, rng *rand.Rand, meanMS, sigma float64) (Sampler, error) {
	switch dist {
	case "exponential":
		return TimeExponential(rng, meanMS), nil
	case "lognormal":
		return TimeLognormal(rng, meanMS, sigma), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDistribution, dist)
	}
}

// NewArrivalSampler selects an arrival-process distribution by name.
// Supported names are "poisson" and "bursty".
func NewArrivalSampler(dist string, rng *rand.Rand, rateRPS, burstFactor, burstProb float64) (Sampler, error) {
	switch dist {
	case "poisson":
		return ArrivalPoisson(rng, rateRPS), nil
	case "bursty":
		return ArrivalBursty(rng, rateRPS, burstFactor, burstProb), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDistribution, dist)
	}
}
