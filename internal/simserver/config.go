// Package simserver is the simulation engine: it wires samplers, the
// virtual-time scheduler, and the sync/async service disciplines into a
// single run that produces an ordered sequence of request records.
package simserver

import (
	"errors"
	"fmt"

	"websim/internal/records"
)

// Sentinel configuration errors. Invalid configuration is rejected
// before any process is spawned — see Validate.
var (
	ErrInvalidRate         = errors.New("simserver: rate_rps must be > 0")
	ErrInvalidCapacity     = errors.New("simserver: capacity must be > 0")
	ErrInvalidTime         = errors.New("simserver: time parameter must be >= 0")
	ErrUnknownDistribution = errors.New("simserver: unknown distribution")
)

// Config is the full parameter set for one simulation run, mirroring
// simulate_server's external interface.
type Config struct {
	Mode records.Mode

	CPUMeanMS float64
	IOMeanMS  float64
	RateRPS   float64

	ThreadCount int
	IOLimit     int
	QueueLimit  int

	TimeoutMS float64
	SimTimeMS float64
	WarmupMS  float64

	Seed uint64

	CPUDist         string
	IODist          string
	CPULognormSigma float64
	IOLognormSigma  float64

	ArrivalDist string
	BurstFactor float64
	BurstProb   float64
}

// DefaultConfig returns a Config with the same defaults as the external
// interface's keyword defaults (distributions, sigma, burst parameters).
// Callers still must set Mode and the workload/capacity fields.
func DefaultConfig() Config {
	return Config{
		CPUDist:         "exponential",
		IODist:          "exponential",
		CPULognormSigma: 1.0,
		IOLognormSigma:  1.0,
		ArrivalDist:     "poisson",
		BurstFactor:     5.0,
		BurstProb:       0.1,
	}
}

// WorkerCapacity returns the derived worker-pool capacity: 1 for async
// mode (a single event-loop dispatcher), ThreadCount for sync mode.
func (c Config) WorkerCapacity() int {
	if c.Mode == records.ModeAsync {
		return 1
	}
	return c.ThreadCount
}

// MaxInSystem returns the derived admission ceiling: worker capacity
// plus the configured queue depth.
func (c Config) MaxInSystem() int {
	return c.WorkerCapacity() + c.QueueLimit
}

// Validate fails fast on any configuration that cannot produce a valid
// run: non-positive rate or capacities, negative time parameters, or an
// unrecognized distribution name. No process is ever spawned for a
// config that fails Validate.
func (c Config) Validate() error {
	if c.Mode != records.ModeSync && c.Mode != records.ModeAsync {
		return fmt.Errorf("simserver: mode must be %q or %q, got %q", records.ModeSync, records.ModeAsync, c.Mode)
	}
	if c.RateRPS <= 0 {
		return fmt.Errorf("%w: got %v", ErrInvalidRate, c.RateRPS)
	}
	if c.Mode == records.ModeSync && c.ThreadCount <= 0 {
		return fmt.Errorf("%w: thread_count=%d", ErrInvalidCapacity, c.ThreadCount)
	}
	if c.IOLimit <= 0 {
		return fmt.Errorf("%w: io_limit=%d", ErrInvalidCapacity, c.IOLimit)
	}
	if c.QueueLimit < 0 {
		return fmt.Errorf("%w: queue_limit=%d", ErrInvalidCapacity, c.QueueLimit)
	}
	for name, v := range map[string]float64{
		"cpu_mean_ms": c.CPUMeanMS,
		"io_mean_ms":  c.IOMeanMS,
		"timeout_ms":  c.TimeoutMS,
		"sim_time_ms": c.SimTimeMS,
		"warmup_ms":   c.WarmupMS,
	} {
		if v < 0 {
			return fmt.Errorf("%w: %s=%v", ErrInvalidTime, name, v)
		}
	}
	switch c.CPUDist {
	case "exponential", "lognormal":
	default:
		return fmt.Errorf("%w: cpu_dist=%q", ErrUnknownDistribution, c.CPUDist)
	}
	switch c.IODist {
	case "exponential", "lognormal":
	default:
		return fmt.Errorf("%w: io_dist=%q", ErrUnknownDistribution, c.IODist)
	}
	switch c.ArrivalDist {
	case "poisson", "bursty":
	default:
		return fmt.Errorf("%w: arrival_dist=%q", ErrUnknownDistribution, c.ArrivalDist)
	}
	return nil
}
