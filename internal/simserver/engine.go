package simserver

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"websim/internal/records"
	"websim/internal/samplers"
	"websim/internal/virtime"
)

// SimulateServer runs one complete simulation and returns its per-request
// record sequence in emission order (a drop is emitted at its arrival, a
// completion or timeout at its finish). It is the engine's original external
// entry point; SimulateServerFull additionally returns the run's
// Counters (including worker-busy time, which isn't recoverable from
// records alone) for callers that need saturation reporting.
// A non-nil error means cfg failed Validate — no process is ever
// spawned for a rejected configuration.
func SimulateServer(cfg Config) ([]records.RequestRecord, error) {
	recs, _, err := SimulateServerFull(cfg)
	return recs, err
}

// SimulateServerFull is SimulateServer plus the run's accumulated
// Counters.
func SimulateServerFull(cfg Config) ([]records.RequestRecord, records.Counters, error) {
	if err := cfg.Validate(); err != nil {
		return nil, records.Counters{}, fmt.Errorf("simserver: rejected config: %w", err)
	}

	logger := log.With().
		Str("component", "simserver").
		Str("mode", string(cfg.Mode)).
		Float64("rate_rps", cfg.RateRPS).
		Int("thread_count", cfg.ThreadCount).
		Logger()
	logger.Debug().Msg("starting run")

	sched := virtime.NewScheduler()
	rng := samplers.NewRand(cfg.Seed)

	cpuSampler, err := samplers.NewServiceTimeSampler(cfg.CPUDist, rng, cfg.CPUMeanMS, cfg.CPULognormSigma)
	if err != nil {
		return nil, records.Counters{}, fmt.Errorf("simserver: cpu sampler: %w", err)
	}
	ioSampler, err := samplers.NewServiceTimeSampler(cfg.IODist, rng, cfg.IOMeanMS, cfg.IOLognormSigma)
	if err != nil {
		return nil, records.Counters{}, fmt.Errorf("simserver: io sampler: %w", err)
	}
	arrivalSampler, err := samplers.NewArrivalSampler(cfg.ArrivalDist, rng, cfg.RateRPS, cfg.BurstFactor, cfg.BurstProb)
	if err != nil {
		return nil, records.Counters{}, fmt.Errorf("simserver: arrival sampler: %w", err)
	}

	workerPool := virtime.NewResource(sched, cfg.WorkerCapacity())
	ioPool := virtime.NewResource(sched, cfg.IOLimit)
	store := records.NewColumnStore()

	svc := serviceFn(syncService)
	if cfg.Mode == records.ModeAsync {
		svc = asyncService
	}

	deps := requestDeps{
		sched:      sched,
		workerPool: workerPool,
		ioPool:     ioPool,
		cpuSampler: cpuSampler,
		ioSampler:  ioSampler,
		rng:        rng,
		svc:        svc,
		store:      store,
		warmupMS:   cfg.WarmupMS,
		timeoutMS:  cfg.TimeoutMS,
	}

	sched.OnStep(func() { checkInvariants(workerPool, ioPool) })

	virtime.Spawn(sched, func(p *virtime.Process) {
		runArrivals(p, deps, arrivalSampler, cfg.MaxInSystem())
	})
	sched.Run(cfg.SimTimeMS)
	sched.Shutdown()

	logger.Debug().
		Int("records", store.Len()).
		Int("arrivals", store.Counters().Arrivals).
		Msg("run finished")

	return store.Records(), store.Counters(), nil
}

// checkInvariants panics on an internal bookkeeping violation — never a
// workload outcome, always an implementation bug (spec §7's "internal
// invariants (fatal)" category).
func checkInvariants(workerPool, ioPool *virtime.Resource) {
	if workerPool.InUse() < 0 || workerPool.InUse() > workerPool.Capacity() {
		panic(fmt.Sprintf("simserver: worker_pool in_use=%d out of [0,%d]", workerPool.InUse(), workerPool.Capacity()))
	}
	if ioPool.InUse() < 0 || ioPool.InUse() > ioPool.Capacity() {
		panic(fmt.Sprintf("simserver: io_pool in_use=%d out of [0,%d]", ioPool.InUse(), ioPool.Capacity()))
	}
}
