package simserver

import (
	"math/rand/v2"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"websim/internal/records"
	"websim/internal/samplers"
	"websim/internal/virtime"
)

// requestDeps bundles the per-run state a request process needs, so
// spawnRequest doesn't have to thread a dozen parameters through.
type requestDeps struct {
	sched      *virtime.Scheduler
	workerPool *virtime.Resource
	ioPool     *virtime.Resource
	cpuSampler samplers.Sampler
	ioSampler  samplers.Sampler
	rng        *rand.Rand
	svc        serviceFn
	store      *records.ColumnStore
	warmupMS   float64
	timeoutMS  float64
}

// spawnRequest spawns the request process for one admitted arrival. Its
// body samples CPU/split/I/O once up front (in that fixed order,
// regardless of discipline), runs an inner service sub-process, and
// races that sub-process against a timeout timer. Exactly one record is
// ever appended for this request, guarded by the recorded flag. onDone
// runs exactly once, however the process terminates, so the caller can
// decrement in_system without a second bookkeeping process.
func spawnRequest(d requestDeps, reqID int, onDone func()) *virtime.Process {
	traceID := uuid.NewString()
	return virtime.Spawn(d.sched, func(p *virtime.Process) {
		defer onDone()
		arrivalTime := p.Now()

		totalCPU := d.cpuSampler()
		split := d.rng.Float64()
		cpuPre := totalCPU * split
		cpuPost := totalCPU * (1 - split)
		ioWait := d.ioSampler()

		// recorded guarantees at-most-one record per request, shared
		// between whichever side of the race (service completion, or
		// the timeout firing first) observes the outcome. Requests that
		// arrived before the warmup horizon are not recorded at all.
		recorded := false
		record := func(status records.Status, finishTime, latency float64) {
			if recorded || arrivalTime < d.warmupMS {
				recorded = true
				return
			}
			recorded = true
			log.Debug().Str("trace_id", traceID).Int("req_id", reqID).Str("status", string(status)).Msg("request recorded")
			d.store.Append(records.RequestRecord{
				ReqID:           reqID,
				ArrivalTime:     arrivalTime,
				FinishTime:      finishTime,
				LatencyMS:       latency,
				Status:          status,
				ArrivedInSteady: true,
			})
		}

		svc := virtime.Spawn(d.sched, func(sp *virtime.Process) {
			interrupted := d.svc(sp, d.workerPool, d.ioPool, cpuPre, cpuPost, ioWait, d.store.AddBusyTime)
			now := sp.Now()
			if interrupted {
				record(records.StatusTimeout, now, d.timeoutMS)
				return
			}
			record(records.StatusCompleted, now, now-arrivalTime)
		})

		if d.timeoutMS > 0 {
			outcome, _ := p.Race(d.timeoutMS, svc)
			if outcome == virtime.RaceTimer {
				record(records.StatusTimeout, p.Now(), d.timeoutMS)
				svc.Interrupt("timeout")
			}
		} else {
			p.Await(svc)
		}
	})
}
