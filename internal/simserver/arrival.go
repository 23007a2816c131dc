package simserver

import (
	"websim/internal/records"
	"websim/internal/virtime"
)

// runArrivals drives the arrival process for the whole run: on each
// iteration it sleeps for one sampled inter-arrival gap, then either
// drops the request (system at capacity) or admits it and spawns a
// request process. req_id increments on every arrival, including drops,
// so it always equals the total arrival count so far (§9 canonical
// choice). in_system is incremented on admission and decremented
// exactly once when the spawned request process finishes, regardless of
// how it finished.
func runArrivals(p *virtime.Process, d requestDeps, arrivalSampler func() float64, maxInSystem int) {
	reqID := 0
	inSystem := 0

	for {
		gap := arrivalSampler()
		if p.Sleep(gap) {
			return
		}

		reqID++
		now := p.Now()

		if inSystem >= maxInSystem {
			if now >= d.warmupMS {
				d.store.Append(records.RequestRecord{
					ReqID:           reqID,
					ArrivalTime:     now,
					FinishTime:      now,
					LatencyMS:       0,
					Status:          records.StatusDropped,
					ArrivedInSteady: true,
				})
			}
			continue
		}

		inSystem++
		spawnRequest(d, reqID, func() { inSystem-- })
	}
}
