package simserver

import (
	"testing"

	"websim/internal/virtime"
)

func TestSyncServiceHoldsWorkerAcrossIO(t *testing.T) {
	s := virtime.NewScheduler()
	workerPool := virtime.NewResource(s, 1)
	ioPool := virtime.NewResource(s, 4)
	var workerInUseDuringIO int
	var blockedOut bool

	virtime.Spawn(s, func(p *virtime.Process) {
		syncService(p, workerPool, ioPool, 5, 5, 20, func(float64) {})
	})
	virtime.Spawn(s, func(p *virtime.Process) {
		p.Sleep(10) // lands squarely inside the first request's io_wait
		workerInUseDuringIO = workerPool.InUse()
		// A second request competing for the sole worker slot must queue,
		// since the sync discipline keeps the slot held across I/O.
		blockedOut = workerPool.Waiting() == 0 && workerPool.InUse() == workerPool.Capacity()
	})

	s.Run(1000)
	if workerInUseDuringIO != 1 {
		t.Fatalf("expected worker_pool.in_use == 1 during sync I/O hold, got %d", workerInUseDuringIO)
	}
	if !blockedOut {
		t.Fatal("expected the worker pool to be fully occupied (not merely queued) during the sync I/O wait")
	}
}

func TestAsyncServiceReleasesWorkerAcrossIO(t *testing.T) {
	s := virtime.NewScheduler()
	workerPool := virtime.NewResource(s, 1)
	ioPool := virtime.NewResource(s, 4)
	var workerInUseDuringIO int
	var secondAcquired bool

	virtime.Spawn(s, func(p *virtime.Process) {
		asyncService(p, workerPool, ioPool, 5, 5, 20, func(float64) {})
	})
	virtime.Spawn(s, func(p *virtime.Process) {
		p.Sleep(10) // lands inside the first request's io_wait
		workerInUseDuringIO = workerPool.InUse()
		if !workerPool.Acquire(p) {
			secondAcquired = true
			workerPool.Release()
		}
	})

	s.Run(1000)
	if workerInUseDuringIO != 0 {
		t.Fatalf("expected worker_pool.in_use == 0 during async I/O wait (worker released), got %d", workerInUseDuringIO)
	}
	if !secondAcquired {
		t.Fatal("expected a second process to acquire the worker slot immediately during the async I/O wait")
	}
}

func TestSyncServiceSkipsZeroSegments(t *testing.T) {
	s := virtime.NewScheduler()
	workerPool := virtime.NewResource(s, 1)
	ioPool := virtime.NewResource(s, 1)
	var busy float64

	virtime.Spawn(s, func(p *virtime.Process) {
		syncService(p, workerPool, ioPool, 0, 0, 0, func(ms float64) { busy = ms })
	})
	s.Run(1000)
	if s.Now() != 0 {
		t.Fatalf("expected no virtual time to elapse with all-zero segments, got %v", s.Now())
	}
	if busy != 0 {
		t.Fatalf("expected zero recorded busy time, got %v", busy)
	}
}

func TestAsyncServiceRecordsBusyTimeOnlyForWorkerHolds(t *testing.T) {
	s := virtime.NewScheduler()
	workerPool := virtime.NewResource(s, 1)
	ioPool := virtime.NewResource(s, 1)
	var totalBusy float64

	virtime.Spawn(s, func(p *virtime.Process) {
		asyncService(p, workerPool, ioPool, 3, 4, 50, func(ms float64) { totalBusy += ms })
	})
	s.Run(1000)
	if totalBusy != 7 {
		t.Fatalf("expected busy time to cover only the two CPU holds (3+4=7), got %v", totalBusy)
	}
}

func TestInterruptedSyncServiceReleasesWorkerSlot(t *testing.T) {
	s := virtime.NewScheduler()
	workerPool := virtime.NewResource(s, 1)
	ioPool := virtime.NewResource(s, 1)

	svc := virtime.Spawn(s, func(p *virtime.Process) {
		syncService(p, workerPool, ioPool, 100, 0, 0, func(float64) {})
	})
	s.Schedule(5, func() { svc.Interrupt("timeout") })
	var secondAcquiredAt float64 = -1
	virtime.Spawn(s, func(p *virtime.Process) {
		p.Sleep(1)
		workerPool.Acquire(p)
		secondAcquiredAt = s.Now()
	})

	s.Run(1000)
	if secondAcquiredAt != 5 {
		t.Fatalf("expected the worker slot to free up at t=5 when the interrupted service released it, got %v", secondAcquiredAt)
	}
}
