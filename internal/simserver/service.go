package simserver

import "websim/internal/virtime"

// serviceFn runs one request's CPU/IO segments under a particular
// discipline (sync or async), returning whether the process observed an
// interruption partway through. cpuPre and cpuPost are already split
// from the sampled total CPU time; zero-valued segments are skipped
// entirely, including the resource acquisition around them. onWorkerBusy
// is invoked once per worker_pool hold with the virtual-ms duration of
// that hold, feeding the saturation metric.
type serviceFn func(p *virtime.Process, workerPool, ioPool *virtime.Resource, cpuPre, cpuPost, ioWait float64, onWorkerBusy func(ms float64)) (interrupted bool)

// syncService holds a single worker slot for the request's entire
// CPU-pre + I/O + CPU-post span: the worker thread is blocked across I/O,
// exactly mirroring a classic blocking thread-pool server.
func syncService(p *virtime.Process, workerPool, ioPool *virtime.Resource, cpuPre, cpuPost, ioWait float64, onWorkerBusy func(ms float64)) (interrupted bool) {
	return workerPool.WithAcquire(p, func() (interrupted bool) {
		start := p.Now()
		defer func() { onWorkerBusy(p.Now() - start) }()

		if cpuPre > 0 {
			if p.Sleep(cpuPre) {
				return true
			}
		}
		if ioWait > 0 {
			if ioPool.WithAcquire(p, func() (interrupted bool) {
				return p.Sleep(ioWait)
			}) {
				return true
			}
		}
		if cpuPost > 0 {
			if p.Sleep(cpuPost) {
				return true
			}
		}
		return false
	})
}

// asyncService releases the worker slot across the I/O wait, acquiring
// it separately for each CPU segment: the worker is free to serve other
// requests while this one is blocked on I/O, mirroring a non-blocking
// event-loop server. This costs a second acquisition (and possibly a
// second wait) for cpuPost, the central trade-off the discipline makes.
// Only the two worker holds count toward onWorkerBusy; the I/O wait does
// not, since the worker is free during it.
func asyncService(p *virtime.Process, workerPool, ioPool *virtime.Resource, cpuPre, cpuPost, ioWait float64, onWorkerBusy func(ms float64)) (interrupted bool) {
	if cpuPre > 0 {
		if workerPool.WithAcquire(p, func() (interrupted bool) {
			start := p.Now()
			defer func() { onWorkerBusy(p.Now() - start) }()
			return p.Sleep(cpuPre)
		}) {
			return true
		}
	}
	if ioWait > 0 {
		if ioPool.WithAcquire(p, func() (interrupted bool) {
			return p.Sleep(ioWait)
		}) {
			return true
		}
	}
	if cpuPost > 0 {
		if workerPool.WithAcquire(p, func() (interrupted bool) {
			start := p.Now()
			defer func() { onWorkerBusy(p.Now() - start) }()
			return p.Sleep(cpuPost)
		}) {
			return true
		}
	}
	return false
}
