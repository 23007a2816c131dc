package virtime

// Resource is a bounded, strictly-FIFO semaphore: capacity interchangeable
// slots (worker threads, I/O handles, ...), a wait queue of suspended
// processes, and the invariant 0 <= inUse <= capacity at all times. A
// waiter exists only when inUse == capacity; release always hands off
// to the head of the queue before any other acquire can claim the slot,
// which is what rules out barging.
type Resource struct {
	sched    *Scheduler
	capacity int
	inUse    int
	waitQ    []*Process
}

// NewResource creates a resource with the given positive capacity.
func NewResource(s *Scheduler, capacity int) *Resource {
	if capacity <= 0 {
		panic("virtime: resource capacity must be positive")
	}
	return &Resource{sched: s, capacity: capacity}
}

// Capacity returns the resource's fixed slot count.
func (r *Resource) Capacity() int { return r.capacity }

// InUse returns the number of slots currently held.
func (r *Resource) InUse() int { return r.inUse }

// Waiting returns the number of processes currently queued for a slot.
func (r *Resource) Waiting() int { return len(r.waitQ) }

// Acquire claims a slot, suspending the caller if none is free. A new
// caller always queues behind any existing waiters even if a slot is
// momentarily free: the fast path is only taken when the queue is empty,
// so a caller that has to queue is only ever granted a slot later via
// Release's hand-off, never by re-checking inUse itself.
func (r *Resource) Acquire(p *Process) (interrupted bool) {
	if p.checkInterrupt() {
		return true
	}
	if len(r.waitQ) == 0 && r.inUse < r.capacity {
		r.inUse++
		return false
	}

	r.waitQ = append(r.waitQ, p)
	p.state = StateSuspendedResource
	p.cancelFn = func() { r.removeWaiter(p) }
	p.suspend()
	return p.checkInterrupt()
}

func (r *Resource) removeWaiter(p *Process) {
	for i, w := range r.waitQ {
		if w == p {
			r.waitQ = append(r.waitQ[:i], r.waitQ[i+1:]...)
			return
		}
	}
}

// Release gives up the caller's slot. If a waiter is queued, the slot is
// handed directly to the head of the queue (net-neutral inUse) and that
// waiter is resumed synchronously, in the same dispatch as the release,
// before Release returns — so no intervening acquire can ever observe
// the slot as free.
//
// During Scheduler.Shutdown this hand-off is skipped: Release can run as
// a deferred side effect of an aborted holder unwinding, and the queue's
// head may not have been torn down yet. Scheduler.Shutdown aborts every
// process directly regardless of what it's waiting on, so the waiter
// still gets torn down — just not woken into running more of its body.
func (r *Resource) Release() {
	r.inUse--
	if r.sched.shuttingDown || len(r.waitQ) == 0 {
		return
	}
	w := r.waitQ[0]
	r.waitQ = r.waitQ[1:]
	r.inUse++
	r.sched.stepProcess(w)
}

// WithAcquire runs fn while holding a slot, releasing it on every exit
// path — normal return, or fn reporting an interruption partway through
// (fn is responsible for checking Process suspension results and
// returning true when it observed one). This is the scoped-acquisition
// primitive spec.md §4.2 requires: Go's defer gives it for free.
func (r *Resource) WithAcquire(p *Process, fn func() (interrupted bool)) (interrupted bool) {
	if r.Acquire(p) {
		return true
	}
	defer r.Release()
	return fn()
}
