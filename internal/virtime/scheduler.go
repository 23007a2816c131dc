// Package virtime implements the simulator's virtual-time core: an
// event-driven scheduler, a cooperative process abstraction built on top
// of it, and a bounded FIFO resource. Nothing in this package touches
// wall-clock time, the network, or the filesystem — "now" only ever
// advances when the scheduler dispatches the next event.
package virtime

import "container/heap"

// Event is a single scheduled occurrence. Cancel is idempotent; a
// cancelled event is skipped by the scheduler instead of being removed
// from the heap immediately (lazy deletion keeps Schedule O(log n)).
type Event struct {
	time      float64
	seq       uint64
	fn        func()
	cancelled bool
}

// Cancel deregisters the event. Safe to call more than once, and safe
// to call after the event has already fired.
func (e *Event) Cancel() {
	if e != nil {
		e.cancelled = true
	}
}

type eventHeap []*Event

func (h eventHeap) Len() int { return len(h) }
func (h eventHeap) Less(i, j int) bool {
	if h[i].time != h[j].time {
		return h[i].time < h[j].time
	}
	return h[i].seq < h[j].seq
}
func (h eventHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *eventHeap) Push(x any)   { *h = append(*h, x.(*Event)) }
func (h *eventHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return e
}

// Scheduler is the min-priority-queue driven virtual clock. Ties at the
// same scheduled time resolve by insertion sequence (FIFO), never by
// arbitrary heap ordering.
type Scheduler struct {
	now       float64
	seq       uint64
	heap      eventHeap
	afterStep func()

	processes    []*Process
	shuttingDown bool
}

// NewScheduler returns an empty scheduler with the clock at zero.
func NewScheduler() *Scheduler {
	return &Scheduler{}
}

// Now returns the current virtual time. It only changes as a side effect
// of Run dispatching events.
func (s *Scheduler) Now() float64 { return s.now }

// OnStep installs a hook invoked after every dispatched event, before the
// next one is popped. Intended for tests that assert invariants at every
// event boundary (spec.md §8); nil disables the hook.
func (s *Scheduler) OnStep(fn func()) { s.afterStep = fn }

// Schedule inserts an event at now+delay with the next sequence number.
// delay must be non-negative — scheduling into the past is an
// implementation bug, not a recoverable condition.
func (s *Scheduler) Schedule(delay float64, fn func()) *Event {
	if delay < 0 {
		panic("virtime: scheduled delay must be >= 0")
	}
	e := &Event{time: s.now + delay, seq: s.seq, fn: fn}
	s.seq++
	heap.Push(&s.heap, e)
	return e
}

// scheduleNow schedules fn at the current virtual time. Used for a
// process's first step, which must surface as a heap event since Spawn
// can run before the scheduler's dispatch loop has even started. Once a
// process is running, its own resumption of other processes (resource
// hand-off, listener notification, interrupts) happens synchronously
// instead — see Resource.Release and Process.notifyListeners.
func (s *Scheduler) scheduleNow(fn func()) *Event {
	return s.Schedule(0, fn)
}

// Run dispatches events in (time, seq) order until the heap is empty or
// the next event's time is >= until. No event whose scheduled time
// exceeds until ever fires; the clock never advances past the last
// dispatched event's time (it does not snap to until on exit).
func (s *Scheduler) Run(until float64) {
	for s.heap.Len() > 0 {
		next := s.heap[0]
		if next.time >= until {
			return
		}
		heap.Pop(&s.heap)
		if next.cancelled {
			continue
		}
		s.now = next.time
		next.fn()
		if s.afterStep != nil {
			s.afterStep()
		}
	}
}

// Shutdown aborts every process spawned on s that has not yet completed
// (an unfinished arrival loop, or requests still in flight when Run
// returned) and waits for each one's goroutine to exit. Call this once
// after the last Run call a scheduler will ever make; a scheduler with
// pending work left to do should never be shut down.
//
// shuttingDown is set first so Resource.Release, triggered as a
// deferred side effect of one process's abort unwinding through a held
// acquire, never hands the slot to a waiter that has not been aborted
// yet: that waiter would resume and keep running its body against a
// clock that has stopped advancing instead of unwinding cleanly. Every
// process in the wait queue gets torn down directly by this same loop
// regardless, so skipping the hand-off loses nothing.
func (s *Scheduler) Shutdown() {
	s.shuttingDown = true
	for _, p := range s.processes {
		p.abort()
	}
}
