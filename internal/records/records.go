// Package records defines the simulator's output row shape and the
// append-only column store the engine fills in as requests complete.
package records

// Status is the terminal outcome of a simulated request.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusDropped   Status = "dropped"
	StatusTimeout   Status = "timeout"
)

// Mode selects the service discipline a simulated server uses.
type Mode string

const (
	ModeSync  Mode = "sync"
	ModeAsync Mode = "async"
)

// RequestRecord is one row of simulation output: the fate of a single
// request. ArrivedInSteady marks requests that arrived at or after the
// configured warmup horizon — metrics aggregation only ever looks at
// these, so transient startup effects don't skew throughput/latency.
type RequestRecord struct {
	ReqID           int
	ArrivalTime     float64
	FinishTime      float64
	LatencyMS       float64
	Status          Status
	ArrivedInSteady bool
}

// Counters tallies totals over the records appended to a ColumnStore —
// Arrivals counts every appended record (drops included; requests that
// arrived before warmup or were still in flight when the run ended are
// not counted), plus outcome counts — and the worker-busy time added
// through AddBusyTime, used for the saturation metric.
type Counters struct {
	Arrivals   int
	Completed  int
	Dropped    int
	TimedOut   int
	BusyTimeMS float64
}

// ColumnStore accumulates RequestRecords in append order: the engine
// appends a dropped record when the request arrives and a completed or
// timed-out record when the request finishes. It is not
// safe for concurrent use; the engine's single logical thread of
// control (see internal/virtime) is the only writer.
type ColumnStore struct {
	records  []RequestRecord
	counters Counters
}

// NewColumnStore returns an empty store.
func NewColumnStore() *ColumnStore {
	return &ColumnStore{}
}

// Append records one request's outcome and updates the running counters.
func (c *ColumnStore) Append(r RequestRecord) {
	c.records = append(c.records, r)
	c.counters.Arrivals++
	switch r.Status {
	case StatusCompleted:
		c.counters.Completed++
	case StatusDropped:
		c.counters.Dropped++
	case StatusTimeout:
		c.counters.TimedOut++
	}
}

// AddBusyTime accumulates worker-busy duration for the saturation
// metric. Called once per worker-pool hold, for however long the
// request actually occupied a slot (CPU pre + I/O wait + CPU post for
// sync mode; each CPU phase separately for async mode).
func (c *ColumnStore) AddBusyTime(ms float64) {
	c.counters.BusyTimeMS += ms
}

// Records returns every recorded request, in append order. The caller
// must not mutate the returned slice's backing array.
func (c *ColumnStore) Records() []RequestRecord { return c.records }

// Counters returns the accumulated run-level totals.
func (c *ColumnStore) Counters() Counters { return c.counters }

// Len returns the number of records appended so far.
func (c *ColumnStore) Len() int { return len(c.records) }
