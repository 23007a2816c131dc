// Package sweep runs a simulation across the cartesian product of a
// parameter grid, collecting one report.RunResult per (combination,
// replication) pair.
package sweep

import (
	"websim/internal/records"
)

// LabeledFloat pairs a numeric axis value with an optional display
// label (e.g. {"high-io", 200} for io_mean_ms). When Label is empty the
// value itself is used to render metadata.
type LabeledFloat struct {
	Label string
	Value float64
}

// LabeledInt is LabeledFloat's integer-axis counterpart (io_limit,
// queue_limit).
type LabeledInt struct {
	Label string
	Value int
}

// Grid is one sweep's full parameter space. cpu_mean_ms is not an
// explicit axis — it is derived per combination as
// io_mean_ms * cpu_percent / 100, matching the reference experiment
// driver's CPU-as-a-fraction-of-IO parametrization.
type Grid struct {
	Modes       []records.Mode
	IOMeans     []LabeledFloat
	CPUPercents []LabeledFloat
	Rates       []LabeledFloat
	IOLimits    []LabeledInt
	QueueLimits []LabeledInt
	Timeouts    []LabeledFloat

	ThreadCount int
	Iterations  int
	SimTimeMS   float64
	WarmupMS    float64
	Seed        uint64
}

// combination is one point in the cartesian product before replication.
type combination struct {
	mode        records.Mode
	ioMean      LabeledFloat
	cpuPercent  LabeledFloat
	rate        LabeledFloat
	ioLimit     LabeledInt
	queueLimit  LabeledInt
	timeout     LabeledFloat
}

// combinations enumerates the grid's cartesian product in the reference
// driver's axis order: mode, io_mean, cpu_percent, rate, io_limit,
// queue_limit, timeout.
func (g Grid) combinations() []combination {
	var out []combination
	for _, mode := range g.Modes {
		for _, ioMean := range g.IOMeans {
			for _, cpuPercent := range g.CPUPercents {
				for _, rate := range g.Rates {
					for _, ioLimit := range g.IOLimits {
						for _, queueLimit := range g.QueueLimits {
							for _, timeout := range g.Timeouts {
								out = append(out, combination{
									mode:       mode,
									ioMean:     ioMean,
									cpuPercent: cpuPercent,
									rate:       rate,
									ioLimit:    ioLimit,
									queueLimit: queueLimit,
									timeout:    timeout,
								})
							}
						}
					}
				}
			}
		}
	}
	return out
}

// TotalRuns is the number of (combination, replication) pairs this grid
// will produce.
func (g Grid) TotalRuns() int {
	return len(g.combinations()) * g.Iterations
}
