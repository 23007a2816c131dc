// Package report turns a simulation run's raw records into summary
// metrics, pools metrics across parameter-sweep runs, and exports
// either to CSV.
package report

import (
	"sort"

	"websim/internal/records"
)

// Metrics summarizes one run: outcome totals, success rate, completed
// throughput, worker saturation, and pooled p95/p99 latency across every
// steady-state record (completed, timed out, or dropped alike — mirrors
// the reference aggregator, which pools latency_ms without filtering by
// status).
type Metrics struct {
	TotalArrivals  int `json:"total_arrivals"`
	TotalCompleted int `json:"total_completed"`
	TotalDropped   int `json:"total_dropped"`
	TotalTimedOut  int `json:"total_timed_out"`

	SuccessRate   float64 `json:"success_rate"`
	ThroughputRPS float64 `json:"throughput_rps"`
	Saturation    float64 `json:"saturation"`

	P95LatencyMS float64 `json:"p95_latency_ms"`
	P99LatencyMS float64 `json:"p99_latency_ms"`
}

// CountRecords rebuilds run-level Counters from a finished run's
// records. Useful for callers that only have the records slice (e.g. a
// CLI reading simserver.SimulateServer's return value) without the
// internal records.ColumnStore that produced them.
func CountRecords(recs []records.RequestRecord) records.Counters {
	var c records.Counters
	for _, r := range recs {
		c.Arrivals++
		switch r.Status {
		case records.StatusCompleted:
			c.Completed++
		case records.StatusDropped:
			c.Dropped++
		case records.StatusTimeout:
			c.TimedOut++
		}
	}
	return c
}

// ComputeMetrics derives Metrics from one run's records and counters.
// numThreads is the worker capacity used to normalize busy time into a
// saturation ratio — for async mode this is always 1, matching
// simserver.Config.WorkerCapacity.
func ComputeMetrics(recs []records.RequestRecord, counters records.Counters, numThreads int) Metrics {
	m := Metrics{
		TotalArrivals:  counters.Arrivals,
		TotalCompleted: counters.Completed,
		TotalDropped:   counters.Dropped,
		TotalTimedOut:  counters.TimedOut,
	}
	if counters.Arrivals > 0 {
		m.SuccessRate = float64(counters.Completed) / float64(counters.Arrivals) * 100
	}

	var steady []records.RequestRecord
	for _, r := range recs {
		if r.ArrivedInSteady {
			steady = append(steady, r)
		}
	}
	if len(steady) == 0 {
		return m
	}

	startT, endT := steady[0].ArrivalTime, steady[0].FinishTime
	latencies := make([]float64, len(steady))
	for i, r := range steady {
		if r.ArrivalTime < startT {
			startT = r.ArrivalTime
		}
		if r.FinishTime > endT {
			endT = r.FinishTime
		}
		latencies[i] = r.LatencyMS
	}
	obsMS := endT - startT
	if obsMS < 0 {
		obsMS = 0
	}

	if obsMS > 0 {
		m.ThroughputRPS = float64(len(steady)) / (obsMS / 1000.0)
		if numThreads > 0 {
			m.Saturation = counters.BusyTimeMS / (obsMS * float64(numThreads))
		}
	}

	sort.Float64s(latencies)
	m.P95LatencyMS = quantile(latencies, 0.95)
	m.P99LatencyMS = quantile(latencies, 0.99)
	return m
}

// quantile returns the linearly-interpolated q-th quantile of a sorted
// slice, matching numpy's default ("linear") interpolation method.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(pos)
	hi := lo + 1
	if hi >= len(sorted) {
		return sorted[len(sorted)-1]
	}
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}
