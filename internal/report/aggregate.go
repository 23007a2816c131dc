package report

import "sort"

// RunResult is one parameter-sweep iteration's outcome: the group key it
// should be pooled under (e.g. a rendered "mode=sync,cpu_pct=50" label),
// its per-run Metrics, and the steady-state latencies that fed them.
type RunResult struct {
	GroupKey        string
	Metrics         Metrics
	SteadyLatencyMS []float64
}

// AggregatedMetrics is one group's pooled golden metrics: throughput,
// success rate, and saturation are averaged across the group's runs;
// p95/p99 are computed once over every run's latencies pooled together,
// not averaged per-run — pooling a handful of small per-run samples into
// one larger one gives a much more stable tail estimate.
type AggregatedMetrics struct {
	GroupKey string `json:"group"`

	MeanThroughputRPS float64 `json:"mean_throughput_rps"`
	MeanSuccessRate   float64 `json:"mean_success_rate"`
	MeanSaturation    float64 `json:"mean_saturation"`

	P95LatencyMS float64 `json:"p95_latency_ms"`
	P99LatencyMS float64 `json:"p99_latency_ms"`

	RunCount int `json:"run_count"`
}

// Aggregate pools runs by GroupKey and computes golden metrics per
// group, in first-seen group order.
func Aggregate(runs []RunResult) []AggregatedMetrics {
	order := make([]string, 0)
	groups := make(map[string][]RunResult)
	for _, r := range runs {
		if _, ok := groups[r.GroupKey]; !ok {
			order = append(order, r.GroupKey)
		}
		groups[r.GroupKey] = append(groups[r.GroupKey], r)
	}

	out := make([]AggregatedMetrics, 0, len(order))
	for _, key := range order {
		group := groups[key]
		agg := AggregatedMetrics{GroupKey: key, RunCount: len(group)}

		var pooled []float64
		var sumThroughput, sumSuccess, sumSaturation float64
		for _, r := range group {
			sumThroughput += r.Metrics.ThroughputRPS
			sumSuccess += r.Metrics.SuccessRate
			sumSaturation += r.Metrics.Saturation
			pooled = append(pooled, r.SteadyLatencyMS...)
		}
		n := float64(len(group))
		agg.MeanThroughputRPS = sumThroughput / n
		agg.MeanSuccessRate = sumSuccess / n
		agg.MeanSaturation = sumSaturation / n

		if len(pooled) > 0 {
			sort.Float64s(pooled)
			agg.P95LatencyMS = quantile(pooled, 0.95)
			agg.P99LatencyMS = quantile(pooled, 0.99)
		}
		out = append(out, agg)
	}
	return out
}
