package sweep

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"

	"websim/internal/records"
	"websim/internal/report"
	"websim/internal/simserver"
)

// Reference calibration: a 100,000ms simulated run took ~91ms of real
// time on the machine these constants were measured on.
const (
	referenceSimulatedMS = 100_000.0
	referenceRealMS      = 91.0
)

// Run is one (combination, replication) pair's full outcome: the
// resolved config, a correlation ID, its raw records, computed metrics,
// and any rejection error.
type Run struct {
	RunID       string
	GroupKey    string
	Config      simserver.Config
	Replication int

	Records []records.RequestRecord
	Metrics report.Metrics
	Err     error
}

// EstimateETA mirrors the reference driver's calibration-based ETA: a
// fixed simulated-to-real time ratio measured offline, scaled by the
// total simulated milliseconds this sweep will run.
func EstimateETA(totalRuns int, simTimeMS, warmupMS float64) time.Duration {
	totalSimMS := float64(totalRuns) * (simTimeMS + warmupMS)
	etaMS := (totalSimMS / referenceSimulatedMS) * referenceRealMS
	return time.Duration(etaMS * float64(time.Millisecond))
}

// RunGrid executes every combination in g across g.Iterations
// replications, returning one Run per pair in enumeration order.
// Progress is reported on a progress bar; each run's start/finish is
// logged with its correlation ID.
func RunGrid(g Grid) []Run {
	combos := g.combinations()
	varying := varyingAxes(g)
	total := len(combos) * g.Iterations

	eta := EstimateETA(total, g.SimTimeMS, g.WarmupMS)
	log.Info().Int("total_runs", total).Dur("estimated_eta", eta).Msg("starting sweep")

	bar := progressbar.Default(int64(total), "running sweep")
	out := make([]Run, 0, total)

	for _, c := range combos {
		groupKey := renderGroupKey(c, varying)
		cpuMeanMS := c.ioMean.Value * c.cpuPercent.Value / 100

		for rep := 0; rep < g.Iterations; rep++ {
			cfg := simserver.DefaultConfig()
			cfg.Mode = c.mode
			cfg.CPUMeanMS = cpuMeanMS
			cfg.IOMeanMS = c.ioMean.Value
			cfg.RateRPS = c.rate.Value
			cfg.IOLimit = c.ioLimit.Value
			cfg.QueueLimit = c.queueLimit.Value
			cfg.TimeoutMS = c.timeout.Value
			cfg.ThreadCount = g.ThreadCount
			cfg.SimTimeMS = g.SimTimeMS
			cfg.WarmupMS = g.WarmupMS
			cfg.Seed = g.Seed + uint64(rep)

			runID := uuid.NewString()
			logger := log.With().Str("run_id", runID).Str("group", groupKey).Int("replication", rep).Logger()
			logger.Debug().Msg("sweep run starting")

			run := Run{RunID: runID, GroupKey: groupKey, Config: cfg, Replication: rep}
			recs, counters, err := simserver.SimulateServerFull(cfg)
			if err != nil {
				run.Err = err
				logger.Error().Err(err).Msg("sweep run rejected")
			} else {
				run.Records = recs
				run.Metrics = report.ComputeMetrics(recs, counters, cfg.WorkerCapacity())
				logger.Debug().Int("records", len(recs)).Msg("sweep run finished")
			}

			out = append(out, run)
			_ = bar.Add(1)
		}
	}
	return out
}

// ToRunResults filters out rejected runs and converts the rest into
// report.RunResult values ready for report.Aggregate.
func ToRunResults(runs []Run) []report.RunResult {
	out := make([]report.RunResult, 0, len(runs))
	for _, r := range runs {
		if r.Err != nil {
			continue
		}
		latencies := make([]float64, 0, len(r.Records))
		for _, rec := range r.Records {
			if rec.ArrivedInSteady {
				latencies = append(latencies, rec.LatencyMS)
			}
		}
		out = append(out, report.RunResult{
			GroupKey:        r.GroupKey,
			Metrics:         r.Metrics,
			SteadyLatencyMS: latencies,
		})
	}
	return out
}

type varyingFlags struct {
	mode, io, cpu, rate, ioLimit, queueLimit, timeout bool
}

func varyingAxes(g Grid) varyingFlags {
	return varyingFlags{
		mode:       len(g.Modes) > 1,
		io:         len(g.IOMeans) > 1,
		cpu:        len(g.CPUPercents) > 1,
		rate:       len(g.Rates) > 1,
		ioLimit:    len(g.IOLimits) > 1,
		queueLimit: len(g.QueueLimits) > 1,
		timeout:    len(g.Timeouts) > 1,
	}
}

func renderGroupKey(c combination, v varyingFlags) string {
	var parts []string
	if v.mode {
		parts = append(parts, "mode="+string(c.mode))
	}
	if v.io {
		parts = append(parts, "io="+renderFloat(c.ioMean))
	}
	if v.cpu {
		parts = append(parts, "cpu_pct="+renderFloat(c.cpuPercent))
	}
	if v.rate {
		parts = append(parts, "rate="+renderFloat(c.rate))
	}
	if v.ioLimit {
		parts = append(parts, "io_limit="+renderInt(c.ioLimit))
	}
	if v.queueLimit {
		parts = append(parts, "queue_limit="+renderInt(c.queueLimit))
	}
	if v.timeout {
		parts = append(parts, "timeout="+renderFloat(c.timeout))
	}
	if len(parts) == 0 {
		return "default"
	}
	return strings.Join(parts, ",")
}

func renderFloat(lf LabeledFloat) string {
	if lf.Label != "" {
		return lf.Label
	}
	return strconv.FormatFloat(lf.Value, 'f', -1, 64)
}

func renderInt(li LabeledInt) string {
	if li.Label != "" {
		return li.Label
	}
	return fmt.Sprintf("%d", li.Value)
}
