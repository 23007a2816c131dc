package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"websim/internal/records"
	"websim/internal/report"
	"websim/internal/sweep"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Run a parameter grid across replications and pool golden metrics per group",
	RunE:  runSweep,
}

func init() {
	flags := sweepCmd.Flags()
	flags.StringSlice("modes", []string{"sync"}, "service disciplines to sweep over")
	flags.Float64Slice("io-means", []float64{20}, "mean IO wait values, ms")
	flags.Float64Slice("cpu-percents", []float64{50}, "CPU time as a percent of io-mean")
	flags.Float64Slice("rates", []float64{50}, "arrival rates, requests/sec")
	flags.IntSlice("io-limits", []int{16}, "IO pool capacities")
	flags.IntSlice("queue-limits", []int{32}, "admission queue depths")
	flags.Float64Slice("timeouts", []float64{0}, "per-request timeouts, ms")
	flags.Int("threads", 4, "worker thread count (sync mode only)")
	flags.Int("iterations", 1, "replications per combination")
	flags.Float64("sim-time-ms", 60000, "total simulated duration per run, ms")
	flags.Float64("warmup-ms", 0, "warmup horizon excluded from reported records")
	flags.Uint64("seed", 42, "base RNG seed; each replication adds its index")
	flags.String("out-dir", "", "optional directory for per-run CSV files")
	flags.String("summary-out", "", "optional path for the aggregated JSON summary (default: stdout)")

	for _, name := range []string{
		"modes", "io-means", "cpu-percents", "rates", "io-limits", "queue-limits",
		"timeouts", "threads", "iterations", "sim-time-ms", "warmup-ms", "seed",
		"out-dir", "summary-out",
	} {
		_ = viper.BindPFlag(name, flags.Lookup(name))
	}
	rootCmd.AddCommand(sweepCmd)
}

func runSweep(cmd *cobra.Command, args []string) error {
	modeStrs := viper.GetStringSlice("modes")
	modes := make([]records.Mode, len(modeStrs))
	for i, m := range modeStrs {
		modes[i] = records.Mode(m)
	}

	g := sweep.Grid{
		Modes:       modes,
		IOMeans:     labeledFloats(viper.GetFloat64Slice("io-means")),
		CPUPercents: labeledFloats(viper.GetFloat64Slice("cpu-percents")),
		Rates:       labeledFloats(viper.GetFloat64Slice("rates")),
		IOLimits:    labeledInts(viper.GetIntSlice("io-limits")),
		QueueLimits: labeledInts(viper.GetIntSlice("queue-limits")),
		Timeouts:    labeledFloats(viper.GetFloat64Slice("timeouts")),
		ThreadCount: viper.GetInt("threads"),
		Iterations:  viper.GetInt("iterations"),
		SimTimeMS:   viper.GetFloat64("sim-time-ms"),
		WarmupMS:    viper.GetFloat64("warmup-ms"),
		Seed:        viper.GetUint64("seed"),
	}

	runs := sweep.RunGrid(g)

	if outDir := viper.GetString("out-dir"); outDir != "" {
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return fmt.Errorf("simulate sweep: %w", err)
		}
		for _, r := range runs {
			if r.Err != nil {
				continue
			}
			path := filepath.Join(outDir, r.RunID+".csv")
			if err := report.WriteCSV(path, r.Records); err != nil {
				return fmt.Errorf("simulate sweep: %w", err)
			}
		}
	}

	aggregated := report.Aggregate(sweep.ToRunResults(runs))
	data, err := json.MarshalIndent(aggregated, "", "  ")
	if err != nil {
		return fmt.Errorf("simulate sweep: %w", err)
	}

	if summaryOut := viper.GetString("summary-out"); summaryOut != "" {
		return os.WriteFile(summaryOut, data, 0o644)
	}
	fmt.Println(string(data))
	return nil
}

func labeledFloats(vals []float64) []sweep.LabeledFloat {
	out := make([]sweep.LabeledFloat, len(vals))
	for i, v := range vals {
		out[i] = sweep.LabeledFloat{Value: v}
	}
	return out
}

func labeledInts(vals []int) []sweep.LabeledInt {
	out := make([]sweep.LabeledInt, len(vals))
	for i, v := range vals {
		out[i] = sweep.LabeledInt{Value: v}
	}
	return out
}
