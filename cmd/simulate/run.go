package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"websim/internal/records"
	"websim/internal/report"
	"websim/internal/simserver"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a single simulation and print its summary metrics",
	RunE:  runRun,
}

func init() {
	flags := runCmd.Flags()
	flags.String("mode", "sync", "service discipline: sync or async")
	flags.Float64("cpu-mean-ms", 10, "mean CPU time per request, ms")
	flags.Float64("io-mean-ms", 20, "mean IO wait per request, ms")
	flags.Float64("rate-rps", 50, "arrival rate, requests/sec")
	flags.Int("threads", 4, "worker thread count (sync mode only)")
	flags.Int("io-limit", 16, "IO pool capacity")
	flags.Int("queue-limit", 32, "admission queue depth beyond worker capacity")
	flags.Float64("timeout-ms", 0, "per-request timeout, ms (0 disables)")
	flags.Float64("sim-time-ms", 60000, "total simulated duration, ms")
	flags.Float64("warmup-ms", 0, "warmup horizon excluded from reported records")
	flags.Uint64("seed", 42, "RNG seed")
	flags.String("cpu-dist", "exponential", "CPU time distribution: exponential or lognormal")
	flags.String("io-dist", "exponential", "IO wait distribution: exponential or lognormal")
	flags.Float64("cpu-lognorm-sigma", 1.0, "lognormal sigma for CPU time")
	flags.Float64("io-lognorm-sigma", 1.0, "lognormal sigma for IO wait")
	flags.String("arrival-dist", "poisson", "arrival process: poisson or bursty")
	flags.Float64("burst-factor", 5.0, "bursty arrival rate multiplier")
	flags.Float64("burst-prob", 0.1, "bursty arrival burst probability")
	flags.String("out", "", "optional CSV output path for raw records")

	for _, name := range []string{
		"mode", "cpu-mean-ms", "io-mean-ms", "rate-rps", "threads", "io-limit",
		"queue-limit", "timeout-ms", "sim-time-ms", "warmup-ms", "seed",
		"cpu-dist", "io-dist", "cpu-lognorm-sigma", "io-lognorm-sigma",
		"arrival-dist", "burst-factor", "burst-prob", "out",
	} {
		_ = viper.BindPFlag(name, flags.Lookup(name))
	}
	rootCmd.AddCommand(runCmd)
}

func configFromViper() simserver.Config {
	cfg := simserver.DefaultConfig()
	cfg.Mode = records.Mode(viper.GetString("mode"))
	cfg.CPUMeanMS = viper.GetFloat64("cpu-mean-ms")
	cfg.IOMeanMS = viper.GetFloat64("io-mean-ms")
	cfg.RateRPS = viper.GetFloat64("rate-rps")
	cfg.ThreadCount = viper.GetInt("threads")
	cfg.IOLimit = viper.GetInt("io-limit")
	cfg.QueueLimit = viper.GetInt("queue-limit")
	cfg.TimeoutMS = viper.GetFloat64("timeout-ms")
	cfg.SimTimeMS = viper.GetFloat64("sim-time-ms")
	cfg.WarmupMS = viper.GetFloat64("warmup-ms")
	cfg.Seed = viper.GetUint64("seed")
	cfg.CPUDist = viper.GetString("cpu-dist")
	cfg.IODist = viper.GetString("io-dist")
	cfg.CPULognormSigma = viper.GetFloat64("cpu-lognorm-sigma")
	cfg.IOLognormSigma = viper.GetFloat64("io-lognorm-sigma")
	cfg.ArrivalDist = viper.GetString("arrival-dist")
	cfg.BurstFactor = viper.GetFloat64("burst-factor")
	cfg.BurstProb = viper.GetFloat64("burst-prob")
	return cfg
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg := configFromViper()
	if err := cfg.Validate(); err != nil {
		return emitSummary(report.FailedSummary("invalid_config", err))
	}

	recs, counters, err := simserver.SimulateServerFull(cfg)
	if err != nil {
		return emitSummary(report.FailedSummary("simulation_failed", err))
	}

	if out := viper.GetString("out"); out != "" {
		if err := report.WriteCSV(out, recs); err != nil {
			return fmt.Errorf("simulate run: %w", err)
		}
	}

	metrics := report.ComputeMetrics(recs, counters, cfg.WorkerCapacity())
	return emitSummary(report.OKSummary(metrics))
}

func emitSummary(s report.Summary) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return err
	}
	if !s.OK {
		return fmt.Errorf("simulate: %s", s.Err.Detail)
	}
	return nil
}
