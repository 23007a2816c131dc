package simserver

import (
	"errors"
	"testing"

	"websim/internal/records"
)

func validConfig() Config {
	c := DefaultConfig()
	c.Mode = records.ModeSync
	c.CPUMeanMS = 10
	c.IOMeanMS = 10
	c.RateRPS = 50
	c.ThreadCount = 4
	c.IOLimit = 8
	c.QueueLimit = 8
	c.TimeoutMS = 0
	c.SimTimeMS = 1000
	c.WarmupMS = 0
	c.Seed = 1
	return c
}

func TestValidConfigPasses(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("expected valid config to pass, got %v", err)
	}
}

func TestZeroRateRejected(t *testing.T) {
	c := validConfig()
	c.RateRPS = 0
	err := c.Validate()
	if !errors.Is(err, ErrInvalidRate) {
		t.Fatalf("expected ErrInvalidRate, got %v", err)
	}
}

func TestNonPositiveThreadCountRejectedInSyncMode(t *testing.T) {
	c := validConfig()
	c.ThreadCount = 0
	if err := c.Validate(); !errors.Is(err, ErrInvalidCapacity) {
		t.Fatalf("expected ErrInvalidCapacity, got %v", err)
	}
}

func TestNonPositiveIOLimitRejected(t *testing.T) {
	c := validConfig()
	c.IOLimit = 0
	if err := c.Validate(); !errors.Is(err, ErrInvalidCapacity) {
		t.Fatalf("expected ErrInvalidCapacity, got %v", err)
	}
}

func TestNegativeTimeRejected(t *testing.T) {
	c := validConfig()
	c.WarmupMS = -1
	if err := c.Validate(); !errors.Is(err, ErrInvalidTime) {
		t.Fatalf("expected ErrInvalidTime, got %v", err)
	}
}

func TestUnknownDistributionRejected(t *testing.T) {
	c := validConfig()
	c.CPUDist = "weibull"
	if err := c.Validate(); !errors.Is(err, ErrUnknownDistribution) {
		t.Fatalf("expected ErrUnknownDistribution, got %v", err)
	}
}

func TestWorkerCapacityDerivation(t *testing.T) {
	c := validConfig()
	c.ThreadCount = 7
	if got := c.WorkerCapacity(); got != 7 {
		t.Fatalf("sync mode: expected worker capacity 7, got %d", got)
	}
	c.Mode = records.ModeAsync
	if got := c.WorkerCapacity(); got != 1 {
		t.Fatalf("async mode: expected worker capacity 1, got %d", got)
	}
}

func TestMaxInSystemDerivation(t *testing.T) {
	c := validConfig()
	c.ThreadCount = 4
	c.QueueLimit = 10
	if got := c.MaxInSystem(); got != 14 {
		t.Fatalf("expected max_in_system 14, got %d", got)
	}
}

func TestAsyncModeIgnoresThreadCountValidation(t *testing.T) {
	c := validConfig()
	c.Mode = records.ModeAsync
	c.ThreadCount = 0 // irrelevant in async mode, worker capacity is fixed at 1
	if err := c.Validate(); err != nil {
		t.Fatalf("expected async config with thread_count=0 to pass, got %v", err)
	}
}
