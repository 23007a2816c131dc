package samplers

import (
	"errors"
	"math"
	"testing"
)

func mean(xs []float64) float64 {
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func draw(n int, s Sampler) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = s()
	}
	return out
}

func TestTimeExponentialConvergesToMean(t *testing.T) {
	rng := NewRand(1)
	s := TimeExponential(rng, 50)
	got := mean(draw(200000, s))
	if math.Abs(got-50) > 1.0 {
		t.Fatalf("sample mean %v too far from 50", got)
	}
}

func TestTimeLognormalConvergesToMean(t *testing.T) {
	rng := NewRand(2)
	s := TimeLognormal(rng, 80, 0.5)
	got := mean(draw(200000, s))
	if math.Abs(got-80) > 2.0 {
		t.Fatalf("sample mean %v too far from 80", got)
	}
}

func TestArrivalPoissonConvergesToRate(t *testing.T) {
	rng := NewRand(3)
	s := ArrivalPoisson(rng, 100) // 100 rps -> mean gap 10ms
	got := mean(draw(200000, s))
	if math.Abs(got-10) > 0.2 {
		t.Fatalf("sample mean gap %v too far from 10ms", got)
	}
}

func TestArrivalBurstyNarrowsMeanGapBelowPoisson(t *testing.T) {
	// With nonzero burst probability, the occasional spike in rate should
	// pull the mean inter-arrival gap down relative to plain Poisson at
	// the same base rate.
	base := NewRand(4)
	bursty := NewRand(4)
	plain := mean(draw(200000, ArrivalPoisson(base, 100)))
	withBursts := mean(draw(200000, ArrivalBursty(bursty, 100, 5.0, 0.3)))
	if withBursts >= plain {
		t.Fatalf("expected bursty mean gap (%v) below plain poisson mean gap (%v)", withBursts, plain)
	}
}

func TestSameSeedReproducesSequence(t *testing.T) {
	a := TimeExponential(NewRand(42), 50)
	b := TimeExponential(NewRand(42), 50)
	for i := 0; i < 100; i++ {
		x, y := a(), b()
		if x != y {
			t.Fatalf("draw %d diverged: %v != %v", i, x, y)
		}
	}
}

func TestDifferentSeedsDiverge(t *testing.T) {
	a := TimeExponential(NewRand(1), 50)
	b := TimeExponential(NewRand(2), 50)
	same := true
	for i := 0; i < 20; i++ {
		if a() != b() {
			same = false
			break
		}
	}
	if same {
		t.Fatal("expected different seeds to diverge within 20 draws")
	}
}

func TestNewServiceTimeSamplerUnknownDistribution(t *testing.T) {
	_, err := NewServiceTimeSampler("weibull", NewRand(1), 50, 1)
	if !errors.Is(err, ErrUnknownDistribution) {
		t.Fatalf("expected ErrUnknownDistribution, got %v", err)
	}
}

func TestNewArrivalSamplerUnknownDistribution(t *testing.T) {
	_, err := NewArrivalSampler("periodic", NewRand(1), 100, 5, 0.1)
	if !errors.Is(err, ErrUnknownDistribution) {
		t.Fatalf("expected ErrUnknownDistribution, got %v", err)
	}
}

func TestNewServiceTimeSamplerKnownDistributions(t *testing.T) {
	for _, dist := range []string{"exponential", "lognormal"} {
		s, err := NewServiceTimeSampler(dist, NewRand(1), 50, 1)
		if err != nil {
			t.Fatalf("%s: unexpected error %v", dist, err)
		}
		if v := s(); v < 0 {
			t.Fatalf("%s: negative service time %v", dist, v)
		}
	}
}

func TestNewArrivalSamplerKnownDistributions(t *testing.T) {
	for _, dist := range []string{"poisson", "bursty"} {
		s, err := NewArrivalSampler(dist, NewRand(1), 100, 5, 0.1)
		if err != nil {
			t.Fatalf("%s: unexpected error %v", dist, err)
		}
		if v := s(); v < 0 {
			t.Fatalf("%s: negative inter-arrival gap %v", dist, v)
		}
	}
}
