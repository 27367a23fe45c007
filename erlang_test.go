package queuebench

import (
	"errors"
	"math"
	"testing"
)

// TestRoundTrip_AcrossParameterGrid verifies λ ↔ ρ ↔ μ inversion.
func TestRoundTrip_AcrossParameterGrid(t *testing.T) {
	cfg := DefaultQueueAssertionConfig()

	for _, c := range []int{1, 2, 6, 20, 100} {
		for _, mu := range []float64{0.5, 20, 333.3} {
			for _, lambda := range []float64{0, 1, 99.7, 5000} {
				AssertRoundTrip(t, lambda, mu, c, cfg)
			}
		}
	}
}

func TestUtilization_DomainErrors(t *testing.T) {
	var domErr *DomainError

	if _, err := Utilization(100, 20, 0); !errors.As(err, &domErr) {
		t.Errorf("Utilization with c=0: expected DomainError, got %v", err)
	}
	if _, err := Utilization(100, 0, 6); !errors.As(err, &domErr) {
		t.Errorf("Utilization with μ=0: expected DomainError, got %v", err)
	}
	if _, err := ServiceRate(100, 0, 6); !errors.As(err, &domErr) {
		t.Errorf("ServiceRate with ρ=0: expected DomainError, got %v", err)
	}
	if _, err := ArrivalRate(0.5, 20, -1); !errors.As(err, &domErr) {
		t.Errorf("ArrivalRate with c=-1: expected DomainError, got %v", err)
	}
}

// naiveErlangC evaluates the textbook formula with explicit powers and
// factorials. Only valid for small c; used to pin the recurrence.
func naiveErlangC(rho float64, c int) float64 {
	a := float64(c) * rho

	factorial := 1.0
	sum := 0.0
	for n := 0; n < c; n++ {
		if n > 0 {
			factorial *= float64(n)
		}
		sum += math.Pow(a, float64(n)) / factorial
	}
	factorial *= float64(c)

	tail := math.Pow(a, float64(c)) / (factorial * (1 - rho))
	return tail / (sum + tail)
}

// TestErlangC_MatchesNaiveFormula pins the stable recurrence against the
// direct factorial/power evaluation where the latter cannot overflow.
func TestErlangC_MatchesNaiveFormula(t *testing.T) {
	cfg := DefaultQueueAssertionConfig()

	for _, c := range []int{1, 2, 3, 5, 8, 12, 20} {
		for _, rho := range []float64{0.05, 0.3, 0.5, 0.8, 0.95, 0.999} {
			pc, err := ErlangC(rho, c)
			if err != nil {
				t.Fatalf("ErlangC(%g, %d): %v", rho, c, err)
			}
			want := naiveErlangC(rho, c)
			if !relClose(pc, want, cfg.EquivTolerance) {
				t.Errorf("ErlangC(%g, %d) = %.12g, naive form gives %.12g", rho, c, pc, want)
			}
		}
	}
}

func TestErlangC_Boundaries(t *testing.T) {
	pc, err := ErlangC(0, 6)
	if err != nil || pc != 0 {
		t.Errorf("ErlangC(0, 6) = %v, %v; want 0, nil", pc, err)
	}

	for _, rho := range []float64{1.0, 1.5, 100} {
		pc, err := ErlangC(rho, 6)
		if err != nil {
			t.Fatalf("ErlangC(%g, 6) returned error %v; instability must not raise", rho, err)
		}
		if !IsUndefined(pc) {
			t.Errorf("ErlangC(%g, 6) = %v, want undefined sentinel", rho, pc)
		}
	}

	var domErr *DomainError
	if _, err := ErlangC(0.5, 0); !errors.As(err, &domErr) {
		t.Errorf("ErlangC with c=0: expected DomainError, got %v", err)
	}
}

// TestMeanQueueLength_EquivalentForms checks that the Pc-based Lq and the
// direct P0-based Lq agree across server counts and loads.
func TestMeanQueueLength_EquivalentForms(t *testing.T) {
	cfg := DefaultQueueAssertionConfig()

	for _, c := range []int{1, 5, 20, 50} {
		for _, rho := range []float64{0.1, 0.5, 0.9} {
			viaPc, err := MeanQueueLength(rho, c)
			if err != nil {
				t.Fatalf("MeanQueueLength(%g, %d): %v", rho, c, err)
			}

			// Same point expressed as (λ, μ): fix μ = 1, λ = ρ·c.
			mu := 1.0
			lambda, err := ArrivalRate(rho, mu, c)
			if err != nil {
				t.Fatalf("ArrivalRate(%g, %g, %d): %v", rho, mu, c, err)
			}
			direct, err := MeanQueueLengthDirect(lambda, mu, c)
			if err != nil {
				t.Fatalf("MeanQueueLengthDirect(%g, %g, %d): %v", lambda, mu, c, err)
			}

			if !relClose(viaPc, direct, cfg.EquivTolerance) {
				t.Errorf("Lq forms disagree at ρ=%g, c=%d:\n  Pc form: %.12g\n  P0 form: %.12g",
					rho, c, viaPc, direct)
			}
		}
	}
}

// TestMeanQueueLength_MonotoneInUtilization verifies Lq grows strictly
// with ρ and blows up approaching the boundary.
func TestMeanQueueLength_MonotoneInUtilization(t *testing.T) {
	c := 6

	prev := -1.0
	for rho := 0.05; rho < 1; rho += 0.05 {
		lq, err := MeanQueueLength(rho, c)
		if err != nil {
			t.Fatalf("MeanQueueLength(%g, %d): %v", rho, c, err)
		}
		if lq <= prev {
			t.Errorf("Lq not strictly increasing: Lq(%g)=%g ≤ previous %g", rho, lq, prev)
		}
		prev = lq
	}

	near, _ := MeanQueueLength(0.999, c)
	far, _ := MeanQueueLength(0.9, c)
	if near < 10*far {
		t.Errorf("Lq(0.999)=%g should exceed Lq(0.9)=%g by ≥ 10×", near, far)
	}
	t.Logf("Lq(0.9)=%.4f, Lq(0.999)=%.4f (ratio %.1f×)", far, near, near/far)
}

// TestSingleServer_ReducesToMM1 verifies the c=1 special case collapses to
// the standard M/M/1 formulas.
func TestSingleServer_ReducesToMM1(t *testing.T) {
	cfg := DefaultQueueAssertionConfig()

	for _, rho := range []float64{0.1, 0.5, 0.7, 0.95} {
		lq, err := MeanQueueLength(rho, 1)
		if err != nil {
			t.Fatalf("MeanQueueLength(%g, 1): %v", rho, err)
		}
		if want := rho * rho / (1 - rho); !relClose(lq, want, cfg.RelTolerance) {
			t.Errorf("M/M/1 Lq(%g) = %.12g, want ρ²/(1−ρ) = %.12g", rho, lq, want)
		}

		mu := 20.0
		m := Evaluate(rho*mu, mu, 1)
		if want := rho / (mu * (1 - rho)); !relClose(m.WaitTime, want, cfg.RelTolerance) {
			t.Errorf("M/M/1 Wq(ρ=%g, μ=%g) = %.12g, want ρ/(μ(1−ρ)) = %.12g", rho, mu, m.WaitTime, want)
		}
	}
}

// TestScenario_SixServerPool checks the worked example of a six-replica
// pool at λ=100 req/s, μ=20 req/s.
func TestScenario_SixServerPool(t *testing.T) {
	cfg := DefaultQueueAssertionConfig()
	lambda, mu, c := 100.0, 20.0, 6

	m := Evaluate(lambda, mu, c)
	if !m.Stable() {
		t.Fatalf("expected stable pool, got %s", m.State)
	}

	// High-precision references from the textbook formula.
	wantRho := 100.0 / 120.0
	wantPc := 0.587516450460613
	wantLq := 2.9375822523030655

	if !relClose(m.Rho, wantRho, cfg.RelTolerance) {
		t.Errorf("ρ = %.12g, want %.12g", m.Rho, wantRho)
	}
	if !relClose(m.WaitProbability, wantPc, cfg.EquivTolerance) {
		t.Errorf("Pc = %.12g, want %.12g", m.WaitProbability, wantPc)
	}
	if !relClose(m.QueueLength, wantLq, cfg.EquivTolerance) {
		t.Errorf("Lq = %.12g, want %.12g", m.QueueLength, wantLq)
	}

	// Linking identities, exact within floating tolerance.
	if want := m.QueueLength / lambda; !relClose(m.WaitTime, want, cfg.RelTolerance) {
		t.Errorf("Wq = %.12g, want Lq/λ = %.12g", m.WaitTime, want)
	}
	if want := m.QueueLength + 6*wantRho; !relClose(m.InSystem, want, cfg.RelTolerance) {
		t.Errorf("L = %.12g, want Lq + c·ρ = %.12g", m.InSystem, want)
	}
	if want := m.WaitTime + 0.05; !relClose(m.SojournTime, want, cfg.RelTolerance) {
		t.Errorf("W = %.12g, want Wq + 1/μ = %.12g", m.SojournTime, want)
	}

	AssertLittlesLaw(t, lambda, mu, c, cfg)
	AssertStableMetrics(t, lambda, mu, c, cfg)
	PrintQueueAnalysis(t, lambda, mu, c)
}

// TestScenario_EmptySystem: λ=0 is degenerate-stable with zero waiting.
func TestScenario_EmptySystem(t *testing.T) {
	m := Evaluate(0, 20, 6)

	if !m.Stable() {
		t.Fatalf("empty system should be stable, got %s", m.State)
	}
	if m.WaitTime != 0 {
		t.Errorf("Wq = %v, want exactly 0", m.WaitTime)
	}
	if m.QueueLength != 0 {
		t.Errorf("Lq = %v, want exactly 0", m.QueueLength)
	}
	if m.InSystem != 0 {
		t.Errorf("L = %v, want exactly 0", m.InSystem)
	}
	if m.SojournTime != 0.05 {
		t.Errorf("W = %v, want exactly 1/μ = 0.05", m.SojournTime)
	}
}

// TestScenario_Overloaded: λ > c·μ has no steady state.
func TestScenario_Overloaded(t *testing.T) {
	AssertUndefinedWhenUnstable(t, 130, 20, 6)

	m := Evaluate(130, 20, 6)
	if m.State != StateUnstable {
		t.Errorf("state = %s, want %s", m.State, StateUnstable)
	}

	// Exactly at the boundary counts as unstable too.
	AssertUndefinedWhenUnstable(t, 120, 20, 6)

	// μ ≤ 0 is undefined rather than unstable.
	m = Evaluate(100, 0, 6)
	if m.State != StateUndefined {
		t.Errorf("state at μ=0: %s, want %s", m.State, StateUndefined)
	}
	AssertUndefinedWhenUnstable(t, 100, -5, 6)
}

// TestLargeServerPool_NoOverflow: c=100 at ρ=0.95 must stay finite.
func TestLargeServerPool_NoOverflow(t *testing.T) {
	cfg := DefaultQueueAssertionConfig()

	lq, err := MeanQueueLength(0.95, 100)
	if err != nil {
		t.Fatalf("MeanQueueLength(0.95, 100): %v", err)
	}
	if IsUndefined(lq) || math.IsInf(lq, 0) {
		t.Fatalf("Lq overflowed for c=100: %v", lq)
	}

	// Reference from the term-ratio P0 form, which stays in range here.
	mu := 1.0
	lambda, _ := ArrivalRate(0.95, mu, 100)
	direct, err := MeanQueueLengthDirect(lambda, mu, 100)
	if err != nil {
		t.Fatalf("MeanQueueLengthDirect: %v", err)
	}
	if !relClose(lq, direct, cfg.EquivTolerance) {
		t.Errorf("c=100 forms disagree: recurrence %.10g vs direct %.10g", lq, direct)
	}
	t.Logf("c=100, ρ=0.95: Lq = %.6f", lq)

	// Pool sizes beyond the direct form's float64 range still evaluate.
	for _, c := range []int{500, 2000} {
		m := Evaluate(0.95*float64(c), 1.0, c)
		if !m.Stable() {
			t.Errorf("c=%d should evaluate to a stable point, got %s", c, m.State)
		}
	}
}

func TestMeanWait_DomainError(t *testing.T) {
	var domErr *DomainError
	if _, err := MeanWait(2.5, 0); !errors.As(err, &domErr) {
		t.Errorf("MeanWait with λ=0: expected DomainError, got %v", err)
	}
	if _, err := MeanSojourn(0.1, 0); !errors.As(err, &domErr) {
		t.Errorf("MeanSojourn with μ=0: expected DomainError, got %v", err)
	}

	// Sentinel inputs pass through as sentinel, not as an error.
	wq, err := MeanWait(Undefined(), 100)
	if err != nil || !IsUndefined(wq) {
		t.Errorf("MeanWait(undefined, 100) = %v, %v; want sentinel, nil", wq, err)
	}
	w, err := MeanSojourn(Undefined(), 20)
	if err != nil || !IsUndefined(w) {
		t.Errorf("MeanSojourn(undefined, 20) = %v, %v; want sentinel, nil", w, err)
	}
}

// TestStableRegion_AllMetricsFinite sweeps the stable region and checks
// every point satisfies the linking identities.
func TestStableRegion_AllMetricsFinite(t *testing.T) {
	cfg := DefaultQueueAssertionConfig()

	for _, c := range []int{1, 3, 6, 25} {
		for _, mu := range []float64{5, 20, 80} {
			for _, frac := range []float64{0.1, 0.6, 0.97} {
				lambda := frac * float64(c) * mu
				AssertStableMetrics(t, lambda, mu, c, cfg)
				AssertLittlesLaw(t, lambda, mu, c, cfg)
			}
		}
	}
}

func TestEmptyProbability(t *testing.T) {
	cfg := DefaultQueueAssertionConfig()

	// M/M/1: P0 = 1 − ρ.
	for _, rho := range []float64{0.2, 0.5, 0.9} {
		p0, err := EmptyProbability(rho, 1)
		if err != nil {
			t.Fatalf("EmptyProbability(%g, 1): %v", rho, err)
		}
		if !relClose(p0, 1-rho, cfg.RelTolerance) {
			t.Errorf("M/M/1 P0(%g) = %.12g, want 1−ρ = %.12g", rho, p0, 1-rho)
		}
	}

	if p0, _ := EmptyProbability(1.2, 4); !IsUndefined(p0) {
		t.Errorf("P0 at ρ=1.2 should be undefined, got %v", p0)
	}
}
