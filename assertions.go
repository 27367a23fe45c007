package queuebench

import (
	"math"
	"testing"
)

// QueueAssertionConfig contains tolerances for steady-state properties.
type QueueAssertionConfig struct {
	// Relative tolerance for exact algebraic identities
	// (Little's law, L = Lq + cρ, W = Wq + 1/μ, round-trips).
	RelTolerance float64

	// Relative tolerance for comparing two evaluation strategies of the
	// same quantity (recurrence vs direct form).
	EquivTolerance float64
}

// DefaultQueueAssertionConfig returns the tolerances used throughout the
// test suite.
func DefaultQueueAssertionConfig() QueueAssertionConfig {
	return QueueAssertionConfig{
		RelTolerance:   1e-9,
		EquivTolerance: 1e-6,
	}
}

// relClose reports whether a and b agree within relative tolerance tol.
func relClose(a, b, tol float64) bool {
	if a == b {
		return true
	}
	scale := math.Max(math.Abs(a), math.Abs(b))
	if scale == 0 {
		return true
	}
	return math.Abs(a-b) <= tol*scale
}

// AssertLittlesLaw verifies Wq = Lq/λ for a stable point with λ > 0.
func AssertLittlesLaw(t *testing.T, lambda, mu float64, c int, cfg QueueAssertionConfig) {
	t.Helper()

	m := Evaluate(lambda, mu, c)
	if !m.Stable() {
		t.Fatalf("point λ=%g, μ=%g, c=%d is %s, cannot check Little's law", lambda, mu, c, m.State)
	}
	if lambda == 0 {
		t.Fatalf("Little's law check needs λ > 0")
	}

	want := m.QueueLength / lambda
	if !relClose(m.WaitTime, want, cfg.RelTolerance) {
		t.Errorf("Little's law violated at λ=%g, μ=%g, c=%d:\n  Wq = %.12g\n  Lq/λ = %.12g",
			lambda, mu, c, m.WaitTime, want)
	}
}

// AssertStableMetrics verifies every metric of a stable point is finite,
// non-negative, and satisfies the linking identities
// L = Lq + c·ρ and W = Wq + 1/μ.
func AssertStableMetrics(t *testing.T, lambda, mu float64, c int, cfg QueueAssertionConfig) {
	t.Helper()

	m := Evaluate(lambda, mu, c)
	if !m.Stable() {
		t.Fatalf("expected stable point at λ=%g, μ=%g, c=%d, got %s", lambda, mu, c, m.State)
	}

	checks := []struct {
		name string
		v    float64
	}{
		{"ρ", m.Rho},
		{"Pc", m.WaitProbability},
		{"Lq", m.QueueLength},
		{"Wq", m.WaitTime},
		{"L", m.InSystem},
		{"W", m.SojournTime},
	}
	for _, chk := range checks {
		if IsUndefined(chk.v) || math.IsInf(chk.v, 0) {
			t.Errorf("%s not finite at λ=%g, μ=%g, c=%d: %v", chk.name, lambda, mu, c, chk.v)
		}
		if chk.v < 0 {
			t.Errorf("%s negative at λ=%g, μ=%g, c=%d: %v", chk.name, lambda, mu, c, chk.v)
		}
	}

	if want := m.QueueLength + float64(c)*m.Rho; !relClose(m.InSystem, want, cfg.RelTolerance) {
		t.Errorf("L ≠ Lq + c·ρ at λ=%g, μ=%g, c=%d: L=%.12g, Lq+cρ=%.12g", lambda, mu, c, m.InSystem, want)
	}
	if want := m.WaitTime + 1/mu; !relClose(m.SojournTime, want, cfg.RelTolerance) {
		t.Errorf("W ≠ Wq + 1/μ at λ=%g, μ=%g, c=%d: W=%.12g, Wq+1/μ=%.12g", lambda, mu, c, m.SojournTime, want)
	}
}

// AssertUndefinedWhenUnstable verifies the sentinel policy: a point with
// λ ≥ c·μ or μ ≤ 0 yields the undefined sentinel for all four derived
// metrics, and never a finite number.
func AssertUndefinedWhenUnstable(t *testing.T, lambda, mu float64, c int) {
	t.Helper()

	m := Evaluate(lambda, mu, c)
	if m.Stable() {
		t.Fatalf("expected non-stable point at λ=%g, μ=%g, c=%d, got %s", lambda, mu, c, m.State)
	}

	for _, chk := range []struct {
		name string
		v    float64
	}{
		{"Lq", m.QueueLength},
		{"Wq", m.WaitTime},
		{"L", m.InSystem},
		{"W", m.SojournTime},
	} {
		if !IsUndefined(chk.v) {
			t.Errorf("%s should be undefined at λ=%g, μ=%g, c=%d, got %v", chk.name, lambda, mu, c, chk.v)
		}
	}
}

// AssertRoundTrip verifies that Utilization, ArrivalRate and ServiceRate
// invert each other to within tolerance.
func AssertRoundTrip(t *testing.T, lambda, mu float64, c int, cfg QueueAssertionConfig) {
	t.Helper()

	rho, err := Utilization(lambda, mu, c)
	if err != nil {
		t.Fatalf("Utilization(%g, %g, %d): %v", lambda, mu, c, err)
	}

	back, err := ArrivalRate(rho, mu, c)
	if err != nil {
		t.Fatalf("ArrivalRate(%g, %g, %d): %v", rho, mu, c, err)
	}
	if !relClose(back, lambda, cfg.RelTolerance) {
		t.Errorf("λ round-trip failed: λ=%.12g → ρ=%.12g → λ'=%.12g", lambda, rho, back)
	}

	if rho != 0 {
		muBack, err := ServiceRate(lambda, rho, c)
		if err != nil {
			t.Fatalf("ServiceRate(%g, %g, %d): %v", lambda, rho, c, err)
		}
		if !relClose(muBack, mu, cfg.RelTolerance) {
			t.Errorf("μ round-trip failed: μ=%.12g → ρ=%.12g → μ'=%.12g", mu, rho, muBack)
		}
	}
}

// PrintQueueAnalysis outputs a full point analysis to the test log.
func PrintQueueAnalysis(t *testing.T, lambda, mu float64, c int) {
	t.Helper()

	m := Evaluate(lambda, mu, c)

	t.Logf("\n=== M/M/c Analysis ===")
	t.Logf("Inputs:")
	t.Logf("  λ (arrival)  = %.4f req/s", lambda)
	t.Logf("  μ (service)  = %.4f req/s per server", mu)
	t.Logf("  c (servers)  = %d", c)
	t.Logf("  boundary λ = c·μ = %.4f req/s", StabilityBoundary(mu, c))
	t.Logf("State: %s", m.State)

	if !m.Stable() {
		t.Logf("No steady state: metrics undefined")
		return
	}

	t.Logf("Steady state:")
	t.Logf("  ρ  = %.6f (utilization)", m.Rho)
	t.Logf("  Pc = %.6f (probability of waiting)", m.WaitProbability)
	t.Logf("  Lq = %.6f (mean waiting)", m.QueueLength)
	t.Logf("  Wq = %.6f s (mean wait)", m.WaitTime)
	t.Logf("  L  = %.6f (mean in system)", m.InSystem)
	t.Logf("  W  = %.6f s (mean sojourn)", m.SojournTime)

	switch {
	case m.Rho < 0.5:
		t.Logf("  ✓ Low utilization: large burst headroom")
	case m.Rho < 0.9:
		t.Logf("  ✓ Moderate utilization")
	default:
		t.Logf("  ⚠ ρ ≥ 0.9: wait times grow sharply with any extra load")
	}
}
