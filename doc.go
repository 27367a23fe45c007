// Package queuebench computes steady-state performance metrics for M/M/c
// queueing systems and maps stability boundaries over load grids.
//
// # Overview
//
// queuebench answers the capacity-planning question: "how many identical
// parallel workers do I need so requests don't wait too long?" It models a
// pool of c replicas as an M/M/c queue (Poisson arrivals, exponential
// service, unbounded queue) and computes the classic steady-state metrics.
//
// # The Model
//
// Everything derives from three inputs — arrival rate λ, per-server service
// rate μ, and server count c:
//
//	ρ  = λ / (c·μ)              utilization per server
//	Pc = Erlang-C(ρ, c)         probability an arrival must wait
//	Lq = Pc·ρ / (1 − ρ)         mean number waiting
//	Wq = Lq / λ                 mean wait before service (Little's law)
//	L  = Lq + c·ρ               mean number in system
//	W  = Wq + 1/μ               mean sojourn time
//
// The system has a finite steady state iff ρ < 1, equivalently λ < c·μ.
// At or above that boundary the queue grows without bound and every
// derived metric is undefined.
//
// # Quick Start
//
// Evaluate one operating point:
//
//	m := queuebench.Evaluate(100, 20, 6) // λ=100 req/s, μ=20 req/s, c=6
//	if m.Stable() {
//	    fmt.Printf("Wq = %.4fs, W = %.4fs\n", m.WaitTime, m.SojournTime)
//	}
//
// Size a pool against a latency target:
//
//	rec, err := queuebench.RecommendServers(queuebench.SizingRequest{
//	    Lambda:     100,
//	    Mu:         20,
//	    CurrentN:   6,
//	    TargetWait: 0.05,
//	})
//
// Sweep a load grid:
//
//	surfaces, err := queuebench.Sweep(ctx, queuebench.DefaultSweepConfig())
//
// # Edge-Case Policy
//
// The single-value functions (Utilization, ErlangC, MeanQueueLength, ...)
// return a typed *DomainError for static parameter mistakes (c < 1, zero
// divisors). Data-dependent conditions never error anywhere: instability
// (ρ ≥ 1), μ ≤ 0 on the grid path, and intermediate overflow all degrade
// to an IEEE NaN sentinel (see Undefined and IsUndefined), so a sweep over
// thousands of grid cells always runs to completion. The grid API
// additionally reports a QueueState per cell so "no valid metric" is
// distinguishable from a genuine zero.
//
// An empty system (λ = 0) is degenerate-stable: Wq is exactly 0, bypassing
// the general formula to avoid 0/0.
//
// # Numerical Strategy
//
// The textbook Erlang-C expression needs a^c and c!, which overflow
// float64 long before c reaches realistic pool sizes. ErlangC instead
// accumulates the Erlang-B blocking probability with a term-ratio
// recurrence whose every step stays within [0, 1], then converts to
// Erlang-C. The test suite pins this against the naive factorial form for
// small c and exercises c = 100 without overflow.
//
// # Testing
//
// Assertion helpers validate queueing properties in your own tests:
//
//	func TestMyPool(t *testing.T) {
//	    cfg := queuebench.DefaultQueueAssertionConfig()
//	    queuebench.AssertLittlesLaw(t, 100, 20, 6, cfg)
//	    queuebench.AssertStableMetrics(t, 100, 20, 6, cfg)
//	    queuebench.AssertUndefinedWhenUnstable(t, 130, 20, 6)
//	}
//
// # Scope
//
// queuebench is a pure computation library: no plotting, no persistence,
// no time-dependent (transient) analysis, and no finite-buffer or
// priority-class variants. The cmd/queuebench CLI prints tables to stdout;
// rendering surfaces or contours is left to external tooling fed by Sweep.
package queuebench
