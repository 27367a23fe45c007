package queuebench

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sync"
)

// QueueState classifies a single grid point.
type QueueState string

const (
	StateStable    QueueState = "STABLE"    // ρ < 1: finite steady-state metrics
	StateUnstable  QueueState = "UNSTABLE"  // λ ≥ c·μ: queue grows without bound
	StateUndefined QueueState = "UNDEFINED" // μ ≤ 0 or numeric overflow: no model
)

// Metrics holds every steady-state quantity for one (λ, μ, c) point.
//
// For non-stable states the metric fields carry the undefined sentinel
// (NaN); State is the authoritative way to tell "no valid metric" from a
// genuine zero.
type Metrics struct {
	Lambda  float64 // Arrival rate (λ, units/sec)
	Mu      float64 // Per-server service rate (μ, units/sec)
	Servers int     // Parallel servers (c)

	Rho             float64 // Utilization ρ = λ/(c·μ)
	WaitProbability float64 // Erlang-C Pc
	QueueLength     float64 // Lq: mean number waiting
	WaitTime        float64 // Wq: mean wait before service (seconds)
	InSystem        float64 // L: mean number in system
	SojournTime     float64 // W: mean total time in system (seconds)

	State QueueState
}

// Stable reports whether the point has finite steady-state metrics.
func (m Metrics) Stable() bool {
	return m.State == StateStable
}

// Evaluate computes all steady-state metrics for one (λ, μ, c) point.
//
// This is the sweep-facing entry: it never returns an error for
// data-dependent conditions, so a caller iterating thousands of grid cells
// always completes the sweep. The boundary policy:
//
//	λ ≥ c·μ (incl. equality)  →  StateUnstable, all metrics NaN
//	μ ≤ 0                     →  StateUndefined, all metrics NaN
//	λ = 0                     →  StateStable, Lq = Wq = L = 0, W = 1/μ
//	overflow at large c       →  StateUndefined, all metrics NaN
//
// c < 1 and λ < 0 also yield StateUndefined rather than an error, since a
// generated axis may legitimately cross zero.
func Evaluate(lambda, mu float64, c int) Metrics {
	m := Metrics{Lambda: lambda, Mu: mu, Servers: c}

	if c < 1 || mu <= 0 || lambda < 0 {
		m.markUndefined(StateUndefined)
		return m
	}

	rho := lambda / (float64(c) * mu)
	m.Rho = rho

	if lambda >= float64(c)*mu {
		m.markUndefined(StateUnstable)
		m.Rho = rho // keep ρ visible even when unstable
		return m
	}

	// Degenerate-stable: nothing arrives, nothing waits. Bypasses the
	// general formulas to avoid 0/0 in Little's law.
	if lambda == 0 {
		m.State = StateStable
		m.SojournTime = 1 / mu
		return m
	}

	pc, err := ErlangC(rho, c)
	if err != nil || IsUndefined(pc) {
		m.markUndefined(StateUndefined)
		return m
	}

	lq := pc * rho / (1 - rho)
	wq := lq / lambda
	l := lq + float64(c)*rho
	w := wq + 1/mu

	if IsUndefined(lq) || IsUndefined(wq) || math.IsInf(lq, 0) || math.IsInf(wq, 0) {
		m.markUndefined(StateUndefined)
		return m
	}

	m.WaitProbability = pc
	m.QueueLength = lq
	m.WaitTime = wq
	m.InSystem = l
	m.SojournTime = w
	m.State = StateStable
	return m
}

// markUndefined fills every metric field with the sentinel.
func (m *Metrics) markUndefined(state QueueState) {
	m.Rho = Undefined()
	m.WaitProbability = Undefined()
	m.QueueLength = Undefined()
	m.WaitTime = Undefined()
	m.InSystem = Undefined()
	m.SojournTime = Undefined()
	m.State = state
}

// StabilityBoundary returns the arrival rate λ = c·μ at which a pool of c
// servers saturates. Points at or above this line are unstable.
func StabilityBoundary(mu float64, c int) float64 {
	return float64(c) * mu
}

// Surface holds the evaluated mesh for a single server count.
//
// Cells is indexed [i][j] where i walks MuAxis and j walks LambdaAxis,
// matching the (μ, λ) meshgrid orientation used by contour-style consumers.
type Surface struct {
	Servers    int
	LambdaAxis []float64
	MuAxis     []float64
	Cells      [][]Metrics
}

// StableCount returns how many cells have finite steady-state metrics.
func (s *Surface) StableCount() int {
	count := 0
	for _, row := range s.Cells {
		for _, m := range row {
			if m.Stable() {
				count++
			}
		}
	}
	return count
}

// WithinTarget counts stable cells whose (optionally inflated) sojourn time
// meets the target. inflation scales Wq before adding service time; pass 1
// for the plain model. It exists for callers that want a p95-style or
// multi-hop adjustment without folding it into the engine formulas.
func (s *Surface) WithinTarget(targetSojourn, inflation float64) int {
	if inflation <= 0 {
		inflation = 1
	}
	count := 0
	for _, row := range s.Cells {
		for _, m := range row {
			if !m.Stable() {
				continue
			}
			adjusted := inflation*m.WaitTime + 1/m.Mu
			if adjusted <= targetSojourn {
				count++
			}
		}
	}
	return count
}

// MinMaxWait returns the smallest and largest finite Wq on the surface.
// ok is false when no cell is stable.
func (s *Surface) MinMaxWait() (minWq, maxWq float64, ok bool) {
	minWq = math.Inf(1)
	maxWq = math.Inf(-1)
	for _, row := range s.Cells {
		for _, m := range row {
			if !m.Stable() {
				continue
			}
			if m.WaitTime < minWq {
				minWq = m.WaitTime
			}
			if m.WaitTime > maxWq {
				maxWq = m.WaitTime
			}
		}
	}
	if minWq > maxWq {
		return 0, 0, false
	}
	return minWq, maxWq, true
}

// Sweep evaluates the full (λ, μ) mesh for every configured server count.
//
// Each cell is independent of every other, so rows are fanned out across a
// worker pool sized to GOMAXPROCS. Every output cell is written exactly
// once at a fixed index; completion order is irrelevant. A cancelled
// context stops scheduling new rows and returns what has been computed so
// far along with ctx.Err().
func Sweep(ctx context.Context, cfg SweepConfig) ([]*Surface, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	lambdaAxis := linspace(cfg.LambdaMin, cfg.LambdaMax, cfg.Resolution)
	muAxis := linspace(cfg.MuMin, cfg.MuMax, cfg.Resolution)

	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	surfaces := make([]*Surface, 0, len(cfg.Servers))
	for _, c := range cfg.Servers {
		surface := &Surface{
			Servers:    c,
			LambdaAxis: lambdaAxis,
			MuAxis:     muAxis,
			Cells:      make([][]Metrics, len(muAxis)),
		}

		rows := make(chan int)
		var wg sync.WaitGroup

		for w := 0; w < workers; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := range rows {
					row := make([]Metrics, len(lambdaAxis))
					for j, lambda := range lambdaAxis {
						row[j] = Evaluate(lambda, muAxis[i], c)
					}
					surface.Cells[i] = row
				}
			}()
		}

		var cancelled bool
	dispatch:
		for i := range muAxis {
			select {
			case <-ctx.Done():
				cancelled = true
				break dispatch
			case rows <- i:
			}
		}
		close(rows)
		wg.Wait()

		if cancelled {
			// Unscheduled rows stay nil; callers get a partial mesh.
			for i := range surface.Cells {
				if surface.Cells[i] == nil {
					surface.Cells[i] = make([]Metrics, len(lambdaAxis))
					for j := range surface.Cells[i] {
						surface.Cells[i][j].markUndefined(StateUndefined)
					}
				}
			}
			surfaces = append(surfaces, surface)
			return surfaces, fmt.Errorf("sweep cancelled at c=%d: %w", c, ctx.Err())
		}

		surfaces = append(surfaces, surface)
	}

	return surfaces, nil
}

// linspace returns n evenly spaced values over [lo, hi], inclusive.
func linspace(lo, hi float64, n int) []float64 {
	if n == 1 {
		return []float64{lo}
	}
	vals := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range vals {
		vals[i] = lo + float64(i)*step
	}
	vals[n-1] = hi // exact endpoint despite rounding
	return vals
}
