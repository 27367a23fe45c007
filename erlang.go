package queuebench

import (
	"fmt"
	"math"
)

// DomainError reports invalid static parameters (c < 1, zero divisor, μ ≤ 0).
// It indicates a programming or configuration mistake, not a data point that
// happens to fall outside the stable region.
type DomainError struct {
	Op     string // Function that rejected the input
	Detail string // What was wrong
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("queuebench: %s: %s", e.Op, e.Detail)
}

// Undefined is the sentinel for metrics with no steady-state value:
// unstable systems (ρ ≥ 1), μ ≤ 0 on the sweep path, or intermediate
// overflow. It is IEEE NaN so elementwise grid consumers can carry it
// through arithmetic without aborting a sweep.
func Undefined() float64 {
	return math.NaN()
}

// IsUndefined reports whether v is the undefined sentinel.
func IsUndefined(v float64) bool {
	return math.IsNaN(v)
}

// Utilization returns ρ = λ / (c·μ), the offered load per server.
// The system has a finite steady state iff ρ < 1.
func Utilization(lambda, mu float64, c int) (float64, error) {
	if c < 1 {
		return 0, &DomainError{Op: "Utilization", Detail: fmt.Sprintf("server count c=%d, need c ≥ 1", c)}
	}
	if float64(c)*mu == 0 {
		return 0, &DomainError{Op: "Utilization", Detail: "c·μ = 0 (division by zero)"}
	}
	return lambda / (float64(c) * mu), nil
}

// ArrivalRate returns λ = ρ·c·μ, the arrival rate that produces
// utilization ρ. Exact algebraic inverse of Utilization.
func ArrivalRate(rho, mu float64, c int) (float64, error) {
	if c < 1 {
		return 0, &DomainError{Op: "ArrivalRate", Detail: fmt.Sprintf("server count c=%d, need c ≥ 1", c)}
	}
	return rho * float64(c) * mu, nil
}

// ServiceRate returns μ = λ / (ρ·c), the per-server service rate implied
// by λ and ρ. Exact algebraic inverse of Utilization.
func ServiceRate(lambda, rho float64, c int) (float64, error) {
	if c < 1 {
		return 0, &DomainError{Op: "ServiceRate", Detail: fmt.Sprintf("server count c=%d, need c ≥ 1", c)}
	}
	if rho*float64(c) == 0 {
		return 0, &DomainError{Op: "ServiceRate", Detail: "ρ·c = 0 (division by zero)"}
	}
	return lambda / (rho * float64(c)), nil
}

// ErlangC returns Pc, the probability an arriving unit finds all c servers
// busy and must wait.
//
// Textbook form, with a = c·ρ (offered traffic in Erlangs):
//
//	S  = Σ_{n=0}^{c-1} aⁿ/n!
//	T  = a^c / (c!·(1−ρ))
//	Pc = T / (S + T)
//
// a^c and c! overflow float64 well before c reaches useful pool sizes, so
// the implementation accumulates the Erlang-B blocking probability with a
// term-ratio recurrence and converts:
//
//	B(0) = 1
//	B(n) = a·B(n−1) / (n + a·B(n−1))
//	Pc   = B(c) / (1 − ρ·(1 − B(c)))
//
// Every step stays in [0, 1], so no intermediate value can overflow.
// Equivalence with the textbook form is covered by tests for c ≤ 20.
//
// Returns the undefined sentinel for ρ ≥ 1 (unstable) or if the result is
// not a valid probability; returns a DomainError only for c < 1.
func ErlangC(rho float64, c int) (float64, error) {
	if c < 1 {
		return 0, &DomainError{Op: "ErlangC", Detail: fmt.Sprintf("server count c=%d, need c ≥ 1", c)}
	}
	if rho < 0 || rho >= 1 {
		return Undefined(), nil
	}
	if rho == 0 {
		return 0, nil
	}

	a := float64(c) * rho

	// Erlang-B recurrence
	b := 1.0
	for n := 1; n <= c; n++ {
		b = a * b / (float64(n) + a*b)
	}

	pc := b / (1 - rho*(1-b))
	if math.IsNaN(pc) || math.IsInf(pc, 0) || pc < 0 || pc > 1 {
		return Undefined(), nil
	}
	return pc, nil
}

// MeanQueueLength returns Lq, the mean number of units waiting for service:
//
//	Lq = Pc·ρ / (1 − ρ)
//
// Returns the undefined sentinel for ρ ≥ 1 (queue grows without bound).
func MeanQueueLength(rho float64, c int) (float64, error) {
	pc, err := ErlangC(rho, c)
	if err != nil {
		return 0, err
	}
	if IsUndefined(pc) {
		return Undefined(), nil
	}
	return pc * rho / (1 - rho), nil
}

// EmptyProbability returns P0, the steady-state probability that the system
// holds zero units:
//
//	P0 = 1 / (S + T)
//
// with S and T as in ErlangC. Evaluated with an incremental term ratio
// (term_n = term_{n-1}·a/n) so no separate huge numerator or denominator is
// formed; an overflowing partial sum degrades to the undefined sentinel.
func EmptyProbability(rho float64, c int) (float64, error) {
	if c < 1 {
		return 0, &DomainError{Op: "EmptyProbability", Detail: fmt.Sprintf("server count c=%d, need c ≥ 1", c)}
	}
	if rho < 0 || rho >= 1 {
		return Undefined(), nil
	}

	a := float64(c) * rho

	term := 1.0 // a^n / n!, starting at n = 0
	sum := 0.0  // S = Σ_{n=0}^{c-1}
	for n := 0; n < c; n++ {
		sum += term
		term = term * a / float64(n+1)
	}
	// term now holds a^c / c!
	tail := term / (1 - rho)

	p0 := 1 / (sum + tail)
	if math.IsNaN(p0) || math.IsInf(p0, 0) || p0 <= 0 {
		return Undefined(), nil
	}
	return p0, nil
}

// MeanQueueLengthDirect returns Lq computed from λ and μ without a
// pre-computed wait probability:
//
//	Lq = (a^c·ρ / (c!·(1−ρ)²)) · P0
//
// Agrees with MeanQueueLength to floating-point tolerance wherever both are
// defined; the equivalence is covered by tests.
func MeanQueueLengthDirect(lambda, mu float64, c int) (float64, error) {
	if mu <= 0 {
		return 0, &DomainError{Op: "MeanQueueLengthDirect", Detail: fmt.Sprintf("service rate μ=%g, need μ > 0", mu)}
	}
	rho, err := Utilization(lambda, mu, c)
	if err != nil {
		return 0, err
	}
	if rho < 0 || rho >= 1 {
		return Undefined(), nil
	}

	p0, err := EmptyProbability(rho, c)
	if err != nil {
		return 0, err
	}
	if IsUndefined(p0) {
		return Undefined(), nil
	}

	a := float64(c) * rho
	term := 1.0 // a^c / c! via the same incremental ratio
	for n := 1; n <= c; n++ {
		term = term * a / float64(n)
	}

	lq := term * rho / ((1 - rho) * (1 - rho)) * p0
	if math.IsNaN(lq) || math.IsInf(lq, 0) || lq < 0 {
		return Undefined(), nil
	}
	return lq, nil
}

// MeanWait returns Wq = Lq/λ, the mean time a unit spends waiting before
// service begins (Little's law). λ = 0 is a DomainError here; the sweep
// path (Evaluate) treats an empty system as Wq = 0 instead, since nothing
// waits when nothing arrives.
func MeanWait(lq, lambda float64) (float64, error) {
	if lambda == 0 {
		return 0, &DomainError{Op: "MeanWait", Detail: "arrival rate λ = 0 (division by zero)"}
	}
	if IsUndefined(lq) {
		return Undefined(), nil
	}
	return lq / lambda, nil
}

// MeanInSystem returns L = Lq + c·ρ, the mean number of units present
// (waiting plus in service).
func MeanInSystem(lq, rho float64, c int) float64 {
	if IsUndefined(lq) || IsUndefined(rho) {
		return Undefined()
	}
	return lq + float64(c)*rho
}

// MeanSojourn returns W = Wq + 1/μ, the mean total time in the system.
func MeanSojourn(wq, mu float64) (float64, error) {
	if mu == 0 {
		return 0, &DomainError{Op: "MeanSojourn", Detail: "service rate μ = 0 (division by zero)"}
	}
	if IsUndefined(wq) {
		return Undefined(), nil
	}
	return wq + 1/mu, nil
}
