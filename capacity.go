package queuebench

import (
	"fmt"
	"math"
)

// SizingDecision represents the recommended change to a server pool.
type SizingDecision string

const (
	Hold          SizingDecision = "HOLD"           // Current pool meets the target with sane utilization
	AddServers    SizingDecision = "ADD_SERVERS"    // Pool too small for the wait target (or unstable)
	RemoveServers SizingDecision = "REMOVE_SERVERS" // Pool oversized, target still met with fewer servers
	Infeasible    SizingDecision = "INFEASIBLE"     // No pool size within MaxServers meets the target
)

// SizingRequest describes the workload and the latency target.
type SizingRequest struct {
	Lambda     float64 // Arrival rate (req/s)
	Mu         float64 // Per-server service rate (req/s)
	CurrentN   int     // Current pool size
	MaxServers int     // Search ceiling (0 = 1024)
	TargetWait float64 // Wq target in seconds
}

// SizingRecommendation carries the decision and the numbers behind it.
type SizingRecommendation struct {
	Decision SizingDecision
	TargetN  int     // Recommended pool size
	Rho      float64 // Utilization at TargetN
	WaitTime float64 // Wq at TargetN (seconds)
	Headroom float64 // How far below the target Wq sits, as a fraction
	Reason   string  // Human-readable explanation
	Risk     string  // LOW, MEDIUM, HIGH, CRITICAL
}

// MinServersFor returns the smallest pool size c such that the system is
// stable and Wq ≤ targetWait. The scan starts just above the stability
// boundary (c > λ/μ), so the total cost is O(maxServers) evaluations of
// O(c) each.
func MinServersFor(lambda, mu, targetWait float64, maxServers int) (int, error) {
	if mu <= 0 {
		return 0, &DomainError{Op: "MinServersFor", Detail: fmt.Sprintf("service rate μ=%g, need μ > 0", mu)}
	}
	if lambda < 0 {
		return 0, &DomainError{Op: "MinServersFor", Detail: fmt.Sprintf("arrival rate λ=%g, need λ ≥ 0", lambda)}
	}
	if targetWait < 0 {
		return 0, &DomainError{Op: "MinServersFor", Detail: fmt.Sprintf("target wait %g, need ≥ 0", targetWait)}
	}
	if maxServers < 1 {
		maxServers = 1024
	}

	if lambda == 0 {
		return 1, nil // empty system: one server, zero wait
	}

	// Stability requires c > λ/μ strictly (equality is unstable).
	start := int(math.Floor(lambda/mu)) + 1
	if start < 1 {
		start = 1
	}

	for c := start; c <= maxServers; c++ {
		m := Evaluate(lambda, mu, c)
		if !m.Stable() {
			continue
		}
		if m.WaitTime <= targetWait {
			return c, nil
		}
	}
	return 0, fmt.Errorf("no pool of ≤ %d servers meets Wq ≤ %gs at λ=%g, μ=%g", maxServers, targetWait, lambda, mu)
}

// RecommendServers sizes a pool of identical servers against a wait-time
// target.
//
// The decision tree mirrors how an operator reasons about a replica pool:
//
//   - current pool unstable or over target  →  ADD_SERVERS
//   - smaller pool still meets the target   →  REMOVE_SERVERS
//   - target unreachable within MaxServers  →  INFEASIBLE
//   - otherwise                             →  HOLD
//
// Risk grades on utilization at the recommended size: the closer ρ sits to
// 1, the less absorption the pool has for traffic bursts.
func RecommendServers(req SizingRequest) (SizingRecommendation, error) {
	if req.Mu <= 0 {
		return SizingRecommendation{}, &DomainError{Op: "RecommendServers", Detail: fmt.Sprintf("service rate μ=%g, need μ > 0", req.Mu)}
	}
	if req.CurrentN < 1 {
		return SizingRecommendation{}, &DomainError{Op: "RecommendServers", Detail: fmt.Sprintf("current pool size %d, need ≥ 1", req.CurrentN)}
	}

	minN, err := MinServersFor(req.Lambda, req.Mu, req.TargetWait, req.MaxServers)
	if err != nil {
		// Target unreachable: report the boundary so the caller can see
		// how far off the requirement is.
		boundary := StabilityBoundary(req.Mu, req.CurrentN)
		return SizingRecommendation{
			Decision: Infeasible,
			TargetN:  req.CurrentN,
			Rho:      Undefined(),
			WaitTime: Undefined(),
			Reason: fmt.Sprintf("no feasible pool size: λ=%.1f req/s needs Wq ≤ %.3fs, "+
				"current boundary λ=c·μ=%.1f", req.Lambda, req.TargetWait, boundary),
			Risk: "CRITICAL",
		}, nil
	}

	at := Evaluate(req.Lambda, req.Mu, minN)
	rec := SizingRecommendation{
		TargetN:  minN,
		Rho:      at.Rho,
		WaitTime: at.WaitTime,
		Risk:     riskFromUtilization(at.Rho),
	}
	if req.TargetWait > 0 && at.Stable() {
		rec.Headroom = 1 - at.WaitTime/req.TargetWait
	}

	current := Evaluate(req.Lambda, req.Mu, req.CurrentN)
	switch {
	case !current.Stable():
		rec.Decision = AddServers
		rec.Reason = fmt.Sprintf("pool of %d is unstable (λ=%.1f ≥ c·μ=%.1f); need %d servers",
			req.CurrentN, req.Lambda, StabilityBoundary(req.Mu, req.CurrentN), minN)

	case minN > req.CurrentN:
		rec.Decision = AddServers
		rec.Reason = fmt.Sprintf("pool of %d gives Wq=%.4fs over the %.3fs target; %d servers bring it to %.4fs",
			req.CurrentN, current.WaitTime, req.TargetWait, minN, at.WaitTime)

	case minN < req.CurrentN:
		rec.Decision = RemoveServers
		rec.Reason = fmt.Sprintf("pool of %d servers still meets Wq ≤ %.3fs (Wq=%.4fs); %d are surplus",
			minN, req.TargetWait, at.WaitTime, req.CurrentN-minN)

	default:
		rec.Decision = Hold
		rec.TargetN = req.CurrentN
		rec.Rho = current.Rho
		rec.WaitTime = current.WaitTime
		rec.Risk = riskFromUtilization(current.Rho)
		rec.Reason = fmt.Sprintf("pool of %d meets the target exactly at Wq=%.4fs (ρ=%.3f)",
			req.CurrentN, current.WaitTime, current.Rho)
	}

	return rec, nil
}

// riskFromUtilization grades burst headroom at a given ρ.
func riskFromUtilization(rho float64) string {
	switch {
	case IsUndefined(rho) || rho >= 1:
		return "CRITICAL"
	case rho >= 0.9:
		return "HIGH"
	case rho >= 0.75:
		return "MEDIUM"
	default:
		return "LOW"
	}
}
