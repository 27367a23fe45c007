package queuebench

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SweepConfig controls grid evaluation over (λ, μ) ranges.
type SweepConfig struct {
	LambdaMin  float64 `yaml:"lambda_min"` // Arrival rate axis start (req/s)
	LambdaMax  float64 `yaml:"lambda_max"` // Arrival rate axis end
	MuMin      float64 `yaml:"mu_min"`     // Service rate axis start (req/s)
	MuMax      float64 `yaml:"mu_max"`     // Service rate axis end
	Resolution int     `yaml:"resolution"` // Points per axis

	Servers []int `yaml:"servers"` // Candidate pool sizes to sweep

	// TargetSojourn is the W threshold (seconds) used by feasibility
	// counting. SojournInflation scales Wq before adding service time
	// (p95-style adjustment); it is applied by the sweep layer only and
	// never inside the metric formulas. 0 means no inflation.
	TargetSojourn    float64 `yaml:"target_sojourn"`
	SojournInflation float64 `yaml:"sojourn_inflation"`

	Workers int `yaml:"workers"` // Parallel row workers (0 = GOMAXPROCS)
}

// DefaultSweepConfig returns the ranges used for sizing a request-handling
// pool: λ 50–250 req/s, μ 10–50 req/s per replica, candidate pools of
// 6, 8 and 10 replicas, 200ms response-time target.
func DefaultSweepConfig() SweepConfig {
	return SweepConfig{
		LambdaMin:        50,
		LambdaMax:        250,
		MuMin:            10,
		MuMax:            50,
		Resolution:       200,
		Servers:          []int{6, 8, 10},
		TargetSojourn:    0.2,
		SojournInflation: 1,
		Workers:          0,
	}
}

// Validate checks the config for static mistakes. Data-dependent
// conditions (unstable cells, μ crossing zero mid-axis) are not errors;
// they degrade per-cell via the sentinel policy.
func (c SweepConfig) Validate() error {
	if c.Resolution < 1 {
		return &DomainError{Op: "SweepConfig", Detail: fmt.Sprintf("resolution=%d, need ≥ 1", c.Resolution)}
	}
	if c.LambdaMax < c.LambdaMin {
		return &DomainError{Op: "SweepConfig", Detail: "lambda_max < lambda_min"}
	}
	if c.MuMax < c.MuMin {
		return &DomainError{Op: "SweepConfig", Detail: "mu_max < mu_min"}
	}
	if len(c.Servers) == 0 {
		return &DomainError{Op: "SweepConfig", Detail: "no server counts configured"}
	}
	for _, n := range c.Servers {
		if n < 1 {
			return &DomainError{Op: "SweepConfig", Detail: fmt.Sprintf("server count %d, need ≥ 1", n)}
		}
	}
	return nil
}

// LoadSweepConfig reads a YAML sweep config, filling unset fields from
// DefaultSweepConfig.
func LoadSweepConfig(path string) (SweepConfig, error) {
	cfg := DefaultSweepConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read sweep config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse sweep config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
