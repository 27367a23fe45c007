package main

import (
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"github.com/alexshd/queuebench"
)

func main() {
	slog.SetDefault(slog.New(
		tint.NewHandler(os.Stderr, &tint.Options{
			Level:      slog.LevelInfo,
			TimeFormat: time.Kitchen,
		}),
	))

	root := &cobra.Command{
		Use:   "queuebench",
		Short: "Steady-state M/M/c capacity planning for server pools",
		Long: `queuebench models a pool of identical parallel workers as an M/M/c queue
and computes its steady-state performance: utilization, Erlang-C wait
probability, mean queue length, wait time and sojourn time.

Use it to answer "how many replicas do I need to keep waits under my
latency target?" for a single operating point, a sizing decision, or a
full (arrival rate × service rate) grid.`,
	}

	root.AddCommand(metricsCmd(), sweepCmd(), sizeCmd())

	if err := root.Execute(); err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
}

func metricsCmd() *cobra.Command {
	var (
		lambda  float64
		mu      float64
		servers int
	)

	cmd := &cobra.Command{
		Use:   "metrics",
		Short: "Compute steady-state metrics for one (λ, μ, c) point",
		RunE: func(cmd *cobra.Command, args []string) error {
			m := queuebench.Evaluate(lambda, mu, servers)

			tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintf(tw, "λ (arrival rate)\t%.4f req/s\n", lambda)
			fmt.Fprintf(tw, "μ (service rate)\t%.4f req/s per server\n", mu)
			fmt.Fprintf(tw, "c (servers)\t%d\n", servers)
			fmt.Fprintf(tw, "stability boundary\tλ = c·μ = %.4f req/s\n", queuebench.StabilityBoundary(mu, servers))
			fmt.Fprintf(tw, "state\t%s\n", m.State)

			if !m.Stable() {
				tw.Flush()
				slog.Warn("no steady state at this point", "state", string(m.State))
				return nil
			}

			fmt.Fprintf(tw, "ρ (utilization)\t%.6f\n", m.Rho)
			fmt.Fprintf(tw, "Pc (wait probability)\t%.6f\n", m.WaitProbability)
			fmt.Fprintf(tw, "Lq (mean waiting)\t%.6f\n", m.QueueLength)
			fmt.Fprintf(tw, "Wq (mean wait)\t%.6f s\n", m.WaitTime)
			fmt.Fprintf(tw, "L (mean in system)\t%.6f\n", m.InSystem)
			fmt.Fprintf(tw, "W (mean sojourn)\t%.6f s\n", m.SojournTime)
			return tw.Flush()
		},
	}

	cmd.Flags().Float64VarP(&lambda, "lambda", "l", 100, "arrival rate λ (req/s)")
	cmd.Flags().Float64VarP(&mu, "mu", "m", 20, "per-server service rate μ (req/s)")
	cmd.Flags().IntVarP(&servers, "servers", "c", 6, "number of parallel servers")
	return cmd
}

func sweepCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Evaluate a (λ × μ) grid for each candidate pool size",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := queuebench.DefaultSweepConfig()
			if configPath != "" {
				loaded, err := queuebench.LoadSweepConfig(configPath)
				if err != nil {
					return err
				}
				cfg = loaded
				slog.Info("loaded sweep config", "path", configPath)
			}

			slog.Info("sweeping grid",
				"lambda", fmt.Sprintf("%.0f..%.0f", cfg.LambdaMin, cfg.LambdaMax),
				"mu", fmt.Sprintf("%.0f..%.0f", cfg.MuMin, cfg.MuMax),
				"resolution", cfg.Resolution,
				"servers", cfg.Servers)

			start := time.Now()
			surfaces, err := queuebench.Sweep(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			slog.Info("sweep complete", "elapsed", time.Since(start))

			tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "SERVERS\tSTABLE CELLS\tWITHIN TARGET\tMIN Wq (s)\tMAX Wq (s)\tBOUNDARY @ μmax")
			for _, s := range surfaces {
				total := cfg.Resolution * cfg.Resolution
				within := s.WithinTarget(cfg.TargetSojourn, cfg.SojournInflation)
				minWq, maxWq, ok := s.MinMaxWait()
				if !ok {
					fmt.Fprintf(tw, "%d\t0/%d\t0\t-\t-\t%.1f\n",
						s.Servers, total, queuebench.StabilityBoundary(cfg.MuMax, s.Servers))
					continue
				}
				fmt.Fprintf(tw, "%d\t%d/%d\t%d\t%.6f\t%.6f\t%.1f\n",
					s.Servers, s.StableCount(), total, within, minWq, maxWq,
					queuebench.StabilityBoundary(cfg.MuMax, s.Servers))
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "f", "", "YAML sweep config (defaults cover λ 50–250, μ 10–50)")
	return cmd
}

func sizeCmd() *cobra.Command {
	var (
		lambda     float64
		mu         float64
		current    int
		maxServers int
		targetWait float64
	)

	cmd := &cobra.Command{
		Use:   "size",
		Short: "Recommend a pool size for a wait-time target",
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := queuebench.RecommendServers(queuebench.SizingRequest{
				Lambda:     lambda,
				Mu:         mu,
				CurrentN:   current,
				MaxServers: maxServers,
				TargetWait: targetWait,
			})
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintf(tw, "decision\t%s\n", rec.Decision)
			fmt.Fprintf(tw, "target pool size\t%d\n", rec.TargetN)
			if !queuebench.IsUndefined(rec.Rho) {
				fmt.Fprintf(tw, "ρ at target\t%.4f\n", rec.Rho)
				fmt.Fprintf(tw, "Wq at target\t%.6f s\n", rec.WaitTime)
				fmt.Fprintf(tw, "headroom\t%.1f%%\n", rec.Headroom*100)
			}
			fmt.Fprintf(tw, "risk\t%s\n", rec.Risk)
			fmt.Fprintf(tw, "reason\t%s\n", rec.Reason)
			return tw.Flush()
		},
	}

	cmd.Flags().Float64VarP(&lambda, "lambda", "l", 100, "arrival rate λ (req/s)")
	cmd.Flags().Float64VarP(&mu, "mu", "m", 20, "per-server service rate μ (req/s)")
	cmd.Flags().IntVarP(&current, "current", "c", 1, "current pool size")
	cmd.Flags().IntVar(&maxServers, "max-servers", 0, "search ceiling (0 = 1024)")
	cmd.Flags().Float64VarP(&targetWait, "target-wait", "t", 0.05, "Wq target in seconds")
	return cmd
}
