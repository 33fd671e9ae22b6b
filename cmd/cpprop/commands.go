package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/gitrdm/gokanprop/internal/parallel"
	"github.com/gitrdm/gokanprop/pkg/cp"
	"github.com/gitrdm/gokanprop/pkg/modelfile"
	"github.com/gitrdm/gokanprop/pkg/search"
)

// app holds what the global flags set up for the subcommands.
type app struct {
	debug   bool
	metrics bool

	log      *logrus.Logger
	registry *prometheus.Registry
	engine   *cp.Metrics
}

func (a *app) config() *cp.Config {
	cfg := cp.DefaultConfig()
	cfg.Logger = a.log
	cfg.Metrics = a.engine
	return cfg
}

func newRootCmd() *cobra.Command {
	a := &app{log: logrus.New()}
	root := &cobra.Command{
		Use:           "cpprop",
		Short:         "Propagate and solve finite-domain constraint models",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a.log.SetOutput(cmd.ErrOrStderr())
			if a.debug {
				a.log.SetLevel(logrus.DebugLevel)
			}
			if a.metrics {
				a.registry = prometheus.NewRegistry()
				m, err := cp.NewMetrics(a.registry)
				if err != nil {
					return err
				}
				a.engine = m
			}
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if a.registry == nil {
				return nil
			}
			return dumpMetrics(cmd.OutOrStdout(), a.registry)
		},
	}
	root.PersistentFlags().BoolVar(&a.debug, "debug", false, "enable debug logging")
	root.PersistentFlags().BoolVar(&a.metrics, "metrics", false, "print engine metrics in the Prometheus text format")

	root.AddCommand(newPropagateCmd(a), newSolveCmd(a), newVersionCmd())
	return root
}

func newPropagateCmd(a *app) *cobra.Command {
	var workers int
	cmd := &cobra.Command{
		Use:   "propagate FILE...",
		Short: "Post every constraint of each model and print the pruned domains",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			results, err := parallel.PropagateFiles(cmd.Context(), args, workers, a.config())
			out := cmd.OutOrStdout()
			rejected := 0
			for _, r := range results {
				if r.Err != nil {
					rejected++
					fmt.Fprintf(out, "%s: %v\n", r.Path, r.Err)
					continue
				}
				fmt.Fprintf(out, "%s: %s\n", r.Path, r.Model.Outcome)
				if r.Model.Outcome != cp.Failure {
					fmt.Fprintf(out, "  %s\n", r.Model.Store)
				}
			}
			if err != nil {
				return err
			}
			if rejected > 0 {
				return errors.Errorf("%d of %d files could not be propagated", rejected, len(results))
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&workers, "workers", 0, "files propagated concurrently (0 for one per CPU)")
	return cmd
}

func newSolveCmd(a *app) *cobra.Command {
	var (
		limit     int
		timeout   time.Duration
		heuristic string
	)
	cmd := &cobra.Command{
		Use:   "solve FILE",
		Short: "Enumerate the solutions of a model by depth-first search",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := modelfile.LoadFile(args[0])
			if err != nil {
				return err
			}
			m, err := f.Build(a.config())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if m.Outcome == cp.Failure {
				fmt.Fprintln(out, "no solution: the model is inconsistent")
				return nil
			}

			cfg := m.SearchConfig()
			cfg.Logger = a.log
			if cmd.Flags().Changed("limit") {
				cfg.MaxSolutions = limit
			}
			if heuristic != "" {
				h, err := search.ParseHeuristic(heuristic)
				if err != nil {
					return err
				}
				cfg.Heuristic = h
			}

			ctx := cmd.Context()
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}
			solver := search.NewSolverWithConfig(m.Store, m.SearchVars(), cfg)
			err = solver.Each(ctx, func([]int) bool {
				fmt.Fprintln(out, m.Store)
				return true
			})
			stats := solver.Stats()
			if stats.Solutions == 0 && err == nil {
				fmt.Fprintln(out, "no solution")
			}
			a.log.WithField("stats", stats.String()).Info("search finished")
			return err
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "stop after this many solutions (0 for all); overrides the model file")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "give up after this long (0 for no limit)")
	cmd.Flags().StringVar(&heuristic, "heuristic", "", "variable selection: lex or dom; overrides the model file")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the engine version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			v := cp.GetVersionInfo()
			fmt.Fprintf(cmd.OutOrStdout(), "cpprop %s (%s)\n", v.Version, v.GoVersion)
		},
	}
}

func dumpMetrics(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return errors.Wrap(err, "gathering metrics")
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return errors.Wrap(err, "writing metrics")
		}
	}
	return nil
}
