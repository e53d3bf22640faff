package main

import (
	"context"
	"fmt"
	"runtime"

	"github.com/KromDaniel/dispatchbench/internal/config"
	"github.com/KromDaniel/dispatchbench/pkg/dispatchbench"
	"github.com/spf13/cobra"
)

type singleOp func(*dispatchbench.Bench, context.Context, dispatchbench.Case) error

type sweepOp func(*dispatchbench.Bench, context.Context, dispatchbench.Range) (dispatchbench.Tally, error)

func newRootCmd() *cobra.Command {
	g := &globalFlags{}
	root := &cobra.Command{
		Use:   "dispatchbench",
		Short: "Compare static and dynamic dispatch in generated Go programs",
		Long: `dispatchbench writes pairs of Go programs that call the same behavior
through a generic type parameter (static) or an interface value (dynamic),
then builds and runs them to measure compile time, binary size, run time
and symbol counts.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	g.register(root.PersistentFlags())

	root.AddCommand(
		newSingleCmd(g, "generate", "Write the static and dynamic sources of one case", (*dispatchbench.Bench).GenerateOne, false),
		newSingleCmd(g, "build", "Compile both sources of one generated case", (*dispatchbench.Bench).BuildOne, true),
		newSingleCmd(g, "run", "Execute both binaries of one built case", (*dispatchbench.Bench).RunOne, false),
		newSweepCmd(g, "generate-all", "Generate every point of a sweep", (*dispatchbench.Bench).GenerateAll, false),
		newSweepCmd(g, "build-all", "Build every point of a sweep", (*dispatchbench.Bench).BuildAll, true),
		newSweepCmd(g, "run-all", "Run every point of a sweep", (*dispatchbench.Bench).RunAll, false),
		newPlanCmd(),
		newConfigCmd(g),
		newVersionCmd(),
	)
	return root
}

func newSingleCmd(g *globalFlags, name, short string, op singleOp, withSymbols bool) *cobra.Command {
	c := &caseFlags{}
	var symbols bool
	cmd := &cobra.Command{
		Use:   name,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := g.options(cmd.Flags(), symbols)
			if err != nil {
				return err
			}
			opts.Stdout, opts.Stderr = cmd.OutOrStdout(), cmd.ErrOrStderr()
			bench, err := dispatchbench.New(opts)
			if err != nil {
				return err
			}
			return op(bench, cmd.Context(), c.config())
		},
	}
	c.register(cmd.Flags())
	if withSymbols {
		cmd.Flags().BoolVar(&symbols, "symbols", false, "Count method and wrapper symbols in each binary")
	}
	return cmd
}

func newSweepCmd(g *globalFlags, name, short string, op sweepOp, withSymbols bool) *cobra.Command {
	c := &caseFlags{}
	s := &stepFlags{}
	var symbols bool
	cmd := &cobra.Command{
		Use:   name,
		Short: short,
		Long: short + `.

--types, --functions and --calls are the inclusive upper bounds of each
axis. Every axis starts at its step and advances by it; a step of 0 pins
the axis at its bound. An axis whose count is not given stays at its
default of 1 unless its own step flag is set. Failed points are reported and skipped. The command
fails only if every point failed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := g.options(cmd.Flags(), symbols)
			if err != nil {
				return err
			}
			opts.Stdout, opts.Stderr = cmd.OutOrStdout(), cmd.ErrOrStderr()
			bench, err := dispatchbench.New(opts)
			if err != nil {
				return err
			}
			tally, err := op(bench, cmd.Context(), s.sweep(cmd.Flags(), c))
			if err != nil {
				return err
			}
			return tally.Err()
		},
	}
	c.register(cmd.Flags())
	s.register(cmd.Flags())
	if withSymbols {
		cmd.Flags().BoolVar(&symbols, "symbols", false, "Count method and wrapper symbols in each binary")
	}
	return cmd
}

func newPlanCmd() *cobra.Command {
	c := &caseFlags{}
	s := &stepFlags{}
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Print the configuration points of a sweep without running it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r := s.sweep(cmd.Flags(), c)
			if err := r.Validate(); err != nil {
				return err
			}
			if r.Len() == 0 {
				return fmt.Errorf("sweep has no configuration points")
			}
			fmt.Fprint(cmd.OutOrStdout(), dispatchbench.Plan(r))
			return nil
		},
	}
	c.register(cmd.Flags())
	s.register(cmd.Flags())
	return cmd
}

func newConfigCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the config file merged with defaults as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(g.configPath)
			if err != nil {
				return err
			}
			data, err := cfg.Marshal()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "dispatchbench %s (%s %s/%s)\n", version, runtime.Version(), runtime.GOOS, runtime.GOARCH)
		},
	}
}
