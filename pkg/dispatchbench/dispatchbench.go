// Package dispatchbench generates matched pairs of Go programs that differ
// only in how a shared behavior is dispatched (generic type parameter versus
// interface value), builds and runs them, and reports compile time, binary
// size, run time and symbol counts.
package dispatchbench

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/KromDaniel/dispatchbench/internal/cases"
	"github.com/KromDaniel/dispatchbench/internal/driver"
	"github.com/KromDaniel/dispatchbench/internal/params"
	"github.com/KromDaniel/dispatchbench/internal/report"
	"github.com/KromDaniel/dispatchbench/internal/sweep"
)

// Case is one configuration point.
type Case = params.CaseConfig

// Axis is one dimension of a sweep.
type Axis = params.Axis

// Range is a sweep over the three count axes.
type Range = params.SweepRange

// Tally counts the outcomes of a sweep.
type Tally = sweep.Tally

// ErrAllPointsFailed is wrapped by Tally.Err when no point of a sweep succeeded.
var ErrAllPointsFailed = sweep.ErrAllPointsFailed

// Options configures a Bench.
type Options struct {
	// OutDir is where sources, binaries and assembly listings are written
	OutDir string

	// NameFields selects 3 (default), 2 or 1 count fields in artifact names
	NameFields int

	// GoCommand is the compiler driver (default: "go")
	GoCommand string

	// Env is appended to the environment of compiler invocations
	Env []string

	// SymbolCommand lists symbols of a binary (default: go tool nm)
	SymbolCommand []string

	// Symbols enables symbol classification after each build
	Symbols bool

	// Format is "text" (default) or "json"
	Format string

	// Verbose enables tracing on Stderr
	Verbose bool

	// Stdout receives measurements, Stderr receives diagnostics
	Stdout io.Writer
	Stderr io.Writer
}

// Validate checks if the options are valid.
func (o Options) Validate() error {
	if o.OutDir == "" {
		return fmt.Errorf("output directory cannot be empty")
	}
	if o.NameFields < 0 || o.NameFields > 3 {
		return fmt.Errorf("name fields must be 1, 2 or 3")
	}
	if _, err := report.ParseFormat(o.Format); err != nil {
		return err
	}
	return nil
}

// Bench runs generate, build and run operations.
type Bench struct {
	layout     *cases.Materializer
	controller *sweep.Controller
}

// New creates a Bench using the real toolchain.
func New(opts Options) (*Bench, error) {
	return newBench(opts, driver.NewExecRunner())
}

func newBench(opts Options, runner driver.ProcessRunner) (*Bench, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	format, _ := report.ParseFormat(opts.Format)
	stdout, stderr := opts.Stdout, opts.Stderr
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}

	logger := report.NewLogger(opts.Verbose)
	logger.SetOutput(stderr)

	toolchain := driver.DefaultToolchain()
	if opts.GoCommand != "" {
		toolchain.GoCommand = opts.GoCommand
	}
	if len(opts.SymbolCommand) > 0 {
		toolchain.SymbolCommand = opts.SymbolCommand
	}
	toolchain.Env = opts.Env

	layout := cases.NewMaterializer(opts.OutDir)
	if opts.NameFields != 0 {
		if err := layout.SetNameFields(opts.NameFields); err != nil {
			return nil, err
		}
	}
	layout.SetLogger(logger)

	builder := driver.NewBuilder(toolchain, runner, layout)
	builder.SetSymbols(opts.Symbols)
	builder.SetLogger(logger)

	executor := driver.NewExecutor(runner, layout)
	executor.SetLogger(logger)

	controller := sweep.NewController(
		sweep.NewHarness(layout, builder, executor),
		report.NewReporter(stdout, stderr, format),
	)
	controller.SetLogger(logger)

	return &Bench{layout: layout, controller: controller}, nil
}

// Paths returns the source, binary and assembly paths of c for the "static"
// or "dynamic" strategy.
func (b *Bench) Paths(c Case, strategy string) (source, binary, asm string, err error) {
	s, err := params.ParseStrategy(strategy)
	if err != nil {
		return "", "", "", err
	}
	p := b.layout.Paths(c, s)
	return p.Source, p.Binary, p.Asm, nil
}

// GenerateOne writes both sources of c.
func (b *Bench) GenerateOne(ctx context.Context, c Case) error {
	return b.controller.One(ctx, c, params.PhaseGenerate)
}

// BuildOne compiles both sources of a generated case.
func (b *Bench) BuildOne(ctx context.Context, c Case) error {
	return b.controller.One(ctx, c, params.PhaseBuild)
}

// RunOne executes both binaries of a built case.
func (b *Bench) RunOne(ctx context.Context, c Case) error {
	return b.controller.One(ctx, c, params.PhaseRun)
}

// GenerateAll generates every point of r.
func (b *Bench) GenerateAll(ctx context.Context, r Range) (Tally, error) {
	return b.controller.Sweep(ctx, r, params.PhaseGenerate)
}

// BuildAll builds every point of r, continuing past failed points.
func (b *Bench) BuildAll(ctx context.Context, r Range) (Tally, error) {
	return b.controller.Sweep(ctx, r, params.PhaseBuild)
}

// RunAll runs every point of r, continuing past failed points.
func (b *Bench) RunAll(ctx context.Context, r Range) (Tally, error) {
	return b.controller.Sweep(ctx, r, params.PhaseRun)
}

// Plan renders the configuration points of r as a tree.
func Plan(r Range) string {
	return report.PlanTree(r).String()
}
