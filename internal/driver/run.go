package driver

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/KromDaniel/dispatchbench/internal/cases"
	"github.com/KromDaniel/dispatchbench/internal/params"
	"github.com/KromDaniel/dispatchbench/internal/report"
)

// Executor runs built benchmark binaries. No timeout is applied: a binary
// that never exits blocks the caller.
type Executor struct {
	runner ProcessRunner
	layout *cases.Materializer
	logger *report.Logger
}

// NewExecutor creates an executor resolving binaries through layout.
func NewExecutor(runner ProcessRunner, layout *cases.Materializer) *Executor {
	return &Executor{
		runner: runner,
		layout: layout,
		logger: report.Discard(),
	}
}

// SetLogger sets the verbose logger.
func (e *Executor) SetLogger(l *report.Logger) {
	e.logger = l
}

// Run executes the binary of config realized with strategy and measures its
// wall-clock time.
func (e *Executor) Run(ctx context.Context, config params.CaseConfig, strategy params.Strategy) (params.Measurement, error) {
	m := params.Measurement{Config: config, Strategy: strategy, Phase: params.PhaseRun}
	if err := config.Buildable(); err != nil {
		return m, err
	}

	binary := e.layout.Paths(config, strategy).Binary
	if err := cases.RequireFile(binary, config, strategy); err != nil {
		return m, err
	}
	m.Path = binary

	res := e.exec(ctx, binary)
	if res.Err != nil {
		return m, &RunError{Config: config, Strategy: strategy, Binary: binary, Output: res.Output(), Err: res.Err}
	}
	m.Duration = res.Duration
	e.logger.Log("Ran %s in %s", binary, m.Duration)
	return m, nil
}

// Exec runs binary with no arguments and returns its wall-clock duration.
func (e *Executor) Exec(ctx context.Context, binary string) (time.Duration, error) {
	res := e.exec(ctx, binary)
	if res.Err != nil {
		return res.Duration, fmt.Errorf("%s: %w", res.Command, res.Err)
	}
	return res.Duration, nil
}

func (e *Executor) exec(ctx context.Context, binary string) Result {
	// Bare relative names would otherwise be looked up on PATH.
	if abs, err := filepath.Abs(binary); err == nil {
		binary = abs
	}
	cmd := Command{Name: binary}
	e.logger.Log("Running: %s", cmd)
	return e.runner.Run(ctx, cmd)
}
