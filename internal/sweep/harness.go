// Package sweep drives generate, build and run over single cases and over
// sweep ranges.
package sweep

import (
	"context"
	"fmt"

	"github.com/KromDaniel/dispatchbench/internal/cases"
	"github.com/KromDaniel/dispatchbench/internal/driver"
	"github.com/KromDaniel/dispatchbench/internal/params"
)

// Outcome is the result of one phase for one configuration point, covering
// both strategies.
type Outcome struct {
	Config       params.CaseConfig
	Phase        params.Phase
	Measurements []params.Measurement
	Err          error // First failure; later strategies were not attempted
}

// OK reports whether every strategy succeeded.
func (o Outcome) OK() bool {
	return o.Err == nil
}

// Harness runs single-case operations. Each operation processes the static
// strategy and then the dynamic one, stopping at the first error.
type Harness struct {
	layout   *cases.Materializer
	builder  *driver.Builder
	executor *driver.Executor
}

// NewHarness creates a harness.
func NewHarness(layout *cases.Materializer, builder *driver.Builder, executor *driver.Executor) *Harness {
	return &Harness{
		layout:   layout,
		builder:  builder,
		executor: executor,
	}
}

// Case runs phase for config.
func (h *Harness) Case(ctx context.Context, config params.CaseConfig, phase params.Phase) Outcome {
	switch phase {
	case params.PhaseGenerate:
		return h.Generate(ctx, config)
	case params.PhaseBuild:
		return h.Build(ctx, config)
	case params.PhaseRun:
		return h.Run(ctx, config)
	default:
		return Outcome{Config: config, Phase: phase, Err: fmt.Errorf("unknown phase %s", phase)}
	}
}

// Generate materializes the sources of both strategies.
func (h *Harness) Generate(ctx context.Context, config params.CaseConfig) Outcome {
	return h.each(ctx, config, params.PhaseGenerate, h.generate)
}

func (h *Harness) generate(_ context.Context, config params.CaseConfig, strategy params.Strategy) (params.Measurement, error) {
	m := params.Measurement{Config: config, Strategy: strategy, Phase: params.PhaseGenerate}
	path, err := h.layout.Materialize(config, strategy)
	m.Path = path
	return m, err
}

// Build compiles both strategies of a previously generated case.
func (h *Harness) Build(ctx context.Context, config params.CaseConfig) Outcome {
	return h.each(ctx, config, params.PhaseBuild, h.builder.Build)
}

// Run executes both strategies of a previously built case.
func (h *Harness) Run(ctx context.Context, config params.CaseConfig) Outcome {
	return h.each(ctx, config, params.PhaseRun, h.executor.Run)
}

func (h *Harness) each(
	ctx context.Context,
	config params.CaseConfig,
	phase params.Phase,
	op func(context.Context, params.CaseConfig, params.Strategy) (params.Measurement, error),
) Outcome {
	out := Outcome{Config: config, Phase: phase}
	for _, strategy := range params.Strategies() {
		m, err := op(ctx, config, strategy)
		if err != nil {
			out.Err = err
			return out
		}
		out.Measurements = append(out.Measurements, m)
	}
	return out
}
