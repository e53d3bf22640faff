package sweep

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"time"

	"github.com/KromDaniel/dispatchbench/internal/params"
	"github.com/KromDaniel/dispatchbench/internal/report"
)

// ErrAllPointsFailed is returned by Tally.Err when a sweep recorded no
// successful point.
var ErrAllPointsFailed = errors.New("every configuration point failed")

// Tally counts the outcomes of one sweep.
type Tally struct {
	Phase     params.Phase
	Points    int
	Succeeded int
	Failed    int
}

// Err is non-nil only if at least one point ran and none succeeded.
func (t Tally) Err() error {
	if t.Points > 0 && t.Succeeded == 0 {
		return fmt.Errorf("%s: %w (%d points)", t.Phase, ErrAllPointsFailed, t.Points)
	}
	return nil
}

// Controller expands sweep ranges and reports every point as it finishes.
type Controller struct {
	harness  *Harness
	reporter *report.Reporter
	logger   *report.Logger
}

// NewController creates a controller.
func NewController(harness *Harness, reporter *report.Reporter) *Controller {
	return &Controller{
		harness:  harness,
		reporter: reporter,
		logger:   report.Discard(),
	}
}

// SetLogger sets the verbose logger.
func (c *Controller) SetLogger(l *report.Logger) {
	c.logger = l
}

// Points yields the outcome of phase for every point of sweep, in sweep
// order. Each point is processed only when the consumer asks for it. The
// sequence stops early once ctx is done.
func (c *Controller) Points(ctx context.Context, sweep params.SweepRange, phase params.Phase) iter.Seq[Outcome] {
	return func(yield func(Outcome) bool) {
		for cfg := range sweep.All() {
			if ctx.Err() != nil {
				return
			}
			if !yield(c.harness.Case(ctx, cfg, phase)) {
				return
			}
		}
	}
}

// Sweep runs phase over every point of sweep. A failed point is reported and
// the sweep continues with the next one. The returned error covers only an
// invalid or empty range; use Tally.Err for the overall verdict.
func (c *Controller) Sweep(ctx context.Context, sweep params.SweepRange, phase params.Phase) (Tally, error) {
	tally := Tally{Phase: phase}
	if err := sweep.Validate(); err != nil {
		return tally, &params.ConfigError{Config: sweep.Toggles, Reason: err.Error()}
	}
	if sweep.Len() == 0 {
		return tally, &params.ConfigError{Config: sweep.Toggles, Reason: "sweep range yields no configuration points"}
	}

	c.logger.Section(fmt.Sprintf("Sweep %s", phase))
	c.logger.Log("%d configuration points", sweep.Len())

	start := time.Now()
	for outcome := range c.Points(ctx, sweep, phase) {
		tally.Points++
		c.report(outcome)
		if outcome.OK() {
			tally.Succeeded++
		} else {
			tally.Failed++
		}
	}
	c.reporter.Summary(phase, tally.Points, tally.Succeeded, tally.Failed, time.Since(start))
	return tally, ctx.Err()
}

// One runs phase for a single configuration and returns its first error.
func (c *Controller) One(ctx context.Context, config params.CaseConfig, phase params.Phase) error {
	outcome := c.harness.Case(ctx, config, phase)
	c.report(outcome)
	return outcome.Err
}

func (c *Controller) report(outcome Outcome) {
	for _, m := range outcome.Measurements {
		c.reporter.Measurement(m)
	}
	if outcome.Err != nil {
		c.reporter.Failure(outcome.Config, outcome.Phase, outcome.Err)
	}
}
