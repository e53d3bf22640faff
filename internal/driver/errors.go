package driver

import (
	"fmt"

	"github.com/KromDaniel/dispatchbench/internal/params"
)

// BuildError reports a compiler invocation that failed.
type BuildError struct {
	Config   params.CaseConfig
	Strategy params.Strategy
	Emit     EmitKind
	Command  string
	Output   string
	Err      error
}

func (e *BuildError) Error() string {
	msg := fmt.Sprintf("build %s %s (%s) failed: %v", e.Emit, e.Strategy, e.Config, e.Err)
	if e.Output != "" {
		msg += "\n" + e.Output
	}
	return msg
}

func (e *BuildError) Unwrap() error {
	return e.Err
}

// RunError reports a benchmark binary that failed.
type RunError struct {
	Config   params.CaseConfig
	Strategy params.Strategy
	Binary   string
	Output   string
	Err      error
}

func (e *RunError) Error() string {
	msg := fmt.Sprintf("run %s %s (%s) failed: %v", e.Strategy, e.Binary, e.Config, e.Err)
	if e.Output != "" {
		msg += "\n" + e.Output
	}
	return msg
}

func (e *RunError) Unwrap() error {
	return e.Err
}

// ToolingError reports a symbol listing failure. It never invalidates the
// build it was attached to.
type ToolingError struct {
	Config   params.CaseConfig
	Strategy params.Strategy
	Command  string
	Err      error
}

func (e *ToolingError) Error() string {
	return fmt.Sprintf("symbol listing %q for %s (%s) failed: %v", e.Command, e.Strategy, e.Config, e.Err)
}

func (e *ToolingError) Unwrap() error {
	return e.Err
}
