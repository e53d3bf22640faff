// Package driver invokes the external compiler, symbol lister and built
// benchmark binaries.
package driver

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"
)

// Command describes one child process.
type Command struct {
	Name string
	Args []string
	Dir  string
	Env  []string // Appended to the parent environment
}

// String renders the command line.
func (c Command) String() string {
	return strings.Join(append([]string{c.Name}, c.Args...), " ")
}

// Result is the outcome of a finished child process.
type Result struct {
	Command  string
	Stdout   []byte
	Stderr   []byte
	Duration time.Duration
	Err      error
}

// Output returns stderr followed by stdout, trimmed.
func (r Result) Output() string {
	return strings.TrimSpace(string(r.Stderr) + string(r.Stdout))
}

// ProcessRunner executes child processes. Every external invocation goes
// through it so tests can replace the toolchain.
type ProcessRunner interface {
	// Run starts the command, waits for it and reports its output. Err is
	// non-nil when the process could not start or exited non-zero.
	Run(ctx context.Context, cmd Command) Result
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

// NewExecRunner creates a runner backed by os/exec.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{}
}

// Run implements ProcessRunner. Duration covers start and wait.
func (r *ExecRunner) Run(ctx context.Context, c Command) Result {
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	cmd.Env = append(os.Environ(), c.Env...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	duration := time.Since(start)

	return Result{
		Command:  c.String(),
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		Duration: duration,
		Err:      err,
	}
}

// MockProcessRunner is a ProcessRunner for tests.
type MockProcessRunner struct {
	// RunFunc produces the result of each call. Required.
	RunFunc func(ctx context.Context, cmd Command) Result

	// Calls records every command in invocation order.
	Calls []Command

	mu sync.Mutex
}

// Run implements ProcessRunner.
func (m *MockProcessRunner) Run(ctx context.Context, cmd Command) Result {
	m.mu.Lock()
	m.Calls = append(m.Calls, cmd)
	m.mu.Unlock()
	if m.RunFunc == nil {
		panic("MockProcessRunner.RunFunc not set")
	}
	res := m.RunFunc(ctx, cmd)
	if res.Command == "" {
		res.Command = cmd.String()
	}
	return res
}

// CallCount returns the number of recorded calls.
func (m *MockProcessRunner) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}
