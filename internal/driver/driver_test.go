package driver

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"testing"
	"time"

	"github.com/KromDaniel/dispatchbench/internal/cases"
	"github.com/KromDaniel/dispatchbench/internal/params"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var buildable = params.CaseConfig{NumTypes: 2, NumFunctions: 2, NumCalls: 1, OptLevel: 2}

const nmListing = `  4a1b20 T main.Value0.PerformIO
  4a1b40 T main.Value1.PerformIO
  4a1c00 T main.ioWrapper0[go.shape.struct { _ [0]uint8; main.tag uint8; _ [2]uint8 }]
  4a1c40 T main.ioWrapper1[go.shape.struct { _ [1]uint8; main.tag uint8; _ [1]uint8 }]
  4a1d00 T main.main
  4a1e00 T runtime.main
`

// outputArg returns the value following -o.
func outputArg(args []string) string {
	i := slices.Index(args, "-o")
	if i < 0 || i+1 >= len(args) {
		return ""
	}
	return args[i+1]
}

// fakeToolchain writes a small binary for every build and prints a listing
// for every asm build or nm call.
func fakeToolchain(t *testing.T) *MockProcessRunner {
	t.Helper()
	return &MockProcessRunner{
		RunFunc: func(ctx context.Context, cmd Command) Result {
			if slices.Contains(cmd.Args, "nm") {
				return Result{Stdout: []byte(nmListing), Duration: time.Millisecond}
			}
			out := outputArg(cmd.Args)
			if out == os.DevNull {
				return Result{Stderr: []byte("main.main STEXT size=1\n"), Duration: 2 * time.Millisecond}
			}
			if err := os.WriteFile(out, []byte("binary!"), 0755); err != nil {
				t.Fatalf("fake compiler: %v", err)
			}
			return Result{Duration: 5 * time.Millisecond}
		},
	}
}

func materialized(t *testing.T, cfg params.CaseConfig) *cases.Materializer {
	t.Helper()
	layout := cases.NewMaterializer(t.TempDir())
	for _, s := range params.Strategies() {
		_, err := layout.Materialize(cfg, s)
		require.NoError(t, err)
	}
	return layout
}

func TestGCFlags(t *testing.T) {
	assert.Equal(t, []string{"-N", "-l"}, GCFlags(0))
	assert.Equal(t, []string{"-l"}, GCFlags(1))
	assert.Empty(t, GCFlags(2))
}

func TestCompileCommand(t *testing.T) {
	tc := DefaultToolchain()

	cmd := tc.CompileCommand("cases/static.go", "cases/static", 0, EmitBinary)
	assert.Equal(t, "go", cmd.Name)
	assert.Equal(t, []string{"build", "-o", "cases/static", "-gcflags=-N -l", "cases/static.go"}, cmd.Args)

	cmd = tc.CompileCommand("cases/static.go", "cases/static", 2, EmitBinary)
	assert.Equal(t, []string{"build", "-o", "cases/static", "cases/static.go"}, cmd.Args)

	cmd = tc.CompileCommand("cases/static.go", "cases/static.s", 1, EmitAsm)
	assert.Equal(t, []string{"build", "-a", "-o", os.DevNull, "-gcflags=-l -S", "cases/static.go"}, cmd.Args)

	sym := tc.SymbolsCommand("cases/static")
	assert.Equal(t, "go tool nm cases/static", sym.String())
}

func TestCountSymbols(t *testing.T) {
	counts := CountSymbols([]byte(nmListing))
	assert.Equal(t, params.SymbolCounts{Methods: 2, Wrappers: 2}, counts)
	assert.Equal(t, params.SymbolCounts{}, CountSymbols(nil))
}

func TestBuild(t *testing.T) {
	layout := materialized(t, buildable)
	runner := fakeToolchain(t)
	b := NewBuilder(DefaultToolchain(), runner, layout)

	m, err := b.Build(context.Background(), buildable, params.Static)
	require.NoError(t, err)

	assert.Equal(t, params.PhaseBuild, m.Phase)
	assert.Equal(t, layout.Paths(buildable, params.Static).Binary, m.Path)
	assert.Equal(t, 5*time.Millisecond, m.Duration)
	assert.Equal(t, int64(len("binary!")), m.Size)
	assert.Nil(t, m.Symbols)
	assert.Empty(t, m.AsmPath)
	assert.Equal(t, 1, runner.CallCount())
}

func TestBuildWithAsmAndSymbols(t *testing.T) {
	cfg := buildable
	cfg.AsmEmit = true
	layout := materialized(t, cfg)
	runner := fakeToolchain(t)
	b := NewBuilder(DefaultToolchain(), runner, layout)
	b.SetSymbols(true)

	m, err := b.Build(context.Background(), cfg, params.Dynamic)
	require.NoError(t, err)

	require.Equal(t, 3, runner.CallCount())
	assert.Contains(t, runner.Calls[1].Args, "-a")
	assert.Contains(t, runner.Calls[1].Args, "-gcflags=-S")
	assert.Contains(t, runner.Calls[1].Args, os.DevNull)
	assert.Equal(t, "nm", runner.Calls[2].Args[1])

	paths := layout.Paths(cfg, params.Dynamic)
	assert.Equal(t, paths.Asm, m.AsmPath)
	listing, err := os.ReadFile(paths.Asm)
	require.NoError(t, err)
	assert.Contains(t, string(listing), "STEXT")

	require.NotNil(t, m.Symbols)
	assert.Equal(t, params.SymbolCounts{Methods: 2, Wrappers: 2}, *m.Symbols)
	assert.NoError(t, m.ToolingErr)
}

func TestBuildToolingFailureKeepsMeasurement(t *testing.T) {
	layout := materialized(t, buildable)
	fake := fakeToolchain(t)
	runner := &MockProcessRunner{
		RunFunc: func(ctx context.Context, cmd Command) Result {
			if slices.Contains(cmd.Args, "nm") {
				return Result{Stderr: []byte("nm: bad format"), Err: errors.New("exit status 1")}
			}
			return fake.RunFunc(ctx, cmd)
		},
	}
	b := NewBuilder(DefaultToolchain(), runner, layout)
	b.SetSymbols(true)

	m, err := b.Build(context.Background(), buildable, params.Static)
	require.NoError(t, err)

	var toolErr *ToolingError
	require.ErrorAs(t, m.ToolingErr, &toolErr)
	assert.Contains(t, toolErr.Error(), "bad format")
	assert.Nil(t, m.Symbols)
	assert.Equal(t, 5*time.Millisecond, m.Duration)
	assert.Positive(t, m.Size)
}

func TestBuildCompilerFailure(t *testing.T) {
	layout := materialized(t, buildable)
	runner := &MockProcessRunner{
		RunFunc: func(ctx context.Context, cmd Command) Result {
			return Result{Stderr: []byte("syntax error"), Err: errors.New("exit status 1")}
		},
	}
	b := NewBuilder(DefaultToolchain(), runner, layout)

	_, err := b.Build(context.Background(), buildable, params.Dynamic)
	var buildErr *BuildError
	require.ErrorAs(t, err, &buildErr)
	assert.Equal(t, params.Dynamic, buildErr.Strategy)
	assert.Equal(t, buildable, buildErr.Config)
	assert.Equal(t, EmitBinary, buildErr.Emit)
	assert.Contains(t, buildErr.Error(), "syntax error")
}

func TestBuildAsmFailure(t *testing.T) {
	cfg := buildable
	cfg.AsmEmit = true
	layout := materialized(t, cfg)
	fake := fakeToolchain(t)
	runner := &MockProcessRunner{
		RunFunc: func(ctx context.Context, cmd Command) Result {
			if slices.Contains(cmd.Args, "-a") {
				return Result{Err: errors.New("exit status 2")}
			}
			return fake.RunFunc(ctx, cmd)
		},
	}
	b := NewBuilder(DefaultToolchain(), runner, layout)

	_, err := b.Build(context.Background(), cfg, params.Static)
	var buildErr *BuildError
	require.ErrorAs(t, err, &buildErr)
	assert.Equal(t, EmitAsm, buildErr.Emit)
}

func TestBuildRejectsZeroAxis(t *testing.T) {
	for _, cfg := range []params.CaseConfig{
		{NumTypes: 0, NumFunctions: 1, NumCalls: 1},
		{NumTypes: 1, NumFunctions: 0, NumCalls: 1},
		{NumTypes: 1, NumFunctions: 1, NumCalls: 0},
	} {
		runner := fakeToolchain(t)
		b := NewBuilder(DefaultToolchain(), runner, cases.NewMaterializer(t.TempDir()))

		_, err := b.Build(context.Background(), cfg, params.Static)
		var cfgErr *params.ConfigError
		assert.ErrorAs(t, err, &cfgErr)
		assert.Zero(t, runner.CallCount(), "no process may start for %s", cfg)
	}
}

func TestBuildMissingSource(t *testing.T) {
	runner := fakeToolchain(t)
	b := NewBuilder(DefaultToolchain(), runner, cases.NewMaterializer(t.TempDir()))

	_, err := b.Build(context.Background(), buildable, params.Static)
	var ioErr *cases.IOError
	assert.ErrorAs(t, err, &ioErr)
	assert.Zero(t, runner.CallCount())
}

func TestCompile(t *testing.T) {
	runner := &MockProcessRunner{
		RunFunc: func(ctx context.Context, cmd Command) Result {
			return Result{Duration: time.Second}
		},
	}
	b := NewBuilder(DefaultToolchain(), runner, cases.NewMaterializer(t.TempDir()))
	d, err := b.Compile(context.Background(), "a.go", "a", 2, EmitBinary)
	require.NoError(t, err)
	assert.Equal(t, time.Second, d)

	runner.RunFunc = func(ctx context.Context, cmd Command) Result {
		return Result{Err: errors.New("exit status 1"), Stderr: []byte("boom")}
	}
	_, err = b.Compile(context.Background(), "a.go", "a", 2, EmitBinary)
	assert.ErrorContains(t, err, "boom")
}

func TestRun(t *testing.T) {
	layout := cases.NewMaterializer(t.TempDir())
	binary := layout.Paths(buildable, params.Static).Binary
	require.NoError(t, os.WriteFile(binary, []byte("binary!"), 0755))

	runner := &MockProcessRunner{
		RunFunc: func(ctx context.Context, cmd Command) Result {
			return Result{Duration: 42 * time.Millisecond}
		},
	}
	e := NewExecutor(runner, layout)

	m, err := e.Run(context.Background(), buildable, params.Static)
	require.NoError(t, err)
	assert.Equal(t, params.PhaseRun, m.Phase)
	assert.Equal(t, 42*time.Millisecond, m.Duration)

	require.Equal(t, 1, runner.CallCount())
	assert.True(t, filepath.IsAbs(runner.Calls[0].Name))
	assert.Empty(t, runner.Calls[0].Args)
}

func TestRunFailure(t *testing.T) {
	layout := cases.NewMaterializer(t.TempDir())
	binary := layout.Paths(buildable, params.Dynamic).Binary
	require.NoError(t, os.WriteFile(binary, []byte("binary!"), 0755))

	runner := &MockProcessRunner{
		RunFunc: func(ctx context.Context, cmd Command) Result {
			return Result{Err: errors.New("exit status 2")}
		},
	}
	_, err := NewExecutor(runner, layout).Run(context.Background(), buildable, params.Dynamic)

	var runErr *RunError
	require.ErrorAs(t, err, &runErr)
	assert.Equal(t, params.Dynamic, runErr.Strategy)
}

func TestRunRejectsZeroAxisAndMissingBinary(t *testing.T) {
	runner := &MockProcessRunner{
		RunFunc: func(ctx context.Context, cmd Command) Result { return Result{} },
	}
	e := NewExecutor(runner, cases.NewMaterializer(t.TempDir()))

	_, err := e.Run(context.Background(), params.CaseConfig{NumTypes: 1, NumFunctions: 1}, params.Static)
	var cfgErr *params.ConfigError
	assert.ErrorAs(t, err, &cfgErr)

	_, err = e.Run(context.Background(), buildable, params.Static)
	var ioErr *cases.IOError
	assert.ErrorAs(t, err, &ioErr)

	assert.Zero(t, runner.CallCount())
}

func TestExecRunner(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses a shell script")
	}
	dir := t.TempDir()
	ok := filepath.Join(dir, "ok.sh")
	fail := filepath.Join(dir, "fail.sh")
	require.NoError(t, os.WriteFile(ok, []byte("#!/bin/sh\necho out\necho err >&2\n"), 0755))
	require.NoError(t, os.WriteFile(fail, []byte("#!/bin/sh\nexit 3\n"), 0755))

	r := NewExecRunner()
	res := r.Run(context.Background(), Command{Name: ok})
	require.NoError(t, res.Err)
	assert.Equal(t, "out\n", string(res.Stdout))
	assert.Equal(t, "err\n", string(res.Stderr))
	assert.Positive(t, res.Duration)

	res = r.Run(context.Background(), Command{Name: fail})
	assert.Error(t, res.Err)

	d, err := NewExecutor(r, cases.NewMaterializer(dir)).Exec(context.Background(), fail)
	assert.Error(t, err)
	assert.GreaterOrEqual(t, d, time.Duration(0))
}
