package driver

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/KromDaniel/dispatchbench/internal/cases"
	"github.com/KromDaniel/dispatchbench/internal/codegen"
	"github.com/KromDaniel/dispatchbench/internal/params"
	"github.com/KromDaniel/dispatchbench/internal/report"
)

// Builder compiles materialized cases.
type Builder struct {
	toolchain Toolchain
	runner    ProcessRunner
	layout    *cases.Materializer
	symbols   bool
	logger    *report.Logger
}

// NewBuilder creates a builder resolving artifact paths through layout.
func NewBuilder(toolchain Toolchain, runner ProcessRunner, layout *cases.Materializer) *Builder {
	return &Builder{
		toolchain: toolchain,
		runner:    runner,
		layout:    layout,
		logger:    report.Discard(),
	}
}

// SetSymbols enables symbol classification after each successful build.
func (b *Builder) SetSymbols(enabled bool) {
	b.symbols = enabled
}

// SetLogger sets the verbose logger.
func (b *Builder) SetLogger(l *report.Logger) {
	b.logger = l
}

// Build compiles the source of config realized with strategy. Zero-axis
// configs are rejected before any process starts.
func (b *Builder) Build(ctx context.Context, config params.CaseConfig, strategy params.Strategy) (params.Measurement, error) {
	m := params.Measurement{Config: config, Strategy: strategy, Phase: params.PhaseBuild}
	if err := config.Buildable(); err != nil {
		return m, err
	}

	paths := b.layout.Paths(config, strategy)
	if err := cases.RequireFile(paths.Source, config, strategy); err != nil {
		return m, err
	}
	m.Path = paths.Binary

	b.logger.Section(fmt.Sprintf("Build %s", b.layout.BaseName(config, strategy)))
	res := b.compile(ctx, paths.Source, paths.Binary, config.OptLevel, EmitBinary)
	if res.Err != nil {
		return m, &BuildError{Config: config, Strategy: strategy, Emit: EmitBinary, Command: res.Command, Output: res.Output(), Err: res.Err}
	}
	m.Duration = res.Duration

	info, err := os.Stat(paths.Binary)
	if err != nil {
		return m, &cases.IOError{Op: "stat", Path: paths.Binary, Config: config, Strategy: strategy, Err: err}
	}
	m.Size = info.Size()
	b.logger.Log("Binary: %s (%d bytes, %s)", paths.Binary, m.Size, m.Duration)

	if config.AsmEmit {
		if err := b.emitAsm(ctx, config, strategy, paths); err != nil {
			return m, err
		}
		m.AsmPath = paths.Asm
	}

	if b.symbols {
		counts, err := b.Classify(ctx, paths.Binary)
		if err != nil {
			m.ToolingErr = &ToolingError{Config: config, Strategy: strategy, Command: b.toolchain.SymbolsCommand(paths.Binary).String(), Err: err}
		} else {
			m.Symbols = &counts
		}
	}

	return m, nil
}

// Compile invokes the compiler once and returns how long it took.
func (b *Builder) Compile(ctx context.Context, source, output string, optLevel int, emit EmitKind) (time.Duration, error) {
	res := b.compile(ctx, source, output, optLevel, emit)
	if res.Err != nil {
		if out := res.Output(); out != "" {
			return res.Duration, fmt.Errorf("%s: %w\n%s", res.Command, res.Err, out)
		}
		return res.Duration, fmt.Errorf("%s: %w", res.Command, res.Err)
	}
	return res.Duration, nil
}

func (b *Builder) compile(ctx context.Context, source, output string, optLevel int, emit EmitKind) Result {
	cmd := b.toolchain.CompileCommand(source, output, optLevel, emit)
	b.logger.Log("Running: %s", cmd)
	return b.runner.Run(ctx, cmd)
}

// emitAsm runs the separate assembly build and stores its listing.
func (b *Builder) emitAsm(ctx context.Context, config params.CaseConfig, strategy params.Strategy, paths cases.Artifacts) error {
	res := b.compile(ctx, paths.Source, paths.Asm, config.OptLevel, EmitAsm)
	if res.Err != nil {
		return &BuildError{Config: config, Strategy: strategy, Emit: EmitAsm, Command: res.Command, Output: res.Output(), Err: res.Err}
	}
	// The listing is printed on stderr.
	listing := append(append([]byte{}, res.Stderr...), res.Stdout...)
	if err := os.WriteFile(paths.Asm, listing, 0644); err != nil {
		return &cases.IOError{Op: "write", Path: paths.Asm, Config: config, Strategy: strategy, Err: err}
	}
	b.logger.Log("Assembly: %s (%d bytes)", paths.Asm, len(listing))
	return nil
}

// Classify lists the symbols of binary and counts method implementations
// and call-site wrappers. The classification is by substring only.
func (b *Builder) Classify(ctx context.Context, binary string) (params.SymbolCounts, error) {
	cmd := b.toolchain.SymbolsCommand(binary)
	b.logger.Log("Running: %s", cmd)
	res := b.runner.Run(ctx, cmd)
	if res.Err != nil {
		if stderr := strings.TrimSpace(string(res.Stderr)); stderr != "" {
			return params.SymbolCounts{}, fmt.Errorf("%w: %s", res.Err, stderr)
		}
		return params.SymbolCounts{}, res.Err
	}
	counts := CountSymbols(res.Stdout)
	b.logger.Log("Symbols: %d methods, %d wrappers", counts.Methods, counts.Wrappers)
	return counts, nil
}

// CountSymbols counts lines matching the method and wrapper naming patterns.
func CountSymbols(listing []byte) params.SymbolCounts {
	var counts params.SymbolCounts
	scanner := bufio.NewScanner(bytes.NewReader(listing))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.Contains(line, codegen.MethodSymbolPattern):
			counts.Methods++
		case strings.Contains(line, codegen.WrapperSymbolPattern):
			counts.Wrappers++
		}
	}
	return counts
}
