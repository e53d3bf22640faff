package main

import (
	"github.com/KromDaniel/dispatchbench/internal/config"
	"github.com/KromDaniel/dispatchbench/pkg/dispatchbench"
	"github.com/spf13/pflag"
)

// globalFlags are shared by every command.
type globalFlags struct {
	configPath string
	outDir     string
	nameFields int
	format     string
	json       bool
	verbose    bool
}

func (g *globalFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&g.configPath, "config", "", "YAML config file")
	fs.StringVar(&g.outDir, "out-dir", "", "Output directory for sources, binaries and listings (default from config: cases)")
	fs.IntVar(&g.nameFields, "name-fields", 0, "Count fields in artifact names: 1, 2 or 3")
	fs.StringVar(&g.format, "format", "", "Output format: text or json")
	fs.BoolVar(&g.json, "json", false, "Shorthand for --format json")
	fs.BoolVarP(&g.verbose, "verbose", "v", false, "Trace every step on stderr")
}

// options merges the config file with the flags that were set.
func (g *globalFlags) options(fs *pflag.FlagSet, symbols bool) (dispatchbench.Options, error) {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return dispatchbench.Options{}, err
	}
	if fs.Changed("out-dir") {
		cfg.OutDir = g.outDir
	}
	if fs.Changed("name-fields") {
		cfg.NameFields = g.nameFields
	}
	if fs.Changed("format") {
		cfg.Format = g.format
	}
	if g.json {
		cfg.Format = "json"
	}
	if symbols {
		cfg.Symbols.Enabled = true
	}
	if err := cfg.Validate(); err != nil {
		return dispatchbench.Options{}, err
	}

	tc := cfg.DriverToolchain()
	return dispatchbench.Options{
		OutDir:        cfg.OutDir,
		NameFields:    cfg.NameFields,
		GoCommand:     tc.GoCommand,
		Env:           tc.Env,
		SymbolCommand: tc.SymbolCommand,
		Symbols:       cfg.Symbols.Enabled,
		Format:        cfg.Format,
		Verbose:       g.verbose,
	}, nil
}

// caseFlags describe one configuration point.
type caseFlags struct {
	types       int
	functions   int
	calls       int
	noInline    bool
	noDedup     bool
	predictable bool
	asm         bool
	optLevel    int
}

func (c *caseFlags) register(fs *pflag.FlagSet) {
	fs.IntVarP(&c.types, "types", "t", 1, "Number of value types")
	fs.IntVarP(&c.functions, "functions", "f", 1, "Number of wrapper functions")
	fs.IntVarP(&c.calls, "calls", "c", 1, "Consecutive calls per (function, type) pair")
	fs.BoolVar(&c.noInline, "no-inline", false, "Mark every method and wrapper //go:noinline")
	fs.BoolVar(&c.noDedup, "no-dedup", false, "Give every method a distinct body")
	fs.BoolVar(&c.predictable, "predictable", false, "Emit calls type-major instead of function-major")
	fs.BoolVar(&c.asm, "asm", false, "Also write an assembly listing when building")
	fs.IntVar(&c.optLevel, "opt-level", 2, "Optimization level: 0 (-N -l), 1 (-l) or 2 (defaults)")
}

func (c *caseFlags) config() dispatchbench.Case {
	return dispatchbench.Case{
		NumTypes:     c.types,
		NumFunctions: c.functions,
		NumCalls:     c.calls,
		NoInline:     c.noInline,
		NoDedup:      c.noDedup,
		Predictable:  c.predictable,
		AsmEmit:      c.asm,
		OptLevel:     c.optLevel,
	}
}

// stepFlags turn the case counts into sweep bounds. A per-axis step
// overrides --step; a step of 0 pins the axis. An axis whose count flag was
// not given stays pinned at its default unless its own step is set.
type stepFlags struct {
	step         int
	typeStep     int
	functionStep int
	callStep     int
}

func (s *stepFlags) register(fs *pflag.FlagSet) {
	fs.IntVar(&s.step, "step", 1, "Step shared by every axis")
	fs.IntVar(&s.typeStep, "type-step", 0, "Step of the type axis (0 pins it)")
	fs.IntVar(&s.functionStep, "function-step", 0, "Step of the function axis (0 pins it)")
	fs.IntVar(&s.callStep, "call-step", 0, "Step of the call axis (0 pins it)")
}

func (s *stepFlags) sweep(fs *pflag.FlagSet, c *caseFlags) dispatchbench.Range {
	pick := func(count, name string, own int) int {
		switch {
		case fs.Changed(name):
			return own
		case !fs.Changed(count):
			return 0
		}
		return s.step
	}
	toggles := c.config()
	toggles.NumTypes, toggles.NumFunctions, toggles.NumCalls = 0, 0, 0
	return dispatchbench.Range{
		Types:     dispatchbench.Axis{Bound: c.types, Step: pick("types", "type-step", s.typeStep)},
		Functions: dispatchbench.Axis{Bound: c.functions, Step: pick("functions", "function-step", s.functionStep)},
		Calls:     dispatchbench.Axis{Bound: c.calls, Step: pick("calls", "call-step", s.callStep)},
		Toggles:   toggles,
	}
}
