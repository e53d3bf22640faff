// Package params defines a single benchmark case and the sweep ranges that
// expand into many of them.
package params

import (
	"fmt"
	"strings"
)

// MaxAxis is the largest count that fits the fixed-width artifact name field.
const MaxAxis = 9999

// MaxOptLevel is the highest optimization level the build driver understands.
const MaxOptLevel = 2

// CaseConfig is one measurement point.
type CaseConfig struct {
	NumTypes     int // Distinct value types to synthesize
	NumFunctions int // Distinct call-site wrapper functions
	NumCalls     int // Calls per (function, type) pair inside the timing loop

	NoInline    bool // Mark generated methods and wrappers //go:noinline
	NoDedup     bool // Give every method and wrapper a distinct side effect
	Predictable bool // Type-major call order instead of function-major
	AsmEmit     bool // Also emit an assembly listing when building
	OptLevel    int  // 0 disables optimizations, 1 disables inlining, 2 is the toolchain default
}

// ConfigError reports a configuration that cannot be used for the requested operation.
type ConfigError struct {
	Config CaseConfig
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration %s: %s", e.Config, e.Reason)
}

// Validate checks that every count is representable and the opt level is known.
func (c CaseConfig) Validate() error {
	for _, axis := range []struct {
		name  string
		value int
	}{
		{"types", c.NumTypes},
		{"functions", c.NumFunctions},
		{"calls", c.NumCalls},
	} {
		if axis.value < 0 {
			return &ConfigError{Config: c, Reason: fmt.Sprintf("%s must not be negative", axis.name)}
		}
		if axis.value > MaxAxis {
			return &ConfigError{Config: c, Reason: fmt.Sprintf("%s must not exceed %d", axis.name, MaxAxis)}
		}
	}
	if c.OptLevel < 0 || c.OptLevel > MaxOptLevel {
		return &ConfigError{Config: c, Reason: fmt.Sprintf("opt level must be between 0 and %d", MaxOptLevel)}
	}
	return nil
}

// Buildable reports whether the case may be compiled or executed. A case with
// a zero axis is generation-only.
func (c CaseConfig) Buildable() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.NumTypes == 0 || c.NumFunctions == 0 || c.NumCalls == 0 {
		return &ConfigError{Config: c, Reason: "types, functions and calls must all be positive to build or run"}
	}
	return nil
}

// String renders the counts and enabled toggles, e.g. "types=4 functions=2 calls=1 noinline".
func (c CaseConfig) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "types=%d functions=%d calls=%d", c.NumTypes, c.NumFunctions, c.NumCalls)
	if c.NoInline {
		b.WriteString(" noinline")
	}
	if c.NoDedup {
		b.WriteString(" nodedup")
	}
	if c.Predictable {
		b.WriteString(" predictable")
	}
	if c.AsmEmit {
		b.WriteString(" asm")
	}
	fmt.Fprintf(&b, " opt=%d", c.OptLevel)
	return b.String()
}
