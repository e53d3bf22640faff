package driver

import (
	"os"
	"strings"
)

// EmitKind selects what a compiler invocation produces.
type EmitKind int

const (
	EmitBinary EmitKind = iota
	EmitAsm
)

func (k EmitKind) String() string {
	if k == EmitAsm {
		return "asm"
	}
	return "binary"
}

// Toolchain describes the external compiler and symbol lister.
type Toolchain struct {
	GoCommand     string   // Compiler driver, "go" by default
	Env           []string // Extra environment for compiler invocations
	SymbolCommand []string // Symbol lister; the binary path is appended
}

// DefaultToolchain uses the go command on PATH.
func DefaultToolchain() Toolchain {
	return Toolchain{
		GoCommand:     "go",
		SymbolCommand: []string{"go", "tool", "nm"},
	}
}

// GCFlags maps an optimization level to compiler flags: 0 disables
// optimizations and inlining, 1 disables inlining, 2 and above use the
// toolchain defaults.
func GCFlags(optLevel int) []string {
	switch {
	case optLevel <= 0:
		return []string{"-N", "-l"}
	case optLevel == 1:
		return []string{"-l"}
	default:
		return nil
	}
}

// CompileCommand returns the invocation building source into output.
//
// A binary build is "go build -o output [-gcflags=...] source". An assembly
// build forces a full rebuild so the listing is never suppressed by the
// build cache, discards the binary and prints the listing on stderr.
func (t Toolchain) CompileCommand(source, output string, optLevel int, emit EmitKind) Command {
	flags := GCFlags(optLevel)
	args := []string{"build"}
	if emit == EmitAsm {
		flags = append(flags, "-S")
		args = append(args, "-a", "-o", os.DevNull)
	} else {
		args = append(args, "-o", output)
	}
	if len(flags) > 0 {
		args = append(args, "-gcflags="+strings.Join(flags, " "))
	}
	args = append(args, source)

	return Command{
		Name: t.GoCommand,
		Args: args,
		Env:  t.Env,
	}
}

// SymbolsCommand returns the invocation listing the symbols of binary.
func (t Toolchain) SymbolsCommand(binary string) Command {
	args := append([]string{}, t.SymbolCommand[1:]...)
	return Command{
		Name: t.SymbolCommand[0],
		Args: append(args, binary),
	}
}
