package params

import (
	"fmt"
	"time"
)

// Phase is one of the three per-case operations.
type Phase int

const (
	PhaseGenerate Phase = iota
	PhaseBuild
	PhaseRun
)

func (p Phase) String() string {
	switch p {
	case PhaseGenerate:
		return "generate"
	case PhaseBuild:
		return "build"
	case PhaseRun:
		return "run"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// SymbolCounts classifies the symbols of a built binary by naming pattern.
type SymbolCounts struct {
	Methods  int
	Wrappers int
}

// Measurement is the outcome of one phase for one (CaseConfig, Strategy).
// It is reported as soon as it is produced and never accumulated.
type Measurement struct {
	Config   CaseConfig
	Strategy Strategy
	Phase    Phase
	Path     string        // Artifact written or executed
	Duration time.Duration // Zero for generate
	Size     int64         // Binary size in bytes, build only
	AsmPath  string        // Set when an assembly listing was emitted
	Symbols  *SymbolCounts // Set when symbol classification succeeded
	// ToolingErr records a symbol listing failure. The rest of the
	// measurement is still valid.
	ToolingErr error
}
