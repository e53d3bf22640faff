// Package cases owns the on-disk layout of generated benchmark cases.
package cases

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/KromDaniel/dispatchbench/internal/params"
	"github.com/KromDaniel/dispatchbench/internal/report"
	"github.com/KromDaniel/dispatchbench/internal/synth"
)

// File extensions of case artifacts.
const (
	SourceExt = ".go"
	AsmExt    = ".s"
)

// DefaultNameFields is the number of count fields in artifact names.
const DefaultNameFields = 3

// Artifacts are the paths belonging to one (CaseConfig, Strategy) pair.
type Artifacts struct {
	Source string
	Binary string
	Asm    string
}

// IOError reports a filesystem failure while materializing or locating a case.
type IOError struct {
	Op       string
	Path     string
	Config   params.CaseConfig
	Strategy params.Strategy
	Err      error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s (%s, %s): %v", e.Op, e.Path, e.Strategy, e.Config, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// Materializer writes synthesized sources under OutDir.
type Materializer struct {
	outDir     string
	nameFields int
	logger     *report.Logger
}

// NewMaterializer creates a materializer rooted at outDir using three-field names.
func NewMaterializer(outDir string) *Materializer {
	return &Materializer{
		outDir:     outDir,
		nameFields: DefaultNameFields,
		logger:     report.Discard(),
	}
}

// SetNameFields selects the legacy one- or two-field naming, or the default three.
func (m *Materializer) SetNameFields(n int) error {
	if n < 1 || n > 3 {
		return fmt.Errorf("name fields must be 1, 2 or 3, got %d", n)
	}
	m.nameFields = n
	return nil
}

// SetLogger sets the verbose logger.
func (m *Materializer) SetLogger(l *report.Logger) {
	m.logger = l
}

// OutDir returns the directory holding all artifacts.
func (m *Materializer) OutDir() string {
	return m.outDir
}

// BaseName returns the extension-less artifact name, e.g. "static-0004-0002-0001".
func (m *Materializer) BaseName(config params.CaseConfig, strategy params.Strategy) string {
	switch m.nameFields {
	case 1:
		return fmt.Sprintf("%s-%04d", strategy, config.NumTypes)
	case 2:
		return fmt.Sprintf("%s-%04d-%04d", strategy, config.NumTypes, config.NumFunctions)
	default:
		return fmt.Sprintf("%s-%04d-%04d-%04d", strategy, config.NumTypes, config.NumFunctions, config.NumCalls)
	}
}

// Paths computes the artifact paths for config and strategy.
func (m *Materializer) Paths(config params.CaseConfig, strategy params.Strategy) Artifacts {
	base := filepath.Join(m.outDir, m.BaseName(config, strategy))
	return Artifacts{
		Source: base + SourceExt,
		Binary: base + BinaryExt(),
		Asm:    base + AsmExt,
	}
}

// Materialize writes the synthesized source for config and strategy and
// returns its path. On error the file contents are unspecified.
func (m *Materializer) Materialize(config params.CaseConfig, strategy params.Strategy) (string, error) {
	s := synth.New(config, strategy)
	s.SetLogger(m.logger)
	src, err := s.Generate()
	if err != nil {
		return "", err
	}

	path := m.Paths(config, strategy).Source
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", &IOError{Op: "mkdir", Path: filepath.Dir(path), Config: config, Strategy: strategy, Err: err}
	}

	f, err := os.Create(path)
	if err != nil {
		return "", &IOError{Op: "create", Path: path, Config: config, Strategy: strategy, Err: err}
	}
	if _, err := f.WriteString(src); err != nil {
		f.Close()
		return "", &IOError{Op: "write", Path: path, Config: config, Strategy: strategy, Err: err}
	}
	if err := f.Close(); err != nil {
		return "", &IOError{Op: "close", Path: path, Config: config, Strategy: strategy, Err: err}
	}

	m.logger.Log("Wrote %s (%d bytes)", path, len(src))
	return path, nil
}

// RequireFile returns an IOError when path does not name an existing regular file.
func RequireFile(path string, config params.CaseConfig, strategy params.Strategy) error {
	info, err := os.Stat(path)
	if err != nil {
		return &IOError{Op: "stat", Path: path, Config: config, Strategy: strategy, Err: err}
	}
	if !info.Mode().IsRegular() {
		return &IOError{Op: "stat", Path: path, Config: config, Strategy: strategy, Err: fmt.Errorf("not a regular file")}
	}
	return nil
}

// BinaryExt is the executable suffix of the host platform.
func BinaryExt() string {
	if runtime.GOOS == "windows" {
		return ".exe"
	}
	return ""
}
