// Package report prints measurements and diagnostics as they are produced.
package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/KromDaniel/dispatchbench/internal/params"
	"github.com/xlab/treeprint"
)

// Format selects how measurements are printed.
type Format int

const (
	FormatText Format = iota
	FormatJSON
)

// ParseFormat converts "text" or "json" into a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "text":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	default:
		return 0, fmt.Errorf("unknown output format %q", s)
	}
}

// Reporter writes one line per measurement to out and diagnostics to errOut.
type Reporter struct {
	out    io.Writer
	errOut io.Writer
	format Format
	mu     sync.Mutex
}

// NewReporter creates a reporter.
func NewReporter(out, errOut io.Writer, format Format) *Reporter {
	return &Reporter{out: out, errOut: errOut, format: format}
}

type measurementRecord struct {
	Phase       string  `json:"phase"`
	Strategy    string  `json:"strategy"`
	Types       int     `json:"types"`
	Functions   int     `json:"functions"`
	Calls       int     `json:"calls"`
	NoInline    bool    `json:"noinline"`
	NoDedup     bool    `json:"nodedup"`
	Predictable bool    `json:"predictable"`
	OptLevel    int     `json:"opt_level"`
	Path        string  `json:"path,omitempty"`
	Seconds     float64 `json:"seconds,omitempty"`
	Size        int64   `json:"size,omitempty"`
	AsmPath     string  `json:"asm_path,omitempty"`
	Methods     *int    `json:"method_symbols,omitempty"`
	Wrappers    *int    `json:"wrapper_symbols,omitempty"`
	ToolingErr  string  `json:"tooling_error,omitempty"`
	Error       string  `json:"error,omitempty"`
}

func newRecord(cfg params.CaseConfig, phase params.Phase, strategy string) measurementRecord {
	return measurementRecord{
		Phase:       phase.String(),
		Strategy:    strategy,
		Types:       cfg.NumTypes,
		Functions:   cfg.NumFunctions,
		Calls:       cfg.NumCalls,
		NoInline:    cfg.NoInline,
		NoDedup:     cfg.NoDedup,
		Predictable: cfg.Predictable,
		OptLevel:    cfg.OptLevel,
	}
}

// Measurement prints m.
func (r *Reporter) Measurement(m params.Measurement) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.format == FormatJSON {
		rec := newRecord(m.Config, m.Phase, m.Strategy.String())
		rec.Path = m.Path
		rec.Seconds = m.Duration.Seconds()
		rec.Size = m.Size
		rec.AsmPath = m.AsmPath
		if m.Symbols != nil {
			rec.Methods, rec.Wrappers = &m.Symbols.Methods, &m.Symbols.Wrappers
		}
		if m.ToolingErr != nil {
			rec.ToolingErr = m.ToolingErr.Error()
		}
		r.writeJSON(rec)
	} else {
		var b strings.Builder
		fmt.Fprintf(&b, "%-8s %-7s types=%04d functions=%04d calls=%04d", m.Phase, m.Strategy, m.Config.NumTypes, m.Config.NumFunctions, m.Config.NumCalls)
		if m.Phase != params.PhaseGenerate {
			fmt.Fprintf(&b, " time=%s", m.Duration.Round(time.Microsecond))
		}
		if m.Phase == params.PhaseBuild {
			fmt.Fprintf(&b, " size=%d", m.Size)
		}
		if m.Symbols != nil {
			fmt.Fprintf(&b, " methods=%d wrappers=%d", m.Symbols.Methods, m.Symbols.Wrappers)
		}
		if m.AsmPath != "" {
			fmt.Fprintf(&b, " asm=%s", m.AsmPath)
		}
		fmt.Fprintf(&b, " path=%s", m.Path)
		fmt.Fprintln(r.out, b.String())
	}

	if m.ToolingErr != nil {
		fmt.Fprintf(r.errOut, "warning: %v\n", m.ToolingErr)
	}
}

// Failure prints a failed phase. Driver and I/O errors name their strategy;
// a configuration error rejects both strategies and is labelled that way.
func (r *Reporter) Failure(cfg params.CaseConfig, phase params.Phase, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var strategy string
	var cfgErr *params.ConfigError
	if errors.As(err, &cfgErr) {
		names := make([]string, 0, 2)
		for _, s := range params.Strategies() {
			names = append(names, s.String())
		}
		strategy = strings.Join(names, ",")
	}

	if r.format == FormatJSON {
		rec := newRecord(cfg, phase, strategy)
		rec.Error = err.Error()
		r.writeJSON(rec)
	}
	if strategy != "" {
		fmt.Fprintf(r.errOut, "error: %s %s %s: %v\n", phase, strategy, cfg, err)
		return
	}
	fmt.Fprintf(r.errOut, "error: %s %s: %v\n", phase, cfg, err)
}

// Summary prints the tally of a sweep.
func (r *Reporter) Summary(phase params.Phase, points, succeeded, failed int, elapsed time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.errOut, "%s: %d points, %d succeeded, %d failed in %s\n",
		phase, points, succeeded, failed, elapsed.Round(time.Millisecond))
}

func (r *Reporter) writeJSON(rec measurementRecord) {
	data, err := json.Marshal(rec)
	if err != nil {
		fmt.Fprintf(r.errOut, "error: encoding measurement: %v\n", err)
		return
	}
	fmt.Fprintln(r.out, string(data))
}

// PlanTree renders the configuration points of a sweep, grouped by type
// count and then function count.
func PlanTree(sweep params.SweepRange) treeprint.Tree {
	tree := treeprint.NewWithRoot(fmt.Sprintf("%d configuration points", sweep.Len()))
	for t := range sweep.Types.Values() {
		types := tree.AddBranch(fmt.Sprintf("types=%d", t))
		for f := range sweep.Functions.Values() {
			functions := types.AddBranch(fmt.Sprintf("functions=%d", f))
			for c := range sweep.Calls.Values() {
				functions.AddNode(fmt.Sprintf("calls=%d", c))
			}
		}
	}
	return tree
}
