package params

import (
	"fmt"
	"iter"
	"slices"
)

// Axis describes one dimension of a sweep.
//
// A pinned axis (Step == 0) yields Bound once. A stepped axis yields
// Start, Start+Step, ... up to and including Bound; a zero Start means
// "start at Step", so Axis{Bound: 4, Step: 2} yields 2 and 4.
type Axis struct {
	Bound int
	Step  int
	Start int
}

// Pinned returns an axis that always yields v.
func Pinned(v int) Axis {
	return Axis{Bound: v}
}

// Stepped returns an axis that yields step, 2*step, ... up to bound.
func Stepped(bound, step int) Axis {
	return Axis{Bound: bound, Step: step}
}

// Validate rejects negative values.
func (a Axis) Validate() error {
	if a.Bound < 0 || a.Step < 0 || a.Start < 0 {
		return fmt.Errorf("axis %+v has a negative field", a)
	}
	if a.Bound > MaxAxis {
		return fmt.Errorf("axis bound %d exceeds %d", a.Bound, MaxAxis)
	}
	return nil
}

// Values yields the axis values in ascending order.
func (a Axis) Values() iter.Seq[int] {
	return func(yield func(int) bool) {
		if a.Step == 0 {
			yield(a.Bound)
			return
		}
		start := a.Start
		if start == 0 {
			start = a.Step
		}
		for v := start; v <= a.Bound; v += a.Step {
			if !yield(v) {
				return
			}
		}
	}
}

// Len returns the number of values the axis yields.
func (a Axis) Len() int {
	if a.Step == 0 {
		return 1
	}
	start := a.Start
	if start == 0 {
		start = a.Step
	}
	if start > a.Bound {
		return 0
	}
	return (a.Bound-start)/a.Step + 1
}

// SweepRange generalizes CaseConfig so each count is an Axis. Toggles are
// copied into every configuration point unchanged.
type SweepRange struct {
	Types     Axis
	Functions Axis
	Calls     Axis
	Toggles   CaseConfig // Only the toggle fields are used
}

// Validate checks every axis and the toggles.
func (r SweepRange) Validate() error {
	for _, axis := range []struct {
		name string
		axis Axis
	}{
		{"types", r.Types},
		{"functions", r.Functions},
		{"calls", r.Calls},
	} {
		if err := axis.axis.Validate(); err != nil {
			return fmt.Errorf("%s: %w", axis.name, err)
		}
	}
	toggles := r.Toggles
	toggles.NumTypes, toggles.NumFunctions, toggles.NumCalls = 0, 0, 0
	return toggles.Validate()
}

// Len returns the number of configuration points in the range.
func (r SweepRange) Len() int {
	return r.Types.Len() * r.Functions.Len() * r.Calls.Len()
}

// All yields the Cartesian product of the three axes, types outermost and
// calls innermost. Each call recomputes the sequence.
func (r SweepRange) All() iter.Seq[CaseConfig] {
	return func(yield func(CaseConfig) bool) {
		for t := range r.Types.Values() {
			for f := range r.Functions.Values() {
				for c := range r.Calls.Values() {
					cfg := r.Toggles
					cfg.NumTypes, cfg.NumFunctions, cfg.NumCalls = t, f, c
					if !yield(cfg) {
						return
					}
				}
			}
		}
	}
}

// Points collects All into a slice.
func (r SweepRange) Points() []CaseConfig {
	return slices.Collect(r.All())
}

// SingleRange returns a range that yields exactly cfg.
func SingleRange(cfg CaseConfig) SweepRange {
	return SweepRange{
		Types:     Pinned(cfg.NumTypes),
		Functions: Pinned(cfg.NumFunctions),
		Calls:     Pinned(cfg.NumCalls),
		Toggles:   cfg,
	}
}
