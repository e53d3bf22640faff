package dispatchbench

import (
	"github.com/KromDaniel/dispatchbench/internal/params"
	"github.com/KromDaniel/dispatchbench/internal/synth"
)

// Synthesize returns the generated program for c without touching the
// filesystem. strategy is "static" or "dynamic".
//
// Example:
//
//	src, err := dispatchbench.Synthesize(dispatchbench.Case{NumTypes: 2, NumFunctions: 2, NumCalls: 1}, "dynamic")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Print(src)
func Synthesize(c Case, strategy string) (string, error) {
	s, err := params.ParseStrategy(strategy)
	if err != nil {
		return "", err
	}
	return synth.Synthesize(c, s)
}
