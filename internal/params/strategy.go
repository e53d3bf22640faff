package params

import "fmt"

// Strategy selects how the shared behavior is dispatched in a generated program.
type Strategy int

const (
	// Static binds the behavior at compile time through a generic type parameter.
	Static Strategy = iota
	// Dynamic binds the behavior at run time through an interface value.
	Dynamic
)

// Strategies returns both strategies in the order every case processes them.
func Strategies() []Strategy {
	return []Strategy{Static, Dynamic}
}

func (s Strategy) String() string {
	switch s {
	case Static:
		return "static"
	case Dynamic:
		return "dynamic"
	default:
		return fmt.Sprintf("strategy(%d)", int(s))
	}
}

// ParseStrategy converts "static" or "dynamic" into a Strategy.
func ParseStrategy(s string) (Strategy, error) {
	switch s {
	case "static":
		return Static, nil
	case "dynamic":
		return Dynamic, nil
	default:
		return 0, fmt.Errorf("unknown strategy %q", s)
	}
}
