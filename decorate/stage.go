package decorate

// Stage is one of the four ordered decoration phases (spec.md §4.3).
type Stage int

const (
	PreDecorate Stage = iota
	Decorate
	Optimize
	Optimized
)

func (s Stage) String() string {
	switch s {
	case PreDecorate:
		return "PreDecorate"
	case Decorate:
		return "Decorate"
	case Optimize:
		return "Optimize"
	case Optimized:
		return "Optimized"
	default:
		return "Unknown"
	}
}

// stageOrder is the fixed execution order; Pipeline never reorders it.
var stageOrder = [...]Stage{PreDecorate, Decorate, Optimize, Optimized}
