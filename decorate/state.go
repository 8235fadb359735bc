// Package decorate implements the four-stage decoration pipeline
// (spec.md §4.3): PreDecorate, Decorate, Optimize, Optimized. Each
// stage runs an ordered list of processors over the tree, maintaining a
// CompilerState stack so an Options node's overrides are visible to
// everything beneath it and nowhere else.
package decorate

import (
	"github.com/langforge/corelang/diag"
)

// CompilerState is the process-wide (here: per-Pipeline-run) policy and
// message sink spec.md §3.6 describes: the active language name, the
// diagnostic sink, and the boolean flags that change how conversion,
// overflow, and optimization behave. Extensions carries language-specific
// flags such as allow_redefinition or optimistic_operator_inlining that
// the core never reads itself.
type CompilerState struct {
	Language string
	Sink     *diag.Sink

	Checked               bool
	PromoteOnOverflow     bool
	Optimize              bool
	Debug                 bool
	TreatWarningsAsErrors bool

	Extensions map[string]interface{}
}

// clone makes a shallow copy with its own Extensions map, so a pushed
// override can be mutated without affecting the state it was pushed
// from.
func (s *CompilerState) clone() *CompilerState {
	c := *s
	c.Extensions = make(map[string]interface{}, len(s.Extensions))
	for k, v := range s.Extensions {
		c.Extensions[k] = v
	}
	return &c
}

// withOverrides returns a clone of s with each key in overrides applied
// to the matching field (or stashed in Extensions for unrecognized
// keys), used when an Options node's overrides map is pushed.
func (s *CompilerState) withOverrides(overrides map[string]interface{}) *CompilerState {
	next := s.clone()
	for k, v := range overrides {
		b, isBool := v.(bool)
		switch k {
		case "checked":
			if isBool {
				next.Checked = b
				continue
			}
		case "promote_on_overflow":
			if isBool {
				next.PromoteOnOverflow = b
				continue
			}
		case "optimize":
			if isBool {
				next.Optimize = b
				continue
			}
		case "debug":
			if isBool {
				next.Debug = b
				continue
			}
		case "treat_warnings_as_errors":
			if isBool {
				next.TreatWarningsAsErrors = b
				continue
			}
		}
		next.Extensions[k] = v
	}
	return next
}

// StateStack is the scoped-resource construct spec.md §3.6 and §4.3
// call for: entering an Options node (or any other scope that needs a
// temporary policy override) pushes a state, and the returned popper
// must run on every exit path, including an error return or panic
// recovery by the caller. Pipeline's walkProcessor and walkVisitor
// always defer the popper
// immediately after pushing, so a processor panicking mid-subtree still
// leaves the stack balanced.
//
// Unlike spec.md §9's "thread-local Current()" framing, this is an
// explicit value threaded through the walk rather than goroutine-local
// storage — Go has no supported goroutine-local-storage primitive, and
// passing the current *CompilerState explicitly is the idiomatic
// substitute (see DESIGN.md).
type StateStack struct {
	frames []*CompilerState
}

// NewStateStack creates a stack whose single frame is root.
func NewStateStack(root *CompilerState) *StateStack {
	return &StateStack{frames: []*CompilerState{root}}
}

// Current returns the top-of-stack state.
func (s *StateStack) Current() *CompilerState {
	return s.frames[len(s.frames)-1]
}

// Push applies overrides atop the current state and returns a popper
// that must be called exactly once to restore the previous frame.
func (s *StateStack) Push(overrides map[string]interface{}) func() {
	s.frames = append(s.frames, s.Current().withOverrides(overrides))
	return func() {
		s.frames = s.frames[:len(s.frames)-1]
	}
}
