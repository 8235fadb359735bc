package interp

import "fmt"

// UndefinedVariableError is raised when neither the frame chain nor the
// top-level namespace binds a referenced name (spec.md §7).
type UndefinedVariableError struct {
	Name string
}

func (e *UndefinedVariableError) Error() string {
	return fmt.Sprintf("undefined variable %q", e.Name)
}

// NotCallableError is raised when the callee of an application does not
// evaluate to a function.
type NotCallableError struct {
	Value interface{}
}

func (e *NotCallableError) Error() string {
	return fmt.Sprintf("value of type %T is not callable", e.Value)
}

// AmbiguousCallError is raised when overload resolution matched more
// than one candidate at evaluation time (spec.md §7).
type AmbiguousCallError struct {
	Operator string
}

func (e *AmbiguousCallError) Error() string {
	return fmt.Sprintf("ambiguous call to operator %s", e.Operator)
}

// CompileTimeError marks unrecoverable setup failures, such as a
// missing top-level environment or a malformed tree, that abort
// evaluation rather than surface as diagnostics (spec.md §7
// "Compile-time exceptions").
type CompileTimeError struct {
	Message string
}

func (e *CompileTimeError) Error() string { return e.Message }
