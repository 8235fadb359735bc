package diag

import "fmt"

// Diagnostic is a constant (code, default-severity, format) tuple. Every
// user-facing error or warning the core can raise is declared once here,
// the way go-dws's internal/errors catalog enumerates its error codes.
type Diagnostic struct {
	Code            string
	DefaultSeverity Severity
	Format          string
}

// ToMessage renders a concrete OutputMessage. When treatWarningsAsErrors
// is set, a Warning-severity diagnostic is promoted to Error.
func (d Diagnostic) ToMessage(treatWarningsAsErrors bool, source string, pos Position, args ...interface{}) OutputMessage {
	sev := d.DefaultSeverity
	if sev == Warning && treatWarningsAsErrors {
		sev = Error
	}
	return OutputMessage{
		Severity: sev,
		Code:     d.Code,
		Message:  fmt.Sprintf(d.Format, args...),
		Source:   source,
		Position: pos,
	}
}

// Core diagnostics. Codes follow go-dws's catalog style: a short stable
// identifier plus a human message template.
var (
	CannotConvertType = Diagnostic{
		Code:            "E0001",
		DefaultSeverity: Error,
		Format:          "cannot convert %s to %s",
	}
	VariableAssignedToSelf = Diagnostic{
		Code:            "W0002",
		DefaultSeverity: Warning,
		Format:          "variable %q is assigned to itself",
	}
	ReadOnlyVariableAssigned = Diagnostic{
		Code:            "E0003",
		DefaultSeverity: Error,
		Format:          "cannot assign to read-only variable %q",
	}
	WrongOperatorArity = Diagnostic{
		Code:            "E0004",
		DefaultSeverity: Error,
		Format:          "operator %s expects %d operand(s), got %d",
	}
	CannotApplyOperator2 = Diagnostic{
		Code:            "E0005",
		DefaultSeverity: Error,
		Format:          "cannot apply operator %s to %s and %s",
	}
	ExpectedValue = Diagnostic{
		Code:            "E0006",
		DefaultSeverity: Error,
		Format:          "expected a value, got %s",
	}
	InternalCompilerError = Diagnostic{
		Code:            "E9999",
		DefaultSeverity: Error,
		Format:          "internal compiler error: %s",
	}
	AmbiguousCall = Diagnostic{
		Code:            "E0007",
		DefaultSeverity: Error,
		Format:          "ambiguous call to operator %s for %s and %s: %d candidates match",
	}
	SuspiciousConversion = Diagnostic{
		Code:            "W0008",
		DefaultSeverity: Warning,
		Format:          "suspicious conversion from %s to %s may lose information",
	}
)
