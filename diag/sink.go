package diag

import (
	"sync"

	"github.com/google/uuid"
)

// Sink accumulates OutputMessages for one compilation. It is safe for
// concurrent use: the bytecode/decoration pipeline runs single-threaded
// per compilation, but a host embedding several compilations in parallel
// goroutines may still want to fan their messages into one place.
//
// SessionID tags every message-producing compilation with a stable
// identifier so a caller aggregating diagnostics across concurrent
// CompilerStates (spec.md §5: "thread-safe across independent
// compilations") can tell them apart without threading a correlation ID
// through every call site by hand.
type Sink struct {
	mu         sync.Mutex
	SessionID  uuid.UUID
	messages   []OutputMessage
	hasErrors  bool
	hasCritErr bool
}

// NewSink creates an empty sink with a fresh session identifier.
func NewSink() *Sink {
	return &Sink{SessionID: uuid.New()}
}

// Report appends a message, tracking whether any Error-severity message
// has been seen.
func (s *Sink) Report(msg OutputMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, msg)
	if msg.Severity == Error {
		s.hasErrors = true
	}
}

// ReportCritical reports a message and additionally marks the sink as
// having encountered a critical (pipeline-halting) error — used for
// InternalCompilerError and CompileTimeException conditions.
func (s *Sink) ReportCritical(msg OutputMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, msg)
	s.hasErrors = true
	s.hasCritErr = true
}

// Messages returns a snapshot of all reported messages in report order.
func (s *Sink) Messages() []OutputMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]OutputMessage, len(s.messages))
	copy(out, s.messages)
	return out
}

// HasErrors reports whether any Error-severity message was recorded.
func (s *Sink) HasErrors() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hasErrors
}

// HasCriticalErrors reports whether a critical, pipeline-halting error
// was recorded; the decoration pipeline polls this between stages to
// fail fast.
func (s *Sink) HasCriticalErrors() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hasCritErr
}
