package binding

// TopLevel owns one BindingDictionary and acts as a global namespace
// (spec.md §3.5). A host typically creates one TopLevel per script
// environment; several goroutines may share it, since the dictionary
// and its cells are individually safe.
type TopLevel struct {
	dict *BindingDictionary
}

// NewTopLevel creates an empty namespace.
func NewTopLevel() *TopLevel {
	return &TopLevel{dict: NewBindingDictionary()}
}

// Bindings returns the owned dictionary.
func (t *TopLevel) Bindings() *BindingDictionary { return t.dict }

// Declare returns the named binding, creating an unbound one on first
// reference — late-bound global semantics: a compiled reference to an
// undeclared name still gets a stable cell to read through later.
func (t *TopLevel) Declare(name, origin string) *Binding {
	return t.dict.Declare(name, origin)
}

// Lookup returns the named binding without creating one.
func (t *TopLevel) Lookup(name string) (*Binding, bool) {
	return t.dict.Lookup(name)
}

// TopLevelStack is the scoped current-namespace stack spec.md §5
// describes as thread-local: entering a function evaluation or
// interpreter frame pushes the function's captured TopLevel, and the
// returned popper must run on every exit path. As with
// decorate.StateStack, Go has no goroutine-local storage, so the stack
// is an explicit value owned by whoever drives a compilation or
// evaluation (see DESIGN.md).
type TopLevelStack struct {
	frames []*TopLevel
}

// NewTopLevelStack creates a stack whose bottom frame is root.
func NewTopLevelStack(root *TopLevel) *TopLevelStack {
	return &TopLevelStack{frames: []*TopLevel{root}}
}

// Current returns the active namespace.
func (s *TopLevelStack) Current() *TopLevel {
	return s.frames[len(s.frames)-1]
}

// Push makes t the active namespace and returns a popper that must be
// deferred immediately so the pop runs even on a panicking exit.
func (s *TopLevelStack) Push(t *TopLevel) func() {
	s.frames = append(s.frames, t)
	return func() {
		s.frames = s.frames[:len(s.frames)-1]
	}
}
