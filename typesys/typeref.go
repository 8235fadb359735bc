package typesys

// Kind distinguishes value types (structs, primitives) from reference
// types (classes, interfaces) for the purposes of the common-base-type
// algorithm (spec.md §4.1 step 4).
type Kind int

const (
	ValueKind Kind = iota
	ReferenceKind
)

// Field describes a named, typed member slot on a TypeRef.
type Field struct {
	Name     string
	Type     *TypeRef
	Static   bool
	InitOnly bool
	Literal  bool // compile-time constant field; has no storage, so no address
}

// Method describes a callable member, including operator overloads
// (spec.md §4.4 names these op_Addition, op_Subtraction, etc.) and
// conversion operators (op_Implicit).
type Method struct {
	Name       string
	Params     []*TypeRef
	Return     *TypeRef
	Static     bool
	IsOverload bool
}

// Constructor describes a type's construction signature.
type Constructor struct {
	Params []*TypeRef
}

// TypeRef denotes a value type. Instances are interned: two TypeRef
// values describing the same underlying type must be the same pointer,
// so every comparison in this package and its callers is reference
// equality (spec.md §3.1). Primitive singletons are declared once in
// singletons.go; named (class/record/interface) types are produced and
// cached by a Registry (registry.go).
type TypeRef struct {
	name        string
	kind        Kind
	code        Code
	base        *TypeRef
	interfaces  []*TypeRef
	fields      []*Field
	methods     []*Method
	ctors       []*Constructor
	elementType *TypeRef // array/pointer/ref element, nil otherwise
}

// New constructs a TypeRef describing a fresh, not-otherwise-interned
// type. Callers that need interning by name (classes, records) should
// go through a Registry instead of calling New directly twice for the
// same logical type.
func New(name string, kind Kind, code Code) *TypeRef {
	return &TypeRef{name: name, kind: kind, code: code}
}

func (t *TypeRef) Name() string              { return t.name }
func (t *TypeRef) Kind() Kind                { return t.kind }
func (t *TypeRef) Code() Code                { return t.code }
func (t *TypeRef) Base() *TypeRef            { return t.base }
func (t *TypeRef) Interfaces() []*TypeRef    { return t.interfaces }
func (t *TypeRef) Fields() []*Field          { return t.fields }
func (t *TypeRef) Methods() []*Method        { return t.methods }
func (t *TypeRef) Constructors() []*Constructor { return t.ctors }
func (t *TypeRef) ElementType() *TypeRef     { return t.elementType }

func (t *TypeRef) String() string { return t.name }

func (t *TypeRef) IsValue() bool     { return t.kind == ValueKind }
func (t *TypeRef) IsReference() bool { return t.kind == ReferenceKind }

// SetBase establishes the inheritance/assignability parent of a
// reference type. Only meaningful while building a type up in a
// Registry, before it is published for lookup.
func (t *TypeRef) SetBase(base *TypeRef) { t.base = base }

// AddInterface records an interface implemented by t.
func (t *TypeRef) AddInterface(iface *TypeRef) { t.interfaces = append(t.interfaces, iface) }

// AddField records a field member.
func (t *TypeRef) AddField(f *Field) { t.fields = append(t.fields, f) }

// AddMethod records a method or operator-overload member.
func (t *TypeRef) AddMethod(m *Method) { t.methods = append(t.methods, m) }

// AddConstructor records a constructor signature.
func (t *TypeRef) AddConstructor(c *Constructor) { t.ctors = append(t.ctors, c) }

// SetElementType establishes the array/pointer/ref element type.
func (t *TypeRef) SetElementType(el *TypeRef) { t.elementType = el }

// IsSubclassOf reports whether t descends from ancestor along the Base
// chain (ancestor itself counts, matching "is-a" assignability).
func (t *TypeRef) IsSubclassOf(ancestor *TypeRef) bool {
	for cur := t; cur != nil; cur = cur.base {
		if cur == ancestor {
			return true
		}
	}
	return false
}

// ImplementsInterface reports whether t (or an ancestor) lists iface
// among its interfaces.
func (t *TypeRef) ImplementsInterface(iface *TypeRef) bool {
	for cur := t; cur != nil; cur = cur.base {
		for _, i := range cur.interfaces {
			if i == iface {
				return true
			}
		}
	}
	return false
}

// MethodsNamed returns every method on t (including inherited ones)
// whose name matches exactly — used by operator-overload resolution
// (spec.md §4.4) to collect op_Addition/op_Subtraction/etc. candidates.
func (t *TypeRef) MethodsNamed(name string) []*Method {
	var out []*Method
	for cur := t; cur != nil; cur = cur.base {
		for _, m := range cur.methods {
			if m.Name == name {
				out = append(out, m)
			}
		}
	}
	return out
}
