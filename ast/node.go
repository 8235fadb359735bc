// Package ast defines the typed AST node hierarchy shared by every
// front end that plugs into the platform: container/leaf structure,
// parent/sibling links, lexical scopes, and the tail/value-context
// flags the decoration pipeline (package decorate) fills in.
//
// spec.md §9 frames the node hierarchy as a natural fit for "a single
// Node enum with one variant per kind; each variant's operations
// dispatch through an inherent match" — here that is a Kind-tagged
// struct rather than eleven separate Go types implementing a common
// interface, matching the pattern go-dws's own bytecode.Instruction
// uses (one struct, an opcode tag, a handful of operand fields) rather
// than a type per opcode.
package ast

import (
	"fmt"

	"github.com/langforge/corelang/diag"
	"github.com/langforge/corelang/operator"
	"github.com/langforge/corelang/typesys"
)

// Kind tags the closed set of node variants spec.md §3.3 enumerates.
type Kind int

const (
	KindLiteral Kind = iota
	KindVariable
	KindAssign
	KindBlock
	KindIf
	KindOp
	KindCast
	KindFunction
	KindParameter
	KindOptions
	KindContainer
)

func (k Kind) String() string {
	names := [...]string{"Literal", "Variable", "Assign", "Block", "If", "Op", "Cast", "Function", "Parameter", "Options", "Container"}
	if int(k) < len(names) {
		return names[k]
	}
	return "Unknown"
}

// ParamKind classifies a Parameter node (spec.md §3.3).
type ParamKind int

const (
	ParamNormal ParamKind = iota
	ParamList
	ParamDict
)

// CastKind distinguishes the three Cast node variants (spec.md §3.3).
type CastKind int

const (
	CastRuntime CastKind = iota
	CastSafe
	CastUnsafe
)

// Node is a single AST node. Every field below is either common
// bookkeeping (parent/sibling/flags/position/scope/attrs) or belongs to
// exactly one Kind's payload; accessors that only make sense for one
// kind panic if called on a node of a different kind, the same
// contract a mis-typed interface assertion would give.
type Node struct {
	kind Kind

	parent   *Node
	prev     *Node
	next     *Node
	index    int
	children childList

	pos   diag.Position
	scope *LexicalScope
	attrs map[string]interface{}
	flags Flags

	valueType   *typesys.TypeRef
	contextType *typesys.TypeRef

	// Literal
	literalValue interface{}

	// Variable
	varName   string
	varSymbol *Symbol

	// Assign
	assignInitializing bool

	// Op
	op *operator.Operator

	// Cast
	castKind   CastKind
	castTarget *typesys.TypeRef

	// Function
	fnName          string
	fnCreatesClosure bool

	// Parameter
	paramName string
	paramKind ParamKind

	// Options: flag overrides applied by decorate.Pipeline while this
	// node's body is visited (spec.md §3.6).
	optionOverrides map[string]interface{}
}

func newNode(kind Kind, pos diag.Position) *Node {
	return &Node{kind: kind, pos: pos, index: -1}
}

// NewLiteral creates a constant-valued leaf node.
func NewLiteral(pos diag.Position, value interface{}, t *typesys.TypeRef) *Node {
	n := newNode(KindLiteral, pos)
	n.literalValue = value
	n.valueType = t
	n.flags = n.flags.With(FlagConstant, true)
	return n
}

// NewVariable creates a reference to a named binding, resolved against
// scope during decoration.
func NewVariable(pos diag.Position, name string) *Node {
	n := newNode(KindVariable, pos)
	n.varName = name
	return n
}

// NewAssign creates an assignment node; lhs and rhs become its two
// children in that order. initializing marks the binding form of a
// declaration (spec.md concrete scenario S3) rather than a later
// reassignment, which matters for ReadOnly enforcement.
func NewAssign(pos diag.Position, lhs, rhs *Node, initializing bool) *Node {
	n := newNode(KindAssign, pos)
	n.assignInitializing = initializing
	n.children.init(n)
	n.children.append(lhs)
	n.children.append(rhs)
	return n
}

// NewBlock creates a sequence-of-statements container. Its last child
// is the "result" node for tail-propagation purposes.
func NewBlock(pos diag.Position) *Node {
	n := newNode(KindBlock, pos)
	n.children.init(n)
	return n
}

// NewIf creates a conditional node: cond, thenBranch, and an optional
// elseBranch (pass nil to omit it).
func NewIf(pos diag.Position, cond, thenBranch, elseBranch *Node) *Node {
	n := newNode(KindIf, pos)
	n.children.init(n)
	n.children.append(cond)
	n.children.append(thenBranch)
	if elseBranch != nil {
		n.children.append(elseBranch)
	}
	return n
}

// NewOp creates an n-ary operator application node.
func NewOp(pos diag.Position, op *operator.Operator, operands ...*Node) *Node {
	n := newNode(KindOp, pos)
	n.op = op
	n.children.init(n)
	for _, o := range operands {
		n.children.append(o)
	}
	return n
}

// NewCast creates a conversion node wrapping operand.
func NewCast(pos diag.Position, kind CastKind, target *typesys.TypeRef, operand *Node) *Node {
	n := newNode(KindCast, pos)
	n.castKind = kind
	n.castTarget = target
	n.children.init(n)
	n.children.append(operand)
	return n
}

// NewFunction creates a function declaration: params followed by a
// single Block body as its children, in that order.
func NewFunction(pos diag.Position, name string, params []*Node, body *Node, createsClosure bool) *Node {
	n := newNode(KindFunction, pos)
	n.fnName = name
	n.fnCreatesClosure = createsClosure
	n.children.init(n)
	for _, p := range params {
		n.children.append(p)
	}
	n.children.append(body)
	return n
}

// NewParameter creates a formal parameter; defaultValue may be nil.
func NewParameter(pos diag.Position, name string, kind ParamKind, defaultValue *Node) *Node {
	n := newNode(KindParameter, pos)
	n.paramName = name
	n.paramKind = kind
	n.children.init(n)
	if defaultValue != nil {
		n.children.append(defaultValue)
	}
	return n
}

// NewOptions creates an Options node that pushes overrides onto the
// CompilerState stack before visiting body, and pops on every exit path
// (spec.md §3.6).
func NewOptions(pos diag.Position, overrides map[string]interface{}, body *Node) *Node {
	n := newNode(KindOptions, pos)
	n.optionOverrides = overrides
	n.children.init(n)
	n.children.append(body)
	return n
}

// NewContainer creates a non-executable grouping node (spec.md §3.3),
// used for syntactic groupings that carry no decoration semantics of
// their own (e.g. a top-level unit's declaration list).
func NewContainer(pos diag.Position, children ...*Node) *Node {
	n := newNode(KindContainer, pos)
	n.children.init(n)
	for _, c := range children {
		n.children.append(c)
	}
	return n
}

// Kind returns the node's variant tag.
func (n *Node) Kind() Kind { return n.kind }

// Parent returns the owning node, or nil at the root.
func (n *Node) Parent() *Node { return n.parent }

// PrevSibling / NextSibling return adjacent children of the same
// parent, or nil at the ends of the list.
func (n *Node) PrevSibling() *Node { return n.prev }
func (n *Node) NextSibling() *Node { return n.next }

// Index returns n's position in its parent's child list, or -1 if n
// has no parent.
func (n *Node) Index() int { return n.index }

// Children returns a read-only view of n's children: empty and
// immutable for leaf-kind nodes (spec.md §3.2).
func (n *Node) Children() []*Node { return n.children.items }

// Position returns the node's source span start.
func (n *Node) Position() diag.Position { return n.pos }

// Scope returns the nearest ancestor's LexicalScope if n has none of
// its own (spec.md §3.2).
func (n *Node) Scope() *LexicalScope {
	for cur := n; cur != nil; cur = cur.parent {
		if cur.scope != nil {
			return cur.scope
		}
	}
	return nil
}

// SetScope attaches a scope directly to n.
func (n *Node) SetScope(s *LexicalScope) { n.scope = s }

// Flags returns the current bit-flags.
func (n *Node) Flags() Flags { return n.flags }

// SetFlag sets or clears a single flag bit.
func (n *Node) SetFlag(bit Flags, set bool) { n.flags = n.flags.With(bit, set) }

// IsConstant, IsTail, IsInTry, IsReadOnly are convenience readers over
// Flags (spec.md §3.2).
func (n *Node) IsConstant() bool { return n.flags.Has(FlagConstant) }
func (n *Node) IsTail() bool     { return n.flags.Has(FlagTail) }
func (n *Node) IsInTry() bool    { return n.flags.Has(FlagInTry) }
func (n *Node) IsReadOnly() bool { return n.flags.Has(FlagReadOnly) }

// ValueType returns the type the node produces if emitted directly.
func (n *Node) ValueType() *typesys.TypeRef { return n.valueType }

// SetValueType records the node's natural produced type.
func (n *Node) SetValueType(t *typesys.TypeRef) { n.valueType = t }

// ContextType returns the type the parent context demands; nil until
// decoration has run.
func (n *Node) ContextType() *typesys.TypeRef { return n.contextType }

// Attr gets an arbitrary attribute previously set with SetAttr.
func (n *Node) Attr(key string) (interface{}, bool) {
	v, ok := n.attrs[key]
	return v, ok
}

// SetAttr stores an arbitrary attribute (spec.md §3.2 "attribute
// list"), used by later stages to stash kind-agnostic annotations
// (e.g. the emitter's resolved Slot for a Variable) without widening
// Node itself for every client's needs.
func (n *Node) SetAttr(key string, value interface{}) {
	if n.attrs == nil {
		n.attrs = make(map[string]interface{})
	}
	n.attrs[key] = value
}

// Kind-specific accessors. Each panics if called against the wrong
// Kind, the same failure mode a bad type assertion on an interface
// Node would give.

func (n *Node) mustBe(k Kind) {
	if n.kind != k {
		panic(fmt.Sprintf("ast: %s accessor called on a %s node", k, n.kind))
	}
}

func (n *Node) LiteralValue() interface{} { n.mustBe(KindLiteral); return n.literalValue }

func (n *Node) VariableName() string { n.mustBe(KindVariable); return n.varName }
func (n *Node) VariableSymbol() *Symbol {
	n.mustBe(KindVariable)
	return n.varSymbol
}
func (n *Node) SetVariableSymbol(sym *Symbol) { n.mustBe(KindVariable); n.varSymbol = sym }

func (n *Node) AssignLHS() *Node { n.mustBe(KindAssign); return n.children.items[0] }
func (n *Node) AssignRHS() *Node { n.mustBe(KindAssign); return n.children.items[1] }
func (n *Node) AssignInitializing() bool { n.mustBe(KindAssign); return n.assignInitializing }

func (n *Node) IfCond() *Node { n.mustBe(KindIf); return n.children.items[0] }
func (n *Node) IfThen() *Node { n.mustBe(KindIf); return n.children.items[1] }
func (n *Node) IfElse() *Node {
	n.mustBe(KindIf)
	if len(n.children.items) > 2 {
		return n.children.items[2]
	}
	return nil
}

func (n *Node) Operator() *operator.Operator { n.mustBe(KindOp); return n.op }
func (n *Node) Operands() []*Node            { n.mustBe(KindOp); return n.children.items }

func (n *Node) CastKind() CastKind          { n.mustBe(KindCast); return n.castKind }
func (n *Node) CastTarget() *typesys.TypeRef { n.mustBe(KindCast); return n.castTarget }
func (n *Node) CastOperand() *Node          { n.mustBe(KindCast); return n.children.items[0] }

func (n *Node) FunctionName() string { n.mustBe(KindFunction); return n.fnName }
func (n *Node) FunctionCreatesClosure() bool { n.mustBe(KindFunction); return n.fnCreatesClosure }
func (n *Node) FunctionParams() []*Node {
	n.mustBe(KindFunction)
	return n.children.items[:len(n.children.items)-1]
}
func (n *Node) FunctionBody() *Node {
	n.mustBe(KindFunction)
	return n.children.items[len(n.children.items)-1]
}

func (n *Node) ParameterName() string    { n.mustBe(KindParameter); return n.paramName }
func (n *Node) ParameterKind() ParamKind { n.mustBe(KindParameter); return n.paramKind }
func (n *Node) ParameterDefault() *Node {
	n.mustBe(KindParameter)
	if len(n.children.items) > 0 {
		return n.children.items[0]
	}
	return nil
}

func (n *Node) OptionsOverrides() map[string]interface{} { n.mustBe(KindOptions); return n.optionOverrides }
func (n *Node) OptionsBody() *Node                       { n.mustBe(KindOptions); return n.children.items[0] }

// String renders a compact debug form, not a pretty-printer.
func (n *Node) String() string {
	switch n.kind {
	case KindLiteral:
		return fmt.Sprintf("Literal(%v)", n.literalValue)
	case KindVariable:
		return fmt.Sprintf("Variable(%s)", n.varName)
	case KindOp:
		return fmt.Sprintf("Op(%s)", n.op.Name())
	default:
		return n.kind.String()
	}
}
