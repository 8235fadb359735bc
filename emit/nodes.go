package emit

import (
	"fmt"
	"math/big"

	"github.com/langforge/corelang/ast"
	"github.com/langforge/corelang/typesys"
)

// EmitNode emits n's value converted to its ContextType and, when n is
// a tail position, the function-exit sequence (spec.md §4.5 "Tail
// returns"). Decoration must have run first: a node with no
// ContextType is a pipeline bug, not a user error.
func (e *Emitter) EmitNode(n *ast.Node) error {
	desired := n.ContextType()
	if desired == nil {
		return fmt.Errorf("emit: node %s reached emission without a ContextType", n)
	}
	if err := e.EmitTypedNode(n, desired); err != nil {
		return err
	}
	if n.IsTail() && !tailTransparent(n) && desired != typesys.Void && e.tailSuppressed == 0 {
		e.tailReturn(n.IsInTry())
	}
	return nil
}

// tailTransparent reports whether a node kind delegates its tail
// position to a result child (which is itself tail-marked and emits
// the return), rather than producing the return value directly.
func tailTransparent(n *ast.Node) bool {
	switch n.Kind() {
	case ast.KindBlock, ast.KindIf, ast.KindOptions, ast.KindContainer:
		return true
	default:
		return false
	}
}

// EmitTypedNode emits n and converts the result to desired (spec.md
// §4.5 "Typed emit helpers").
func (e *Emitter) EmitTypedNode(n *ast.Node, desired *typesys.TypeRef) error {
	produced, err := e.emitValue(n, desired)
	if err != nil {
		return err
	}
	return e.convertTo(produced, desired)
}

// EmitVoid emits n for effect only; the node must leave the stack
// unchanged, which conversion-to-Void guarantees by discarding any
// produced value.
func (e *Emitter) EmitVoid(n *ast.Node) error {
	return e.EmitTypedNode(n, typesys.Void)
}

// convertTo closes the gap between a produced type and the context's
// desired type: identity and Any are free, Void discards, statically
// known pairs go through the safe-conversion ladder, and an Unknown on
// either side falls back to the runtime converter.
func (e *Emitter) convertTo(produced, desired *typesys.TypeRef) error {
	if produced == desired || desired == typesys.Any {
		return nil
	}
	if desired == typesys.Void {
		if produced != typesys.Void {
			e.B.Pop()
		}
		return nil
	}
	if produced == typesys.Void {
		return fmt.Errorf("emit: a void value cannot satisfy a %s context", desired)
	}
	if produced == typesys.Unknown || desired == typesys.Unknown {
		e.EmitRuntimeConversion(produced, desired)
		return nil
	}
	return e.EmitSafeConversion(produced, desired, e.State().Checked)
}

// emitValue emits n's natural value and returns its produced type,
// before any context conversion. desired is passed through for kinds
// whose own emission can use it (If branch defaults, Cast).
func (e *Emitter) emitValue(n *ast.Node, desired *typesys.TypeRef) (*typesys.TypeRef, error) {
	if desired == nil {
		desired = typesys.Unknown
	}
	switch n.Kind() {
	case ast.KindLiteral:
		return e.emitLiteral(n)
	case ast.KindVariable:
		return e.emitVariable(n)
	case ast.KindAssign:
		return e.emitAssign(n, desired)
	case ast.KindBlock:
		return e.emitBlock(n, desired)
	case ast.KindIf:
		return e.emitIf(n, desired)
	case ast.KindOp:
		return e.emitOperator(n, desired)
	case ast.KindCast:
		return e.emitCast(n)
	case ast.KindFunction:
		return e.emitFunctionValue(n)
	case ast.KindOptions:
		return e.emitOptions(n, desired)
	case ast.KindContainer:
		for _, child := range n.Children() {
			if err := e.EmitVoid(child); err != nil {
				return nil, err
			}
		}
		return typesys.Void, nil
	case ast.KindParameter:
		return nil, fmt.Errorf("emit: Parameter node %q emitted outside a Function", n.ParameterName())
	default:
		return nil, fmt.Errorf("emit: unhandled node kind %s", n.Kind())
	}
}

func (e *Emitter) emitLiteral(n *ast.Node) (*typesys.TypeRef, error) {
	t := n.ValueType()
	if t == nil {
		return nil, fmt.Errorf("emit: literal without a ValueType")
	}
	v := n.LiteralValue()
	if v == nil {
		e.B.PushNull()
		return t, nil
	}
	switch val := v.(type) {
	case bool:
		e.B.PushBool(val)
	case int64:
		if t.Code().ByteSize() > 4 {
			e.B.PushInt64(val)
		} else {
			e.B.PushInt32(int32(val))
		}
	case int:
		e.B.PushInt32(int32(val))
	case uint64:
		if t.Code().ByteSize() > 4 {
			e.B.PushInt64(int64(val))
		} else {
			e.B.PushInt32(int32(uint32(val)))
		}
	case float64:
		if t.Code() == typesys.CodeSingle {
			e.B.PushFloat32(float32(val))
		} else {
			e.B.PushFloat64(val)
		}
	case string:
		e.B.PushString(val)
	case *big.Int:
		// No push-const form exists for wide integers; they go through
		// the constant cache like any other non-primitive.
		f := e.CacheConstant(val.String(), typesys.BigInt)
		e.B.LoadField(f)
	default:
		return nil, fmt.Errorf("emit: literal of unsupported host type %T", v)
	}
	return t, nil
}

// slotFor resolves the storage behind a Variable node: the symbol's
// pre-allocated slot, a name visible in the emitter's scopes or closure
// chain, or — for anything still unresolved — a late-bound TopLevel
// binding (spec.md §3.5).
func (e *Emitter) slotFor(n *ast.Node) (Slot, error) {
	if sym := n.VariableSymbol(); sym != nil {
		if s, ok := sym.Slot.(Slot); ok {
			return s, nil
		}
	}
	if s, ok := e.ResolveName(n.VariableName()); ok {
		return s, nil
	}
	if e.TopLevel == nil {
		return nil, fmt.Errorf("emit: no top-level environment to bind %q against", n.VariableName())
	}
	b := e.TopLevel.Declare(n.VariableName(), n.Position().String())
	return &TopLevelSlot{Binding: b, Typ: typesys.Object}, nil
}

func (e *Emitter) emitVariable(n *ast.Node) (*typesys.TypeRef, error) {
	s, err := e.slotFor(n)
	if err != nil {
		return nil, err
	}
	if !s.CanRead() {
		return nil, fmt.Errorf("emit: %q is not readable", n.VariableName())
	}
	if err := s.EmitGet(e); err != nil {
		return nil, err
	}
	return s.Type(), nil
}

func (e *Emitter) emitAssign(n *ast.Node, desired *typesys.TypeRef) (*typesys.TypeRef, error) {
	lhs, rhs := n.AssignLHS(), n.AssignRHS()
	if lhs.Kind() != ast.KindVariable {
		return nil, fmt.Errorf("emit: assignment target of kind %s is not assignable", lhs.Kind())
	}

	var target Slot
	if n.AssignInitializing() {
		// A captured variable's cell was already declared when the
		// closure was allocated; the binding form writes it rather than
		// shadowing it with a fresh local.
		if existing, ok := e.ResolveName(lhs.VariableName()); ok {
			if _, isCell := existing.(*ClosureSlot); isCell {
				target = existing
			}
		}
		if target == nil {
			// The binding form declares fresh storage in the current
			// scope.
			t := rhs.ValueType()
			if t == nil || t == typesys.Invalid {
				t = typesys.Object
			}
			var err error
			if len(e.scopes) > 0 {
				target, err = e.AllocLocalVariable(lhs.VariableName(), typesys.AsEmittable(t))
			} else {
				target, err = e.slotFor(lhs)
			}
			if err != nil {
				return nil, err
			}
		}
		if sym := lhs.VariableSymbol(); sym != nil {
			sym.Slot = target
		}
	} else {
		var err error
		target, err = e.slotFor(lhs)
		if err != nil {
			return nil, err
		}
	}
	if !target.CanWrite() {
		return nil, fmt.Errorf("emit: %q is not writable", lhs.VariableName())
	}

	err := target.EmitSet(e, func() error {
		return e.EmitTypedNode(rhs, target.Type())
	}, n.AssignInitializing())
	if err != nil {
		return nil, err
	}

	if desired == typesys.Void {
		return typesys.Void, nil
	}
	// Assignment-as-expression: re-read the slot for the surrounding
	// context.
	if err := target.EmitGet(e); err != nil {
		return nil, err
	}
	return target.Type(), nil
}

func (e *Emitter) emitBlock(n *ast.Node, desired *typesys.TypeRef) (*typesys.TypeRef, error) {
	e.BeginScope()
	children := n.Children()
	if len(children) == 0 {
		if err := e.EndScope(); err != nil {
			return nil, err
		}
		return typesys.Void, nil
	}
	for _, child := range children[:len(children)-1] {
		if err := e.EmitNode(child); err != nil {
			return nil, err
		}
	}
	last := children[len(children)-1]
	if err := e.EmitNode(last); err != nil {
		return nil, err
	}
	if err := e.EndScope(); err != nil {
		return nil, err
	}
	// The last child was emitted in its own ContextType, which
	// decoration set to the block's desired type already.
	if ct := last.ContextType(); ct != nil {
		return ct, nil
	}
	return desired, nil
}

func (e *Emitter) emitIf(n *ast.Node, desired *typesys.TypeRef) (*typesys.TypeRef, error) {
	elseLabel := e.B.NewLabel()
	if err := e.EmitTypedNode(n.IfCond(), typesys.Bool); err != nil {
		return nil, err
	}
	e.B.BranchIfFalse(elseLabel)

	thenBranch, elseBranch := n.IfThen(), n.IfElse()
	if err := e.EmitNode(thenBranch); err != nil {
		return nil, err
	}

	// Tail branches return on their own; the join branch would be
	// unreachable.
	joinNeeded := !(thenBranch.IsTail() && !thenBranch.IsInTry())
	var endLabel Label
	if joinNeeded {
		endLabel = e.B.NewLabel()
		e.B.Branch(endLabel)
	}
	e.B.MarkLabel(elseLabel)

	switch {
	case elseBranch != nil:
		if err := e.EmitNode(elseBranch); err != nil {
			return nil, err
		}
	case desired != typesys.Void:
		if err := e.pushDefault(desired); err != nil {
			return nil, err
		}
	}
	if joinNeeded {
		e.B.MarkLabel(endLabel)
	}
	return desired, nil
}

func (e *Emitter) emitCast(n *ast.Node) (*typesys.TypeRef, error) {
	operand := n.CastOperand()
	dst := n.CastTarget()
	e.tailSuppressed++
	src, err := e.emitOperand(operand)
	e.tailSuppressed--
	if err != nil {
		return nil, err
	}
	switch n.CastKind() {
	case ast.CastSafe:
		if err := e.EmitSafeConversion(src, dst, e.State().Checked); err != nil {
			return nil, err
		}
	case ast.CastUnsafe:
		if err := e.EmitUnsafeConversion(src, dst, e.State().Checked); err != nil {
			return nil, err
		}
	default: // CastRuntime
		e.EmitRuntimeConversion(src, dst)
	}
	return dst, nil
}

func (e *Emitter) emitOptions(n *ast.Node, desired *typesys.TypeRef) (*typesys.TypeRef, error) {
	pop := e.PushOptions(n.OptionsOverrides())
	defer pop()
	if err := e.EmitTypedNode(n.OptionsBody(), desired); err != nil {
		return nil, err
	}
	return desired, nil
}

// pushDefault pushes the zero value of t, for an If with a missing
// else branch in a value context.
func (e *Emitter) pushDefault(t *typesys.TypeRef) error {
	switch {
	case t == typesys.Bool:
		e.B.PushBool(false)
	case t.Code() == typesys.CodeSingle:
		e.B.PushFloat32(0)
	case t.Code().IsFloatingPoint():
		e.B.PushFloat64(0)
	case t.Code().IsPrimitiveNumeric() && t.Code().ByteSize() > 4:
		e.B.PushInt64(0)
	case t.Code().IsPrimitiveNumeric():
		e.B.PushInt32(0)
	case t == typesys.String:
		e.B.PushString("")
	case t.IsReference() || t == typesys.Unknown:
		e.B.PushNull()
	default:
		return fmt.Errorf("emit: no default value for type %s", t)
	}
	return nil
}
