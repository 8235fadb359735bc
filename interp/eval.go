package interp

import (
	"fmt"
	"math/big"

	"github.com/langforge/corelang/ast"
	"github.com/langforge/corelang/binding"
	"github.com/langforge/corelang/decorate"
	"github.com/langforge/corelang/lang"
	"github.com/langforge/corelang/operator"
	"github.com/langforge/corelang/typesys"
)

// Interpreter evaluates decorated trees. It carries the same policy
// stack the emitter does — an Options node's overrides scope the
// checked/promote flags for its body — plus the current top-level
// namespace stack for function calls that switch namespaces.
type Interpreter struct {
	Language lang.Language

	states *decorate.StateStack
	tops   *binding.TopLevelStack
}

// New creates an interpreter rooted at state and top.
func New(l lang.Language, top *binding.TopLevel, state *decorate.CompilerState) *Interpreter {
	return &Interpreter{
		Language: l,
		states:   decorate.NewStateStack(state),
		tops:     binding.NewTopLevelStack(top),
	}
}

// State returns the active CompilerState.
func (in *Interpreter) State() *decorate.CompilerState { return in.states.Current() }

// TopLevel returns the active namespace.
func (in *Interpreter) TopLevel() *binding.TopLevel { return in.tops.Current() }

func (in *Interpreter) evalOptions() operator.EvalOptions {
	st := in.State()
	return operator.EvalOptions{Checked: st.Checked, Promote: st.PromoteOnOverflow}
}

// Void is the no-value result of statements evaluated for effect.
var Void = operator.Value{Code: typesys.CodeVoid}

// Evaluate runs n in env. Runtime failures — undefined variables,
// divide by zero, overflow without promote, inapplicable operators —
// propagate as errors to the caller (spec.md §7).
func (in *Interpreter) Evaluate(n *ast.Node, env *Env) (operator.Value, error) {
	switch n.Kind() {
	case ast.KindLiteral:
		return literalValue(n)
	case ast.KindVariable:
		return in.evalVariable(n, env)
	case ast.KindAssign:
		return in.evalAssign(n, env)
	case ast.KindBlock:
		return in.evalBlock(n, env)
	case ast.KindIf:
		return in.evalIf(n, env)
	case ast.KindOp:
		return in.evalOp(n, env)
	case ast.KindCast:
		return in.evalCast(n, env)
	case ast.KindFunction:
		return in.evalFunction(n, env)
	case ast.KindOptions:
		return in.evalOptionsNode(n, env)
	case ast.KindContainer:
		for _, c := range n.Children() {
			if _, err := in.Evaluate(c, env); err != nil {
				return Void, err
			}
		}
		return Void, nil
	case ast.KindParameter:
		return Void, &CompileTimeError{Message: fmt.Sprintf("parameter %q evaluated outside a function", n.ParameterName())}
	default:
		return Void, &CompileTimeError{Message: fmt.Sprintf("unhandled node kind %s", n.Kind())}
	}
}

func literalValue(n *ast.Node) (operator.Value, error) {
	t := n.ValueType()
	code := typesys.CodeObject
	if t != nil {
		code = t.Code()
	}
	switch v := n.LiteralValue().(type) {
	case nil:
		return operator.ObjectValue(nil), nil
	case bool:
		return operator.BoolValue(v), nil
	case int64:
		return operator.IntValue(code, v), nil
	case int:
		return operator.IntValue(code, int64(v)), nil
	case uint64:
		return operator.UintValue(code, v), nil
	case float64:
		return operator.FloatValue(code, v), nil
	case string:
		return operator.StringValue(v), nil
	case *big.Int:
		return operator.BigValue(v), nil
	case operator.Value:
		return v, nil
	default:
		return operator.ObjectValue(v), nil
	}
}

func (in *Interpreter) evalVariable(n *ast.Node, env *Env) (operator.Value, error) {
	name := n.VariableName()
	if v, ok := env.Lookup(name); ok {
		return v, nil
	}
	if b, ok := in.TopLevel().Lookup(name); ok && b.IsBound() {
		return toValue(b.Value()), nil
	}
	return Void, &UndefinedVariableError{Name: name}
}

func (in *Interpreter) evalAssign(n *ast.Node, env *Env) (operator.Value, error) {
	lhs, rhs := n.AssignLHS(), n.AssignRHS()
	if lhs.Kind() != ast.KindVariable {
		return Void, &CompileTimeError{Message: fmt.Sprintf("assignment target of kind %s is not assignable", lhs.Kind())}
	}
	v, err := in.Evaluate(rhs, env)
	if err != nil {
		return Void, err
	}
	name := lhs.VariableName()
	if n.AssignInitializing() {
		env.Define(name, v)
		return v, nil
	}
	if env.Set(name, v) {
		return v, nil
	}
	if b, ok := in.TopLevel().Lookup(name); ok {
		b.Publish(fromValue(v))
		return v, nil
	}
	return Void, &UndefinedVariableError{Name: name}
}

func (in *Interpreter) evalBlock(n *ast.Node, env *Env) (operator.Value, error) {
	inner := NewEnv(env)
	result := Void
	for _, c := range n.Children() {
		v, err := in.Evaluate(c, inner)
		if err != nil {
			return Void, err
		}
		result = v
	}
	return result, nil
}

func (in *Interpreter) evalIf(n *ast.Node, env *Env) (operator.Value, error) {
	cond, err := in.Evaluate(n.IfCond(), env)
	if err != nil {
		return Void, err
	}
	if cond.IsTruthy() {
		return in.Evaluate(n.IfThen(), env)
	}
	if elseBranch := n.IfElse(); elseBranch != nil {
		return in.Evaluate(elseBranch, env)
	}
	return Void, nil
}

func (in *Interpreter) evalOp(n *ast.Node, env *Env) (operator.Value, error) {
	op := n.Operator()
	operands := n.Operands()

	if op == lang.Apply {
		return in.evalApply(operands, env)
	}
	if op == operator.LogicalTruth {
		if len(operands) != 1 {
			return Void, &CompileTimeError{Message: "truth takes exactly one operand"}
		}
		v, err := in.Evaluate(operands[0], env)
		if err != nil {
			return Void, err
		}
		return operator.EvaluateTruth(v), nil
	}
	if len(operands) < 2 {
		return Void, &CompileTimeError{Message: fmt.Sprintf("operator %s applied to %d operand(s)", op.Name(), len(operands))}
	}

	acc, err := in.Evaluate(operands[0], env)
	if err != nil {
		return Void, err
	}
	for _, rhs := range operands[1:] {
		rv, err := in.Evaluate(rhs, env)
		if err != nil {
			return Void, err
		}
		acc, err = operator.Evaluate(op, acc, rv, in.evalOptions())
		if err != nil {
			return Void, err
		}
	}
	return acc, nil
}

func (in *Interpreter) evalApply(operands []*ast.Node, env *Env) (operator.Value, error) {
	if len(operands) == 0 {
		return Void, &CompileTimeError{Message: "application without a callee"}
	}
	calleeVal, err := in.Evaluate(operands[0], env)
	if err != nil {
		return Void, err
	}
	fn, ok := calleeVal.Obj.(*lang.Function)
	if !ok {
		return Void, &NotCallableError{Value: calleeVal.Obj}
	}
	args := make([]operator.Value, 0, len(operands)-1)
	for _, a := range operands[1:] {
		v, err := in.Evaluate(a, env)
		if err != nil {
			return Void, err
		}
		args = append(args, v)
	}
	return in.Call(fn, args)
}

// Call applies fn to args: defaults evaluate in the captured frame,
// MakeArguments normalizes the call shape, and the body runs in a
// fresh frame chained to the captured one. The function's TopLevel
// becomes current for the duration of the call, restored on every exit
// path.
func (in *Interpreter) Call(fn *lang.Function, args []operator.Value) (operator.Value, error) {
	captured, _ := fn.CapturedEnv.(*Env)

	var defaults []interface{}
	for _, d := range fn.Defaults {
		v, err := in.Evaluate(d, captured)
		if err != nil {
			return Void, err
		}
		defaults = append(defaults, fromValue(v))
	}

	boxed := make([]interface{}, len(args))
	for i, a := range args {
		boxed[i] = fromValue(a)
	}
	normalized, err := fn.Template.MakeArguments(boxed, defaults)
	if err != nil {
		return Void, err
	}

	if fn.Template.TopLevel != nil {
		pop := in.tops.Push(fn.Template.TopLevel)
		defer pop()
	}

	frame := NewEnv(captured)
	for i, name := range fn.Template.ParamNames {
		frame.Define(name, toValue(normalized[i]))
	}
	return in.Evaluate(fn.Body, frame)
}

func (in *Interpreter) evalCast(n *ast.Node, env *Env) (operator.Value, error) {
	v, err := in.Evaluate(n.CastOperand(), env)
	if err != nil {
		return Void, err
	}
	return convertValue(v, n.CastTarget())
}

func (in *Interpreter) evalFunction(n *ast.Node, env *Env) (operator.Value, error) {
	var tpl *lang.FunctionTemplate
	var err error
	if in.Language != nil {
		tpl, err = in.Language.NewFunctionTemplate(n)
	} else {
		tpl, err = lang.TemplateForFunction(n, in.TopLevel())
		if err == nil {
			tpl.NewList = func(items []interface{}) interface{} { return items }
			tpl.NewDict = func() interface{} { return map[string]interface{}{} }
		}
	}
	if err != nil {
		return Void, err
	}
	if tpl.TopLevel == nil {
		tpl.TopLevel = in.TopLevel()
	}

	var defaults []*ast.Node
	for _, p := range n.FunctionParams() {
		if p.ParameterKind() == ast.ParamNormal {
			if d := p.ParameterDefault(); d != nil {
				defaults = append(defaults, d)
			}
		}
	}
	fn := &lang.Function{
		Template:    tpl,
		Params:      n.FunctionParams(),
		Body:        n.FunctionBody(),
		Defaults:    defaults,
		CapturedEnv: env,
	}
	return operator.ObjectValue(fn), nil
}

func (in *Interpreter) evalOptionsNode(n *ast.Node, env *Env) (operator.Value, error) {
	pop := in.states.Push(n.OptionsOverrides())
	defer pop()
	return in.Evaluate(n.OptionsBody(), env)
}

// toValue lifts a host value (a Binding's payload, a normalized
// argument) back into the interpreter's value representation.
func toValue(v interface{}) operator.Value {
	if val, ok := v.(operator.Value); ok {
		return val
	}
	switch x := v.(type) {
	case nil:
		return operator.ObjectValue(nil)
	case bool:
		return operator.BoolValue(x)
	case int64:
		return operator.IntValue(typesys.CodeInt, x)
	case float64:
		return operator.FloatValue(typesys.CodeDouble, x)
	case string:
		return operator.StringValue(x)
	case *big.Int:
		return operator.BigValue(x)
	default:
		return operator.ObjectValue(x)
	}
}

// fromValue unwraps a Value for storage in Bindings and argument
// arrays, keeping the typed form so round-trips preserve width and
// sign.
func fromValue(v operator.Value) interface{} {
	return v
}

// convertValue is the interpreted counterpart of runtime conversion:
// numeric widths adjust to the target's code, reference targets accept
// anything object-shaped.
func convertValue(v operator.Value, target *typesys.TypeRef) (operator.Value, error) {
	if target == nil || target == typesys.Unknown || target == typesys.Any || target == typesys.Object {
		return v, nil
	}
	code := target.Code()
	switch {
	case code == v.Code:
		return v, nil
	case code.IsFloatingPoint():
		return operator.FloatValue(code, floatOfValue(v)), nil
	case code == typesys.CodeBigInt:
		return operator.BigValue(bigOfValue(v)), nil
	case code.IsIntegral() && code.IsUnsigned():
		return operator.UintValue(code, uintOfValue(v)), nil
	case code.IsIntegral():
		return operator.IntValue(code, intOfValue(v)), nil
	case code == typesys.CodeBool:
		return operator.BoolValue(v.IsTruthy()), nil
	case code == typesys.CodeString:
		return operator.StringValue(displayString(v)), nil
	default:
		return v, nil
	}
}

func displayString(v operator.Value) string {
	switch {
	case v.Code == typesys.CodeString:
		return v.S
	case v.Code == typesys.CodeBool:
		return fmt.Sprintf("%t", v.B)
	case v.Code.IsFloatingPoint():
		return fmt.Sprintf("%g", v.F)
	case v.Big != nil:
		return v.Big.String()
	case v.Code.IsUnsigned():
		return fmt.Sprintf("%d", v.U)
	case v.Code.IsIntegral():
		return fmt.Sprintf("%d", v.I)
	default:
		return fmt.Sprintf("%v", v.Obj)
	}
}

func floatOfValue(v operator.Value) float64 {
	switch {
	case v.Code.IsFloatingPoint():
		return v.F
	case v.Big != nil:
		f, _ := new(big.Float).SetInt(v.Big).Float64()
		return f
	case v.Code.IsUnsigned():
		return float64(v.U)
	default:
		return float64(v.I)
	}
}

func intOfValue(v operator.Value) int64 {
	switch {
	case v.Code.IsFloatingPoint():
		return int64(v.F)
	case v.Big != nil:
		return v.Big.Int64()
	case v.Code.IsUnsigned():
		return int64(v.U)
	default:
		return v.I
	}
}

func uintOfValue(v operator.Value) uint64 {
	switch {
	case v.Code.IsFloatingPoint():
		return uint64(v.F)
	case v.Big != nil:
		return v.Big.Uint64()
	case v.Code.IsUnsigned():
		return v.U
	default:
		return uint64(v.I)
	}
}

func bigOfValue(v operator.Value) *big.Int {
	switch {
	case v.Big != nil:
		return v.Big
	case v.Code.IsUnsigned():
		return new(big.Int).SetUint64(v.U)
	case v.Code.IsFloatingPoint():
		b, _ := new(big.Float).SetFloat64(v.F).Int(nil)
		return b
	default:
		return big.NewInt(v.I)
	}
}
