package lisp

import (
	"math"
	"testing"

	"github.com/langforge/corelang/ast"
	"github.com/langforge/corelang/emit"
	"github.com/langforge/corelang/interp"
	"github.com/langforge/corelang/lang"
	"github.com/langforge/corelang/operator"
	"github.com/langforge/corelang/typesys"
)

// compile parses and decorates src, returning the decorated root and
// the language.
func compile(t *testing.T, src string) (*Lisp, *ast.Node) {
	t.Helper()
	l := New()
	state := l.NewCompilerState()
	parser := l.NewParser(l.NewScanner(src, "scenario.scm"))
	root, err := parser.Parse()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	root, err = lang.Decorate(l, root, lang.DecoratorInterpreted, state)
	if err != nil {
		t.Fatalf("decorate: %v", err)
	}
	if state.Sink.HasErrors() {
		t.Fatalf("decorate diagnostics: %v", state.Sink.Messages())
	}
	return l, root
}

func run(t *testing.T, src string) operator.Value {
	t.Helper()
	l, root := compile(t, src)
	in := interp.New(l, l.TopLevel, l.NewCompilerState())
	v, err := in.Evaluate(root, interp.NewEnv(nil))
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	return v
}

// S1: constant arithmetic folds to a typed literal and evaluates.
func TestScenarioConstantIntegerAddition(t *testing.T) {
	l, root := compile(t, "(+ 1 2)")

	if root.Kind() != ast.KindLiteral {
		t.Fatalf("decorated root kind = %s, want a folded Literal", root.Kind())
	}
	if root.ValueType() != typesys.Int {
		t.Errorf("ValueType = %v, want Int", root.ValueType())
	}
	if !root.IsConstant() {
		t.Error("the folded literal must be constant")
	}

	in := interp.New(l, l.TopLevel, l.NewCompilerState())
	v, err := in.Evaluate(root, interp.NewEnv(nil))
	if err != nil {
		t.Fatal(err)
	}
	if v.I != 3 {
		t.Errorf("(+ 1 2) = %v, want 3", v)
	}
}

// S2: mixed-width addition promotes to Double.
func TestScenarioMixedAdditionPromotes(t *testing.T) {
	_, root := compile(t, "(+ 1 2.5)")
	if root.ValueType() != typesys.Double {
		t.Errorf("ValueType = %v, want Double", root.ValueType())
	}
	if v := run(t, "(+ 1 2.5)"); v.F != 3.5 {
		t.Errorf("(+ 1 2.5) = %v, want 3.5", v)
	}
}

// S3: let binds, set! mutates, the binding form alone is initializing,
// and the variable's storage is a frame local under emission.
func TestScenarioLetSetRead(t *testing.T) {
	src := "(let ((a 1)) (set! a 2) a)"
	if v := run(t, src); v.I != 2 {
		t.Errorf("%s = %v, want 2", src, v)
	}

	l, root := compile(t, src)
	var assigns []*ast.Node
	ast.Walk(root, func(n *ast.Node) bool {
		if n.Kind() == ast.KindAssign {
			assigns = append(assigns, n)
		}
		return true
	})
	if len(assigns) != 2 {
		t.Fatalf("expected 2 assignments, found %d", len(assigns))
	}
	if !assigns[0].AssignInitializing() || assigns[1].AssignInitializing() {
		t.Error("only the binding form may be initializing")
	}

	// Emit and confirm the storage class.
	state := l.NewCompilerState()
	e := l.NewEmitter(emit.NewProgram("s3"), emit.NewMemoryTypeGen(), state)
	if err := e.EmitNode(root); err != nil {
		t.Fatalf("emit: %v", err)
	}
	sym := assigns[0].AssignLHS().VariableSymbol()
	if sym == nil {
		t.Fatal("the let binding should carry a resolved symbol")
	}
	if _, ok := sym.Slot.(*emit.LocalSlot); !ok {
		t.Errorf("a's slot is %T, want *emit.LocalSlot", sym.Slot)
	}
}

// S4: lambda application, with the template shape the spec pins.
func TestScenarioLambdaApplication(t *testing.T) {
	if v := run(t, "((lambda (x) (+ x 1)) 3)"); v.I != 4 {
		t.Errorf("((lambda (x) (+ x 1)) 3) = %v, want 4", v)
	}

	l, root := compile(t, "(lambda (x) (+ x 1))")
	in := interp.New(l, l.TopLevel, l.NewCompilerState())
	v, err := in.Evaluate(root, interp.NewEnv(nil))
	if err != nil {
		t.Fatal(err)
	}
	fn, ok := v.Obj.(*lang.Function)
	if !ok {
		t.Fatalf("lambda evaluated to %T", v.Obj)
	}
	tpl := fn.Template
	if tpl.Required != 1 || tpl.Optional != 0 || tpl.HasListParam {
		t.Errorf("template = required %d optional %d list %t, want 1/0/false", tpl.Required, tpl.Optional, tpl.HasListParam)
	}
}

// S5: a nested function referencing an outer variable makes the outer
// function allocate a closure record with a field named after it.
func TestScenarioNestedClosureAllocation(t *testing.T) {
	_, root := compile(t, "(lambda () (let ((counter 0)) (lambda () counter)))")

	l := New()
	e := l.NewEmitter(emit.NewProgram("s5"), emit.NewMemoryTypeGen(), l.NewCompilerState())
	a, err := e.EmitFunction(root)
	if err != nil {
		t.Fatalf("EmitFunction: %v", err)
	}
	if a.Closure == nil {
		t.Fatal("the outer function must allocate a closure record")
	}
	if _, ok := a.Closure.Fields["counter"]; !ok {
		t.Errorf("closure fields = %v, want one named counter", a.Closure.Fields)
	}

	// The interpreted closure behaves the same way.
	v := run(t, "(((lambda () (let ((counter 41)) (lambda () (+ counter 1))))))")
	if v.I != 42 {
		t.Errorf("closure read = %v, want 42", v)
	}
}

// S6: the .option form scopes overflow policy over its body.
func TestScenarioCheckedOptionScoping(t *testing.T) {
	// checked #f: int32 wraparound.
	v := run(t, "(.option ((checked #f)) (+ 2147483647 1))")
	if v.I != math.MinInt32 {
		t.Errorf("unchecked overflow = %d, want %d", v.I, math.MinInt32)
	}

	// Default state is checked without promote: overflow is an error.
	l, root := compile(t, "(+ 2147483647 1)")
	if root.Kind() == ast.KindLiteral {
		t.Fatal("a checked overflow must not constant-fold")
	}
	in := interp.New(l, l.TopLevel, l.NewCompilerState())
	_, err := in.Evaluate(root, interp.NewEnv(nil))
	if _, ok := err.(*operator.OverflowError); !ok {
		t.Errorf("err = %v, want OverflowError", err)
	}

	// promote widens instead.
	v = run(t, "(.option ((checked #t) (promote_on_overflow #t)) (+ 2147483647 1))")
	if v.Code != typesys.CodeLong || v.I != int64(math.MaxInt32)+1 {
		t.Errorf("promoted overflow = %v, want Long %d", v, int64(math.MaxInt32)+1)
	}
}

func TestScenarioRestParameter(t *testing.T) {
	l, root := compile(t, "(lambda (x . rest) x)")
	in := interp.New(l, l.TopLevel, l.NewCompilerState())
	v, err := in.Evaluate(root, interp.NewEnv(nil))
	if err != nil {
		t.Fatal(err)
	}
	fn := v.Obj.(*lang.Function)
	if !fn.Template.HasListParam {
		t.Fatal("the dotted tail must declare a list parameter")
	}

	out, err := fn.Template.MakeArguments([]interface{}{1, 2, 3}, nil)
	if err != nil {
		t.Fatal(err)
	}
	rest, ok := out[1].(*List)
	if !ok || len(rest.Items) != 2 {
		t.Errorf("rest slot = %v, want a List of 2", out[1])
	}
}

func TestScenarioOptionalParameterDefault(t *testing.T) {
	if v := run(t, "((lambda (a (b 10)) (+ a b)) 1)"); v.I != 11 {
		t.Errorf("defaulted call = %v, want 11", v)
	}
	if v := run(t, "((lambda (a (b 10)) (+ a b)) 1 2)"); v.I != 3 {
		t.Errorf("explicit call = %v, want 3", v)
	}
}

func TestScenarioIfAndTruth(t *testing.T) {
	if v := run(t, "(if #t 1 2)"); v.I != 1 {
		t.Errorf("(if #t 1 2) = %v", v)
	}
	if v := run(t, "(if null 1 2)"); v.I != 2 {
		t.Errorf("(if null 1 2) = %v", v)
	}
	if v := run(t, "(truth 0)"); !v.B {
		t.Error("(truth 0) should be true: only null and #f are false")
	}
	if v := run(t, "(truth #f)"); v.B {
		t.Error("(truth #f) should be false")
	}
}
