package ast

import (
	"testing"

	"github.com/langforge/corelang/diag"
	"github.com/langforge/corelang/typesys"
)

func newCheckCtx() *CheckContext {
	return &CheckContext{Sink: diag.NewSink()}
}

func TestCheckSemanticsRequiresContextAndScope(t *testing.T) {
	n := lit(1)
	if err := n.CheckSemantics(newCheckCtx()); err == nil {
		t.Error("CheckSemantics should fail when ContextType has not been set yet")
	}

	n.SetValueContext(typesys.Int)
	if err := n.CheckSemantics(newCheckCtx()); err == nil {
		t.Error("CheckSemantics should fail when no ancestor scope is reachable")
	}
}

func TestCheckSemanticsAcceptsConvertibleValue(t *testing.T) {
	n := NewLiteral(diag.Position{}, 1, typesys.Int)
	n.SetScope(NewScope(nil))
	n.SetValueContext(typesys.Long)

	ctx := newCheckCtx()
	if err := n.CheckSemantics(ctx); err != nil {
		t.Fatalf("CheckSemantics returned error: %v", err)
	}
	if ctx.Sink.HasErrors() {
		t.Error("Int implicitly converts to Long; no diagnostic expected")
	}
}

func TestCheckSemanticsReportsUnconvertibleType(t *testing.T) {
	n := NewLiteral(diag.Position{}, "s", typesys.String)
	n.SetScope(NewScope(nil))
	n.SetValueContext(typesys.Bool)

	ctx := newCheckCtx()
	if err := n.CheckSemantics(ctx); err != nil {
		t.Fatalf("CheckSemantics returned error: %v", err)
	}
	if !ctx.Sink.HasErrors() {
		t.Error("String is not convertible to Bool; expected a CannotConvertType diagnostic")
	}
	msgs := ctx.Sink.Messages()
	if len(msgs) != 1 || msgs[0].Code != diag.CannotConvertType.Code {
		t.Errorf("messages = %+v, want a single CannotConvertType", msgs)
	}
}

func TestCheckSemanticsAnyContextAcceptsAnyNonVoid(t *testing.T) {
	n := NewLiteral(diag.Position{}, 1, typesys.Int)
	n.SetScope(NewScope(nil))
	n.SetValueContext(typesys.Any)

	ctx := newCheckCtx()
	n.CheckSemantics(ctx)
	if ctx.Sink.HasErrors() {
		t.Error("a non-Void value satisfies an Any context with no diagnostic")
	}
}

func TestCheckSemanticsAnyContextRejectsVoid(t *testing.T) {
	n := NewLiteral(diag.Position{}, nil, typesys.Void)
	n.SetScope(NewScope(nil))
	n.SetValueContext(typesys.Any)

	ctx := newCheckCtx()
	n.CheckSemantics(ctx)
	if !ctx.Sink.HasErrors() {
		t.Error("a Void value in an Any context should report ExpectedValue")
	}
}

func TestCheckSemantics2ReportsReadOnlyAssignment(t *testing.T) {
	scope := NewScope(nil)
	sym := &Symbol{Name: "x", Type: typesys.Int, IsReadOnly: true}
	scope.Declare(sym)

	lhs := NewVariable(diag.Position{}, "x")
	lhs.SetVariableSymbol(sym)
	assign := NewAssign(diag.Position{}, lhs, lit(2), false)
	assign.SetScope(scope)

	ctx := newCheckCtx()
	if err := assign.CheckSemantics2(ctx); err != nil {
		t.Fatalf("CheckSemantics2 returned error: %v", err)
	}
	if !ctx.Sink.HasErrors() {
		t.Error("assigning to a read-only variable outside its initializing form should report ReadOnlyVariableAssigned")
	}
}

func TestCheckSemantics2AllowsInitializingAssignToReadOnly(t *testing.T) {
	scope := NewScope(nil)
	sym := &Symbol{Name: "x", Type: typesys.Int, IsReadOnly: true}
	scope.Declare(sym)

	lhs := NewVariable(diag.Position{}, "x")
	lhs.SetVariableSymbol(sym)
	assign := NewAssign(diag.Position{}, lhs, lit(2), true)
	assign.SetScope(scope)

	ctx := newCheckCtx()
	assign.CheckSemantics2(ctx)
	if ctx.Sink.HasErrors() {
		t.Error("the initializing assignment that binds a read-only variable should not itself be flagged")
	}
}

func TestCheckSemantics2ReportsSelfAssignment(t *testing.T) {
	scope := NewScope(nil)
	sym := &Symbol{Name: "x", Type: typesys.Int}
	scope.Declare(sym)

	lhs := NewVariable(diag.Position{}, "x")
	lhs.SetVariableSymbol(sym)
	rhs := NewVariable(diag.Position{}, "x")
	rhs.SetVariableSymbol(sym)
	assign := NewAssign(diag.Position{}, lhs, rhs, false)
	assign.SetScope(scope)

	ctx := newCheckCtx()
	assign.CheckSemantics2(ctx)
	msgs := ctx.Sink.Messages()
	if len(msgs) != 1 || msgs[0].Code != diag.VariableAssignedToSelf.Code {
		t.Errorf("messages = %+v, want a single VariableAssignedToSelf", msgs)
	}
}

func TestCheckSemantics2ConstancyPropagatesBottomUp(t *testing.T) {
	block := NewBlock(diag.Position{})
	a, b := lit(1), lit(2)
	block.AppendChild(a)
	block.AppendChild(b)

	ctx := newCheckCtx()
	if err := a.CheckSemantics2(ctx); err != nil {
		t.Fatal(err)
	}
	if err := b.CheckSemantics2(ctx); err != nil {
		t.Fatal(err)
	}
	if err := block.CheckSemantics2(ctx); err != nil {
		t.Fatal(err)
	}
	if !block.IsConstant() {
		t.Error("a Block whose every child is constant should itself be marked constant")
	}
}

func TestCheckSemantics2FunctionNeverFolds(t *testing.T) {
	param := NewParameter(diag.Position{}, "x", ParamNormal, nil)
	body := NewBlock(diag.Position{})
	body.AppendChild(lit(1))
	fn := NewFunction(diag.Position{}, "f", []*Node{param}, body, false)

	ctx := newCheckCtx()
	body.CheckSemantics2(ctx)
	fn.CheckSemantics2(ctx)

	if fn.IsConstant() {
		t.Error("a Function node should never be marked constant, even with an all-constant body")
	}
}

func TestCheckSemantics2AssignNeverConstant(t *testing.T) {
	scope := NewScope(nil)
	sym := &Symbol{Name: "x", Type: typesys.Int}
	scope.Declare(sym)
	lhs := NewVariable(diag.Position{}, "x")
	lhs.SetVariableSymbol(sym)
	assign := NewAssign(diag.Position{}, lhs, lit(2), true)
	assign.SetScope(scope)
	assign.SetFlag(FlagConstant, true)

	ctx := newCheckCtx()
	assign.CheckSemantics2(ctx)

	if assign.IsConstant() {
		t.Error("Assign should never be marked constant regardless of its prior flag state")
	}
}
