package decorate

import (
	"testing"

	"github.com/langforge/corelang/ast"
	"github.com/langforge/corelang/diag"
	"github.com/langforge/corelang/typesys"
)

func TestCoreSemanticCheckerMarksTailAndContextOnceAtRoot(t *testing.T) {
	a, b := intLit(1), intLit(2)
	block := ast.NewBlock(diag.Position{})
	block.AppendChild(a)
	block.AppendChild(b)
	block.SetScope(ast.NewScope(nil))

	checkCtx := &ast.CheckContext{Sink: diag.NewSink()}
	checker := NewCoreSemanticChecker(true, typesys.Long, checkCtx)

	p := NewPipeline()
	p.Add(Decorate, checker)

	state := &CompilerState{Sink: diag.NewSink()}
	if _, err := p.Run(block, state); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if a.IsTail() {
		t.Error("non-last Block statement should not be tail-true")
	}
	if !b.IsTail() {
		t.Error("last Block statement should inherit the root's tail-true")
	}
	if b.ContextType() != typesys.Long {
		t.Errorf("last statement's context = %v, want the initial context Long", b.ContextType())
	}
	if a.ContextType() != typesys.Void {
		t.Errorf("non-last statement's context = %v, want Void", a.ContextType())
	}
}

func TestCoreSemanticCheckerReportsConversionDiagnostics(t *testing.T) {
	n := ast.NewLiteral(diag.Position{}, "s", typesys.String)
	n.SetScope(ast.NewScope(nil))

	checkCtx := &ast.CheckContext{Sink: diag.NewSink()}
	checker := NewCoreSemanticChecker(false, typesys.Bool, checkCtx)

	p := NewPipeline()
	p.Add(Decorate, checker)

	state := &CompilerState{Sink: diag.NewSink()}
	if _, err := p.Run(n, state); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if !checkCtx.Sink.HasErrors() {
		t.Error("String literal in a Bool context should report a CannotConvertType diagnostic")
	}
}

func TestCoreSemanticCheckerHonorsTreatWarningsAsErrorsFromState(t *testing.T) {
	scope := ast.NewScope(nil)
	sym := &ast.Symbol{Name: "x", Type: typesys.Int}
	scope.Declare(sym)
	lhs := ast.NewVariable(diag.Position{}, "x")
	lhs.SetVariableSymbol(sym)
	lhs.SetValueType(sym.Type)
	rhs := ast.NewVariable(diag.Position{}, "x")
	rhs.SetVariableSymbol(sym)
	rhs.SetValueType(sym.Type)
	assign := ast.NewAssign(diag.Position{}, lhs, rhs, false)
	assign.SetScope(scope)

	checkCtx := &ast.CheckContext{Sink: diag.NewSink()}
	checker := NewCoreSemanticChecker(false, typesys.Void, checkCtx)

	p := NewPipeline()
	p.Add(Decorate, checker)

	state := &CompilerState{Sink: diag.NewSink(), TreatWarningsAsErrors: true}
	if _, err := p.Run(assign, state); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	msgs := checkCtx.Sink.Messages()
	found := false
	for _, m := range msgs {
		if m.Code == diag.VariableAssignedToSelf.Code {
			found = true
			if m.Severity != diag.Error {
				t.Errorf("self-assignment warning should be promoted to Error when TreatWarningsAsErrors is set, got %v", m.Severity)
			}
		}
	}
	if !found {
		t.Error("expected a VariableAssignedToSelf diagnostic")
	}
}
