package emit

import (
	"testing"

	"github.com/langforge/corelang/ast"
	"github.com/langforge/corelang/operator"
	"github.com/langforge/corelang/typesys"
)

func opInstrs(p *Program) []string {
	var out []string
	for _, i := range p.Code {
		out = append(out, i.String())
	}
	return out
}

func TestFoldPrimitiveAddInt(t *testing.T) {
	e, p := newTestEmitter()
	n := ast.NewOp(pos, operator.Add, intLit(1), intLit(2))
	emitDecorated(t, e, n, typesys.Int)

	want := []string{"push.i4 1", "push.i4 2", "add"}
	got := opInstrs(p)
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("instr %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestFoldPromotesMixedIntDouble(t *testing.T) {
	e, p := newTestEmitter()
	n := ast.NewOp(pos, operator.Add, intLit(1), dblLit(2.5))
	emitDecorated(t, e, n, typesys.Double)

	want := []string{"push.i4 1", "conv.r8", "push.r8 2.5", "add"}
	got := opInstrs(p)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestFoldNaryLeftToRight(t *testing.T) {
	e, p := newTestEmitter()
	n := ast.NewOp(pos, operator.Add, intLit(1), intLit(2), intLit(3))
	emitDecorated(t, e, n, typesys.Int)

	adds := 0
	for _, instr := range p.Code {
		if instr.Op == OpAdd {
			adds++
		}
	}
	if adds != 2 {
		t.Errorf("ternary add should fold with 2 add opcodes, got %d", adds)
	}
}

func TestCheckedPicksOverflowVariants(t *testing.T) {
	state := testState()
	state.Checked = true
	p := NewProgram("chk")
	e := NewEmitter(p, NewMemoryTypeGen(), state)

	n := ast.NewOp(pos, operator.Multiply, intLit(6), intLit(7))
	emitDecorated(t, e, n, typesys.Int)
	if got := lastInstr(p).String(); got != "mul.ovf" {
		t.Errorf("checked multiply emitted %q, want mul.ovf", got)
	}

	p2 := NewProgram("chk-un")
	e2 := NewEmitter(p2, NewMemoryTypeGen(), state)
	u := ast.NewLiteral(pos, uint64(6), typesys.UInt)
	u2 := ast.NewLiteral(pos, uint64(7), typesys.UInt)
	n2 := ast.NewOp(pos, operator.Add, u, u2)
	emitDecorated(t, e2, n2, typesys.UInt)
	if got := lastInstr(p2).String(); got != "add.ovf.un" {
		t.Errorf("checked unsigned add emitted %q, want add.ovf.un", got)
	}
}

func TestUnsignedDivisionOpcode(t *testing.T) {
	e, p := newTestEmitter()
	a := ast.NewLiteral(pos, uint64(10), typesys.UInt)
	b := ast.NewLiteral(pos, uint64(3), typesys.UInt)
	n := ast.NewOp(pos, operator.Divide, a, b)
	emitDecorated(t, e, n, typesys.UInt)
	if got := lastInstr(p).String(); got != "div.un" {
		t.Errorf("unsigned division emitted %q, want div.un", got)
	}
}

func TestFloatModulusDelegatesToRuntimeHelper(t *testing.T) {
	e, p := newTestEmitter()
	n := ast.NewOp(pos, operator.Modulus, dblLit(10), dblLit(3))
	emitDecorated(t, e, n, typesys.Double)
	last := lastInstr(p)
	if last.Op != OpCall || last.Method != FloatModMethod {
		t.Errorf("floating mod must call the IEEE remainder helper, got %s", last)
	}
}

func TestBitwiseRejectsFloats(t *testing.T) {
	e, _ := newTestEmitter()
	n := ast.NewOp(pos, operator.BitwiseAnd, dblLit(1), dblLit(2))
	n.MarkTail(false)
	n.SetValueContext(typesys.Unknown)
	if err := e.EmitNode(n); err == nil {
		t.Error("bitwise operators must reject floating-point operands")
	}
}

func TestBitwiseUsesUncheckedIntegerOpcode(t *testing.T) {
	state := testState()
	state.Checked = true // bitwise stays unchecked even here
	p := NewProgram("bits")
	e := NewEmitter(p, NewMemoryTypeGen(), state)

	n := ast.NewOp(pos, operator.BitwiseXor, intLit(5), intLit(3))
	emitDecorated(t, e, n, typesys.Int)
	last := lastInstr(p)
	if last.Op != OpBitXor || last.Checked {
		t.Errorf("bitwise xor should emit the plain integer opcode, got %s", last)
	}
}

func TestCheckedPromoteRoutesPrimitivesToRuntime(t *testing.T) {
	state := testState()
	state.Checked = true
	state.PromoteOnOverflow = true
	p := NewProgram("promote")
	e := NewEmitter(p, NewMemoryTypeGen(), state)

	n := ast.NewOp(pos, operator.Add, intLit(2147483647), intLit(1))
	n.MarkTail(false)
	n.SetValueContext(typesys.Unknown)
	if err := e.EmitNode(n); err != nil {
		t.Fatal(err)
	}

	sawEvaluate := false
	var bits int64
	for _, instr := range p.Code {
		if instr.Op == OpCallVirtual && instr.Method == EvaluateMethod {
			sawEvaluate = true
		}
		if instr.Op == OpPushInt32 && instr.I == int64(EvalOptionBits(true, true)) {
			bits = instr.I
		}
	}
	if !sawEvaluate {
		t.Fatal("checked+promote primitives must fall back to Operator.Evaluate")
	}
	if bits != 3 {
		t.Errorf("options bitmask = %d, want 3 (checked|promote)", bits)
	}
}

func TestOverloadResolutionEmitsCall(t *testing.T) {
	vec := typesys.New("Vector", typesys.ValueKind, typesys.CodeOther)
	add := &typesys.Method{
		Name:       "op_Addition",
		Params:     []*typesys.TypeRef{vec, vec},
		Return:     vec,
		Static:     true,
		IsOverload: true,
	}
	vec.AddMethod(add)

	e, p := newTestEmitter()
	a := ast.NewLiteral(pos, nil, vec)
	b := ast.NewLiteral(pos, nil, vec)
	n := ast.NewOp(pos, operator.Add, a, b)
	n.MarkTail(false)
	n.SetValueContext(vec)
	if err := e.EmitNode(n); err != nil {
		t.Fatal(err)
	}

	sawOverload := false
	for _, instr := range p.Code {
		if instr.Op == OpCall && instr.Method == add {
			sawOverload = true
		}
	}
	if !sawOverload {
		t.Error("a resolved overload should be invoked directly")
	}
}

func TestRuntimeFallbackStashesLhsInTemp(t *testing.T) {
	e, p := newTestEmitter()
	a := ast.NewLiteral(pos, "left", typesys.String)
	b := ast.NewLiteral(pos, "right", typesys.String)
	n := ast.NewOp(pos, operator.Add, a, b)
	n.MarkTail(false)
	n.SetValueContext(typesys.Unknown)
	if err := e.EmitNode(n); err != nil {
		t.Fatal(err)
	}

	var ops []Op
	for _, instr := range p.Code {
		ops = append(ops, instr.Op)
	}
	// push lhs, stash, push operator const, reload lhs, push rhs,
	// push options, virtual Evaluate.
	want := []Op{OpPushString, OpStoreLocal, OpLoadField, OpLoadLocal, OpPushString, OpPushInt32, OpCallVirtual}
	if len(ops) != len(want) {
		t.Fatalf("got %v, want %v", ops, want)
	}
	for i := range want {
		if ops[i] != want[i] {
			t.Fatalf("instr %d = %s, want %s (%v)", i, ops[i], want[i], ops)
		}
	}
}

func TestTruthFastPathUsesBoolDirectly(t *testing.T) {
	e, p := newTestEmitter()
	n := ast.NewOp(pos, operator.LogicalTruth, boolLit(true))
	emitDecorated(t, e, n, typesys.Bool)

	if len(p.Code) != 1 || p.Code[0].Op != OpPushBool {
		t.Errorf("a Bool operand should be used directly, got %v", opInstrs(p))
	}
}

func TestTruthGeneralPathCallsEvaluate(t *testing.T) {
	e, p := newTestEmitter()
	n := ast.NewOp(pos, operator.LogicalTruth, strLit("x"))
	emitDecorated(t, e, n, typesys.Bool)

	last := lastInstr(p)
	if last.Op != OpCall || last.Method != TruthEvaluateMethod {
		t.Errorf("non-Bool operands go through the truth helper, got %s", last)
	}
}
