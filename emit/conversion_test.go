package emit

import (
	"testing"

	"github.com/langforge/corelang/typesys"
)

func lastInstr(p *Program) Instr { return p.Code[len(p.Code)-1] }

func TestSafeConversionIdentityEmitsNothing(t *testing.T) {
	e, p := newTestEmitter()
	if err := e.EmitSafeConversion(typesys.Int, typesys.Int, false); err != nil {
		t.Fatal(err)
	}
	if len(p.Code) != 0 {
		t.Errorf("identity conversion emitted %d instruction(s)", len(p.Code))
	}
}

func TestSafeConversionWideningMatrix(t *testing.T) {
	tests := []struct {
		src, dst *typesys.TypeRef
		checked  bool
		want     string
	}{
		{typesys.Int, typesys.Long, false, "conv.i8"},
		{typesys.Int, typesys.Double, false, "conv.r8"},
		{typesys.Int, typesys.Double, true, "conv.r8"}, // float targets never trap
		{typesys.UInt, typesys.Long, false, "conv.i8.un"},
		{typesys.UInt, typesys.ULong, true, "conv.ovf.u8.un"},
		{typesys.Byte, typesys.UShort, false, "conv.u2.un"},
		{typesys.Char, typesys.UInt, false, "conv.u4.un"},
		{typesys.Single, typesys.Double, false, "conv.r8"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			e, p := newTestEmitter()
			if err := e.EmitSafeConversion(tt.src, tt.dst, tt.checked); err != nil {
				t.Fatalf("EmitSafeConversion(%s, %s): %v", tt.src, tt.dst, err)
			}
			if got := lastInstr(p).String(); got != tt.want {
				t.Errorf("emitted %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSafeConversionRejectsNarrowing(t *testing.T) {
	e, _ := newTestEmitter()
	if err := e.EmitSafeConversion(typesys.Long, typesys.Int, false); err == nil {
		t.Error("Long -> Int is lossy and must be refused by the safe path")
	}
}

func TestUnsafeConversionPermitsNarrowing(t *testing.T) {
	e, p := newTestEmitter()
	if err := e.EmitUnsafeConversion(typesys.Long, typesys.Int, true); err != nil {
		t.Fatal(err)
	}
	if got := lastInstr(p).String(); got != "conv.ovf.i4" {
		t.Errorf("checked narrowing emitted %q, want conv.ovf.i4", got)
	}
}

func TestSafeConversionBoxesIntoObject(t *testing.T) {
	e, p := newTestEmitter()
	if err := e.EmitSafeConversion(typesys.Int, typesys.Object, false); err != nil {
		t.Fatal(err)
	}
	if lastInstr(p).Op != OpBox || lastInstr(p).Type != typesys.Int {
		t.Errorf("value-to-Object must box, got %s", lastInstr(p))
	}
}

func TestSafeConversionUpcastIsFree(t *testing.T) {
	base := typesys.New("TBase", typesys.ReferenceKind, typesys.CodeObject)
	derived := typesys.New("TDerived", typesys.ReferenceKind, typesys.CodeObject)
	derived.SetBase(base)

	e, p := newTestEmitter()
	if err := e.EmitSafeConversion(derived, base, false); err != nil {
		t.Fatal(err)
	}
	if len(p.Code) != 0 {
		t.Error("an upcast needs no instructions")
	}
}

func TestUnsafeConversionDowncastsAndUnboxes(t *testing.T) {
	base := typesys.New("TBase2", typesys.ReferenceKind, typesys.CodeObject)
	derived := typesys.New("TDerived2", typesys.ReferenceKind, typesys.CodeObject)
	derived.SetBase(base)

	e, p := newTestEmitter()
	if err := e.EmitUnsafeConversion(base, derived, false); err != nil {
		t.Fatal(err)
	}
	if lastInstr(p).Op != OpCastClass {
		t.Errorf("reference downcast should castclass, got %s", lastInstr(p))
	}

	e2, p2 := newTestEmitter()
	if err := e2.EmitUnsafeConversion(typesys.Object, typesys.Int, false); err != nil {
		t.Fatal(err)
	}
	if p2.Code[0].Op != OpUnbox || p2.Code[1].Op != OpLoadIndirect {
		t.Error("object-to-value must unbox then load indirect")
	}
}

func TestSafeConversionUsesOpImplicit(t *testing.T) {
	money := typesys.New("Money", typesys.ValueKind, typesys.CodeOther)
	conv := &typesys.Method{
		Name:   "op_Implicit",
		Params: []*typesys.TypeRef{money},
		Return: typesys.Decimal,
		Static: true,
	}
	money.AddMethod(conv)

	e, p := newTestEmitter()
	if err := e.EmitSafeConversion(money, typesys.Decimal, false); err != nil {
		t.Fatal(err)
	}
	if lastInstr(p).Op != OpCall || lastInstr(p).Method != conv {
		t.Errorf("user conversion should call op_Implicit, got %s", lastInstr(p))
	}
}

func TestWideTypesRouteThroughRuntimeHelper(t *testing.T) {
	e, p := newTestEmitter()
	if err := e.EmitSafeConversion(typesys.Int, typesys.BigInt, false); err != nil {
		t.Fatal(err)
	}
	sawConvertTo := false
	for _, instr := range p.Code {
		if instr.Op == OpCall && instr.Method == ConvertToMethod {
			sawConvertTo = true
		}
	}
	if !sawConvertTo {
		t.Error("Int -> BigInt has no fixed-width opcode and must use Ops.ConvertTo")
	}
}

func TestRuntimeConversionUnboxesValueDestination(t *testing.T) {
	e, p := newTestEmitter()
	e.EmitRuntimeConversion(typesys.Unknown, typesys.Int)
	n := len(p.Code)
	if n < 3 {
		t.Fatalf("expected token+call+unwrap sequence, got %d instructions", n)
	}
	if p.Code[n-2].Op != OpUnbox || p.Code[n-1].Op != OpLoadIndirect {
		t.Error("runtime conversion to a value type must unbox the result")
	}
}

func TestSafeConversionRefusesInvalid(t *testing.T) {
	e, _ := newTestEmitter()
	if err := e.EmitSafeConversion(typesys.Invalid, typesys.Int, false); err == nil {
		t.Error("the Invalid poison type must never reach conversion emission")
	}
}
