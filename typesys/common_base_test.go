package typesys

import "testing"

func TestCommonBaseTypeIdentity(t *testing.T) {
	if got := CommonBaseType(Int, Int); got != Int {
		t.Errorf("CommonBaseType(Int, Int) = %v, want Int", got)
	}
}

func TestCommonBaseTypeUnknown(t *testing.T) {
	if got := CommonBaseType(Unknown, Int); got != Unknown {
		t.Errorf("CommonBaseType(Unknown, Int) = %v, want Unknown", got)
	}
	if got := CommonBaseType(Int, Unknown); got != Unknown {
		t.Errorf("CommonBaseType(Int, Unknown) = %v, want Unknown", got)
	}
}

func TestCommonBaseTypeVoid(t *testing.T) {
	if got := CommonBaseType(Void, Int); got != Int {
		t.Errorf("CommonBaseType(Void, Int) = %v, want Int", got)
	}
	if got := CommonBaseType(Int, Void); got != Int {
		t.Errorf("CommonBaseType(Int, Void) = %v, want Int", got)
	}
}

func TestCommonBaseTypePromotion(t *testing.T) {
	tests := []struct {
		a, b *TypeRef
		want *TypeRef
	}{
		{Int, UInt, Long},
		{Long, ULong, BigInt},
		{Short, UShort, Int},
		{Double, Int, Double},
	}
	for _, tt := range tests {
		t.Run(tt.a.Name()+"_"+tt.b.Name(), func(t *testing.T) {
			if got := CommonBaseType(tt.a, tt.b); got != tt.want {
				t.Errorf("CommonBaseType(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
			if got := TypeForCode(PromoteBinary(tt.a.Code(), tt.b.Code())); got != tt.want {
				t.Errorf("PromoteBinary(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestCommonBaseTypeReferenceHierarchy(t *testing.T) {
	base := New("TBase", ReferenceKind, CodeObject)
	derived := New("TDerived", ReferenceKind, CodeObject)
	derived.SetBase(base)

	if got := CommonBaseType(derived, base); got != base {
		t.Errorf("CommonBaseType(derived, base) = %v, want base", got)
	}
	if got := CommonBaseType(base, derived); got != base {
		t.Errorf("CommonBaseType(base, derived) = %v, want base", got)
	}
}

func TestCommonBaseTypeValueVsReference(t *testing.T) {
	ref := New("TFoo", ReferenceKind, CodeObject)
	if got := CommonBaseType(Int, ref); got != Object {
		t.Errorf("CommonBaseType(Int, ref) = %v, want Object", got)
	}
}

func TestHasImplicitConversionSymmetricImpliesCommonBase(t *testing.T) {
	if !HasImplicitConversion(Int, Long) {
		t.Fatal("expected Int -> Long implicit conversion")
	}
	if got := CommonBaseType(Int, Long); got != Long {
		t.Errorf("CommonBaseType(Int, Long) = %v, want Long", got)
	}
}

func TestCommonBaseTypeNPrefersSharedInterface(t *testing.T) {
	iface := New("IWidget", ReferenceKind, CodeObject)
	a := New("TA", ReferenceKind, CodeObject)
	b := New("TB", ReferenceKind, CodeObject)
	a.AddInterface(iface)
	b.AddInterface(iface)

	got := CommonBaseTypeN([]*TypeRef{a, b})
	if got != iface {
		t.Errorf("CommonBaseTypeN([a, b]) = %v, want shared interface %v", got, iface)
	}
}
