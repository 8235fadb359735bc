package operator

import (
	"errors"
	"math"
	"math/big"
	"testing"

	"github.com/langforge/corelang/typesys"
)

func TestEvaluateInt32OverflowPromotesToInt64(t *testing.T) {
	a := IntValue(typesys.CodeInt, math.MaxInt32)
	b := IntValue(typesys.CodeInt, 1)
	got, err := Evaluate(Add, a, b, EvalOptions{Checked: true, Promote: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Code != typesys.CodeLong {
		t.Fatalf("result code = %v, want CodeLong", got.Code)
	}
	if got.I != int64(math.MaxInt32)+1 {
		t.Errorf("result = %d, want %d", got.I, int64(math.MaxInt32)+1)
	}
}

func TestEvaluateInt64OverflowPromotesToBigInt(t *testing.T) {
	a := IntValue(typesys.CodeLong, math.MaxInt64)
	b := IntValue(typesys.CodeLong, 1)
	got, err := Evaluate(Add, a, b, EvalOptions{Checked: true, Promote: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Code != typesys.CodeBigInt {
		t.Fatalf("result code = %v, want CodeBigInt", got.Code)
	}
	want := new(big.Int).SetInt64(math.MaxInt64)
	want.Add(want, big.NewInt(1))
	if got.Big.Cmp(want) != 0 {
		t.Errorf("result = %s, want 2^63 (%s)", got.Big, want)
	}
}

func TestEvaluateOverflowWithoutPromoteErrors(t *testing.T) {
	a := IntValue(typesys.CodeInt, math.MaxInt32)
	b := IntValue(typesys.CodeInt, 1)
	_, err := Evaluate(Add, a, b, EvalOptions{Checked: true, Promote: false})
	if err == nil {
		t.Fatal("expected an overflow error")
	}
	var overflow *OverflowError
	if !errors.As(err, &overflow) {
		t.Errorf("error = %v, want *OverflowError", err)
	}

	a64 := IntValue(typesys.CodeLong, math.MaxInt64)
	b64 := IntValue(typesys.CodeLong, 1)
	_, err = Evaluate(Add, a64, b64, EvalOptions{Checked: true, Promote: false})
	if err == nil {
		t.Fatal("expected an overflow error for int64 boundary")
	}
}

func TestEvaluateDivideByZeroIntegerKinds(t *testing.T) {
	codes := []typesys.Code{typesys.CodeInt, typesys.CodeUInt, typesys.CodeLong, typesys.CodeULong, typesys.CodeBigInt}
	for _, c := range codes {
		var a, b Value
		if c.IsUnsigned() {
			a, b = UintValue(c, 5), UintValue(c, 0)
		} else if c == typesys.CodeBigInt {
			a, b = BigValue(big.NewInt(5)), BigValue(big.NewInt(0))
		} else {
			a, b = IntValue(c, 5), IntValue(c, 0)
		}
		if _, err := Evaluate(Divide, a, b, EvalOptions{}); err == nil {
			t.Errorf("code %v: expected divide-by-zero error", c)
		}
	}
}

func TestEvaluateDivideByZeroFloatsReturnInfOrNaN(t *testing.T) {
	got, err := Evaluate(Divide, FloatValue(typesys.CodeDouble, 1), FloatValue(typesys.CodeDouble, 0), EvalOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !math.IsInf(got.F, 1) {
		t.Errorf("1/0 = %v, want +Inf", got.F)
	}

	got, err = Evaluate(Divide, FloatValue(typesys.CodeDouble, 0), FloatValue(typesys.CodeDouble, 0), EvalOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !math.IsNaN(got.F) {
		t.Errorf("0/0 = %v, want NaN", got.F)
	}
}

func TestEvaluateTruth(t *testing.T) {
	if EvaluateTruth(BoolValue(false)).B {
		t.Error("false should be falsy")
	}
	if EvaluateTruth(ObjectValue(nil)).B {
		t.Error("nil object should be falsy")
	}
	if !EvaluateTruth(IntValue(typesys.CodeInt, 0)).B {
		t.Error("integer zero should be truthy (only null/false are falsy)")
	}
}
