package value

import "testing"

func TestBinaryOpIntDivisionPromotesOnInexactQuotient(t *testing.T) {
	v, err := BinaryOp("/", IntOf(7), IntOf(2))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Kind != Float || v.F != 3.5 {
		t.Errorf("expected Float 3.5, got %v", v)
	}

	v, err = BinaryOp("/", IntOf(6), IntOf(2))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Kind != Int || v.I != 3 {
		t.Errorf("expected Integer 3, got %v", v)
	}
}

func TestBinaryOpDivisionByZeroErrors(t *testing.T) {
	if _, err := BinaryOp("/", IntOf(1), IntOf(0)); err == nil {
		t.Fatal("expected a division-by-zero error")
	}
}

func TestBinaryOpStringConcatenation(t *testing.T) {
	v, err := BinaryOp("+", StringOf("a"), StringOf("b"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.S != "ab" {
		t.Errorf("expected %q, got %q", "ab", v.S)
	}
}

func TestBinaryOpStringArithmeticOtherThanConcatErrors(t *testing.T) {
	if _, err := BinaryOp("-", StringOf("a"), StringOf("b")); err == nil {
		t.Fatal("expected an error subtracting strings")
	}
}

func TestBinaryOpComparison(t *testing.T) {
	v, err := BinaryOp(">", IntOf(3), IntOf(2))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !v.B {
		t.Error("expected 3 > 2 to be true")
	}
}

func TestBinaryOpLogical(t *testing.T) {
	v, err := BinaryOp("&&", BoolOf(true), BoolOf(false))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.B {
		t.Error("expected true && false to be false")
	}
}

func TestUnaryOpNegation(t *testing.T) {
	v, err := UnaryOp("!", BoolOf(false))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !v.B {
		t.Error("expected !false to be true")
	}
}
