package value

import (
	"math"
	"testing"
)

func TestFloatOfClampsNaNAndInfinity(t *testing.T) {
	if v := FloatOf(nan()); v.F != 0 {
		t.Errorf("expected NaN to clamp to 0, got %v", v.F)
	}
	if v := FloatOf(math.Inf(1)); v.F != maxFinite {
		t.Errorf("expected +Inf to clamp to maxFinite, got %v", v.F)
	}
	if v := FloatOf(math.Inf(-1)); v.F != -maxFinite {
		t.Errorf("expected -Inf to clamp to -maxFinite, got %v", v.F)
	}
}

func nan() float64 {
	var zero float64
	return zero / zero
}

func TestDisplayRendersComposites(t *testing.T) {
	v := VectorOf([]Value{IntOf(1), StringOf("x")})
	if got, want := v.Display(), "[1, x]"; got != want {
		t.Errorf("Display() = %q, want %q", got, want)
	}
}

func TestEqualsCrossKindFallsBackToFloatCoercion(t *testing.T) {
	if !IntOf(2).Equals(FloatOf(2.0)) {
		t.Error("expected Integer 2 to equal Float 2.0")
	}
	if StringOf("x").Equals(IntOf(1)) {
		t.Error("expected a non-numeric string to compare unequal to an Integer")
	}
}

func TestEqualsForeignIsIdentityNotStructural(t *testing.T) {
	a := ForeignOf(nil)
	b := ForeignOf(nil)
	if !a.Equals(b) {
		t.Error("expected two nil-handle Foreign values to compare equal (same nil identity)")
	}
}

func TestAsBoolEmptyCompositeIsFalse(t *testing.T) {
	if VectorOf(nil).AsBool() {
		t.Error("expected an empty vector to be falsy")
	}
	if !VectorOf([]Value{IntOf(0)}).AsBool() {
		t.Error("expected a non-empty vector to be truthy regardless of its contents")
	}
}

func TestAsFloatStringCoercion(t *testing.T) {
	f, ok := StringOf("3.5").AsFloat()
	if !ok || f != 3.5 {
		t.Errorf("expected 3.5, got %v (ok=%v)", f, ok)
	}
	if _, ok := StringOf("not a number").AsFloat(); ok {
		t.Error("expected a non-numeric string to fail AsFloat")
	}
}

func TestKindStringMatchesDisplayNames(t *testing.T) {
	cases := map[Kind]string{Int: "Integer", Float: "Float", Bool: "Boolean", String: "String"}
	for k, want := range cases {
		if got := k.String(); got != want {
			t.Errorf("Kind(%d).String() = %q, want %q", k, got, want)
		}
	}
}
