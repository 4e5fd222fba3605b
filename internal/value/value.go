// Package value implements Mite's tagged runtime value model: scalars,
// composites, and host-provided foreign objects, plus the coercion rules
// that operators and the engine rely on.
package value

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Kind discriminates the variants of Value. Mite uses a single closed sum
// type rather than a dispatch interface per value variant, so switches on
// Kind are exhaustive and the compiler/vet can help keep them that way.
type Kind int

const (
	Int Kind = iota
	Float
	Bool
	String
	Time
	Tuple
	Vector
	Map
	Function
	Foreign
)

func (k Kind) String() string {
	switch k {
	case Int:
		return "Integer"
	case Float:
		return "Float"
	case Bool:
		return "Boolean"
	case String:
		return "String"
	case Time:
		return "Time"
	case Tuple:
		return "Tuple"
	case Vector:
		return "Vector"
	case Map:
		return "Map"
	case Function:
		return "Function"
	case Foreign:
		return "Foreign"
	default:
		return "Unknown"
	}
}

// Value is the tagged union every Mite expression evaluates to. Only the
// fields relevant to Kind are meaningful; the zero Value is Integer 0.
type Value struct {
	Kind Kind

	I int32
	F float64
	B bool
	S string
	T time.Time

	// Tuple and Vec back Tuple and Vector values. Both are reference
	// types in Go already (slice headers over a shared backing array),
	// so in-place element mutation through an access chain is visible
	// to every binding that holds the same Value.
	Tuple []Value
	Vec   []Value

	// MapVal backs Map values. Go maps are reference types, so the same
	// sharing rule applies; key order is never iterated in a way a
	// script can observe (I4).
	MapVal map[string]Value

	// Fn holds a fully-qualified label name for a first-class function
	// reference.
	Fn string

	// Obj holds a guarded handle to a host-supplied Foreign object.
	Obj *Handle
}

// IntOf builds an Integer value.
func IntOf(i int32) Value { return Value{Kind: Int, I: i} }

// FloatOf builds a Float value, applying the NaN/Inf clamps from I2.
func FloatOf(f float64) Value {
	return Value{Kind: Float, F: clampFloat(f)}
}

// BoolOf builds a Boolean value.
func BoolOf(b bool) Value { return Value{Kind: Bool, B: b} }

// StringOf builds a String value.
func StringOf(s string) Value { return Value{Kind: String, S: s} }

// TimeOf builds a Time value.
func TimeOf(t time.Time) Value { return Value{Kind: Time, T: t} }

// TupleOf builds a Tuple value from already-inferred elements.
func TupleOf(items []Value) Value { return Value{Kind: Tuple, Tuple: items} }

// VectorOf builds a Vector value from already-inferred elements.
func VectorOf(items []Value) Value { return Value{Kind: Vector, Vec: items} }

// MapOf builds a Map value from already-inferred entries.
func MapOf(entries map[string]Value) Value { return Value{Kind: Map, MapVal: entries} }

// FunctionOf builds a first-class function reference.
func FunctionOf(qualifiedLabel string) Value { return Value{Kind: Function, Fn: qualifiedLabel} }

// ForeignOf wraps a host object in a guarded handle.
func ForeignOf(h *Handle) Value { return Value{Kind: Foreign, Obj: h} }

// clampFloat implements I2: NaN collapses to 0.0, +/-Inf clamps to the
// largest finite magnitude. Both cases are silent here; callers that can
// reach a source line attach the "with a warning" text themselves.
func clampFloat(f float64) float64 {
	switch {
	case f != f: // NaN
		return 0.0
	case f > maxFinite:
		return maxFinite
	case f < -maxFinite:
		return -maxFinite
	default:
		return f
	}
}

const maxFinite = 1.7976931348623157e+308

// Display renders a Value the way Print and string concatenation do: no
// quoting of strings, composites rendered structurally.
func (v Value) Display() string {
	switch v.Kind {
	case Int:
		return strconv.FormatInt(int64(v.I), 10)
	case Float:
		return formatFloat(v.F)
	case Bool:
		if v.B {
			return "true"
		}
		return "false"
	case String:
		return v.S
	case Time:
		return v.T.Format(time.RFC3339)
	case Tuple:
		return joinDisplay("(", v.Tuple, ")")
	case Vector:
		return joinDisplay("[", v.Vec, "]")
	case Map:
		var b strings.Builder
		b.WriteByte('{')
		first := true
		for k, item := range v.MapVal {
			if !first {
				b.WriteString(", ")
			}
			first = false
			b.WriteString(k)
			b.WriteString(": ")
			b.WriteString(item.Display())
		}
		b.WriteByte('}')
		return b.String()
	case Function:
		return "function:" + v.Fn
	case Foreign:
		if v.Obj == nil {
			return "foreign:<nil>"
		}
		return "foreign:" + v.Obj.TypeName()
	default:
		return ""
	}
}

func joinDisplay(open string, items []Value, closeTok string) string {
	var b strings.Builder
	b.WriteString(open)
	for i, it := range items {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(it.Display())
	}
	b.WriteString(closeTok)
	return b.String()
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// Equals implements structural equality for scalars and composites, and
// identity equality (same handle) for Foreign.
func (v Value) Equals(other Value) bool {
	if v.Kind != other.Kind {
		// Cross-kind equality falls back to float coercion per §4.4;
		// a failed coercion compares unequal rather than erroring.
		lf, lok := v.AsFloat()
		rf, rok := other.AsFloat()
		if lok && rok {
			return lf == rf
		}
		return false
	}
	switch v.Kind {
	case Int:
		return v.I == other.I
	case Float:
		return v.F == other.F
	case Bool:
		return v.B == other.B
	case String:
		return v.S == other.S
	case Time:
		return v.T.Equal(other.T)
	case Function:
		return v.Fn == other.Fn
	case Foreign:
		return v.Obj == other.Obj
	case Tuple:
		return equalSlice(v.Tuple, other.Tuple)
	case Vector:
		return equalSlice(v.Vec, other.Vec)
	case Map:
		if len(v.MapVal) != len(other.MapVal) {
			return false
		}
		for k, lv := range v.MapVal {
			rv, ok := other.MapVal[k]
			if !ok || !lv.Equals(rv) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func equalSlice(a, b []Value) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equals(b[i]) {
			return false
		}
	}
	return true
}

// IsEmptyComposite reports whether a composite value has zero elements,
// used by AsBool.
func (v Value) IsEmptyComposite() bool {
	switch v.Kind {
	case Tuple:
		return len(v.Tuple) == 0
	case Vector:
		return len(v.Vec) == 0
	case Map:
		return len(v.MapVal) == 0
	default:
		return false
	}
}

// fmtTypeError is a small helper most coercions and operators share.
func fmtTypeError(op string, v Value) error {
	return fmt.Errorf("type mismatch: cannot apply %s to %s", op, v.Kind)
}
