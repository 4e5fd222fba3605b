package value

import "strconv"

// AsFloat implements the as_float coercion from §4.1: numerics pass
// through (Integer widened), booleans map to 0/1, strings are parsed,
// and Time yields seconds since the Unix epoch.
func (v Value) AsFloat() (float64, bool) {
	switch v.Kind {
	case Int:
		return float64(v.I), true
	case Float:
		return v.F, true
	case Bool:
		if v.B {
			return 1, true
		}
		return 0, true
	case String:
		f, err := strconv.ParseFloat(v.S, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	case Time:
		return float64(v.T.Unix()) + float64(v.T.Nanosecond())/1e9, true
	default:
		return 0, false
	}
}

// AsBool implements the as_bool coercion from §4.1.
func (v Value) AsBool() bool {
	switch v.Kind {
	case Int:
		return v.I != 0
	case Float:
		return v.F != 0
	case Bool:
		return v.B
	case String:
		return v.S == "true"
	case Time, Function, Foreign:
		return true
	case Tuple, Vector, Map:
		return !v.IsEmptyComposite()
	default:
		return false
	}
}
