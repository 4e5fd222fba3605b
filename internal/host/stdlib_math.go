package host

import (
	"fmt"
	"math"

	"github.com/mitescript/mite/internal/value"
)

// callMath implements the math static module (spec §4.10). There is no
// third-party numerics library in the reference pack that covers plain
// scalar math, so this stays on the standard library (see DESIGN.md).
func callMath(method string, args []value.Value) (value.Value, error) {
	one := func(fn func(float64) float64) (value.Value, error) {
		if len(args) != 1 {
			return value.Value{}, arityErr("math."+method, 1, len(args))
		}
		f, ok := args[0].AsFloat()
		if !ok {
			return value.Value{}, fmt.Errorf("math.%s requires a numeric argument", method)
		}
		return value.FloatOf(fn(f)), nil
	}

	switch method {
	case "sqrt":
		return one(math.Sqrt)
	case "abs":
		return one(math.Abs)
	case "sin":
		return one(math.Sin)
	case "cos":
		return one(math.Cos)
	case "floor":
		if len(args) != 1 {
			return value.Value{}, arityErr("math.floor", 1, len(args))
		}
		f, _ := args[0].AsFloat()
		return value.IntOf(int32(math.Floor(f))), nil
	case "ceil":
		if len(args) != 1 {
			return value.Value{}, arityErr("math.ceil", 1, len(args))
		}
		f, _ := args[0].AsFloat()
		return value.IntOf(int32(math.Ceil(f))), nil
	case "round":
		if len(args) != 1 {
			return value.Value{}, arityErr("math.round", 1, len(args))
		}
		f, _ := args[0].AsFloat()
		return value.IntOf(int32(math.Round(f))), nil
	case "pow":
		if len(args) != 2 {
			return value.Value{}, arityErr("math.pow", 2, len(args))
		}
		base, _ := args[0].AsFloat()
		exp, _ := args[1].AsFloat()
		return value.FloatOf(math.Pow(base, exp)), nil
	case "pi":
		return value.FloatOf(math.Pi), nil
	case "e":
		return value.FloatOf(math.E), nil
	default:
		return value.Value{}, fmt.Errorf("unknown method %q for math module", method)
	}
}
