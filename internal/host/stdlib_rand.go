package host

import (
	"fmt"
	"math/rand/v2"

	"github.com/mitescript/mite/internal/value"
)

// callRand implements the rand static module against math/rand/v2 — the
// pack carries no third-party randomness library, so this is a justified
// standard-library concern (see DESIGN.md).
func callRand(method string, args []value.Value) (value.Value, error) {
	switch method {
	case "int":
		if len(args) != 2 {
			return value.Value{}, arityErr("rand.int", 2, len(args))
		}
		minF, _ := args[0].AsFloat()
		maxF, _ := args[1].AsFloat()
		min, max := int(minF), int(maxF)
		if min >= max {
			return value.Value{}, fmt.Errorf("min must be less than max")
		}
		return value.IntOf(int32(min + rand.IntN(max-min))), nil
	case "float":
		return value.FloatOf(rand.Float64()), nil
	case "bool":
		return value.BoolOf(rand.IntN(2) == 1), nil
	default:
		return value.Value{}, fmt.Errorf("unknown method %q for rand module", method)
	}
}
